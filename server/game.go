package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net"
	"sync/atomic"
	"time"
)

const (
	// Players move at the base rate; bullets advance one cell per engine
	// tick, i.e. three cells per movement interval.
	MoveInterval      = 500 * time.Millisecond
	EngineDivisor     = 3
	EngineInterval    = MoveInterval / EngineDivisor
	BroadcastInterval = 500 * time.Millisecond

	ScorePerMove    = 1
	ScoreBrick      = 100
	ScoreKill       = 250
	ScorePerSegment = 50 // deducted per body segment lost to a hit

	BombFuseMin  = 2.0 // seconds
	BombFuseMax  = 4.0
	BombThrowMin = 2 // cells sideways
	BombThrowMax = 5

	ExplosionDuration = 0.8 // seconds the effect stays visible

	inboxSize = 256
)

// Sender delivers a payload to one client endpoint. Satisfied by the UDP
// server; mocked in tests.
type Sender interface {
	SendTo(addr *net.UDPAddr, payload []byte)
}

// command is one decoded client datagram queued into the game loop.
type command struct {
	addr *net.UDPAddr
	msg  Inbound
}

// Game is the single owner of all world state. Inbound messages, simulation
// ticks and broadcast assembly are serialized onto one goroutine in Run, so
// no entity is ever touched concurrently and no locks are needed.
type Game struct {
	world    *World
	spawner  *SpawnManager
	sessions *SessionManager
	stats    *Stats
	rng      *rand.Rand

	inbox      chan command
	sender     Sender
	spectators *SpectatorHub
	stop       chan struct{}

	engineTicks uint64
	gameTime    float64

	// Gauges readable outside the loop (HTTP status page).
	msgCount     atomic.Uint64
	playerCount  atomic.Int64
	inGameCount  atomic.Int64
	startedAt    time.Time
}

// NewGame wires the world, spawn manager and session manager around one
// seedable random source.
func NewGame(stats *Stats, seed int64) *Game {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	world := NewWorld()
	spawner := NewSpawnManager(rng)
	return &Game{
		world:     world,
		spawner:   spawner,
		sessions:  NewSessionManager(world, spawner, stats, rng),
		stats:     stats,
		rng:       rng,
		inbox:     make(chan command, inboxSize),
		stop:      make(chan struct{}),
		startedAt: time.Now(),
	}
}

// SetSender attaches the transport used for replies and broadcasts.
func (g *Game) SetSender(s Sender) { g.sender = s }

// SetSpectators attaches the websocket spectator hub.
func (g *Game) SetSpectators(h *SpectatorHub) { g.spectators = h }

// Enqueue hands a decoded datagram to the game loop. Never blocks: if the
// inbox is full the message is dropped, which an unreliable transport
// permits anyway.
func (g *Game) Enqueue(addr *net.UDPAddr, msg Inbound) {
	select {
	case g.inbox <- command{addr: addr, msg: msg}:
	default:
		log.Printf("game: inbox full, dropping %q from %s", msg.Type, addr)
	}
}

// Run drives the cooperative loop: engine ticks, broadcast ticks and
// message handling never overlap, so every broadcast observes a fully
// settled post-tick world.
func (g *Game) Run() {
	engine := time.NewTicker(EngineInterval)
	broadcast := time.NewTicker(BroadcastInterval)
	defer engine.Stop()
	defer broadcast.Stop()

	for {
		select {
		case cmd := <-g.inbox:
			g.handleCommand(cmd, time.Now())
		case <-engine.C:
			g.engineTick()
		case <-broadcast.C:
			g.broadcastTick(time.Now())
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the loop.
func (g *Game) Stop() {
	close(g.stop)
}

// --- inbound handling ---

func (g *Game) handleCommand(cmd command, now time.Time) {
	key := cmd.addr.String()
	if p, ok := g.world.GetPlayer(key); ok {
		p.Touch(now)
		if cmd.msg.Type == MsgConnect {
			return // reconnect: liveness refreshed, nothing else
		}
		g.dispatch(p, cmd.msg, now)
		return
	}
	// Unknown endpoint: only connect is meaningful.
	if cmd.msg.Type == MsgConnect {
		g.handleConnect(cmd.addr, cmd.msg.PlayerName, now)
	}
}

func (g *Game) handleConnect(addr *net.UDPAddr, name string, now time.Time) {
	p, ok := g.sessions.Connect(addr, name, now)
	if !ok {
		g.reply(addr, ServerFullMsg{
			Type:           MsgServerFull,
			Message:        "Server is full. Please try again later.",
			MaxPlayers:     MaxPlayers,
			CurrentPlayers: len(g.world.Players),
		})
		return
	}
	g.reply(addr, WelcomeMsg{
		Type:        MsgWelcome,
		Message:     "Welcome to the game, " + p.Name + "!",
		PlayerID:    p.Key,
		PlayerCount: len(g.world.Players),
		Color:       p.Color,
	})
}

func (g *Game) dispatch(p *Player, msg Inbound, now time.Time) {
	switch msg.Type {
	case MsgDisconnect:
		g.sessions.Disconnect(p.Key, "client request")
	case MsgJoinGame:
		if !p.InGame {
			p.InGame = true
			log.Printf("game: %s joined the arena", p.Name)
		}
	case MsgUpdate:
		g.handleUpdate(p, msg.Data)
	case MsgShoot:
		g.handleShoot(p)
	case MsgThrowBomb:
		g.handleThrowBomb(p)
	case MsgPing:
		g.reply(p.UDP, PongMsg{Type: MsgPong, Timestamp: unixSeconds(now)})
	default:
		// Unknown or out-of-context types are ignored by design.
	}
}

func (g *Game) handleUpdate(p *Player, data *UpdateData) {
	if data == nil {
		return
	}
	if data.Direction != "" {
		if dir, ok := ParseDirection(data.Direction); ok {
			p.Heading = dir
		}
	}
	if data.Respawn && !p.Alive {
		spawn, heading := g.spawner.SafeSpawn(g.world)
		p.Respawn(spawn, heading)
		log.Printf("game: %s respawned with score %d", p.Name, p.Score)
	}
}

func (g *Game) handleShoot(p *Player) {
	if !p.Alive || !p.InGame || p.Bullets <= 0 {
		return
	}
	head, ok := p.Head()
	if !ok {
		return
	}
	p.Bullets--
	spawn := head.Next(p.Heading)
	if !spawn.InBounds() {
		return // fired straight into the wall
	}
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell:      spawn,
		Heading:   p.Heading,
		Owner:     p.Key,
		OwnerName: p.Name,
	})
}

func (g *Game) handleThrowBomb(p *Player) {
	if !p.Alive || !p.InGame || p.Bombs <= 0 {
		return
	}
	head, ok := p.Head()
	if !ok {
		return
	}
	p.Bombs--
	sides := p.Heading.Perpendicular()
	dir := sides[g.rng.Intn(2)]
	dist := BombThrowMin + g.rng.Intn(BombThrowMax-BombThrowMin+1)
	g.world.Bombs = append(g.world.Bombs, &Bomb{
		Cell:      head.Step(dir, dist).Clamped(),
		Fuse:      BombFuseMin + g.rng.Float64()*(BombFuseMax-BombFuseMin),
		Owner:     p.Key,
		OwnerName: p.Name,
	})
}

// --- simulation ---

func (g *Game) engineTick() {
	g.engineTicks++
	dt := EngineInterval.Seconds()

	g.advanceBullets()
	g.updateBombs(dt)
	g.updateExplosions(dt)

	if g.engineTicks%EngineDivisor == 0 {
		g.movePlayers()
		g.updateBrickSupply()
	}
}

// movePlayers advances every alive in-game snake by one cell. All
// collisions are resolved against pre-tick body snapshots so the outcome
// never depends on iteration order.
func (g *Game) movePlayers() {
	keys := g.world.PlayerKeys()

	pre := make(map[string][]Cell, len(keys))
	for _, k := range keys {
		p := g.world.Players[k]
		if p.Alive && p.InGame && len(p.Body) > 0 {
			pre[k] = append([]Cell(nil), p.Body...)
		}
	}

	for _, k := range keys {
		body, moving := pre[k]
		if !moving {
			continue
		}
		p := g.world.Players[k]
		cand := body[0].Next(p.Heading)

		if !cand.InBounds() {
			g.kill(p, "hit a wall")
			continue
		}

		kind, onBrick := g.world.BrickAt(cand)
		grows := onBrick && kind == BrickRegular

		// Self collision. When the length is unchanged this tick, the tail
		// cell is about to vacate and does not count.
		limit := len(body)
		if !grows {
			limit--
		}
		if cellInPrefix(body, cand, limit) {
			g.kill(p, "ran into itself")
			continue
		}

		// Running into any other player's pre-tick body kills the mover;
		// the occupant is unaffected.
		if g.hitsOtherBody(keys, k, pre, cand) {
			g.kill(p, "ran into another snake")
			continue
		}

		// Commit the move.
		p.Body = append([]Cell{cand}, p.Body...)
		if onBrick {
			g.world.RemoveBrickAt(cand)
			switch kind {
			case BrickRegular:
				p.AddScore(ScoreBrick) // tail kept: the snake grows
			case BrickBullet:
				p.Bullets++
				p.Body = p.Body[:len(p.Body)-1]
			case BrickBomb:
				p.Bombs++
				p.Body = p.Body[:len(p.Body)-1]
			}
		} else {
			p.Body = p.Body[:len(p.Body)-1]
		}
		p.AddScore(ScorePerMove)
	}
}

func cellInPrefix(body []Cell, c Cell, limit int) bool {
	for i := 0; i < limit && i < len(body); i++ {
		if body[i] == c {
			return true
		}
	}
	return false
}

func (g *Game) hitsOtherBody(keys []string, mover string, pre map[string][]Cell, c Cell) bool {
	for _, k := range keys {
		if k == mover {
			continue
		}
		for _, seg := range pre[k] {
			if seg == c {
				return true
			}
		}
	}
	return false
}

// advanceBullets moves every bullet one cell and resolves at most one hit
// per bullet, in stable player order.
func (g *Game) advanceBullets() {
	if len(g.world.Bullets) == 0 {
		return
	}
	keys := g.world.PlayerKeys()
	kept := g.world.Bullets[:0]
	for _, b := range g.world.Bullets {
		next := b.Cell.Next(b.Heading)
		if !next.InBounds() {
			continue
		}
		b.Cell = next
		if g.resolveBulletHit(b, keys) {
			continue
		}
		kept = append(kept, b)
	}
	g.world.Bullets = kept
}

func (g *Game) resolveBulletHit(b *Bullet, keys []string) bool {
	for _, k := range keys {
		if k == b.Owner {
			continue // bullets never hit their shooter
		}
		p := g.world.Players[k]
		if !p.Alive || !p.InGame {
			continue
		}
		idx := p.BodyIndex(b.Cell)
		switch {
		case idx == 0:
			g.awardKill(b.Owner, b.OwnerName)
			g.kill(p, "was shot by "+b.OwnerName)
			return true
		case idx > 0:
			removed := p.Truncate(idx)
			p.AddScore(-ScorePerSegment * removed)
			log.Printf("game: %s lost %d segments to %s's bullet", p.Name, removed, b.OwnerName)
			return true
		}
	}
	return false
}

// updateBombs burns down fuses and converts expired bombs into explosions,
// resolving their damage exactly once.
func (g *Game) updateBombs(dt float64) {
	if len(g.world.Bombs) == 0 {
		return
	}
	kept := g.world.Bombs[:0]
	for _, b := range g.world.Bombs {
		b.Fuse -= dt
		if b.Fuse > 0 {
			kept = append(kept, b)
			continue
		}
		g.explode(b)
	}
	g.world.Bombs = kept
}

// explode applies the 3x3 damage pass. Unlike bullets, one explosion can
// hit every player in range in the same resolution.
func (g *Game) explode(b *Bomb) {
	g.world.Explosions = append(g.world.Explosions, &Explosion{
		Cell:      b.Cell,
		Remaining: ExplosionDuration,
	})

	for _, k := range g.world.PlayerKeys() {
		if k == b.Owner {
			continue
		}
		p := g.world.Players[k]
		if !p.Alive || !p.InGame {
			continue
		}
		hit := -1
		for i, seg := range p.Body {
			if blastArea(b.Cell, seg) {
				hit = i
				break
			}
		}
		switch {
		case hit == 0:
			g.awardKill(b.Owner, b.OwnerName)
			g.kill(p, "was caught in "+b.OwnerName+"'s explosion")
		case hit > 0:
			removed := p.Truncate(hit)
			p.AddScore(-ScorePerSegment * removed)
			log.Printf("game: %s lost %d segments to %s's bomb", p.Name, removed, b.OwnerName)
		}
	}
}

func (g *Game) updateExplosions(dt float64) {
	if len(g.world.Explosions) == 0 {
		return
	}
	kept := g.world.Explosions[:0]
	for _, e := range g.world.Explosions {
		e.Remaining -= dt
		if e.Remaining > 0 {
			kept = append(kept, e)
		}
	}
	g.world.Explosions = kept
}

// updateBrickSupply keeps the live brick count at the spawn target.
func (g *Game) updateBrickSupply() {
	target := BrickTarget(g.world.InGameCount())
	for len(g.world.Bricks) < target {
		if !g.spawner.SpawnBrick(g.world) {
			break
		}
	}
	g.world.TrimBricks(target)
}

func (g *Game) kill(p *Player, cause string) {
	finalScore := p.Score
	p.Die()
	g.stats.RecordDeath(p.Name, finalScore)
	log.Printf("game: %s %s", p.Name, cause)
}

func (g *Game) awardKill(ownerKey, ownerName string) {
	if owner, ok := g.world.GetPlayer(ownerKey); ok {
		owner.AddScore(ScoreKill)
	}
	g.stats.RecordKill(ownerName)
}

// --- broadcast ---

func (g *Game) broadcastTick(now time.Time) {
	g.sessions.Sweep(now)
	g.playerCount.Store(int64(len(g.world.Players)))
	g.inGameCount.Store(int64(g.world.InGameCount()))

	if len(g.world.Players) == 0 && (g.spectators == nil || g.spectators.Count() == 0) {
		return
	}

	g.gameTime += BroadcastInterval.Seconds()
	count := g.msgCount.Add(1)

	msg := GameStateMsg{
		Type:         MsgGameState,
		State:        g.buildSnapshot(now),
		MessageCount: count,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("game: snapshot marshal error: %v", err)
		return
	}

	if g.sender != nil {
		for _, p := range g.world.Players {
			g.sender.SendTo(p.UDP, payload)
		}
	}
	if g.spectators != nil {
		g.spectators.Broadcast(payload, &msg)
	}
}

func (g *Game) buildSnapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Players:      make(map[string]PlayerState, len(g.world.Players)),
		Bricks:       make([]Cell, 0),
		BulletBricks: make([]Cell, 0),
		BombBricks:   make([]Cell, 0),
		Bullets:      make([]BulletState, 0, len(g.world.Bullets)),
		Bombs:        make([]BombState, 0, len(g.world.Bombs)),
		Explosions:   make([]ExplosionState, 0, len(g.world.Explosions)),
		Timestamp:    unixSeconds(now),
		GameTime:     g.gameTime,
	}

	for key, p := range g.world.Players {
		snap.Players[key] = p.ToState()
	}
	for _, b := range g.world.Bricks {
		switch b.Kind {
		case BrickBullet:
			snap.BulletBricks = append(snap.BulletBricks, b.Cell)
		case BrickBomb:
			snap.BombBricks = append(snap.BombBricks, b.Cell)
		default:
			snap.Bricks = append(snap.Bricks, b.Cell)
		}
	}
	for _, b := range g.world.Bullets {
		snap.Bullets = append(snap.Bullets, b.ToState())
	}
	for _, b := range g.world.Bombs {
		snap.Bombs = append(snap.Bombs, b.ToState())
	}
	for _, e := range g.world.Explosions {
		snap.Explosions = append(snap.Explosions, e.ToState())
	}

	snap.Leaderboard = g.stats.Leaderboard(10)
	snap.AllTimeHigh, snap.AllTimeName = g.stats.AllTime()
	return snap
}

func (g *Game) reply(addr *net.UDPAddr, msg interface{}) {
	if g.sender == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("game: reply marshal error: %v", err)
		return
	}
	g.sender.SendTo(addr, payload)
}

// MessageCount returns the broadcast counter for the status page.
func (g *Game) MessageCount() uint64 { return g.msgCount.Load() }

// PlayerGauges returns connected and in-game player counts as of the last
// broadcast tick.
func (g *Game) PlayerGauges() (connected, inGame int64) {
	return g.playerCount.Load(), g.inGameCount.Load()
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
