package main

import (
	"fmt"
	"log"
	"math/rand"
	"net"
	"time"
)

const (
	MaxPlayers        = 16
	ClientTimeout     = 10 * time.Second
	HeartbeatInterval = 5 * time.Second // how often clients should ping
)

// colorPool holds the predefined player colors, handed out in order and
// returned on disconnect.
var colorPool = []RGB{
	{0, 255, 0},     // green
	{255, 0, 0},     // red
	{0, 100, 255},   // blue
	{255, 255, 0},   // yellow
	{255, 0, 255},   // magenta
	{0, 255, 255},   // cyan
	{255, 128, 0},   // orange
	{128, 0, 255},   // purple
	{255, 192, 203}, // pink
	{0, 255, 128},   // spring green
	{128, 255, 0},   // chartreuse
	{255, 64, 64},   // light red
	{64, 64, 255},   // light blue
	{255, 255, 128}, // light yellow
	{128, 255, 255}, // light cyan
	{255, 128, 255}, // light magenta
}

// SessionManager maps endpoints to player records and owns their
// lifecycle: capacity checks, color assignment, liveness eviction. It runs
// entirely inside the game loop, so it needs no locking.
type SessionManager struct {
	world   *World
	spawner *SpawnManager
	stats   *Stats
	rng     *rand.Rand
	inUse   map[RGB]bool
}

func NewSessionManager(world *World, spawner *SpawnManager, stats *Stats, rng *rand.Rand) *SessionManager {
	return &SessionManager{
		world:   world,
		spawner: spawner,
		stats:   stats,
		rng:     rng,
		inUse:   make(map[RGB]bool),
	}
}

// Connect establishes a session for addr. A second connect from a known
// endpoint only refreshes liveness. Returns nil with ok=false when the
// server is full; no state is created in that case.
func (m *SessionManager) Connect(addr *net.UDPAddr, name string, now time.Time) (*Player, bool) {
	key := addr.String()
	if p, exists := m.world.GetPlayer(key); exists {
		p.Touch(now)
		return p, true
	}
	if len(m.world.Players) >= MaxPlayers {
		return nil, false
	}
	if name == "" {
		name = fmt.Sprintf("Player_%d", len(m.world.Players)+1)
	}

	spawn, heading := m.spawner.SafeSpawn(m.world)
	p := &Player{
		Name:        name,
		Key:         key,
		UDP:         addr,
		Color:       m.claimColor(),
		Body:        []Cell{spawn},
		Heading:     heading,
		Alive:       true,
		ConnectedAt: now,
		LastSeen:    now,
	}
	m.world.AddPlayer(p)
	log.Printf("session: %s connected from %s (%d/%d)", name, key, len(m.world.Players), MaxPlayers)
	return p, true
}

// Disconnect tears down a session, frees its color and reports the final
// score to the stats store.
func (m *SessionManager) Disconnect(key, reason string) {
	p, ok := m.world.GetPlayer(key)
	if !ok {
		return
	}
	m.releaseColor(p.Color)
	m.world.RemovePlayer(key)
	if m.stats != nil {
		m.stats.RecordGameEnd(p.Name, p.Score)
	}
	log.Printf("session: %s disconnected (%s), %d remaining", p.Name, reason, len(m.world.Players))
}

// Sweep evicts every session whose last activity is older than the client
// timeout. Called from the game loop, so evicted players simply vanish
// from the world before the next tick touches them.
func (m *SessionManager) Sweep(now time.Time) int {
	var stale []string
	for key, p := range m.world.Players {
		if now.Sub(p.LastSeen) > ClientTimeout {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		m.Disconnect(key, "timeout")
	}
	return len(stale)
}

func (m *SessionManager) claimColor() RGB {
	for _, c := range colorPool {
		if !m.inUse[c] {
			m.inUse[c] = true
			return c
		}
	}
	// Pool exhausted; generate a bright random color.
	c := RGB{
		uint8(50 + m.rng.Intn(206)),
		uint8(50 + m.rng.Intn(206)),
		uint8(50 + m.rng.Intn(206)),
	}
	m.inUse[c] = true
	return c
}

func (m *SessionManager) releaseColor(c RGB) {
	delete(m.inUse, c)
}
