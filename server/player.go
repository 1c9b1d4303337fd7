package main

import (
	"net"
	"time"
)

// RGB is a player color. uint8 arrays marshal as plain JSON arrays.
type RGB [3]uint8

// Player is the server-side record for one connected client. The body is
// ordered head first; on death it is cleared but the record survives until
// disconnect so the client can request a respawn.
type Player struct {
	Name  string
	Key   string // endpoint key, e.g. "10.0.0.5:51234"
	UDP   *net.UDPAddr
	Color RGB

	Body    []Cell
	Heading Direction
	Alive   bool
	Score   int
	Bullets int
	Bombs   int
	InGame  bool

	ConnectedAt time.Time
	LastSeen    time.Time
}

// Head returns the head cell. ok is false when the body is empty (dead).
func (p *Player) Head() (Cell, bool) {
	if len(p.Body) == 0 {
		return Cell{}, false
	}
	return p.Body[0], true
}

// BodyIndex returns the index of c in the body, or -1.
func (p *Player) BodyIndex(c Cell) int {
	for i, seg := range p.Body {
		if seg == c {
			return i
		}
	}
	return -1
}

// Occupies reports whether any body segment sits on c.
func (p *Player) Occupies(c Cell) bool {
	return p.BodyIndex(c) >= 0
}

// AddScore adjusts the score, clamping at zero.
func (p *Player) AddScore(delta int) {
	p.Score += delta
	if p.Score < 0 {
		p.Score = 0
	}
}

// Die clears the body and zeroes the ammo counts. The score is kept so a
// respawn can halve it.
func (p *Player) Die() {
	p.Alive = false
	p.Body = nil
	p.Bullets = 0
	p.Bombs = 0
}

// Truncate cuts the body to the first i segments and returns how many were
// removed. i must be > 0; a hit at the head is a death, not a cut.
func (p *Player) Truncate(i int) int {
	if i <= 0 || i >= len(p.Body) {
		return 0
	}
	removed := len(p.Body) - i
	p.Body = p.Body[:i]
	return removed
}

// Respawn reinstates a dead player at the given spot with half the score
// and no ammo.
func (p *Player) Respawn(at Cell, heading Direction) {
	p.Score /= 2
	p.Bullets = 0
	p.Bombs = 0
	p.Body = []Cell{at}
	p.Heading = heading
	p.Alive = true
}

// Touch refreshes the liveness timestamp.
func (p *Player) Touch(now time.Time) {
	p.LastSeen = now
}

// ToState converts to the broadcast representation.
func (p *Player) ToState() PlayerState {
	body := make([]Cell, len(p.Body))
	copy(body, p.Body)
	return PlayerState{
		PlayerName: p.Name,
		Snake:      body,
		Direction:  p.Heading,
		Score:      p.Score,
		Alive:      p.Alive,
		Color:      p.Color,
		Bullets:    p.Bullets,
		Bombs:      p.Bombs,
		InGame:     p.InGame,
	}
}
