package main

import "sort"

// World owns every live entity. It is deliberately not safe for concurrent
// use: all mutation happens inside the game loop, which is the single
// writer. Lookups return an explicit ok instead of panicking so entities
// can vanish mid-resolution.
type World struct {
	Players    map[string]*Player // keyed by endpoint
	Bricks     []Brick
	Bullets    []*Bullet
	Bombs      []*Bomb
	Explosions []*Explosion
}

func NewWorld() *World {
	return &World{Players: make(map[string]*Player)}
}

// GetPlayer looks up a player by endpoint key.
func (w *World) GetPlayer(key string) (*Player, bool) {
	p, ok := w.Players[key]
	return p, ok
}

func (w *World) AddPlayer(p *Player) {
	w.Players[p.Key] = p
}

func (w *World) RemovePlayer(key string) {
	delete(w.Players, key)
}

// PlayerKeys returns endpoint keys in a stable order. Bullet and explosion
// resolution iterate players in this order so outcomes do not depend on
// map iteration.
func (w *World) PlayerKeys() []string {
	keys := make([]string, 0, len(w.Players))
	for k := range w.Players {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InGameCount returns the number of players currently in the arena.
func (w *World) InGameCount() int {
	n := 0
	for _, p := range w.Players {
		if p.InGame {
			n++
		}
	}
	return n
}

// OccupiedCells collects every cell holding a snake segment, brick, bullet
// or bomb. Used by the spawn manager to find empty space.
func (w *World) OccupiedCells() map[Cell]struct{} {
	occ := make(map[Cell]struct{})
	for _, p := range w.Players {
		for _, seg := range p.Body {
			occ[seg] = struct{}{}
		}
	}
	for _, b := range w.Bricks {
		occ[b.Cell] = struct{}{}
	}
	for _, b := range w.Bullets {
		occ[b.Cell] = struct{}{}
	}
	for _, b := range w.Bombs {
		occ[b.Cell] = struct{}{}
	}
	return occ
}

// BrickAt returns the kind of the brick on c, if any.
func (w *World) BrickAt(c Cell) (BrickKind, bool) {
	for _, b := range w.Bricks {
		if b.Cell == c {
			return b.Kind, true
		}
	}
	return BrickRegular, false
}

// RemoveBrickAt consumes the brick on c and returns its kind.
func (w *World) RemoveBrickAt(c Cell) (BrickKind, bool) {
	for i, b := range w.Bricks {
		if b.Cell == c {
			w.Bricks = append(w.Bricks[:i], w.Bricks[i+1:]...)
			return b.Kind, true
		}
	}
	return BrickRegular, false
}

// TrimBricks drops bricks from the end of the list until at most target
// remain, mirroring the shrink when players leave.
func (w *World) TrimBricks(target int) {
	if target < 0 {
		target = 0
	}
	for len(w.Bricks) > target {
		w.Bricks = w.Bricks[:len(w.Bricks)-1]
	}
}
