package main

import "math/rand"

const (
	spawnMargin       = 5   // min distance from any wall for player spawns
	spawnAttempts     = 100 // bounded retries before relaxing constraints
	safeLookahead     = 2   // forward cells checked for a spawn heading
	brickBombChance   = 0.02
	brickBulletChance = 0.05 // cumulative draw: [0,0.02) bomb, [0.02,0.07) bullet
)

// SpawnManager decides where bricks and players appear. The rand source is
// injected so tests can run deterministically.
type SpawnManager struct {
	rng *rand.Rand
}

func NewSpawnManager(rng *rand.Rand) *SpawnManager {
	return &SpawnManager{rng: rng}
}

// BrickTarget returns how many bricks should be live for the given number
// of in-game players: 0 -> 0, 1 -> 1, then one more per two players.
func BrickTarget(players int) int {
	if players <= 0 {
		return 0
	}
	return players/2 + 1
}

// SpawnBrick places one brick of a weighted random kind on a random empty
// cell. Returns false if no empty cell was found within the attempt bound.
func (s *SpawnManager) SpawnBrick(w *World) bool {
	occ := w.OccupiedCells()
	for i := 0; i < spawnAttempts; i++ {
		c := Cell{s.rng.Intn(GridWidth), s.rng.Intn(GridHeight)}
		if _, taken := occ[c]; taken {
			continue
		}
		w.Bricks = append(w.Bricks, Brick{Cell: c, Kind: s.drawKind()})
		return true
	}
	return false
}

func (s *SpawnManager) drawKind() BrickKind {
	r := s.rng.Float64()
	switch {
	case r < brickBombChance:
		return BrickBomb
	case r < brickBombChance+brickBulletChance:
		return BrickBullet
	}
	return BrickRegular
}

// SafeSpawn picks a spawn cell away from the walls plus a heading whose
// next cells are clear. After the attempt bound it relaxes to occupancy-
// blind heading selection so the simulation never stalls on spawn.
func (s *SpawnManager) SafeSpawn(w *World) (Cell, Direction) {
	occ := w.OccupiedCells()
	var c Cell
	for i := 0; i < spawnAttempts; i++ {
		c = Cell{
			spawnMargin + s.rng.Intn(GridWidth-2*spawnMargin),
			spawnMargin + s.rng.Intn(GridHeight-2*spawnMargin),
		}
		if _, taken := occ[c]; taken {
			continue
		}
		if d, ok := s.safeHeading(c, occ); ok {
			return c, d
		}
	}
	return c, s.relaxedHeading(c)
}

// safeHeading returns a heading from c whose next safeLookahead cells are
// in-bounds and unoccupied.
func (s *SpawnManager) safeHeading(c Cell, occ map[Cell]struct{}) (Direction, bool) {
	var safe []Direction
	for d := DirUp; d <= DirRight; d++ {
		ok := true
		for n := 1; n <= safeLookahead; n++ {
			step := c.Step(d, n)
			if !step.InBounds() {
				ok = false
				break
			}
			if _, taken := occ[step]; taken {
				ok = false
				break
			}
		}
		if ok {
			safe = append(safe, d)
		}
	}
	if len(safe) == 0 {
		return DirUp, false
	}
	return safe[s.rng.Intn(len(safe))], true
}

// relaxedHeading ignores occupancy and only keeps the heading in-bounds.
func (s *SpawnManager) relaxedHeading(c Cell) Direction {
	var fits []Direction
	for d := DirUp; d <= DirRight; d++ {
		if c.Step(d, safeLookahead).InBounds() {
			fits = append(fits, d)
		}
	}
	if len(fits) == 0 {
		return DirRight
	}
	return fits[s.rng.Intn(len(fits))]
}
