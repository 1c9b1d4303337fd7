package main

// BrickKind tags the three pickup variants.
type BrickKind int

const (
	BrickRegular BrickKind = iota
	BrickBullet
	BrickBomb
)

func (k BrickKind) String() string {
	switch k {
	case BrickBullet:
		return "bullet"
	case BrickBomb:
		return "bomb"
	}
	return "regular"
}

// Brick is a static pickup; consumed when a snake head enters its cell.
type Brick struct {
	Cell Cell
	Kind BrickKind
}

// Bullet is a moving projectile. It advances one cell per engine tick
// (three cells per movement interval) and is removed on its first hit
// or on leaving the grid.
type Bullet struct {
	Cell      Cell
	Heading   Direction
	Owner     string // endpoint key, for kill attribution
	OwnerName string
}

func (b *Bullet) ToState() BulletState {
	return BulletState{Pos: b.Cell, Direction: b.Heading, Owner: b.OwnerName}
}

// Bomb sits on its landing cell until the fuse runs out, then becomes an
// Explosion.
type Bomb struct {
	Cell      Cell
	Fuse      float64 // seconds until detonation
	Owner     string
	OwnerName string
}

func (b *Bomb) ToState() BombState {
	remaining := b.Fuse
	if remaining < 0 {
		remaining = 0
	}
	return BombState{Pos: b.Cell, Remaining: remaining}
}

// Explosion is purely cosmetic after its one-shot damage resolution; it
// lingers for ExplosionDuration so clients can draw it.
type Explosion struct {
	Cell      Cell
	Remaining float64
}

func (e *Explosion) ToState() ExplosionState {
	progress := 1 - e.Remaining/ExplosionDuration
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	return ExplosionState{Pos: e.Cell, Progress: progress}
}

// blastArea reports whether c lies in the 3x3 neighborhood of center.
// Out-of-bounds corners fall away naturally since no body cell can be there.
func blastArea(center, c Cell) bool {
	dx := c.X - center.X
	dy := c.Y - center.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}
