package main

import (
	"encoding/json"
	"fmt"
)

const (
	GridWidth  = 40
	GridHeight = 30
)

// Cell is a discrete grid position. It marshals as a two-element array
// so snake bodies and brick lists stay compact on the wire.
type Cell struct {
	X, Y int
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.X, c.Y})
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var a [2]int
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	c.X, c.Y = a[0], a[1]
	return nil
}

// InBounds reports whether the cell lies inside the grid.
func (c Cell) InBounds() bool {
	return c.X >= 0 && c.X < GridWidth && c.Y >= 0 && c.Y < GridHeight
}

// Clamped returns the cell pulled back inside the grid bounds.
func (c Cell) Clamped() Cell {
	if c.X < 0 {
		c.X = 0
	} else if c.X >= GridWidth {
		c.X = GridWidth - 1
	}
	if c.Y < 0 {
		c.Y = 0
	} else if c.Y >= GridHeight {
		c.Y = GridHeight - 1
	}
	return c
}

// Next returns the adjacent cell one step along d.
func (c Cell) Next(d Direction) Cell {
	dx, dy := d.Delta()
	return Cell{c.X + dx, c.Y + dy}
}

// Step returns the cell n steps along d.
func (c Cell) Step(d Direction, n int) Cell {
	dx, dy := d.Delta()
	return Cell{c.X + dx*n, c.Y + dy*n}
}

// Direction is one of the four cardinal headings.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

var directionNames = [...]string{"UP", "DOWN", "LEFT", "RIGHT"}

func (d Direction) String() string {
	if d < DirUp || d > DirRight {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection maps the wire spelling to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "UP":
		return DirUp, true
	case "DOWN":
		return DirDown, true
	case "LEFT":
		return DirLeft, true
	case "RIGHT":
		return DirRight, true
	}
	return DirUp, false
}

// Delta returns the unit vector of the heading.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Perpendicular returns the two headings at right angles to d,
// used for sideways bomb throws.
func (d Direction) Perpendicular() [2]Direction {
	switch d {
	case DirUp, DirDown:
		return [2]Direction{DirLeft, DirRight}
	default:
		return [2]Direction{DirUp, DirDown}
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dir, ok := ParseDirection(s)
	if !ok {
		return fmt.Errorf("unknown direction %q", s)
	}
	*d = dir
	return nil
}
