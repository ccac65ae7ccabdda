package collision

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	// Padding is the fraction of a tile kept clear between the mover and a
	// blocked neighbour.
	Padding = 0.2
	// Bias is added after clamping so the clamped position does not touch
	// the padding boundary again.
	Bias = 0.01
)

// Walkability answers whether a tile may be entered. Implementations must
// report false for anything outside the grid.
type Walkability interface {
	Walkable(x, y int) bool
}

type Side uint8

const (
	North Side = 1 << iota
	West
	South
	East
)

// Sides is a set of blocked sides.
type Sides uint8

const AllSides = Sides(North | West | South | East)

func (s Sides) Has(side Side) bool {
	return s&Sides(side) != 0
}

func (s Sides) Empty() bool {
	return s == 0
}

func (s Sides) String() string {
	if s == 0 {
		return "none"
	}
	out := ""
	for _, n := range []struct {
		side Side
		name string
	}{{North, "north"}, {West, "west"}, {South, "south"}, {East, "east"}} {
		if s.Has(n.side) {
			if out != "" {
				out += ","
			}
			out += n.name
		}
	}
	return out
}

// PositionToTile rounds to the nearest tile; tile centres sit on integers.
func PositionToTile(p cp.Vector) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// Collides reports which sides of its tile p is pressing into. A position
// inside a blocked tile collides on every side. Otherwise at most one side
// is reported, checked in the order west, east, north, south.
func Collides(mask Walkability, p cp.Vector) Sides {
	tx, ty := PositionToTile(p)
	if !mask.Walkable(tx, ty) {
		return AllSides
	}

	lx := p.X - float64(tx) + 0.5
	ly := p.Y - float64(ty) + 0.5

	switch {
	case lx < Padding && !mask.Walkable(tx-1, ty):
		return Sides(West)
	case lx > 1-Padding && !mask.Walkable(tx+1, ty):
		return Sides(East)
	case ly < Padding && !mask.Walkable(tx, ty-1):
		return Sides(North)
	case ly > 1-Padding && !mask.Walkable(tx, ty+1):
		return Sides(South)
	}
	return 0
}

// Step returns the unresolved target of moving distance along direction
// (degrees, 0 = +x, counter-clockwise). The y axis points down.
func Step(pos cp.Vector, direction, distance float64) cp.Vector {
	rad := direction * math.Pi / 180
	return cp.Vector{
		X: pos.X + math.Cos(rad)*distance,
		Y: pos.Y - math.Sin(rad)*distance,
	}
}

// MoveWithCollisions moves pos and resolves collisions one axis at a time
// against the tile pos started in. Movement into a wall is absorbed while
// movement along it is kept. If both axes stay blocked the original
// position is returned unchanged.
func MoveWithCollisions(mask Walkability, pos cp.Vector, direction, distance float64) cp.Vector {
	next := Step(pos, direction, distance)

	hit := Collides(mask, next)
	if hit.Empty() {
		return next
	}

	cx, cy := PositionToTile(pos)

	if hit.Has(East) {
		next.X = float64(cx) + 0.5 - Padding - Bias
	} else if hit.Has(West) {
		next.X = float64(cx) - 0.5 + Padding + Bias
	}

	hit = Collides(mask, next)
	if hit.Empty() {
		return next
	}

	if hit.Has(North) {
		next.Y = float64(cy) - 0.5 + Padding + Bias
	} else if hit.Has(South) {
		next.Y = float64(cy) + 0.5 - Padding - Bias
	}

	if !Collides(mask, next).Empty() {
		return pos
	}
	return next
}
