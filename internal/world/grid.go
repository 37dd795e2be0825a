package world

import (
	"fmt"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Step(d rules.Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func Manhattan(a, b Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	return dx + dy
}

// Grid owns every entity. A cell holds nil or exactly one entity and the
// cell index is the entity's only position.
type Grid struct {
	Size  int
	Cells [][]*Entity // [Size][Size], indexed [y][x]
}

func NewGrid(size int) *Grid {
	g := &Grid{
		Size:  size,
		Cells: make([][]*Entity, size),
	}
	for i := range g.Cells {
		g.Cells[i] = make([]*Entity, size)
	}

	return g
}

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Size && p.Y >= 0 && p.Y < g.Size
}

func (g *Grid) IsEdge(p Point) bool {
	return p.X == 0 || p.Y == 0 || p.X == g.Size-1 || p.Y == g.Size-1
}

func (g *Grid) At(p Point) *Entity {
	if !g.InBounds(p) {
		return nil
	}

	return g.Cells[p.Y][p.X]
}

func (g *Grid) Occupied(p Point) bool {
	return g.At(p) != nil
}

func (g *Grid) Put(p Point, e *Entity) {
	mustInvariant(g.InBounds(p), "put out of bounds at %s", p)
	mustInvariant(g.Cells[p.Y][p.X] == nil, "cell %s already occupied", p)
	g.Cells[p.Y][p.X] = e
}

func (g *Grid) Remove(p Point) *Entity {
	if !g.InBounds(p) {
		return nil
	}

	e := g.Cells[p.Y][p.X]
	g.Cells[p.Y][p.X] = nil
	return e
}

func (g *Grid) Relocate(from, to Point) {
	if from == to {
		return
	}

	e := g.Remove(from)
	mustInvariant(e != nil, "relocate from empty cell %s", from)
	g.Put(to, e)
}

// Each visits occupied cells row by row
func (g *Grid) Each(fn func(p Point, e *Entity)) {
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			if e := g.Cells[y][x]; e != nil {
				fn(Point{X: x, Y: y}, e)
			}
		}
	}
}

// Find is a linear scan; positions are never cached on entities
func (g *Grid) Find(id uint32) (Point, *Entity, bool) {
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			if e := g.Cells[y][x]; e != nil && e.ID == id {
				return Point{X: x, Y: y}, e, true
			}
		}
	}

	return Point{}, nil, false
}

func mustInvariant(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("invariant violated: "+format, args...))
	}
}
