package world

import (
	"math"
	"sort"

	"github.com/zyedidia/generic/heap"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

// OccupancyMode says whether an occupied destination may terminate a search
type OccupancyMode uint8

const (
	// MoveSemantics treats every occupied cell, the destination included, as blocking
	MoveSemantics OccupancyMode = iota
	// AttackSemantics lets the search end on an occupied destination
	AttackSemantics
)

type frontierNode struct {
	p    Point
	cost float64
}

type dijkstra struct {
	grid    *Grid
	terrain *TerrainMap
	dist    map[Point]float64
	prev    map[Point]Point
}

func newDijkstra(grid *Grid, terrain *TerrainMap) *dijkstra {
	return &dijkstra{
		grid:    grid,
		terrain: terrain,
		dist:    make(map[Point]float64),
		prev:    make(map[Point]Point),
	}
}

func (d *dijkstra) traversable(p, end Point, mode OccupancyMode, hasEnd bool) bool {
	if !d.grid.InBounds(p) || d.terrain.Impassable(p) {
		return false
	}
	if !d.grid.Occupied(p) {
		return true
	}

	return hasEnd && mode == AttackSemantics && p == end
}

// run expands cheapest-first from start. With hasEnd it stops as soon as end is
// expanded. Nothing costlier than budget is ever queued.
func (d *dijkstra) run(start, end Point, hasEnd bool, mode OccupancyMode, budget float64) bool {
	frontier := heap.New[frontierNode](func(a, b frontierNode) bool {
		return a.cost < b.cost
	})
	d.dist[start] = 0
	frontier.Push(frontierNode{p: start, cost: 0})
	done := make(map[Point]bool)

	for frontier.Size() > 0 {
		cur, _ := frontier.Pop()
		if done[cur.p] {
			continue
		}
		done[cur.p] = true

		if hasEnd && cur.p == end {
			return true
		}

		for _, dir := range rules.Directions {
			n := cur.p.Step(dir)
			if done[n] || !d.traversable(n, end, mode, hasEnd) {
				continue
			}

			cost := cur.cost + d.terrain.MovementCost(n)
			if cost > budget {
				continue
			}
			if old, seen := d.dist[n]; seen && old <= cost {
				continue
			}
			d.dist[n] = cost
			d.prev[n] = cur.p
			frontier.Push(frontierNode{p: n, cost: cost})
		}
	}

	return false
}

// ReachCost returns the cheapest movement cost from start to end, or false when
// end is unreachable within budget.
func ReachCost(grid *Grid, terrain *TerrainMap, start, end Point, mode OccupancyMode, budget float64) (float64, bool) {
	_, cost, ok := ShortestPath(grid, terrain, start, end, mode, budget)
	return cost, ok
}

// ShortestPath is ReachCost plus the cells stepped through, start excluded
func ShortestPath(grid *Grid, terrain *TerrainMap, start, end Point, mode OccupancyMode, budget float64) ([]Point, float64, bool) {
	if !grid.InBounds(start) || !grid.InBounds(end) {
		return nil, 0, false
	}
	if start == end {
		return nil, 0, true
	}

	d := newDijkstra(grid, terrain)
	if !d.run(start, end, true, mode, budget) {
		return nil, 0, false
	}

	var path []Point
	for p := end; p != start; p = d.prev[p] {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, d.dist[end], true
}

// ReachableSet lists every empty cell a move from start could end on within
// budget, sorted row by row. Uses the same cost rules as Move.
func ReachableSet(grid *Grid, terrain *TerrainMap, start Point, budget float64) []Point {
	if !grid.InBounds(start) || budget < 0 || math.IsNaN(budget) {
		return nil
	}

	d := newDijkstra(grid, terrain)
	d.run(start, Point{}, false, MoveSemantics, budget)

	out := make([]Point, 0, len(d.dist))
	for p := range d.dist {
		if p != start {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})

	return out
}
