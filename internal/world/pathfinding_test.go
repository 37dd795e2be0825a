package world

import (
	"testing"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

func TestReachCost(t *testing.T) {
	for _, tc := range []struct {
		name   string
		setup  func(g *Game)
		start  Point
		end    Point
		mode   OccupancyMode
		budget float64
		want   float64
		ok     bool
	}{
		{
			name:   "plains straight line",
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 4, Y: 1},
			budget: 10,
			want:   3,
			ok:     true,
		},
		{
			name: "street is cheaper",
			setup: func(g *Game) {
				for x := 2; x <= 4; x++ {
					g.Terrain.set(Point{X: x, Y: 1}, rules.TerrainStreet)
				}
			},
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 4, Y: 1},
			budget: 10,
			want:   1.5,
			ok:     true,
		},
		{
			name: "forest costs double",
			setup: func(g *Game) {
				g.Terrain.set(Point{X: 2, Y: 1}, rules.TerrainForest)
			},
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 3, Y: 1},
			budget: 10,
			want:   3,
			ok:     true,
		},
		{
			name:   "over budget",
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 4, Y: 1},
			budget: 2,
			ok:     false,
		},
		{
			name: "wall line splits the map",
			setup: func(g *Game) {
				for y := 0; y < g.Size(); y++ {
					g.Terrain.set(Point{X: 3, Y: y}, rules.TerrainWall)
				}
			},
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 5, Y: 1},
			budget: 100,
			ok:     false,
		},
		{
			name: "occupied destination blocks a move",
			setup: func(g *Game) {
				g.Grid.Put(Point{X: 2, Y: 1}, &Entity{ID: 50, Owner: "blue"})
			},
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 2, Y: 1},
			mode:   MoveSemantics,
			budget: 10,
			ok:     false,
		},
		{
			name: "occupied destination allowed for an attack",
			setup: func(g *Game) {
				g.Grid.Put(Point{X: 2, Y: 1}, &Entity{ID: 50, Owner: "blue"})
			},
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 2, Y: 1},
			mode:   AttackSemantics,
			budget: 10,
			want:   1,
			ok:     true,
		},
		{
			name: "occupied cells still block the way for attacks",
			setup: func(g *Game) {
				g.Grid.Put(Point{X: 1, Y: 0}, &Entity{ID: 50})
				g.Grid.Put(Point{X: 0, Y: 1}, &Entity{ID: 51})
				g.Grid.Put(Point{X: 2, Y: 1}, &Entity{ID: 52})
				g.Grid.Put(Point{X: 1, Y: 2}, &Entity{ID: 53})
			},
			start:  Point{X: 1, Y: 1},
			end:    Point{X: 3, Y: 1},
			mode:   AttackSemantics,
			budget: 100,
			ok:     false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t, 7, fixedRand{})
			if tc.setup != nil {
				tc.setup(g)
			}

			got, ok := ReachCost(g.Grid, g.Terrain, tc.start, tc.end, tc.mode, tc.budget)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v (cost %v)", tc.ok, ok, got)
			}
			if ok && got != tc.want {
				t.Fatalf("expected cost %v, got %v", tc.want, got)
			}
		})
	}
}

func TestShortestPathExcludesStart(t *testing.T) {
	g := newTestGame(t, 6, fixedRand{})
	start, end := Point{X: 0, Y: 0}, Point{X: 2, Y: 1}

	path, cost, ok := ShortestPath(g.Grid, g.Terrain, start, end, MoveSemantics, 10)
	if !ok || cost != 3 {
		t.Fatalf("expected a path of cost 3, got ok=%v cost=%v", ok, cost)
	}
	if len(path) != 3 || path[len(path)-1] != end {
		t.Fatalf("expected 3 steps ending at %s, got %v", end, path)
	}
	prev := start
	for _, p := range path {
		if Manhattan(prev, p) != 1 {
			t.Fatalf("expected orthogonal steps, got %s -> %s", prev, p)
		}
		prev = p
	}
}

func TestReachableSet(t *testing.T) {
	g := newTestGame(t, 5, fixedRand{})
	start := Point{X: 2, Y: 2}

	got := ReachableSet(g.Grid, g.Terrain, start, 1)
	want := []Point{{X: 2, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 2, Y: 3}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	g.Grid.Put(Point{X: 3, Y: 2}, &Entity{ID: 9})
	g.Terrain.set(Point{X: 2, Y: 1}, rules.TerrainForest)
	got = ReachableSet(g.Grid, g.Terrain, start, 1)
	if len(got) != 2 {
		t.Fatalf("expected occupied and too-costly cells to drop out, got %v", got)
	}
}

func TestReachableSetAgreesWithReachCost(t *testing.T) {
	r := rules.Default()
	m := GenerateMapSeeded(24, r, 11)
	g := New(r, m, fixedRand{}, nil)

	start := Point{X: -1, Y: 12}
	for x := 0; x < m.Size; x++ {
		if !m.Impassable(Point{X: x, Y: 12}) {
			start.X = x
			break
		}
	}
	if start.X < 0 {
		t.Fatalf("expected a passable cell on row 12")
	}
	g.Grid.Put(Point{X: start.X, Y: start.Y - 1}, &Entity{ID: 1})

	budget := 4.0
	inSet := map[Point]bool{}
	for _, p := range ReachableSet(g.Grid, g.Terrain, start, budget) {
		inSet[p] = true
		cost, ok := ReachCost(g.Grid, g.Terrain, start, p, MoveSemantics, budget)
		if !ok || cost > budget {
			t.Fatalf("highlighted %s but ReachCost says ok=%v cost=%v", p, ok, cost)
		}
	}

	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			p := Point{X: x, Y: y}
			if p == start || inSet[p] {
				continue
			}
			if _, ok := ReachCost(g.Grid, g.Terrain, start, p, MoveSemantics, budget); ok {
				t.Fatalf("ReachCost reaches %s but it is not highlighted", p)
			}
		}
	}
}

func TestHasLineOfSight(t *testing.T) {
	for _, tc := range []struct {
		name   string
		blocks []Point
		a, b   Point
		want   bool
	}{
		{name: "open plains", a: Point{X: 0, Y: 0}, b: Point{X: 4, Y: 3}, want: true},
		{name: "adjacent", a: Point{X: 1, Y: 1}, b: Point{X: 2, Y: 1}, want: true},
		{name: "forest in between", blocks: []Point{{X: 2, Y: 0}}, a: Point{X: 0, Y: 0}, b: Point{X: 4, Y: 0}, want: false},
		{name: "forest on the target", blocks: []Point{{X: 4, Y: 0}}, a: Point{X: 0, Y: 0}, b: Point{X: 4, Y: 0}, want: true},
		{name: "forest on the shooter", blocks: []Point{{X: 0, Y: 0}}, a: Point{X: 0, Y: 0}, b: Point{X: 4, Y: 0}, want: true},
		{name: "diagonal blocked", blocks: []Point{{X: 2, Y: 2}}, a: Point{X: 0, Y: 0}, b: Point{X: 4, Y: 4}, want: false},
		{name: "symmetric", blocks: []Point{{X: 2, Y: 2}}, a: Point{X: 4, Y: 4}, b: Point{X: 0, Y: 0}, want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t, 6, fixedRand{})
			for _, p := range tc.blocks {
				g.Terrain.set(p, rules.TerrainForest)
			}

			if got := HasLineOfSight(g.Terrain, tc.a, tc.b); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRelationOf(t *testing.T) {
	def := Point{X: 5, Y: 5}

	for _, tc := range []struct {
		attacker Point
		facing   rules.Direction
		want     Relation
	}{
		{Point{X: 5, Y: 4}, rules.North, Front},
		{Point{X: 6, Y: 5}, rules.North, Flank},
		{Point{X: 4, Y: 5}, rules.North, Flank},
		{Point{X: 5, Y: 6}, rules.North, Rear},
		{Point{X: 6, Y: 4}, rules.North, Flank},
		{Point{X: 5, Y: 1}, rules.North, Front},
		{Point{X: 8, Y: 5}, rules.East, Front},
		{Point{X: 2, Y: 5}, rules.East, Rear},
		{Point{X: 5, Y: 6}, rules.West, Flank},
	} {
		if got := RelationOf(tc.facing, def, tc.attacker); got != tc.want {
			t.Fatalf("facing %s, attacker at %s: expected %s, got %s", tc.facing, tc.attacker, tc.want, got)
		}
	}
}
