package world

import (
	"math"
	"math/rand"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

// mapGen carries the per-generation state shared by the passes
type mapGen struct {
	m         *TerrainMap
	cfg       rules.MapGen
	rng       Rand
	size      int
	minY      int // first row outside the top spawn zone
	maxY      int // last row outside the bottom spawn zone
	areaScale float64
}

// GenerateMapSeeded is GenerateMap with a fresh source, so equal seeds give equal maps
func GenerateMapSeeded(size int, r *rules.Rules, seed int64) *TerrainMap {
	return GenerateMap(size, r, rand.New(rand.NewSource(seed)))
}

// GenerateMap overwrites a plains grid with streets, walls, forests, mountains
// and rivers, in that order. Rivers go last so nothing overwrites water.
func GenerateMap(size int, r *rules.Rules, rng Rand) *TerrainMap {
	m := NewTerrainMap(size, r)

	cfg := r.MapGen
	gen := &mapGen{
		m:    m,
		cfg:  cfg,
		rng:  rng,
		size: size,
		minY: cfg.SpawnZoneRows,
		maxY: size - cfg.SpawnZoneRows - 1,
	}
	if gen.maxY < gen.minY || size <= 0 {
		return m
	}

	ref := cfg.ReferenceArea
	if ref <= 0 {
		ref = float64(size * size)
	}
	gen.areaScale = float64(size*size) / ref

	gen.streets()
	gen.walls()
	gen.forests()
	gen.mountains()
	gen.rivers()

	return m
}

func (g *mapGen) inZone(p Point) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= g.minY && p.Y <= g.maxY
}

func (g *mapGen) randomZonePoint() Point {
	return Point{
		X: g.rng.Intn(g.size),
		Y: g.minY + g.rng.Intn(g.maxY-g.minY+1),
	}
}

func (g *mapGen) scaled(base, density float64) int {
	return int(math.Round(base * g.areaScale * density))
}

func (g *mapGen) randRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}

	return lo + g.rng.Intn(hi-lo+1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

// === Streets: biased walks along one primary axis ===
func (g *mapGen) streets() {
	sc := g.cfg.Streets
	base := sc.Base
	if sc.Variance > 0 {
		base += g.rng.Intn(sc.Variance + 1)
	}
	count := int(math.Round(float64(base) * math.Sqrt(g.areaScale)))
	steps := int(float64(g.size) * sc.LengthFactor)

	for i := 0; i < count; i++ {
		p := g.randomZonePoint()
		horizontal := g.rng.Intn(2) == 0
		sign := 1
		if g.rng.Intn(2) == 0 {
			sign = -1
		}

		for s := 0; s < steps; s++ {
			if g.inZone(p) {
				g.m.set(p, rules.TerrainStreet)
			}

			roll := g.rng.Float64()
			switch {
			case roll < sc.ContinueBias:
				if horizontal {
					p.X += sign
				} else {
					p.Y += sign
				}

			case roll < sc.ContinueBias+sc.TurnBias:
				turn := 1
				if g.rng.Intn(2) == 0 {
					turn = -1
				}
				if horizontal {
					p.Y += turn
				} else {
					p.X += turn
				}
			}

			p.X = clamp(p.X, 0, g.size-1)
			p.Y = clamp(p.Y, 0, g.size-1)
		}
	}
}

// === Walls: straight segments over plains/street ===
func (g *mapGen) walls() {
	wc := g.cfg.Walls
	count := g.scaled(wc.Base, wc.Density)

	for i := 0; i < count; i++ {
		p := g.randomZonePoint()
		length := g.randRange(wc.MinLength, wc.MaxLength)
		dir := rules.East
		if g.rng.Intn(2) == 0 {
			dir = rules.South
		}

		for s := 0; s < length; s++ {
			if !g.inZone(p) {
				break
			}
			if overwritable(g.m.ID(p)) {
				g.m.set(p, rules.TerrainWall)
			}
			p = p.Step(dir)
		}
	}
}

// grow runs randomized frontier growth from seed, converting up to target
// plains/street cells to id. Returns the converted cells.
func (g *mapGen) grow(seed Point, target int, id rules.TerrainID) []Point {
	var placed []Point
	open := []Point{seed}
	seen := map[Point]bool{seed: true}

	for len(open) > 0 && len(placed) < target {
		i := g.rng.Intn(len(open))
		p := open[i]
		open[i] = open[len(open)-1]
		open = open[:len(open)-1]

		if !overwritable(g.m.ID(p)) {
			continue
		}
		g.m.set(p, id)
		placed = append(placed, p)

		for _, d := range rules.Directions {
			n := p.Step(d)
			if g.inZone(n) && !seen[n] {
				seen[n] = true
				open = append(open, n)
			}
		}
	}

	return placed
}

// === Forests ===
func (g *mapGen) forests() {
	fc := g.cfg.Forests
	count := g.scaled(fc.Base, fc.Density)

	for i := 0; i < count; i++ {
		g.grow(g.randomZonePoint(), g.randRange(fc.MinSize, fc.MaxSize), rules.TerrainForest)
	}
}

// === Mountains: elevated cores ringed by hills ===
func (g *mapGen) mountains() {
	mc := g.cfg.Mountains
	count := g.scaled(mc.Base, mc.Density)

	for i := 0; i < count; i++ {
		core := g.grow(g.randomZonePoint(), g.randRange(mc.MinSize, mc.MaxSize), rules.TerrainMountain)
		for _, p := range core {
			for _, d := range rules.Directions {
				n := p.Step(d)
				if g.inZone(n) && g.m.ID(n) == rules.TerrainPlains {
					g.m.set(n, rules.TerrainHill)
				}
			}
		}
	}
}

// === Rivers: unbiased walks, never over elevated terrain ===
func (g *mapGen) rivers() {
	rc := g.cfg.Rivers
	count := int(math.Round(g.areaScale * rc.Density))
	if count < 1 {
		count = 1
	}
	steps := int(float64(g.size) * rc.LengthFactor)

	for i := 0; i < count; i++ {
		p := g.randomZonePoint()
		for s := 0; s < steps; s++ {
			if !g.m.At(p).Elevated {
				g.m.set(p, rules.TerrainWater)
			}

			d := rules.Directions[g.rng.Intn(len(rules.Directions))]
			n := p.Step(d)
			n.X = clamp(n.X, 0, g.size-1)
			n.Y = clamp(n.Y, g.minY, g.maxY)
			p = n
		}
	}
}
