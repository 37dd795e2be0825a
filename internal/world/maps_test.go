package world

import (
	"bytes"
	"testing"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

func TestGenerateMapDeterministic(t *testing.T) {
	r := rules.Default()

	for _, size := range []int{12, 20, 40, 64} {
		a := GenerateMapSeeded(size, r, 42)
		b := GenerateMapSeeded(size, r, 42)
		if !bytes.Equal(a.Bytes(), b.Bytes()) {
			t.Fatalf("size %d: expected identical maps for the same seed", size)
		}
	}

	a := GenerateMapSeeded(40, r, 1)
	b := GenerateMapSeeded(40, r, 2)
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("expected different seeds to give different maps")
	}
}

func TestGenerateMapKeepsSpawnZonesClear(t *testing.T) {
	r := rules.Default()
	rows := r.MapGen.SpawnZoneRows

	for seed := int64(0); seed < 20; seed++ {
		size := 20 + int(seed)
		m := GenerateMapSeeded(size, r, seed)

		for x := 0; x < size; x++ {
			for y := 0; y < rows; y++ {
				for _, p := range []Point{{X: x, Y: y}, {X: x, Y: size - 1 - y}} {
					if id := m.ID(p); id != rules.TerrainPlains {
						t.Fatalf("seed %d: expected plains in spawn zone at %s, got %s", seed, p, id)
					}
				}
			}
		}
	}
}

func TestGenerateMapPlacesFeatures(t *testing.T) {
	r := rules.Default()
	m := GenerateMapSeeded(40, r, 7)

	if m.Count(rules.TerrainWater) == 0 {
		t.Fatalf("expected at least one river")
	}
	if m.Count(rules.TerrainPlains) == len(m.Tiles) {
		t.Fatalf("expected generated features on a 40x40 map")
	}
}

func TestGenerateMapTooSmallIsAllPlains(t *testing.T) {
	r := rules.Default()
	size := 2*r.MapGen.SpawnZoneRows - 1
	m := GenerateMapSeeded(size, r, 3)

	if got := m.Count(rules.TerrainPlains); got != size*size {
		t.Fatalf("expected %d plains cells, got %d", size*size, got)
	}
}

func TestMountainsAreRingedByHillsOrFeatures(t *testing.T) {
	r := rules.Default()

	for seed := int64(0); seed < 10; seed++ {
		m := GenerateMapSeeded(40, r, seed)
		for i, id := range m.Tiles {
			if id != rules.TerrainMountain {
				continue
			}
			p := Point{X: i % m.Size, Y: i / m.Size}
			for _, d := range rules.Directions {
				n := p.Step(d)
				if !m.InBounds(n) || n.Y < r.MapGen.SpawnZoneRows || n.Y > m.Size-r.MapGen.SpawnZoneRows-1 {
					continue
				}
				// Rivers may still cut through a hill ring afterwards
				if m.ID(n) == rules.TerrainPlains {
					t.Fatalf("seed %d: mountain at %s borders bare plains at %s", seed, p, n)
				}
			}
		}
	}
}
