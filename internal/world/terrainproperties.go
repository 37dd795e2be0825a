package world

import (
	"github.com/Scrimzay/tacticsim/internal/rules"
)

// TerrainMap is the per-game terrain layer, row-major like the entity grid.
// Immutable once the generator returns it.
type TerrainMap struct {
	Size  int
	Tiles []rules.TerrainID
	rules *rules.Rules
}

func NewTerrainMap(size int, r *rules.Rules) *TerrainMap {
	// Zero value of TerrainID is plains
	return &TerrainMap{
		Size:  size,
		Tiles: make([]rules.TerrainID, size*size),
		rules: r,
	}
}

func (m *TerrainMap) InBounds(p Point) bool {
	return p.X >= 0 && p.X < m.Size && p.Y >= 0 && p.Y < m.Size
}

func (m *TerrainMap) ID(p Point) rules.TerrainID {
	return m.Tiles[p.Y*m.Size+p.X]
}

func (m *TerrainMap) set(p Point, id rules.TerrainID) {
	m.Tiles[p.Y*m.Size+p.X] = id
}

// At returns the full tile properties for a cell
func (m *TerrainMap) At(p Point) rules.Terrain {
	return m.rules.TerrainOf(m.ID(p))
}

func (m *TerrainMap) Impassable(p Point) bool {
	return m.rules.Impassable(m.At(p))
}

func (m *TerrainMap) MovementCost(p Point) float64 {
	return m.At(p).MovementCost
}

// Bytes is the canonical one-byte-per-cell encoding sent to clients
func (m *TerrainMap) Bytes() []byte {
	out := make([]byte, len(m.Tiles))
	for i, id := range m.Tiles {
		out[i] = byte(id)
	}

	return out
}

func (m *TerrainMap) Count(id rules.TerrainID) int {
	count := 0
	for _, t := range m.Tiles {
		if t == id {
			count++
		}
	}

	return count
}

// overwritable reports whether a feature pass may replace this tile
func overwritable(id rules.TerrainID) bool {
	switch id {
	case rules.TerrainPlains, rules.TerrainStreet:
		return true

	default:
		return false
	}
}
