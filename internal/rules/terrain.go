package rules

import "fmt"

type TerrainID uint8

const (
	TerrainPlains   TerrainID = 0
	TerrainStreet   TerrainID = 1
	TerrainForest   TerrainID = 2
	TerrainWall     TerrainID = 3
	TerrainWater    TerrainID = 4
	TerrainHill     TerrainID = 5
	TerrainMountain TerrainID = 6
)

var terrainNames = map[TerrainID]string{
	TerrainPlains:   "plains",
	TerrainStreet:   "street",
	TerrainForest:   "forest",
	TerrainWall:     "wall",
	TerrainWater:    "water",
	TerrainHill:     "hill",
	TerrainMountain: "mountain",
}

// AllTerrain lists every terrain id in wire order
var AllTerrain = []TerrainID{
	TerrainPlains,
	TerrainStreet,
	TerrainForest,
	TerrainWall,
	TerrainWater,
	TerrainHill,
	TerrainMountain,
}

func (t TerrainID) String() string {
	if name, ok := terrainNames[t]; ok {
		return name
	}

	return fmt.Sprintf("terrain(%d)", uint8(t))
}

func (t TerrainID) MarshalText() ([]byte, error) {
	if _, ok := terrainNames[t]; !ok {
		return nil, fmt.Errorf("unknown terrain id %d", uint8(t))
	}

	return []byte(t.String()), nil
}

func (t *TerrainID) UnmarshalText(text []byte) error {
	for id, name := range terrainNames {
		if name == string(text) {
			*t = id
			return nil
		}
	}

	return fmt.Errorf("unknown terrain %q", string(text))
}

// Terrain is one row of the terrain table. Symbol and Color only matter to clients.
type Terrain struct {
	ID                TerrainID `yaml:"id" json:"id"`
	MovementCost      float64   `yaml:"movementCost" json:"movementCost" jsonschema:"minimum=0"`
	Height            int       `yaml:"height" json:"height"`
	DefenseBonus      int       `yaml:"defenseBonus" json:"defenseBonus" jsonschema:"description=Percent added to the defender's defence"`
	Cover             int       `yaml:"cover" json:"cover" jsonschema:"description=Percent mitigation against ranged attacks only"`
	BlocksLineOfSight bool      `yaml:"blocksLineOfSight" json:"blocksLineOfSight"`
	HighGround        bool      `yaml:"highGround" json:"highGround"`
	Elevated          bool      `yaml:"elevated" json:"elevated" jsonschema:"description=Impassable high terrain that rivers never overwrite"`
	Symbol            string    `yaml:"symbol" json:"symbol"`
	Color             string    `yaml:"color" json:"color"`
}
