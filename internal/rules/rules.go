package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

type Combat struct {
	HighGroundAttackBonus  int     `yaml:"highGroundAttackBonus" json:"highGroundAttackBonus"`
	FlankBonus             int     `yaml:"flankBonus" json:"flankBonus"`
	RearBonus              int     `yaml:"rearBonus" json:"rearBonus"`
	AntiCavalryBonus       int     `yaml:"antiCavalryBonus" json:"antiCavalryBonus"`
	MinHealthFactor        float64 `yaml:"minHealthFactor" json:"minHealthFactor" jsonschema:"minimum=0,maximum=1"`
	MaxDefenseReduction    float64 `yaml:"maxDefenseReduction" json:"maxDefenseReduction" jsonschema:"minimum=0,maximum=1,description=Floor of the defence factor"`
	RandomBase             float64 `yaml:"randomBase" json:"randomBase"`
	RandomVariance         float64 `yaml:"randomVariance" json:"randomVariance"`
	RangedNeedsLineOfSight bool    `yaml:"rangedNeedsLineOfSight" json:"rangedNeedsLineOfSight"`
}

type Morale struct {
	Max                     int `yaml:"max" json:"max"`
	Threshold               int `yaml:"threshold" json:"threshold" jsonschema:"minimum=1"`
	CommanderInfluenceRange int `yaml:"commanderInfluenceRange" json:"commanderInfluenceRange"`
	AllyBonus               int `yaml:"allyBonus" json:"allyBonus"`
	SwarmPenalty            int `yaml:"swarmPenalty" json:"swarmPenalty"`
	FlankPenalty            int `yaml:"flankPenalty" json:"flankPenalty"`
	RearPenalty             int `yaml:"rearPenalty" json:"rearPenalty"`
	CommanderBonus          int `yaml:"commanderBonus" json:"commanderBonus"`
	CommanderAuraBonus      int `yaml:"commanderAuraBonus" json:"commanderAuraBonus"`
	DeathWitnessShift       int `yaml:"deathWitnessShift" json:"deathWitnessShift"`
}

type StreetPass struct {
	Base         int     `yaml:"base" json:"base"`
	Variance     int     `yaml:"variance" json:"variance"`
	LengthFactor float64 `yaml:"lengthFactor" json:"lengthFactor"`
	ContinueBias float64 `yaml:"continueBias" json:"continueBias"`
	TurnBias     float64 `yaml:"turnBias" json:"turnBias"`
}

type WallPass struct {
	Base      float64 `yaml:"base" json:"base"`
	Density   float64 `yaml:"density" json:"density"`
	MinLength int     `yaml:"minLength" json:"minLength"`
	MaxLength int     `yaml:"maxLength" json:"maxLength"`
}

// BlobPass drives the frontier-growth passes (forests, mountains)
type BlobPass struct {
	Base    float64 `yaml:"base" json:"base"`
	Density float64 `yaml:"density" json:"density"`
	MinSize int     `yaml:"minSize" json:"minSize"`
	MaxSize int     `yaml:"maxSize" json:"maxSize"`
}

type RiverPass struct {
	Density      float64 `yaml:"density" json:"density"`
	LengthFactor float64 `yaml:"lengthFactor" json:"lengthFactor"`
}

type MapGen struct {
	SpawnZoneRows int        `yaml:"spawnZoneRows" json:"spawnZoneRows"`
	ReferenceArea float64    `yaml:"referenceArea" json:"referenceArea"`
	Streets       StreetPass `yaml:"streets" json:"streets"`
	Walls         WallPass   `yaml:"walls" json:"walls"`
	Forests       BlobPass   `yaml:"forests" json:"forests"`
	Mountains     BlobPass   `yaml:"mountains" json:"mountains"`
	Rivers        RiverPass  `yaml:"rivers" json:"rivers"`
}

// Rules is the immutable configuration shared by every game in the process
type Rules struct {
	ImpassableThreshold float64        `yaml:"impassableThreshold" json:"impassableThreshold"`
	StartingGold        int            `yaml:"startingGold" json:"startingGold"`
	Terrain             []Terrain      `yaml:"terrain" json:"terrain"`
	Units               []UnitTemplate `yaml:"units" json:"units"`
	Combat              Combat         `yaml:"combat" json:"combat"`
	Morale              Morale         `yaml:"morale" json:"morale"`
	MapGen              MapGen         `yaml:"mapgen" json:"mapgen"`

	terrainByID map[TerrainID]Terrain
	unitByType  map[UnitType]UnitTemplate
}

func Default() *Rules {
	r, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules invalid: %v", err))
	}

	return r
}

func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}

	return r, nil
}

func Parse(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	if err := r.index(); err != nil {
		return nil, err
	}

	return &r, nil
}

func (r *Rules) index() error {
	var errs []error

	r.terrainByID = make(map[TerrainID]Terrain, len(r.Terrain))
	for _, t := range r.Terrain {
		if _, dup := r.terrainByID[t.ID]; dup {
			errs = append(errs, fmt.Errorf("terrain %s defined twice", t.ID))
		}
		if t.MovementCost < 0 {
			errs = append(errs, fmt.Errorf("terrain %s has negative movement cost", t.ID))
		}
		r.terrainByID[t.ID] = t
	}

	// Map generation writes every one of these
	for _, id := range AllTerrain {
		if _, ok := r.terrainByID[id]; !ok {
			errs = append(errs, fmt.Errorf("terrain %s missing", id))
		}
	}

	r.unitByType = make(map[UnitType]UnitTemplate, len(r.Units))
	for _, u := range r.Units {
		if _, dup := r.unitByType[u.Type]; dup {
			errs = append(errs, fmt.Errorf("unit %s defined twice", u.Type))
		}
		if u.MaxHealth <= 0 {
			errs = append(errs, fmt.Errorf("unit %s needs positive maxHealth", u.Type))
		}
		if u.Range < 1 {
			errs = append(errs, fmt.Errorf("unit %s needs range >= 1", u.Type))
		}
		r.unitByType[u.Type] = u
	}

	if r.ImpassableThreshold <= 0 {
		errs = append(errs, errors.New("impassableThreshold must be positive"))
	}
	if r.Morale.Threshold <= 0 {
		errs = append(errs, errors.New("morale threshold must be positive"))
	}

	return errors.Join(errs...)
}

// TerrainOf panics on ids absent from the table; Parse guarantees all are present
func (r *Rules) TerrainOf(id TerrainID) Terrain {
	t, ok := r.terrainByID[id]
	if !ok {
		panic(fmt.Sprintf("terrain %s not in rules", id))
	}

	return t
}

func (r *Rules) Unit(typ UnitType) (UnitTemplate, bool) {
	u, ok := r.unitByType[typ]
	return u, ok
}

func (r *Rules) Impassable(t Terrain) bool {
	return t.MovementCost >= r.ImpassableThreshold
}
