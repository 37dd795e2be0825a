package rules

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

type UnitType uint8

const (
	UnitInfantry UnitType = iota + 1
	UnitSpearman
	UnitShieldbearer
	UnitArcher
	UnitCrossbowman
	UnitLightCavalry
	UnitHeavyCavalry
	UnitCommander
)

var unitNames = map[UnitType]string{
	UnitInfantry:     "infantry",
	UnitSpearman:     "spearman",
	UnitShieldbearer: "shieldbearer",
	UnitArcher:       "archer",
	UnitCrossbowman:  "crossbowman",
	UnitLightCavalry: "light_cavalry",
	UnitHeavyCavalry: "heavy_cavalry",
	UnitCommander:    "commander",
}

func (u UnitType) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}

	return fmt.Sprintf("unit(%d)", uint8(u))
}

func (u UnitType) MarshalText() ([]byte, error) {
	if _, ok := unitNames[u]; !ok {
		return nil, fmt.Errorf("unknown unit type %d", uint8(u))
	}

	return []byte(u.String()), nil
}

func (u *UnitType) UnmarshalText(text []byte) error {
	for typ, name := range unitNames {
		if name == string(text) {
			*u = typ
			return nil
		}
	}

	return fmt.Errorf("unknown unit type %q", string(text))
}

type Ability uint8

const (
	AbilityAntiCavalry Ability = iota + 1
)

var abilityNames = map[Ability]string{
	AbilityAntiCavalry: "anti_cavalry",
}

func (a Ability) String() string {
	if name, ok := abilityNames[a]; ok {
		return name
	}

	return fmt.Sprintf("ability(%d)", uint8(a))
}

func (a Ability) MarshalText() ([]byte, error) {
	if _, ok := abilityNames[a]; !ok {
		return nil, fmt.Errorf("unknown ability %d", uint8(a))
	}

	return []byte(a.String()), nil
}

func (a *Ability) UnmarshalText(text []byte) error {
	for ab, name := range abilityNames {
		if name == string(text) {
			*a = ab
			return nil
		}
	}

	return fmt.Errorf("unknown ability %q", string(text))
}

// UnitTemplate is the static stat block a spawned entity copies
type UnitTemplate struct {
	Type           UnitType  `yaml:"type" json:"type"`
	Name           string    `yaml:"name" json:"name"`
	Attack         int       `yaml:"attack" json:"attack" jsonschema:"minimum=0"`
	Defence        int       `yaml:"defence" json:"defence" jsonschema:"minimum=0,maximum=100"`
	MaxHealth      int       `yaml:"maxHealth" json:"maxHealth" jsonschema:"minimum=1"`
	Speed          int       `yaml:"speed" json:"speed" jsonschema:"minimum=0"`
	Range          int       `yaml:"range" json:"range" jsonschema:"minimum=1"`
	IsRanged       bool      `yaml:"isRanged" json:"isRanged"`
	Accuracy       int       `yaml:"accuracy" json:"accuracy" jsonschema:"minimum=0,maximum=100"`
	HasShield      bool      `yaml:"hasShield" json:"hasShield"`
	ShieldBonus    int       `yaml:"shieldBonus" json:"shieldBonus"`
	ChargeBonus    int       `yaml:"chargeBonus" json:"chargeBonus"`
	Abilities      []Ability `yaml:"abilities" json:"abilities,omitempty"`
	IsMeleeCapable bool      `yaml:"isMeleeCapable" json:"isMeleeCapable"`
	IsCavalry      bool      `yaml:"isCavalry" json:"isCavalry"`
	InitialMorale  int       `yaml:"initialMorale" json:"initialMorale"`
	IsCommander    bool      `yaml:"isCommander" json:"isCommander"`
	Cost           int       `yaml:"cost" json:"cost" jsonschema:"minimum=0"`
}

// Fresh set per call so entities never share ability storage
func (t UnitTemplate) AbilitySet() mapset.Set[Ability] {
	set := mapset.New[Ability]()
	for _, a := range t.Abilities {
		set.Put(a)
	}

	return set
}
