package world

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

// this is for per-entity attributes
type Entity struct {
	ID    uint32
	Type  rules.UnitType
	Name  string
	Owner string

	// Copied from the unit template at spawn, never changed afterwards
	Attack         int
	Defence        int
	MaxHealth      int
	Speed          int
	Range          int
	IsRanged       bool
	Accuracy       int
	HasShield      bool
	ShieldBonus    int
	ChargeBonus    int
	Abilities      mapset.Set[rules.Ability]
	IsMeleeCapable bool
	IsCavalry      bool
	InitialMorale  int
	IsCommander    bool
	Cost           int

	CurrentHealth     int
	RawMorale         int // accumulates battle events, clamped only when read
	CurrentMorale     int
	MoraleBreakdown   []MoraleContribution
	RemainingMovement float64
	HasAttacked       bool
	Facing            rules.Direction
	IsFleeing         bool
}

func NewEntity(id uint32, tmpl rules.UnitTemplate, owner string, facing rules.Direction) *Entity {
	return &Entity{
		ID:             id,
		Type:           tmpl.Type,
		Name:           tmpl.Name,
		Owner:          owner,
		Attack:         tmpl.Attack,
		Defence:        tmpl.Defence,
		MaxHealth:      tmpl.MaxHealth,
		Speed:          tmpl.Speed,
		Range:          tmpl.Range,
		IsRanged:       tmpl.IsRanged,
		Accuracy:       tmpl.Accuracy,
		HasShield:      tmpl.HasShield,
		ShieldBonus:    tmpl.ShieldBonus,
		ChargeBonus:    tmpl.ChargeBonus,
		Abilities:      tmpl.AbilitySet(),
		IsMeleeCapable: tmpl.IsMeleeCapable,
		IsCavalry:      tmpl.IsCavalry,
		InitialMorale:  tmpl.InitialMorale,
		IsCommander:    tmpl.IsCommander,
		Cost:           tmpl.Cost,

		CurrentHealth: tmpl.MaxHealth,
		RawMorale:     tmpl.InitialMorale,
		CurrentMorale: tmpl.InitialMorale,
		Facing:        facing,
	}
}

func (e *Entity) HasAbility(a rules.Ability) bool {
	return e.Abilities.Has(a)
}

// Moved is true once any movement was spent this turn
func (e *Entity) Moved() bool {
	return e.RemainingMovement < float64(e.Speed)
}

func (e *Entity) HostileTo(other *Entity) bool {
	return e.Owner != other.Owner
}

func (e *Entity) resetForTurn() {
	e.RemainingMovement = float64(e.Speed)
	e.HasAttacked = false
}

func (e *Entity) exhaust() {
	e.RemainingMovement = 0
	e.HasAttacked = true
}
