package world

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

type EventKind string

const (
	EventSpawn    EventKind = "spawn"
	EventMove     EventKind = "move"
	EventRotate   EventKind = "rotate"
	EventDamage   EventKind = "damage"
	EventSplash   EventKind = "splash"
	EventDeath    EventKind = "death"
	EventFleeing  EventKind = "fleeing"
	EventRallied  EventKind = "rallied"
	EventFled     EventKind = "fled"
	EventTrapped  EventKind = "trapped"
	EventTurnOver EventKind = "turn_over"
)

type Event struct {
	Kind        EventKind `json:"kind"`
	UnitID      uint32    `json:"unitId,omitempty"`
	SourceID    uint32    `json:"sourceId,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	At          Point     `json:"at"`
	From        *Point    `json:"from,omitempty"`
	Amount      int       `json:"amount,omitempty"`
	Health      int       `json:"health"`
	Depth       int       `json:"depth,omitempty"`
	Retaliation bool      `json:"retaliation,omitempty"`
}

type CombatResult struct {
	Events []Event  `json:"events"`
	Logs   []string `json:"logs"`
}

func (r *CombatResult) emit(ev Event, format string, args ...any) {
	r.Events = append(r.Events, ev)
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

// strike is one queued damage instance: the primary attack or its retaliation
type strike struct {
	attacker    *Entity
	from        Point
	defender    *Entity
	at          Point
	retaliation bool
}

// maxStrikeDepth bounds an attack chain: the attack itself plus one retaliation
const maxStrikeDepth = 2

// ResolveAttack resolves one attack into primary damage, splash and at most one
// retaliation. Caller-side bookkeeping (HasAttacked, movement) is not done here.
func (g *Game) ResolveAttack(attacker *Entity, from Point, defender *Entity, at Point) CombatResult {
	var res CombatResult
	queue := []strike{{attacker: attacker, from: from, defender: defender, at: at}}

	for depth := 1; len(queue) > 0; depth++ {
		mustInvariant(depth <= maxStrikeDepth, "attack chain depth %d", depth)
		s := queue[0]
		queue = queue[1:]

		if next, ok := g.resolveStrike(s, depth, &res); ok {
			queue = append(queue, next)
		}
	}

	return res
}

func (g *Game) resolveStrike(s strike, depth int, res *CombatResult) (strike, bool) {
	dmg := g.Damage(s.attacker, s.from, s.defender, s.at, false)

	s.defender.RawMorale -= dmg
	if !(s.retaliation && !s.defender.IsMeleeCapable) {
		s.attacker.RawMorale += dmg / 2
	}

	died := g.applyDamage(s.defender, dmg)
	from := s.from
	res.emit(Event{
		Kind:        EventDamage,
		UnitID:      s.defender.ID,
		SourceID:    s.attacker.ID,
		Owner:       s.defender.Owner,
		At:          s.at,
		From:        &from,
		Amount:      dmg,
		Health:      s.defender.CurrentHealth,
		Depth:       depth,
		Retaliation: s.retaliation,
	}, "%s #%d hits %s #%d for %d (%d/%d left)",
		s.attacker.Name, s.attacker.ID, s.defender.Name, s.defender.ID, dmg, s.defender.CurrentHealth, s.defender.MaxHealth)

	if died {
		g.killAt(s.defender, s.at, res)
	}

	if s.attacker.IsRanged && !s.retaliation {
		g.splash(s.attacker, s.from, s.at, res)
	}

	if s.retaliation || died || !s.defender.IsMeleeCapable || Manhattan(s.from, s.at) != 1 {
		return strike{}, false
	}
	// Self-splash may have killed the shooter
	if g.Grid.At(s.from) != s.attacker {
		return strike{}, false
	}

	return strike{
		attacker:    s.defender,
		from:        s.at,
		defender:    s.attacker,
		at:          s.from,
		retaliation: true,
	}, true
}

// splash hits every occupied neighbour of the target cell, the shooter's own included
func (g *Game) splash(attacker *Entity, from, target Point, res *CombatResult) {
	for _, d := range rules.Directions {
		p := target.Step(d)
		victim := g.Grid.At(p)
		if victim == nil {
			continue
		}

		dmg := g.Damage(attacker, from, victim, p, true)
		victim.RawMorale -= dmg
		died := g.applyDamage(victim, dmg)
		src := from
		res.emit(Event{
			Kind:     EventSplash,
			UnitID:   victim.ID,
			SourceID: attacker.ID,
			Owner:    victim.Owner,
			At:       p,
			From:     &src,
			Amount:   dmg,
			Health:   victim.CurrentHealth,
		}, "splash from %s #%d hits %s #%d for %d", attacker.Name, attacker.ID, victim.Name, victim.ID, dmg)

		if died {
			g.killAt(victim, p, res)
		}
	}
}

// applyDamage lowers health, storing 0 rather than a negative value. True on death.
func (g *Game) applyDamage(e *Entity, dmg int) bool {
	mustInvariant(e.CurrentHealth > 0, "damaging dead entity #%d", e.ID)
	e.CurrentHealth -= dmg
	if e.CurrentHealth > e.MaxHealth {
		e.CurrentHealth = e.MaxHealth
	}
	if e.CurrentHealth <= 0 {
		e.CurrentHealth = 0
		return true
	}

	return false
}

func (g *Game) killAt(e *Entity, p Point, res *CombatResult) {
	removed := g.Grid.Remove(p)
	mustInvariant(removed == e, "dead entity #%d not at %s", e.ID, p)

	res.emit(Event{
		Kind:   EventDeath,
		UnitID: e.ID,
		Owner:  e.Owner,
		At:     p,
	}, "%s #%d (%s) dies at %s", e.Name, e.ID, e.Owner, p)
	g.log.Info("unit died",
		zap.Uint32("unit", e.ID),
		zap.String("owner", e.Owner),
		zap.Int("x", p.X),
		zap.Int("y", p.Y))

	g.ApplyDeathMoraleEffects(p, e.Owner)
}

// BaseDamage is the damage before the random factor and flooring
func (g *Game) BaseDamage(attacker *Entity, from Point, defender *Entity, at Point, isSplash bool) float64 {
	c := g.Rules.Combat
	melee := !attacker.IsRanged && !isSplash
	rel := RelationOf(defender.Facing, at, from)

	shield := 0
	if defender.HasShield && rel == Front {
		shield = defender.ShieldBonus
	}

	tile := g.Terrain.At(at)
	terrainDef := tile.DefenseBonus
	if attacker.IsRanged {
		terrainDef += tile.Cover
	}

	highGround := 0
	if g.Terrain.At(from).HighGround {
		highGround = c.HighGroundAttackBonus
	}

	positional, charge, ability := 0, 0, 0
	if melee {
		switch rel {
		case Flank:
			positional = c.FlankBonus

		case Rear:
			positional = c.RearBonus
		}

		if attacker.Moved() {
			charge = attacker.ChargeBonus
		}

		if attacker.HasAbility(rules.AbilityAntiCavalry) && defender.IsCavalry {
			ability = c.AntiCavalryBonus
		}
	}

	healthFactor := c.MinHealthFactor + float64(attacker.CurrentHealth)/float64(attacker.MaxHealth)*(1-c.MinHealthFactor)
	defenseFactor := math.Max(c.MaxDefenseReduction, 1-float64(defender.Defence+shield+terrainDef)/100)

	base := float64(attacker.Attack+highGround+positional+charge+ability) * healthFactor * defenseFactor
	if attacker.IsRanged {
		if isSplash {
			base *= float64(100-attacker.Accuracy) / 100
		} else {
			base *= float64(attacker.Accuracy) / 100
		}
	}

	return base
}

// Damage draws one random factor and floors the result
func (g *Game) Damage(attacker *Entity, from Point, defender *Entity, at Point, isSplash bool) int {
	c := g.Rules.Combat
	base := g.BaseDamage(attacker, from, defender, at, isSplash)
	dmg := int(math.Floor(base * (c.RandomBase + g.rng.Float64()*c.RandomVariance)))
	if dmg < 0 {
		dmg = 0
	}

	return dmg
}
