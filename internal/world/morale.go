package world

import (
	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

type MoraleSource string

const (
	MoraleBase          MoraleSource = "base"
	MoraleBattle        MoraleSource = "battle_events"
	MoraleAllies        MoraleSource = "adjacent_allies"
	MoraleSwarmed       MoraleSource = "swarmed"
	MoraleFlanked       MoraleSource = "flanked"
	MoraleRear          MoraleSource = "rear_attacked"
	MoraleCommander     MoraleSource = "commander"
	MoraleCommanderAura MoraleSource = "commander_aura"
)

type MoraleContribution struct {
	Source MoraleSource `json:"source"`
	Value  int          `json:"value"`
}

// RecomputeMorale derives CurrentMorale and its breakdown for the entity at p.
// Only the total feeds decisions; the breakdown is for display.
func (g *Game) RecomputeMorale(e *Entity, p Point) {
	mc := g.Rules.Morale
	breakdown := []MoraleContribution{{Source: MoraleBase, Value: e.InitialMorale}}
	total := e.InitialMorale

	add := func(src MoraleSource, v int) {
		breakdown = append(breakdown, MoraleContribution{Source: src, Value: v})
		total += v
	}

	raw := e.RawMorale
	if raw > mc.Max {
		raw = mc.Max
	}
	if battle := raw - e.InitialMorale; battle != 0 {
		add(MoraleBattle, battle)
	}

	allies, enemies, flankers, rear := 0, 0, 0, 0
	for _, d := range rules.Directions {
		n := p.Step(d)
		other := g.Grid.At(n)
		if other == nil || other.IsFleeing {
			continue
		}
		if !other.HostileTo(e) {
			allies++
			continue
		}

		enemies++
		switch RelationOf(e.Facing, p, n) {
		case Flank:
			flankers++

		case Rear:
			rear++
		}
	}

	if allies > 0 {
		add(MoraleAllies, allies*mc.AllyBonus)
	}
	if enemies > 1 {
		add(MoraleSwarmed, -mc.SwarmPenalty*(enemies-1))
	}
	if flankers > 0 {
		add(MoraleFlanked, -mc.FlankPenalty*flankers)
	}
	if rear > 0 {
		add(MoraleRear, -mc.RearPenalty*rear)
	}

	if e.IsCommander {
		add(MoraleCommander, mc.CommanderBonus)
	} else if g.commanderNearby(e, p) {
		add(MoraleCommanderAura, mc.CommanderAuraBonus)
	}

	if total > mc.Max {
		total = mc.Max
	}

	e.CurrentMorale = total
	e.MoraleBreakdown = breakdown
}

func (g *Game) commanderNearby(e *Entity, p Point) bool {
	found := false
	g.Grid.Each(func(cp Point, c *Entity) {
		if found || c == e || !c.IsCommander || c.IsFleeing || c.HostileTo(e) {
			return
		}
		if Manhattan(p, cp) <= g.Rules.Morale.CommanderInfluenceRange {
			found = true
		}
	})

	return found
}

func (g *Game) RecomputeAllMorale() {
	g.Grid.Each(func(p Point, e *Entity) {
		g.RecomputeMorale(e, p)
	})
}

// ApplyDeathMoraleEffects shifts the raw morale of non-fleeing units next to a
// fresh death: friends of the dead lose, enemies gain.
func (g *Game) ApplyDeathMoraleEffects(p Point, deadOwner string) {
	shift := g.Rules.Morale.DeathWitnessShift
	for _, d := range rules.Directions {
		w := g.Grid.At(p.Step(d))
		if w == nil || w.IsFleeing {
			continue
		}
		if w.Owner == deadOwner {
			w.RawMorale -= shift
		} else {
			w.RawMorale += shift
		}
	}
}

type MoralePhaseResult struct {
	Events []Event  `json:"events"`
	Logs   []string `json:"logs"`
}

// RunMoralePhase recomputes morale, rolls flight for the player's shaken units
// and recomputes again so removals are reflected before play continues.
func (g *Game) RunMoralePhase(playerID string) MoralePhaseResult {
	var res CombatResult
	g.RecomputeAllMorale()

	type snap struct {
		e *Entity
		p Point
	}
	var units []snap
	g.Grid.Each(func(p Point, e *Entity) {
		if e.Owner == playerID {
			units = append(units, snap{e: e, p: p})
		}
	})

	threshold := g.Rules.Morale.Threshold
	for _, u := range units {
		// Earlier flights in this pass may have moved or removed it
		if g.Grid.At(u.p) != u.e {
			continue
		}
		e := u.e

		if e.CurrentMorale >= threshold {
			if e.IsFleeing {
				e.IsFleeing = false
				res.emit(Event{Kind: EventRallied, UnitID: e.ID, Owner: e.Owner, At: u.p, Health: e.CurrentHealth},
					"%s #%d stops fleeing", e.Name, e.ID)
			}
			continue
		}

		chance := 1 - float64(e.CurrentMorale)/float64(threshold)
		if g.rng.Float64() < chance {
			e.IsFleeing = true
			res.emit(Event{Kind: EventFleeing, UnitID: e.ID, Owner: e.Owner, At: u.p, Health: e.CurrentHealth},
				"%s #%d breaks and flees (morale %d)", e.Name, e.ID, e.CurrentMorale)
			g.flee(e, u.p, &res)
		} else if e.IsFleeing {
			e.IsFleeing = false
			res.emit(Event{Kind: EventRallied, UnitID: e.ID, Owner: e.Owner, At: u.p, Health: e.CurrentHealth},
				"%s #%d recovers", e.Name, e.ID)
		}
	}

	g.RecomputeAllMorale()
	return MoralePhaseResult{Events: res.Events, Logs: res.Logs}
}

// fleePath finds the fewest-steps route to any edge cell through passable,
// empty terrain. An empty path means p already is an edge cell.
func (g *Game) fleePath(p Point) ([]Point, bool) {
	if g.Grid.IsEdge(p) {
		return nil, true
	}

	prev := map[Point]Point{}
	seen := map[Point]bool{p: true}
	queue := []Point{p}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur != p && g.Grid.IsEdge(cur) {
			var path []Point
			for c := cur; c != p; c = prev[c] {
				path = append(path, c)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}

		for _, d := range rules.Directions {
			n := cur.Step(d)
			if seen[n] || !g.Grid.InBounds(n) || g.Terrain.Impassable(n) || g.Grid.Occupied(n) {
				continue
			}
			seen[n] = true
			prev[n] = cur
			queue = append(queue, n)
		}
	}

	return nil, false
}

func (g *Game) flee(e *Entity, p Point, res *CombatResult) {
	e.exhaust()

	path, ok := g.fleePath(p)
	if !ok {
		res.emit(Event{Kind: EventTrapped, UnitID: e.ID, Owner: e.Owner, At: p, Health: e.CurrentHealth},
			"%s #%d is trapped and cannot flee", e.Name, e.ID)
		g.log.Debug("fleeing unit trapped", zap.Uint32("unit", e.ID), zap.Int("x", p.X), zap.Int("y", p.Y))
		return
	}

	if len(path) > e.Speed {
		path = path[:e.Speed]
	}

	final := p
	for _, step := range path {
		e.Facing = rules.DirectionOf(step.X-final.X, step.Y-final.Y)
		final = step
	}

	if g.Grid.IsEdge(final) {
		g.Grid.Remove(p)
		origin := p
		res.emit(Event{Kind: EventFled, UnitID: e.ID, Owner: e.Owner, At: final, From: &origin, Health: e.CurrentHealth},
			"%s #%d flees the battlefield", e.Name, e.ID)
		g.log.Info("unit fled", zap.Uint32("unit", e.ID), zap.String("owner", e.Owner))
		return
	}

	g.Grid.Relocate(p, final)
	origin := p
	res.emit(Event{Kind: EventMove, UnitID: e.ID, Owner: e.Owner, At: final, From: &origin, Health: e.CurrentHealth},
		"%s #%d runs to %s", e.Name, e.ID, final)
}
