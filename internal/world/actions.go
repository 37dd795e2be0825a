package world

import (
	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

// Every action here checks all of its preconditions before touching state.
// A false return means nothing changed.

// Spawn places a new unit for the current player. Fresh units cannot act on the
// turn they arrive.
func (g *Game) Spawn(playerID string, p Point, typ rules.UnitType) (*Entity, bool) {
	if !g.IsTurnOf(playerID) {
		return nil, false
	}
	player := g.Player(playerID)
	tmpl, ok := g.Rules.Unit(typ)
	if !ok || !g.Grid.InBounds(p) || g.Grid.Occupied(p) || g.Terrain.Impassable(p) {
		return nil, false
	}
	if player.Gold < tmpl.Cost {
		return nil, false
	}

	facing := rules.North
	if p.Y < g.Size()/2 {
		facing = rules.South
	}

	player.Gold -= tmpl.Cost
	e := NewEntity(g.newEntityID(), tmpl, playerID, facing)
	e.exhaust()
	g.Grid.Put(p, e)
	g.RecomputeMorale(e, p)

	g.log.Debug("unit spawned",
		zap.String("player", playerID),
		zap.Stringer("type", typ),
		zap.Uint32("unit", e.ID),
		zap.Int("gold", player.Gold))
	return e, true
}

// Move walks a unit along its cheapest path and returns the cost spent
func (g *Game) Move(playerID string, from, to Point) (float64, bool) {
	if !g.IsTurnOf(playerID) {
		return 0, false
	}
	e := g.Grid.At(from)
	if e == nil || e.Owner != playerID || from == to {
		return 0, false
	}
	if !g.Grid.InBounds(to) || g.Grid.Occupied(to) {
		return 0, false
	}

	path, cost, ok := ShortestPath(g.Grid, g.Terrain, from, to, MoveSemantics, e.RemainingMovement)
	if !ok || cost > e.RemainingMovement || len(path) == 0 {
		return 0, false
	}

	prev := from
	if len(path) > 1 {
		prev = path[len(path)-2]
	}
	e.Facing = rules.DirectionOf(to.X-prev.X, to.Y-prev.Y)
	e.RemainingMovement -= cost
	if e.RemainingMovement < 0 {
		e.RemainingMovement = 0
	}
	g.Grid.Relocate(from, to)

	return cost, true
}

// Rotate turns a unit in place for one movement point
func (g *Game) Rotate(playerID string, p Point, dir rules.Direction) bool {
	if !g.IsTurnOf(playerID) || !dir.Valid() {
		return false
	}
	e := g.Grid.At(p)
	if e == nil || e.Owner != playerID || e.RemainingMovement < 1 {
		return false
	}

	e.Facing = dir
	e.RemainingMovement--
	return true
}

// CanAttack reports whether Attack would be accepted, without resolving anything
func (g *Game) CanAttack(playerID string, from, target Point) bool {
	if !g.IsTurnOf(playerID) {
		return false
	}
	a, d := g.Grid.At(from), g.Grid.At(target)
	if a == nil || d == nil || a.Owner != playerID || !a.HostileTo(d) || a.HasAttacked {
		return false
	}

	dist := Manhattan(from, target)
	if dist > a.Range {
		return false
	}
	if dist > 1 && a.IsRanged && g.Rules.Combat.RangedNeedsLineOfSight && !HasLineOfSight(g.Terrain, from, target) {
		return false
	}

	return true
}

func (g *Game) Attack(playerID string, from, target Point) (CombatResult, bool) {
	if !g.CanAttack(playerID, from, target) {
		return CombatResult{}, false
	}

	attacker, defender := g.Grid.At(from), g.Grid.At(target)
	res := g.ResolveAttack(attacker, from, defender, target)
	attacker.exhaust()

	return res, true
}

// EndTurn closes the current player's turn: their units are spent, the morale
// phase runs for them and the next player's units are refreshed.
func (g *Game) EndTurn(playerID string) (MoralePhaseResult, bool) {
	if !g.IsTurnOf(playerID) {
		return MoralePhaseResult{}, false
	}

	g.Grid.Each(func(_ Point, e *Entity) {
		if e.Owner == playerID {
			e.exhaust()
		}
	})

	res := g.RunMoralePhase(playerID)

	g.turn++
	if g.turn >= len(g.Players) {
		g.turn = 0
		g.round++
	}
	next := g.Players[g.turn]
	g.ResetTurn(next.ID)

	res.Events = append(res.Events, Event{Kind: EventTurnOver, Owner: next.ID})
	res.Logs = append(res.Logs, next.Name+"'s turn")

	g.log.Info("turn ended",
		zap.String("player", playerID),
		zap.String("next", next.ID),
		zap.Int("round", g.round))
	return res, true
}
