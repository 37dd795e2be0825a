package world

import (
	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/rules"
)

// Rand is the only source of non-determinism in the core. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Gold  int    `json:"gold"`
}

// Game is one battle: grid, terrain and players. It is not safe for
// concurrent use; the session layer serialises every call.
type Game struct {
	Rules   *rules.Rules
	Grid    *Grid
	Terrain *TerrainMap
	Players []*Player // turn order

	turn         int
	round        int
	rng          Rand
	log          *zap.Logger
	nextEntityID uint32
}

func New(r *rules.Rules, terrain *TerrainMap, rng Rand, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Game{
		Rules:   r,
		Grid:    NewGrid(terrain.Size),
		Terrain: terrain,
		rng:     rng,
		log:     logger,
		round:   1,
	}
}

func (g *Game) Size() int {
	return g.Grid.Size
}

func (g *Game) Round() int {
	return g.round
}

func (g *Game) AddPlayer(p *Player) bool {
	if g.Player(p.ID) != nil {
		return false
	}

	g.Players = append(g.Players, p)
	if len(g.Players) == 1 {
		g.ResetTurn(p.ID)
	}

	g.log.Info("player joined", zap.String("player", p.ID), zap.Int("players", len(g.Players)))
	return true
}

// RemovePlayer drops a player and every unit they own
func (g *Game) RemovePlayer(id string) bool {
	idx := -1
	for i, p := range g.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	wasCurrent := idx == g.turn
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)

	var owned []Point
	g.Grid.Each(func(p Point, e *Entity) {
		if e.Owner == id {
			owned = append(owned, p)
		}
	})
	for _, p := range owned {
		g.Grid.Remove(p)
	}

	if idx < g.turn {
		g.turn--
	}
	if len(g.Players) == 0 {
		g.turn = 0
	} else {
		if g.turn >= len(g.Players) {
			g.turn = 0
		}
		if wasCurrent {
			g.ResetTurn(g.Players[g.turn].ID)
		}
	}

	g.log.Info("player left", zap.String("player", id), zap.Int("removedUnits", len(owned)))
	return true
}

func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}

	return nil
}

func (g *Game) CurrentPlayer() *Player {
	if len(g.Players) == 0 {
		return nil
	}

	return g.Players[g.turn]
}

func (g *Game) IsTurnOf(playerID string) bool {
	cur := g.CurrentPlayer()
	return cur != nil && cur.ID == playerID
}

// ResetTurn is the turn-start hook: the player's units regain movement and attack
func (g *Game) ResetTurn(playerID string) {
	g.Grid.Each(func(_ Point, e *Entity) {
		if e.Owner == playerID {
			e.resetForTurn()
		}
	})
}

func (g *Game) newEntityID() uint32 {
	g.nextEntityID++
	return g.nextEntityID
}

type UnitView struct {
	ID                uint32               `json:"id"`
	Type              rules.UnitType       `json:"type"`
	Owner             string               `json:"owner"`
	X                 int                  `json:"x"`
	Y                 int                  `json:"y"`
	Health            int                  `json:"health"`
	MaxHealth         int                  `json:"maxHealth"`
	Morale            int                  `json:"morale"`
	Breakdown         []MoraleContribution `json:"breakdown,omitempty"`
	Facing            rules.Direction      `json:"facing"`
	Fleeing           bool                 `json:"fleeing"`
	RemainingMovement float64              `json:"remainingMovement"`
	HasAttacked       bool                 `json:"hasAttacked"`
}

type Snapshot struct {
	Size          int        `json:"size"`
	Round         int        `json:"round"`
	CurrentPlayer string     `json:"currentPlayer"`
	Players       []Player   `json:"players"`
	Units         []UnitView `json:"units"`
}

func (g *Game) View(p Point, e *Entity) UnitView {
	return UnitView{
		ID:                e.ID,
		Type:              e.Type,
		Owner:             e.Owner,
		X:                 p.X,
		Y:                 p.Y,
		Health:            e.CurrentHealth,
		MaxHealth:         e.MaxHealth,
		Morale:            e.CurrentMorale,
		Breakdown:         append([]MoraleContribution(nil), e.MoraleBreakdown...),
		Facing:            e.Facing,
		Fleeing:           e.IsFleeing,
		RemainingMovement: e.RemainingMovement,
		HasAttacked:       e.HasAttacked,
	}
}

// Safe copy for broadcasting
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Size:  g.Size(),
		Round: g.round,
	}
	if cur := g.CurrentPlayer(); cur != nil {
		snap.CurrentPlayer = cur.ID
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, *p)
	}
	g.Grid.Each(func(p Point, e *Entity) {
		v := g.View(p, e)
		v.Breakdown = nil
		snap.Units = append(snap.Units, v)
	})

	return snap
}
