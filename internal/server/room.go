package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/archive"
	"github.com/Scrimzay/tacticsim/internal/rules"
	"github.com/Scrimzay/tacticsim/internal/world"
)

var playerColors = []string{"#c0392b", "#2c6fbb", "#27ae60", "#d68910", "#8e44ad", "#16a085"}

// Room is one running game. Every call takes mu, so the core only ever sees
// one action at a time.
type Room struct {
	ID string

	mu           sync.Mutex
	game         *world.Game
	startingGold int
	joined       int

	store archive.Storage
	log   *zap.Logger
}

func NewRoom(id string, game *world.Game, startingGold int, store archive.Storage, logger *zap.Logger) *Room {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Room{
		ID:           id,
		game:         game,
		startingGold: startingGold,
		store:        store,
		log:          logger.With(zap.String("game", id)),
	}
}

func (rm *Room) Join(name string) world.Player {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.joined++
	p := &world.Player{
		ID:    fmt.Sprintf("p%d", rm.joined),
		Name:  name,
		Color: playerColors[(rm.joined-1)%len(playerColors)],
		Gold:  rm.startingGold,
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("Player %d", rm.joined)
	}
	rm.game.AddPlayer(p)

	return *p
}

func (rm *Room) Leave(playerID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.game.RemovePlayer(playerID)
}

func (rm *Room) Snapshot() world.Snapshot {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	return rm.game.Snapshot()
}

// TerrainBytes never changes after generation, so no lock is needed
func (rm *Room) TerrainBytes() []byte {
	return rm.game.Terrain.Bytes()
}

func (rm *Room) Spawn(ctx context.Context, playerID string, p world.Point, typ rules.UnitType) bool {
	rm.mu.Lock()
	e, ok := rm.game.Spawn(playerID, p, typ)
	round := rm.game.Round()
	rm.mu.Unlock()
	if !ok {
		return false
	}

	rm.record(ctx, round, playerID, "spawn", []string{fmt.Sprintf("%s #%d arrives at %s", e.Name, e.ID, p)})
	return true
}

func (rm *Room) Move(ctx context.Context, playerID string, from, to world.Point) bool {
	rm.mu.Lock()
	cost, ok := rm.game.Move(playerID, from, to)
	round := rm.game.Round()
	rm.mu.Unlock()
	if !ok {
		return false
	}

	rm.record(ctx, round, playerID, "move", []string{fmt.Sprintf("%s -> %s (cost %.1f)", from, to, cost)})
	return true
}

func (rm *Room) Rotate(ctx context.Context, playerID string, p world.Point, dir rules.Direction) bool {
	rm.mu.Lock()
	ok := rm.game.Rotate(playerID, p, dir)
	round := rm.game.Round()
	rm.mu.Unlock()
	if !ok {
		return false
	}

	rm.record(ctx, round, playerID, "rotate", []string{fmt.Sprintf("unit at %s faces %s", p, dir)})
	return true
}

func (rm *Room) Attack(ctx context.Context, playerID string, from, target world.Point) (world.CombatResult, bool) {
	rm.mu.Lock()
	res, ok := rm.game.Attack(playerID, from, target)
	round := rm.game.Round()
	rm.mu.Unlock()
	if !ok {
		return res, false
	}

	rm.record(ctx, round, playerID, "attack", res.Logs)
	return res, true
}

func (rm *Room) EndTurn(ctx context.Context, playerID string) (world.MoralePhaseResult, bool) {
	rm.mu.Lock()
	round := rm.game.Round()
	res, ok := rm.game.EndTurn(playerID)
	rm.mu.Unlock()
	if !ok {
		return res, false
	}

	rm.record(ctx, round, playerID, "end_turn", res.Logs)
	return res, true
}

// Reachable lists where the unit at p could move this turn
func (rm *Room) Reachable(p world.Point) []world.Point {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	e := rm.game.Grid.At(p)
	if e == nil {
		return nil
	}

	return world.ReachableSet(rm.game.Grid, rm.game.Terrain, p, e.RemainingMovement)
}

// Inspect returns the unit (with morale breakdown) and terrain at p
func (rm *Room) Inspect(p world.Point) (*world.UnitView, rules.Terrain, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if !rm.game.Grid.InBounds(p) {
		return nil, rules.Terrain{}, false
	}

	tile := rm.game.Terrain.At(p)
	e := rm.game.Grid.At(p)
	if e == nil {
		return nil, tile, true
	}
	view := rm.game.View(p, e)

	return &view, tile, true
}

func (rm *Room) record(ctx context.Context, round int, playerID, action string, lines []string) {
	if rm.store == nil {
		return
	}

	entry := archive.TurnLog{
		Round:  round,
		Player: playerID,
		Action: action,
		Lines:  lines,
		At:     time.Now().UTC(),
	}
	if err := rm.store.AppendTurn(ctx, rm.ID, entry); err != nil {
		rm.log.Warn("battle log append failed", zap.String("action", action), zap.Error(err))
	}
}
