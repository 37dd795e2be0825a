package archive

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("archive: game not found")

// TurnLog is one accepted action's human-readable outcome. The archive is an
// audit trail only; nothing here can rebuild a game.
type TurnLog struct {
	Round  int       `json:"round"`
	Player string    `json:"player"`
	Action string    `json:"action"`
	Lines  []string  `json:"lines"`
	At     time.Time `json:"at"`
}

// Storage defines the battle-log backends
type Storage interface {
	AppendTurn(ctx context.Context, gameID string, entry TurnLog) error
	LoadLog(ctx context.Context, gameID string) ([]TurnLog, error)
	Close() error
}
