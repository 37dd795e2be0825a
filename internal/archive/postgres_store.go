package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore keeps battle logs in a turn_logs table, one row per action
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS turn_logs (
		id BIGSERIAL PRIMARY KEY,
		game_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		player_id TEXT NOT NULL,
		action TEXT NOT NULL,
		lines JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS turn_logs_game_idx ON turn_logs (game_id, id);
	`

	_, err := ps.db.ExecContext(ctx, schema)
	return err
}

func (ps *PostgresStore) AppendTurn(ctx context.Context, gameID string, entry TurnLog) error {
	linesJSON, err := json.Marshal(entry.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal log lines: %w", err)
	}

	query := `
	INSERT INTO turn_logs (game_id, round, player_id, action, lines, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = ps.db.ExecContext(ctx, query,
		gameID, entry.Round, entry.Player, entry.Action, string(linesJSON), entry.At)
	if err != nil {
		return fmt.Errorf("failed to append turn for %s: %w", gameID, err)
	}

	return nil
}

func (ps *PostgresStore) LoadLog(ctx context.Context, gameID string) ([]TurnLog, error) {
	query := `SELECT round, player_id, action, lines, created_at FROM turn_logs WHERE game_id = $1 ORDER BY id`

	rows, err := ps.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load log for %s: %w", gameID, err)
	}
	defer rows.Close()

	var entries []TurnLog
	for rows.Next() {
		var entry TurnLog
		var linesJSON string
		if err := rows.Scan(&entry.Round, &entry.Player, &entry.Action, &linesJSON, &entry.At); err != nil {
			return nil, fmt.Errorf("failed to scan turn log: %w", err)
		}
		if err := json.Unmarshal([]byte(linesJSON), &entry.Lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log lines: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turn logs: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	return entries, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
