package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore keeps every game's log in a single local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	saveMu   sync.Mutex // orders snapshot, write and rename as one step
	data     *jsonData
}

type jsonData struct {
	Games map[string][]TurnLog `json:"games"`
}

func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data:     &jsonData{Games: make(map[string][]TurnLog)},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load battle log %s: %w", filePath, err)
		}
	} else if err := store.saveToFile(); err != nil {
		return nil, fmt.Errorf("failed to create battle log %s: %w", filePath, err)
	}

	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	raw, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, js.data); err != nil {
		return err
	}
	if js.data.Games == nil {
		js.data.Games = make(map[string][]TurnLog)
	}

	return nil
}

// saveToFile writes a temp file and renames it over the old log
func (js *JSONStore) saveToFile() error {
	js.saveMu.Lock()
	defer js.saveMu.Unlock()

	js.mutex.RLock()
	data, err := json.MarshalIndent(js.data, "", "  ")
	js.mutex.RUnlock()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), ".battlelog-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, js.filePath)
}

func (js *JSONStore) AppendTurn(ctx context.Context, gameID string, entry TurnLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	js.mutex.Lock()
	js.data.Games[gameID] = append(js.data.Games[gameID], entry)
	js.mutex.Unlock()

	if err := js.saveToFile(); err != nil {
		return fmt.Errorf("failed to append turn for %s: %w", gameID, err)
	}

	return nil
}

func (js *JSONStore) LoadLog(ctx context.Context, gameID string) ([]TurnLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	js.mutex.RLock()
	defer js.mutex.RUnlock()

	entries, ok := js.data.Games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	return append([]TurnLog(nil), entries...), nil
}

func (js *JSONStore) Close() error {
	return js.saveToFile()
}
