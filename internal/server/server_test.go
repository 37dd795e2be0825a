package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Scrimzay/tacticsim/internal/archive"
	"github.com/Scrimzay/tacticsim/internal/rules"
	"github.com/Scrimzay/tacticsim/internal/world"
)

type fixedRand struct{}

func (fixedRand) Float64() float64 { return 0.5 }
func (fixedRand) Intn(int) int     { return 0 }

type testServer struct {
	room        *Room
	broadcaster *Broadcaster
	store       *archive.JSONStore
	router      *gin.Engine
	cancel      context.CancelFunc
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := rules.Default()
	store, err := archive.NewJSONStore(filepath.Join(t.TempDir(), "battles.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	game := world.New(r, world.NewTerrainMap(10, r), fixedRand{}, nil)
	room := NewRoom("test", game, r.StartingGold, store, nil)
	b := NewBroadcaster(room, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)

	return &testServer{
		room:        room,
		broadcaster: b,
		store:       store,
		router:      SetupRouter(b, room, r, store, nil),
		cancel:      cancel,
	}
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	ts.router.ServeHTTP(w, req)

	return w
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get(t, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestMapIsSeeded(t *testing.T) {
	ts := newTestServer(t)

	var first, second MapResponse
	for _, out := range []*MapResponse{&first, &second} {
		w := ts.get(t, "/map?size=24&seed=99")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}

	want := world.GenerateMapSeeded(24, rules.Default(), 99)
	if len(first.Tiles) != len(want.Tiles) {
		t.Fatalf("expected %d tiles, got %d", len(want.Tiles), len(first.Tiles))
	}
	for i := range want.Tiles {
		if first.Tiles[i] != want.Tiles[i] || second.Tiles[i] != want.Tiles[i] {
			t.Fatalf("tile %d differs from the seeded generator", i)
		}
	}
	if len(first.Legend) != len(rules.AllTerrain) {
		t.Fatalf("expected a legend entry per terrain, got %d", len(first.Legend))
	}
}

func TestMapRejectsBadQuery(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/map?size=0", "/map?size=500", "/map?size=abc", "/map?seed=x"} {
		if w := ts.get(t, path); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestGameLog(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.get(t, "/games/test/log"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any action, got %d", w.Code)
	}

	p := ts.room.Join("Red")
	if !ts.room.Spawn(context.Background(), p.ID, world.Point{X: 1, Y: 1}, rules.UnitInfantry) {
		t.Fatalf("expected spawn to succeed")
	}

	w := ts.get(t, "/games/test/log")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Turns []archive.TurnLog `json:"turns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Turns) != 1 || body.Turns[0].Action != "spawn" || body.Turns[0].Player != p.ID {
		t.Fatalf("unexpected log %+v", body.Turns)
	}
}

// readUntil skips messages until one of the wanted type arrives
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]json.RawMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg map[string]json.RawMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if string(msg["type"]) == `"`+typ+`"` {
			return msg
		}
	}
}

func TestWebsocketSession(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	msgType, terrain, err := conn.ReadMessage()
	if err != nil || msgType != websocket.BinaryMessage || len(terrain) != 100 {
		t.Fatalf("expected 100 bytes of terrain first, got type %d len %d err %v", msgType, len(terrain), err)
	}

	send := func(v any) {
		if err := conn.WriteJSON(v); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	send(map[string]any{"action": "spawn", "x": 1, "y": 1, "unit": "infantry"})
	readUntil(t, conn, "rejected")

	send(map[string]any{"action": "join", "name": "Red"})
	joined := readUntil(t, conn, "joined")
	var player world.Player
	if err := json.Unmarshal(joined["player"], &player); err != nil || player.Gold != rules.Default().StartingGold {
		t.Fatalf("unexpected joined payload %s", joined["player"])
	}

	send(map[string]any{"action": "spawn", "x": 1, "y": 1, "unit": "infantry"})
	state := readUntil(t, conn, "state")
	var snap world.Snapshot
	if err := json.Unmarshal(state["state"], &snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	for len(snap.Units) == 0 {
		state = readUntil(t, conn, "state")
		if err := json.Unmarshal(state["state"], &snap); err != nil {
			t.Fatalf("decode state: %v", err)
		}
	}
	if snap.Units[0].Type != rules.UnitInfantry || snap.Units[0].Owner != player.ID {
		t.Fatalf("unexpected unit %+v", snap.Units[0])
	}

	send(map[string]any{"action": "spawn", "x": 1, "y": 1, "unit": "dragon"})
	readUntil(t, conn, "rejected")

	send(map[string]any{"action": "inspect", "x": 1, "y": 1})
	inspect := readUntil(t, conn, "inspect")
	if _, ok := inspect["unit"]; !ok {
		t.Fatalf("expected unit details in %v", inspect)
	}

	send(map[string]any{"action": "end_turn"})
	readUntil(t, conn, "morale")
}

func TestTerrainArrivesBeforeAnyBroadcast(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return

			default:
				ts.broadcaster.BroadcastState()
			}
		}
	}()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	for i := 0; i < 20; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		msgType, _, err := conn.ReadMessage()
		conn.Close()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if msgType != websocket.BinaryMessage {
			t.Fatalf("connection %d: expected terrain first, got message type %d", i, msgType)
		}
	}
}
