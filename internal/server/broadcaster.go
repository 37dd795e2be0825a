package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Broadcaster fans room state out to every connected client. Clients join and
// leave through channels owned by Run; writes go through a per-conn lock.
type Broadcaster struct {
	room         *Room
	clients      map[*websocket.Conn]bool
	register     chan registration
	unregister   chan *websocket.Conn
	mu           sync.RWMutex
	pingInterval time.Duration
	WriteMu      map[*websocket.Conn]*sync.Mutex // Per-conn write locks
	done         chan struct{}                   // closed when Run returns
	log          *zap.Logger
}

// registration hands a new conn to Run; ready closes once its first frames are out
type registration struct {
	conn  *websocket.Conn
	ready chan struct{}
}

func NewBroadcaster(room *Room, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Broadcaster{
		room:         room,
		clients:      make(map[*websocket.Conn]bool),
		register:     make(chan registration),
		unregister:   make(chan *websocket.Conn),
		pingInterval: 30 * time.Second,
		WriteMu:      make(map[*websocket.Conn]*sync.Mutex),
		done:         make(chan struct{}),
		log:          logger,
	}
}

func (b *Broadcaster) Run(ctx context.Context) {
	pingTicker := time.NewTicker(b.pingInterval)
	defer func() {
		pingTicker.Stop()
		close(b.done)
	}()

	for {
		select {
		case reg := <-b.register:
			// Terrain once as binary before the conn can see any broadcast
			if err := b.write(reg.conn, websocket.BinaryMessage, b.room.TerrainBytes()); err != nil {
				b.log.Debug("initial terrain send failed", zap.Error(err))
				b.drop(reg.conn)
				close(reg.ready)
				continue
			}
			b.mu.Lock()
			b.clients[reg.conn] = true
			b.mu.Unlock()
			b.SendTo(reg.conn, stateMessage(b.room.Snapshot()))
			close(reg.ready)

		case conn := <-b.unregister:
			b.drop(conn)

		case <-pingTicker.C:
			b.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(b.clients))
			for conn := range b.clients {
				conns = append(conns, conn)
			}
			b.mu.RUnlock()

			for _, conn := range conns {
				if err := b.write(conn, websocket.PingMessage, nil); err != nil {
					b.drop(conn)
				}
			}

		case <-ctx.Done():
			b.mu.Lock()
			for conn := range b.WriteMu {
				conn.Close()
				delete(b.clients, conn)
				delete(b.WriteMu, conn)
			}
			b.mu.Unlock()
			return
		}
	}
}

// Register makes conn writable and waits until Run has sent it the terrain and
// the current state. Only then does it start receiving broadcasts.
func (b *Broadcaster) Register(conn *websocket.Conn) {
	b.mu.Lock()
	b.WriteMu[conn] = &sync.Mutex{}
	b.mu.Unlock()

	reg := registration{conn: conn, ready: make(chan struct{})}
	select {
	case b.register <- reg:

	case <-b.done:
		b.drop(conn)
		return
	}

	select {
	case <-reg.ready:

	case <-b.done:
	}
}

func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	select {
	case b.unregister <- conn:

	case <-b.done:
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.clients)
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.WriteMu[conn]; ok {
		delete(b.clients, conn)
		delete(b.WriteMu, conn)
		conn.Close()
	}
}

func (b *Broadcaster) write(conn *websocket.Conn, msgType int, data []byte) error {
	b.mu.RLock()
	mu, ok := b.WriteMu[conn]
	b.mu.RUnlock()
	if !ok {
		return websocket.ErrCloseSent
	}

	mu.Lock()
	defer mu.Unlock()

	return conn.WriteMessage(msgType, data)
}

// SendTo writes one JSON message to a single client
func (b *Broadcaster) SendTo(conn *websocket.Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("message marshal failed", zap.Error(err))
		return
	}

	if err := b.write(conn, websocket.TextMessage, data); err != nil {
		b.log.Debug("send failed", zap.Error(err))
		// Cleanup happens on the Run goroutine
		go b.Unregister(conn)
	}
}

// Broadcast writes one JSON message to every client
func (b *Broadcaster) Broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("broadcast marshal failed", zap.Error(err))
		return
	}

	b.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		conns = append(conns, conn)
	}
	b.mu.RUnlock()

	for _, conn := range conns {
		if err := b.write(conn, websocket.TextMessage, data); err != nil {
			b.log.Debug("broadcast failed", zap.Error(err))
			go b.Unregister(conn)
		}
	}
}

func (b *Broadcaster) BroadcastState() {
	b.Broadcast(stateMessage(b.room.Snapshot()))
}
