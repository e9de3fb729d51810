package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"voxelfront/server/internal/telemetry"
)

const (
	defaultSendBuffer   = 64
	defaultWriteTimeout = 5 * time.Second
)

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// HubConfig tunes per-subscriber queues.
type HubConfig struct {
	SendBuffer   int
	WriteTimeout time.Duration
	Logger       telemetry.Logger
}

// Hub fans messages out to websocket subscribers as msgpack binary frames.
// Each subscriber has its own bounded queue and writer goroutine so a slow
// client never stalls the simulation; overflowing messages are dropped.
type Hub struct {
	cfg HubConfig

	mu          sync.Mutex
	subscribers map[string]*subscriber
	wg          sync.WaitGroup
}

type subscriber struct {
	conn    Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// NewHub constructs an empty hub.
func NewHub(cfg HubConfig) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.NopLogger()
	}
	return &Hub{cfg: cfg, subscribers: make(map[string]*subscriber)}
}

// Subscribe attaches conn as actorID's delivery target, replacing and
// closing any previous connection.
func (h *Hub) Subscribe(actorID string, conn Conn) {
	if h == nil || conn == nil || actorID == "" {
		return
	}
	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	previous := h.subscribers[actorID]
	h.subscribers[actorID] = sub
	h.wg.Add(1)
	h.mu.Unlock()

	if previous != nil {
		previous.close()
	}
	telemetry.Sessions.Inc()
	go h.writeLoop(actorID, sub)
}

// Unsubscribe detaches conn if it is still actorID's current connection.
func (h *Hub) Unsubscribe(actorID string, conn Conn) {
	if h == nil {
		return
	}
	h.mu.Lock()
	sub, ok := h.subscribers[actorID]
	if ok && sub.conn == conn {
		delete(h.subscribers, actorID)
	}
	h.mu.Unlock()
	if ok && sub.conn == conn {
		sub.close()
	}
}

// Notify implements Notifier.
func (h *Hub) Notify(actorID string, msg Message) {
	if h == nil {
		return
	}
	h.mu.Lock()
	sub, ok := h.subscribers[actorID]
	h.mu.Unlock()
	if !ok {
		return
	}
	data, err := msgpack.Marshal(&msg)
	if err != nil {
		h.cfg.Logger.Printf("[notify] encode %s for %s: %v", msg.Type, actorID, err)
		return
	}
	h.enqueue(actorID, sub, data)
}

// Broadcast implements Notifier.
func (h *Hub) Broadcast(msg Message) {
	if h == nil {
		return
	}
	data, err := msgpack.Marshal(&msg)
	if err != nil {
		h.cfg.Logger.Printf("[notify] encode broadcast %s: %v", msg.Type, err)
		return
	}
	h.mu.Lock()
	targets := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		targets[id] = sub
	}
	h.mu.Unlock()
	for id, sub := range targets {
		h.enqueue(id, sub, data)
	}
}

func (h *Hub) enqueue(actorID string, sub *subscriber, data []byte) {
	select {
	case <-sub.done:
		return
	default:
	}
	select {
	case sub.send <- data:
	default:
		dropped := sub.dropped.Add(1)
		if dropped&(dropped-1) == 0 {
			h.cfg.Logger.Printf("[notify] queue full for %s dropped=%d", actorID, dropped)
		}
	}
}

func (h *Hub) writeLoop(actorID string, sub *subscriber) {
	defer func() {
		_ = sub.conn.Close()
		telemetry.Sessions.Dec()
		h.wg.Done()
	}()
	for {
		select {
		case <-sub.done:
			return
		case data := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := sub.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				h.cfg.Logger.Printf("[notify] write to %s failed: %v", actorID, err)
				h.Unsubscribe(actorID, sub.conn)
				return
			}
		}
	}
}

// Connected reports whether actorID has a live subscription.
func (h *Hub) Connected(actorID string) bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.subscribers[actorID]
	return ok
}

// Count reports how many actors are subscribed.
func (h *Hub) Count() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close detaches every subscriber and waits for their writers to exit.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]*subscriber)
	h.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
	h.wg.Wait()
}

// Decode unpacks a msgpack frame produced by the hub.
func Decode(data []byte) (Message, error) {
	var msg Message
	err := msgpack.Unmarshal(data, &msg)
	return msg, err
}
