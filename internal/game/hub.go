package game

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/lobby-backend/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// Client is one live connection as seen by the hub. Outbound frames are
// queued on send and written by the connection's write pump, so queueing
// never waits on the network.
type Client struct {
	Id   string
	Conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(id string, conn *websocket.Conn, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Client{
		Id:   id,
		Conn: conn,
		send: make(chan []byte, bufferSize),
	}
}

// Outbound is drained by the write pump. It is closed when the client is
// unregistered.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// enqueue reports false when the frame was dropped: the client is gone or
// its queue is full.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub tracks live connections and fans events out to them. Delivery is
// fire-and-forget: frames for unknown, closed or backed-up clients are
// dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	previous := h.clients[client.Id]
	h.clients[client.Id] = client
	h.mu.Unlock()

	if previous != nil && previous != client {
		previous.close()
	}
}

// Unregister forgets the connection and closes its queue, which lets the
// write pump finish.
func (h *Hub) Unregister(connId string) {
	h.mu.Lock()
	client, ok := h.clients[connId]
	delete(h.clients, connId)
	h.mu.Unlock()

	if ok {
		client.close()
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) client(connId string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[connId]
}

func encode[T any](msg internal.Message[T]) ([]byte, bool) {
	frame, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("event", msg.Type).Msg("[Hub] failed to encode message")
		return nil, false
	}
	return frame, true
}

func (h *Hub) deliver(connId string, frame []byte, event string) bool {
	client := h.client(connId)
	if client == nil {
		log.Debug().Str("conn_id", connId).Str("event", event).Msg("[Hub] no live client, dropping")
		return false
	}
	if !client.enqueue(frame) {
		log.Warn().Str("conn_id", connId).Str("event", event).Msg("[Hub] client queue unavailable, dropping")
		return false
	}
	return true
}

// SendTo queues msg for a single connection.
func SendTo[T any](h *Hub, connId string, msg internal.Message[T]) bool {
	frame, ok := encode(msg)
	if !ok {
		return false
	}
	return h.deliver(connId, frame, msg.Type)
}

// BroadcastToRoom queues msg for every member of the room. The caller must
// hold room.Mu so members of one room see its events in the same order.
func BroadcastToRoom[T any](h *Hub, room *internal.Room, msg internal.Message[T]) int {
	return BroadcastToRoomExcept(h, room, msg, "")
}

// BroadcastToRoomExcept is BroadcastToRoom minus one connection. The
// caller must hold room.Mu.
func BroadcastToRoomExcept[T any](h *Hub, room *internal.Room, msg internal.Message[T], excludeId string) int {
	frame, ok := encode(msg)
	if !ok {
		return 0
	}

	recipients := room.ConnectionIds()
	delivered := 0
	for _, connId := range recipients {
		if connId == excludeId {
			continue
		}
		if h.deliver(connId, frame, msg.Type) {
			delivered++
		}
	}

	log.Debug().
		Str("room_id", room.Id).
		Str("event", msg.Type).
		Int("delivered", delivered).
		Int("members", len(recipients)).
		Msg("[Broadcast] fan-out complete")
	return delivered
}
