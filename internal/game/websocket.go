package game

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/lobby-backend/internal"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

type WSConfig struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

func DefaultWSConfig() WSConfig {
	return WSConfig{
		SendBuffer:     64,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 4096,
	}
}

func (c WSConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

type WebSocketHandler struct {
	lobby    *Lobby
	cfg      WSConfig
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(lobby *Lobby, cfg WSConfig) *WebSocketHandler {
	return &WebSocketHandler{
		lobby: lobby,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the request and runs the connection until the
// peer goes away, at which point the player is removed from its room.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[HandleWebSocket] upgrade failed")
		return
	}

	client := NewClient(uuid.NewString(), conn, h.cfg.SendBuffer)
	h.lobby.Connect(client)

	go h.writePump(client)
	h.readPump(client)
}

// readPump handles one inbound event at a time, so events from a single
// connection are applied in the order they were sent.
func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		h.lobby.Disconnect(client.Id)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(h.cfg.MaxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, rawMessage, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn_id", client.Id).Msg("[readPump] unexpected close")
			}
			return
		}

		var baseMsg internal.Message[json.RawMessage]
		if err := json.Unmarshal(rawMessage, &baseMsg); err != nil {
			log.Debug().Err(err).Str("conn_id", client.Id).Msg("[readPump] failed to parse message")
			continue
		}
		h.dispatch(client.Id, baseMsg)
	}
}

func (h *WebSocketHandler) dispatch(connId string, msg internal.Message[json.RawMessage]) {
	log.Debug().Str("conn_id", connId).Str("event", msg.Type).Msg("[dispatch] received")

	switch msg.Type {
	case internal.EventJoinRoom:
		var data internal.JoinRoomData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				log.Debug().Err(err).Str("conn_id", connId).Msg("[dispatch] bad join_room payload")
				return
			}
		}
		_ = h.lobby.Join(connId, data)
	case internal.EventLeaveRoom:
		h.lobby.Leave(connId)
	case internal.EventToggleReady:
		h.lobby.ToggleReady(connId)
	default:
		log.Debug().Str("conn_id", connId).Str("event", msg.Type).Msg("[dispatch] unknown message type")
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Outbound():
			client.Conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("conn_id", client.Id).Msg("[writePump] write failed")
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
