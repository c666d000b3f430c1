package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/lobby-backend/internal"
	"github.com/scythe504/lobby-backend/internal/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newTestServer() (*Server, *game.Lobby) {
	lobby := game.NewLobby(game.NewRoomStore(), game.NewConnectionRegistry(), game.NewHub())
	ws := game.NewWebSocketHandler(lobby, game.DefaultWSConfig())
	return New(lobby, ws, nil), lobby
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoomHandler(t *testing.T) {
	s, lobby := newTestServer()
	h := s.RegisterRoutes()

	rec := doJSON(t, h, http.MethodPost, "/api/rooms", `{"name":"Test","max_players":4,"password":"pw","game_mode":"team"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp internal.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Test", resp.Name)
	assert.Equal(t, 4, resp.MaxPlayers)
	assert.True(t, resp.HasPassword)

	room, err := lobby.Rooms.Get(resp.RoomId)
	require.NoError(t, err)
	assert.Equal(t, "team", room.GameMode)

	rec = doJSON(t, h, http.MethodPost, "/api/rooms", `{"name":"Defaults"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.MaxPlayers)
	assert.False(t, resp.HasPassword)
}

func TestCreateRoomHandlerValidation(t *testing.T) {
	s, lobby := newTestServer()
	h := s.RegisterRoutes()

	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"name":""}`},
		{"missing name", `{"max_players":3}`},
		{"zero players", `{"name":"x","max_players":0}`},
		{"negative players", `{"name":"x","max_players":-2}`},
		{"bad json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/rooms", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Zero(t, lobby.Rooms.Count())
}

func TestListRoomsHandler(t *testing.T) {
	s, lobby := newTestServer()
	h := s.RegisterRoutes()

	rec := doJSON(t, h, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	open, err := lobby.Rooms.Create(game.CreateRoomParams{Name: "open", Password: "pw"})
	require.NoError(t, err)
	busy, err := lobby.Rooms.Create(game.CreateRoomParams{Name: "busy"})
	require.NoError(t, err)
	busy.Status = internal.StatusPlaying

	rec = doJSON(t, h, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rooms []internal.RoomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, open.Id, rooms[0].Id)
	assert.True(t, rooms[0].HasPassword)
	assert.Equal(t, internal.StatusWaiting, rooms[0].Status)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer()
	rec := doJSON(t, s.RegisterRoutes(), http.MethodOptions, "/api/rooms", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthHandler(t *testing.T) {
	s, _ := newTestServer()
	rec := doJSON(t, s.RegisterRoutes(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["rooms"])
	assert.NotContains(t, body, "database")
}

// --- websocket end to end ---

type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(internal.Message[any]{Type: eventType, Data: data}))
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) wsEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var env wsEnvelope
		require.NoError(t, conn.ReadJSON(&env), "waiting for %s", eventType)
		if env.Type == eventType {
			return env
		}
	}
}

func TestWebSocketLobbyFlow(t *testing.T) {
	s, lobby := newTestServer()
	srv := httptest.NewServer(s.RegisterRoutes())
	defer srv.Close()

	room, err := lobby.Rooms.Create(game.CreateRoomParams{Name: "Test", MaxPlayers: 2})
	require.NoError(t, err)

	alice := dial(t, srv)
	var hello internal.ConnectedData
	require.NoError(t, json.Unmarshal(readUntil(t, alice, internal.EventConnected).Data, &hello))
	require.NotEmpty(t, hello.PlayerId)

	send(t, alice, internal.EventJoinRoom, internal.JoinRoomData{RoomId: "nope"})
	var failure internal.ErrorData
	require.NoError(t, json.Unmarshal(readUntil(t, alice, internal.EventError).Data, &failure))
	assert.Equal(t, "Room does not exist", failure.Message)

	send(t, alice, internal.EventJoinRoom, internal.JoinRoomData{RoomId: room.Id, PlayerName: "alice"})
	readUntil(t, alice, internal.EventRoomJoined)

	bob := dial(t, srv)
	readUntil(t, bob, internal.EventConnected)
	send(t, bob, internal.EventJoinRoom, internal.JoinRoomData{RoomId: room.Id, PlayerName: "bob"})

	var joined internal.RoomJoinedData
	require.NoError(t, json.Unmarshal(readUntil(t, bob, internal.EventRoomJoined).Data, &joined))
	require.Len(t, joined.Players, 2)
	assert.Equal(t, "alice", joined.Players[0].Name)

	var pj internal.PlayerJoinedData
	require.NoError(t, json.Unmarshal(readUntil(t, alice, internal.EventPlayerJoined).Data, &pj))
	assert.Equal(t, "bob", pj.Player.Name)

	send(t, alice, internal.EventToggleReady, nil)
	send(t, bob, internal.EventToggleReady, nil)

	for _, conn := range []*websocket.Conn{alice, bob} {
		var started internal.GameStartedData
		require.NoError(t, json.Unmarshal(readUntil(t, conn, internal.EventGameStarted).Data, &started))
		assert.Equal(t, hello.PlayerId, started.GameState.CurrentPlayer)
		assert.Equal(t, "classic", started.GameState.Board.Type)
	}

	// dropping the socket frees the seat
	require.NoError(t, bob.Close())
	var left internal.PlayerLeftData
	require.NoError(t, json.Unmarshal(readUntil(t, alice, internal.EventPlayerLeft).Data, &left))
	assert.Equal(t, 1, left.RoomInfo.CurrentPlayers)
	assert.Equal(t, internal.StatusPlaying, left.RoomInfo.Status)

	send(t, alice, internal.EventLeaveRoom, nil)
	assert.Eventually(t, func() bool { return lobby.Rooms.Count() == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestWebSocketIgnoresGarbage(t *testing.T) {
	s, _ := newTestServer()
	srv := httptest.NewServer(s.RegisterRoutes())
	defer srv.Close()

	conn := dial(t, srv)
	readUntil(t, conn, internal.EventConnected)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, conn, "dance", nil)
	send(t, conn, internal.EventToggleReady, nil)
	send(t, conn, internal.EventJoinRoom, internal.JoinRoomData{})

	var failure internal.ErrorData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, internal.EventError).Data, &failure))
	assert.Equal(t, "Room does not exist", failure.Message)
}
