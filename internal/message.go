package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Client -> server
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventToggleReady = "toggle_ready"
)

// Server -> client
const (
	EventConnected    = "connected"
	EventError        = "error"
	EventPlayerJoined = "player_joined"
	EventRoomJoined   = "room_joined"
	EventPlayerLeft   = "player_left"
	EventPlayerReady  = "player_ready"
	EventGameStarted  = "game_started"
)

type JoinRoomData struct {
	RoomId     string `json:"room_id"`
	PlayerName string `json:"player_name,omitempty"`
	Password   string `json:"password,omitempty"`
}

type ConnectedData struct {
	PlayerId string `json:"player_id"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type PlayerJoinedData struct {
	Player   Player   `json:"player"`
	RoomInfo RoomInfo `json:"room_info"`
}

type RoomJoinedData struct {
	Room    RoomInfo `json:"room"`
	Players []Player `json:"players"`
}

type PlayerLeftData struct {
	PlayerId string   `json:"player_id"`
	RoomInfo RoomInfo `json:"room_info"`
}

type PlayerReadyData struct {
	PlayerId string   `json:"player_id"`
	IsReady  bool     `json:"is_ready"`
	RoomInfo RoomInfo `json:"room_info"`
}

type GameStartedData struct {
	GameState GameState `json:"game_state"`
}

// Request/response shapes for the HTTP room endpoints.

type CreateRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers *int   `json:"max_players,omitempty"`
	Password   string `json:"password,omitempty"`
	GameMode   string `json:"game_mode,omitempty"`
}

type CreateRoomResponse struct {
	RoomId      string `json:"room_id"`
	Name        string `json:"name"`
	MaxPlayers  int    `json:"max_players"`
	HasPassword bool   `json:"has_password"`
}
