package internal

import (
	"sync"
	"time"
)

const (
	MinPlayersToStart = 2
	DefaultMaxPlayers = 2
	DefaultGameMode   = "classic"
)

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
	// StatusEnded is never entered by the lobby; game logic owns that transition.
	StatusEnded RoomStatus = "ended"
)

type Room struct {
	Id         string
	Name       string
	MaxPlayers int
	Password   string
	GameMode   string
	CreatedAt  time.Time

	// Members in join order
	Players []*Player

	// Game State
	Status    RoomStatus
	GameState *GameState

	// Set once the room has been removed from the store. A room that
	// is closed must not accept new players.
	Closed bool
	// Set on the first successful join; idle reaping only touches rooms
	// nobody ever entered.
	HadMembers bool

	// Concurrency control
	Mu sync.Mutex `json:"-"`
}

type Player struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

type Board struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type GameState struct {
	Turn          int    `json:"turn"`
	CurrentPlayer string `json:"current_player"`
	Board         Board  `json:"board"`
}

// RoomInfo is the summary attached to in-room events.
type RoomInfo struct {
	Id             string     `json:"id"`
	Name           string     `json:"name"`
	GameMode       string     `json:"game_mode"`
	CurrentPlayers int        `json:"current_players"`
	MaxPlayers     int        `json:"max_players"`
	Status         RoomStatus `json:"status"`
}

// RoomSummary is a row of the public room listing.
type RoomSummary struct {
	Id             string     `json:"id"`
	Name           string     `json:"name"`
	GameMode       string     `json:"game_mode"`
	CurrentPlayers int        `json:"current_players"`
	MaxPlayers     int        `json:"max_players"`
	HasPassword    bool       `json:"has_password"`
	Status         RoomStatus `json:"status"`
}

// GameRecord describes a game at the moment it left the lobby.
type GameRecord struct {
	RoomId    string    `json:"room_id"`
	RoomName  string    `json:"room_name"`
	GameMode  string    `json:"game_mode"`
	Players   []Player  `json:"players"`
	StartedAt time.Time `json:"started_at"`
}
