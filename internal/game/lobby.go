package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/lobby-backend/internal"
)

// =============================================================================
// LOBBY EVENT HANDLERS
// =============================================================================

const defaultRecordTimeout = 5 * time.Second

// GameRecorder receives every game that leaves the lobby.
type GameRecorder interface {
	RecordGameStarted(ctx context.Context, record internal.GameRecord) error
}

// Lobby handles connection events. Each room's mutex is held for the whole
// validate/mutate/broadcast sequence of an event that targets it, so
// capacity checks, readiness flips and the start transition never
// interleave within a room. Lock order is room, then store, registry and
// hub; a move between rooms holds both room locks, taken in id order.
type Lobby struct {
	Rooms    *RoomStore
	Registry *ConnectionRegistry
	Hub      *Hub

	recorder      GameRecorder
	recordTimeout time.Duration
	pending       sync.WaitGroup
}

type Option func(*Lobby)

func WithRecorder(recorder GameRecorder) Option {
	return func(l *Lobby) {
		l.recorder = recorder
	}
}

func WithRecordTimeout(timeout time.Duration) Option {
	return func(l *Lobby) {
		if timeout > 0 {
			l.recordTimeout = timeout
		}
	}
}

func NewLobby(rooms *RoomStore, registry *ConnectionRegistry, hub *Hub, opts ...Option) *Lobby {
	l := &Lobby{
		Rooms:         rooms,
		Registry:      registry,
		Hub:           hub,
		recordTimeout: defaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Connect registers a new live connection. It is not in any room yet.
func (l *Lobby) Connect(client *Client) {
	l.Hub.Register(client)
	SendTo(l.Hub, client.Id, internal.Message[internal.ConnectedData]{
		Type: internal.EventConnected,
		Data: internal.ConnectedData{PlayerId: client.Id},
	})
	log.Info().Str("conn_id", client.Id).Msg("[Connect] client connected")
}

// Disconnect runs the leave cleanup for a lost connection and forgets it.
func (l *Lobby) Disconnect(connId string) {
	l.Leave(connId)
	l.Hub.Unregister(connId)
	log.Info().Str("conn_id", connId).Msg("[Disconnect] client disconnected")
}

// Join seats the connection in a room. Failures are reported to the
// caller with a direct error event and leave every room untouched,
// including the one the connection already sits in.
func (l *Lobby) Join(connId string, req internal.JoinRoomData) error {
	var from *Binding
	if binding, ok := l.Registry.Lookup(connId); ok {
		if binding.RoomId == req.RoomId {
			if l.resendRoomJoined(connId, binding.RoomId) {
				return nil
			}
			// stale binding for a room that is gone
			l.Leave(connId)
		} else {
			from = &binding
		}
	}

	if err := l.join(connId, req, from); err != nil {
		log.Info().
			Err(err).
			Str("conn_id", connId).
			Str("room_id", req.RoomId).
			Msg("[Join] rejected")
		SendTo(l.Hub, connId, internal.Message[internal.ErrorData]{
			Type: internal.EventError,
			Data: internal.ErrorData{Message: ErrorMessage(err)},
		})
		return err
	}
	return nil
}

// join validates and seats the connection. When from is set the previous
// seat is given up only after the target room has accepted the player.
func (l *Lobby) join(connId string, req internal.JoinRoomData, from *Binding) error {
	room, err := l.Rooms.Get(req.RoomId)
	if err != nil {
		return err
	}

	var prev *internal.Room
	if from != nil {
		// A missing previous room needs no cleanup; Bind overwrites the entry.
		prev, _ = l.Rooms.Get(from.RoomId)
	}

	// --- Critical section ---
	unlock := lockRooms(room, prev)
	defer unlock()

	if room.Closed {
		return ErrRoomNotFound
	}
	if !room.CheckPassword(req.Password) {
		return ErrInvalidPassword
	}
	if room.IsFull() {
		return ErrRoomFull
	}

	// A connection sits in at most one room.
	if prev != nil && !prev.Closed {
		l.leaveLocked(prev, connId)
	}

	player := internal.NewPlayer(connId, req.PlayerName)
	room.AddPlayer(player)
	l.Registry.Bind(connId, room.Id, player)

	info := room.Info()
	BroadcastToRoomExcept(l.Hub, room, internal.Message[internal.PlayerJoinedData]{
		Type: internal.EventPlayerJoined,
		Data: internal.PlayerJoinedData{
			Player:   player.Snapshot(),
			RoomInfo: info,
		},
	}, connId)
	SendTo(l.Hub, connId, internal.Message[internal.RoomJoinedData]{
		Type: internal.EventRoomJoined,
		Data: internal.RoomJoinedData{
			Room:    info,
			Players: room.PlayerSnapshots(),
		},
	})

	log.Info().
		Str("conn_id", connId).
		Str("room_id", room.Id).
		Str("player", player.Name).
		Int("players", info.CurrentPlayers).
		Int("max_players", info.MaxPlayers).
		Msg("[Join] player joined")
	return nil
}

// lockRooms locks one room, or two distinct rooms in id order.
func lockRooms(a, b *internal.Room) (unlock func()) {
	if b == nil || b == a {
		a.Mu.Lock()
		return a.Mu.Unlock
	}
	first, second := a, b
	if second.Id < first.Id {
		first, second = second, first
	}
	first.Mu.Lock()
	second.Mu.Lock()
	return func() {
		second.Mu.Unlock()
		first.Mu.Unlock()
	}
}

// resendRoomJoined answers a repeated join for the room the connection is
// already in.
func (l *Lobby) resendRoomJoined(connId string, roomId string) bool {
	room, err := l.Rooms.Get(roomId)
	if err != nil {
		return false
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed || room.FindPlayer(connId) == nil {
		return false
	}
	SendTo(l.Hub, connId, internal.Message[internal.RoomJoinedData]{
		Type: internal.EventRoomJoined,
		Data: internal.RoomJoinedData{
			Room:    room.Info(),
			Players: room.PlayerSnapshots(),
		},
	})
	return true
}

// Leave removes the connection from its room. Unbound connections are
// ignored. The last one out deletes the room.
func (l *Lobby) Leave(connId string) {
	binding, ok := l.Registry.Lookup(connId)
	if !ok {
		return
	}

	room, err := l.Rooms.Get(binding.RoomId)
	if err != nil {
		l.Registry.Unbind(connId)
		log.Warn().Str("conn_id", connId).Str("room_id", binding.RoomId).Msg("[Leave] binding pointed at missing room")
		return
	}

	// --- Critical section ---
	room.Mu.Lock()
	defer room.Mu.Unlock()

	l.Registry.Unbind(connId)
	l.leaveLocked(room, connId)
}

// leaveLocked drops the player from room, which must be locked, and tells
// the remaining members. The registry entry is left to the caller.
func (l *Lobby) leaveLocked(room *internal.Room, connId string) {
	if !room.RemovePlayer(connId) {
		return
	}

	if room.IsEmpty() {
		room.Closed = true
		l.Rooms.Delete(room.Id)
		log.Info().Str("conn_id", connId).Str("room_id", room.Id).Msg("[Leave] last player left, room removed")
		return
	}

	BroadcastToRoom(l.Hub, room, internal.Message[internal.PlayerLeftData]{
		Type: internal.EventPlayerLeft,
		Data: internal.PlayerLeftData{
			PlayerId: connId,
			RoomInfo: room.Info(),
		},
	})

	log.Info().
		Str("conn_id", connId).
		Str("room_id", room.Id).
		Int("players_remaining", room.GetPlayerCount()).
		Msg("[Leave] player left")
}

// ToggleReady flips the caller's ready flag and starts the game once the
// room qualifies. Unbound connections are ignored.
func (l *Lobby) ToggleReady(connId string) {
	binding, ok := l.Registry.Lookup(connId)
	if !ok {
		return
	}

	room, err := l.Rooms.Get(binding.RoomId)
	if err != nil {
		return
	}

	// --- Critical section ---
	room.Mu.Lock()

	player := room.FindPlayer(connId)
	if room.Closed || player == nil {
		room.Mu.Unlock()
		return
	}

	player.Ready = !player.Ready
	BroadcastToRoom(l.Hub, room, internal.Message[internal.PlayerReadyData]{
		Type: internal.EventPlayerReady,
		Data: internal.PlayerReadyData{
			PlayerId: connId,
			IsReady:  player.Ready,
			RoomInfo: room.Info(),
		},
	})

	state, started := room.TryStart()
	var record internal.GameRecord
	if started {
		BroadcastToRoom(l.Hub, room, internal.Message[internal.GameStartedData]{
			Type: internal.EventGameStarted,
			Data: internal.GameStartedData{GameState: *state},
		})
		record = internal.GameRecord{
			RoomId:    room.Id,
			RoomName:  room.Name,
			GameMode:  room.GameMode,
			Players:   room.PlayerSnapshots(),
			StartedAt: time.Now(),
		}
	}
	ready := player.Ready
	readyCount, total := countReady(room)

	room.Mu.Unlock()
	// --- End critical section ---

	log.Info().
		Str("conn_id", connId).
		Str("room_id", binding.RoomId).
		Bool("ready", ready).
		Int("ready_count", readyCount).
		Int("players", total).
		Msg("[ToggleReady] readiness changed")

	if started {
		log.Info().Str("room_id", record.RoomId).Str("game_mode", record.GameMode).Msg("[ToggleReady] all players ready, game started")
		l.record(record)
	}
}

func countReady(room *internal.Room) (int, int) {
	ready := 0
	for _, p := range room.Players {
		if p.Ready {
			ready++
		}
	}
	return ready, len(room.Players)
}

// record hands a started game to the recorder off the event path.
func (l *Lobby) record(record internal.GameRecord) {
	if l.recorder == nil {
		return
	}

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.recordTimeout)
		defer cancel()

		if err := l.recorder.RecordGameStarted(ctx, record); err != nil {
			ev := log.Error()
			if errors.Is(err, context.DeadlineExceeded) {
				ev = log.Warn()
			}
			ev.Err(err).Str("room_id", record.RoomId).Msg("[ToggleReady] failed to record game start")
		}
	}()
}

// Wait blocks until in-flight game records are written.
func (l *Lobby) Wait() {
	l.pending.Wait()
}
