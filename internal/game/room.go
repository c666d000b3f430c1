package game

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/lobby-backend/internal"
)

// =============================================================================
// ROOM STORE
// =============================================================================

// RoomStore owns every live room keyed by id. The store lock only guards
// the map; room contents are guarded by each room's own mutex.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room
	now   func() time.Time
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*internal.Room),
		now:   time.Now,
	}
}

type CreateRoomParams struct {
	Name       string
	MaxPlayers int
	Password   string
	GameMode   string
}

// Validate applies defaults and rejects rooms that cannot exist.
func (p *CreateRoomParams) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("room name must not be empty: %w", ErrValidation)
	}
	if p.MaxPlayers == 0 {
		p.MaxPlayers = internal.DefaultMaxPlayers
	}
	if p.MaxPlayers < 0 {
		return fmt.Errorf("max_players must be positive, got %d: %w", p.MaxPlayers, ErrValidation)
	}
	if p.GameMode == "" {
		p.GameMode = internal.DefaultGameMode
	}
	return nil
}

// Create validates the parameters and stores a fresh waiting room.
func (s *RoomStore) Create(params CreateRoomParams) (*internal.Room, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	room := &internal.Room{
		Id:         uuid.NewString(),
		Name:       params.Name,
		MaxPlayers: params.MaxPlayers,
		Password:   params.Password,
		GameMode:   params.GameMode,
		CreatedAt:  s.now(),
		Players:    make([]*internal.Player, 0, params.MaxPlayers),
		Status:     internal.StatusWaiting,
	}

	s.mu.Lock()
	s.rooms[room.Id] = room
	s.mu.Unlock()

	log.Info().
		Str("room_id", room.Id).
		Str("name", room.Name).
		Int("max_players", room.MaxPlayers).
		Str("game_mode", room.GameMode).
		Bool("has_password", room.HasPassword()).
		Msg("[RoomStore] created room")

	return room, nil
}

func (s *RoomStore) Get(roomId string) (*internal.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomId]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", roomId, ErrRoomNotFound)
	}
	return room, nil
}

// Delete removes the room from the map. Callers that hold the room lock
// should mark it closed first so late joiners are turned away.
func (s *RoomStore) Delete(roomId string) {
	s.mu.Lock()
	_, existed := s.rooms[roomId]
	delete(s.rooms, roomId)
	s.mu.Unlock()

	if existed {
		log.Info().Str("room_id", roomId).Msg("[RoomStore] deleted room")
	}
}

func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *RoomStore) snapshot() []*internal.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*internal.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// ListWaiting summarises every room still waiting for players, oldest
// first.
func (s *RoomStore) ListWaiting() []internal.RoomSummary {
	rooms := s.snapshot()
	slices.SortFunc(rooms, func(a, b *internal.Room) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	summaries := make([]internal.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.Mu.Lock()
		if !room.Closed && room.Status == internal.StatusWaiting {
			summaries = append(summaries, room.Summary())
		}
		room.Mu.Unlock()
	}
	return summaries
}

// ReapIdle deletes rooms that were created but never joined and are older
// than ttl. Rooms that ever had a member are cleaned up by the last leave
// instead. It returns the number of rooms removed.
func (s *RoomStore) ReapIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	reaped := 0

	for _, room := range s.snapshot() {
		room.Mu.Lock()
		idle := !room.Closed && !room.HadMembers && room.IsEmpty() && room.CreatedAt.Before(cutoff)
		if idle {
			room.Closed = true
			s.Delete(room.Id)
			reaped++
		}
		room.Mu.Unlock()
	}

	if reaped > 0 {
		log.Info().Int("reaped", reaped).Dur("ttl", ttl).Msg("[RoomStore] reaped idle rooms")
	}
	return reaped
}
