package internal

import "slices"

// Methods (Room Struct)
// Unless stated otherwise every method expects r.Mu to be held.

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

func (r *Room) HasPassword() bool {
	return r.Password != ""
}

func (r *Room) CheckPassword(password string) bool {
	return !r.HasPassword() || r.Password == password
}

func (r *Room) FindPlayer(connId string) *Player {
	idx := slices.IndexFunc(r.Players, func(p *Player) bool {
		return p.Id == connId
	})
	if idx < 0 {
		return nil
	}
	return r.Players[idx]
}

func (r *Room) AddPlayer(player *Player) {
	r.Players = append(r.Players, player)
	r.HadMembers = true
}

// RemovePlayer drops the member keyed by connId, keeping join order for
// the rest. It reports whether a member was removed.
func (r *Room) RemovePlayer(connId string) bool {
	before := len(r.Players)
	r.Players = slices.DeleteFunc(r.Players, func(p *Player) bool {
		return p.Id == connId
	})
	return len(r.Players) != before
}

func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

func (r *Room) AreAllPlayersReady() bool {
	for _, player := range r.Players {
		if !player.Ready {
			return false
		}
	}

	return true
}

func (r *Room) CanStartGame() bool {
	return r.GetPlayerCount() >= MinPlayersToStart && r.AreAllPlayersReady()
}

// TryStart moves a waiting room into playing once every member is ready
// and there are enough of them. It only ever fires once per room: after
// the status leaves waiting it is a no-op and the game state is left as is.
func (r *Room) TryStart() (*GameState, bool) {
	if r.Status != StatusWaiting {
		return nil, false
	}
	if !r.CanStartGame() {
		return nil, false
	}

	r.Status = StatusPlaying
	r.GameState = &GameState{
		Turn:          0,
		CurrentPlayer: r.Players[0].Id,
		Board:         InitializeBoard(r.GameMode),
	}

	return r.GameState, true
}

func (r *Room) Info() RoomInfo {
	return RoomInfo{
		Id:             r.Id,
		Name:           r.Name,
		GameMode:       r.GameMode,
		CurrentPlayers: len(r.Players),
		MaxPlayers:     r.MaxPlayers,
		Status:         r.Status,
	}
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		Id:             r.Id,
		Name:           r.Name,
		GameMode:       r.GameMode,
		CurrentPlayers: len(r.Players),
		MaxPlayers:     r.MaxPlayers,
		HasPassword:    r.HasPassword(),
		Status:         r.Status,
	}
}

// PlayerSnapshots copies the member list in join order.
func (r *Room) PlayerSnapshots() []Player {
	players := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.Snapshot())
	}
	return players
}

// ConnectionIds lists the connections currently seated in the room.
func (r *Room) ConnectionIds() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.Id)
	}
	return ids
}
