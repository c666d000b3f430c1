package game

import (
	"sync"

	"github.com/scythe504/lobby-backend/internal"
)

// Binding ties a connection to the room it is seated in. Player points at
// the record inside that room's player list and must only be touched while
// the room lock is held.
type Binding struct {
	RoomId string
	Player *internal.Player
}

// ConnectionRegistry maps live connection ids to their room seat. Bind and
// Unbind are called with the owning room locked, which keeps the registry
// in step with room membership.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		bindings: make(map[string]Binding),
	}
}

func (r *ConnectionRegistry) Bind(connId string, roomId string, player *internal.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[connId] = Binding{RoomId: roomId, Player: player}
}

func (r *ConnectionRegistry) Lookup(connId string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[connId]
	return b, ok
}

func (r *ConnectionRegistry) Unbind(connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, connId)
}

func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
