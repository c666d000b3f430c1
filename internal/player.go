package internal

const defaultNamePrefixLen = 4

// NewPlayer builds a not-ready member record for a connection. An empty
// name falls back to one derived from the connection id.
func NewPlayer(connId string, name string) *Player {
	if name == "" {
		name = DefaultPlayerName(connId)
	}
	return &Player{
		Id:    connId,
		Name:  name,
		Ready: false,
	}
}

func DefaultPlayerName(connId string) string {
	prefix := connId
	if len(prefix) > defaultNamePrefixLen {
		prefix = prefix[:defaultNamePrefixLen]
	}
	return "Player-" + prefix
}

// Snapshot returns a copy that is safe to hand out after the room lock
// is released.
func (p *Player) Snapshot() Player {
	return Player{
		Id:    p.Id,
		Name:  p.Name,
		Ready: p.Ready,
	}
}
