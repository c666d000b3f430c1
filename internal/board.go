package internal

const (
	ModeClassic = "classic"
	ModeTeam    = "team"

	boardTypeCustom   = "custom"
	boardStateInitial = "initial"
)

// InitializeBoard returns the opening board for a game mode. Real board
// content belongs to the game itself; the lobby only hands over a tagged
// placeholder. Unknown modes share the custom layout.
func InitializeBoard(gameMode string) Board {
	switch gameMode {
	case ModeClassic:
		return Board{Type: ModeClassic, State: boardStateInitial}
	case ModeTeam:
		return Board{Type: ModeTeam, State: boardStateInitial}
	default:
		return Board{Type: boardTypeCustom, State: boardStateInitial}
	}
}
