package game

import "errors"

var (
	ErrNotFound            = errors.New("game not found")
	ErrForbidden           = errors.New("only the game master can perform this action")
	ErrInvalidState        = errors.New("action not allowed in the current game state")
	ErrFull                = errors.New("game is full")
	ErrNameTaken           = errors.New("name already taken in this game")
	ErrNotParticipant      = errors.New("player not found")
	ErrDuplicatePending    = errors.New("an answer is already waiting for validation")
	ErrNoPendingAnswer     = errors.New("no pending answer for this player")
	ErrInsufficientPlayers = errors.New("at least 2 participants are required to start")
)

// ErrorCode maps a registry error to a stable machine-readable code. Unknown
// errors map to "internal".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrFull):
		return "full"
	case errors.Is(err, ErrNameTaken):
		return "name_taken"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, ErrDuplicatePending):
		return "duplicate_pending"
	case errors.Is(err, ErrNoPendingAnswer):
		return "no_pending_answer"
	case errors.Is(err, ErrInsufficientPlayers):
		return "insufficient_players"
	default:
		return "internal"
	}
}
