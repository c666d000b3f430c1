package game

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidPassword = errors.New("invalid room password")
	ErrRoomFull        = errors.New("room is full")
	ErrValidation      = errors.New("validation failed")
)

// ErrorMessage turns a join failure into the text sent to the client.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room does not exist"
	case errors.Is(err, ErrInvalidPassword):
		return "Incorrect room password"
	case errors.Is(err, ErrRoomFull):
		return "Room is full"
	default:
		return "Request failed"
	}
}
