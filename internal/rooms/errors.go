// internal/rooms/errors.go
//
// Sentinel errors of the room engine. The transport sends err.Error() back
// in the ack of the event that caused it.

package rooms

import "errors"

// Errors returned to the initiating connection. None of them leave the room
// partially mutated.
var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrRoomFull              = errors.New("room is full")
	ErrNotInRoom             = errors.New("not in this room")
	ErrInvalidName           = errors.New("name must be 1-20 characters")
	ErrNameTaken             = errors.New("name already in use")
	ErrSeatNotFound          = errors.New("nothing to resume")
	ErrSeatInUse             = errors.New("player is still connected")
	ErrWrongMode             = errors.New("not available in this mode")
	ErrNotHost               = errors.New("only the host can do that")
	ErrHostCannotGuess       = errors.New("host cannot guess")
	ErrHostClaimed           = errors.New("host already claimed")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrRoundLive             = errors.New("round already in progress")
	ErrRoundNotLive          = errors.New("round is not live")
	ErrRoundNotOver          = errors.New("no finished round")
	ErrAwaitingRematch       = errors.New("waiting for rematch")
	ErrNotEnoughPlayers      = errors.New("not enough players")
	ErrNoGuessesLeft         = errors.New("no guesses left")
	ErrAlreadyGuessed        = errors.New("already guessed")
	ErrNotInWordList         = errors.New("not in word list")
	ErrBadSettings           = errors.New("invalid room settings")
	ErrDictionaryUnavailable = errors.New("service unavailable")
	ErrEngineStopped         = errors.New("engine stopped")
)
