package apperror

import "errors"

// game rules.
var (
	ErrGameOver     = errors.New("game is already over")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrInvalidCell  = errors.New("invalid cell")
	ErrCellOccupied = errors.New("cell is already occupied")

	ErrCellOutOfRange = errors.New("cell index out of range")
)

// matchmaking and session lifecycle.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyJoined   = errors.New("player already joined")
	ErrEmptyPlayerName = errors.New("player name is empty")
)

// protocol.
var (
	ErrMalformedFrame     = errors.New("malformed frame")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrFrameTooLarge      = errors.New("frame too large")
	ErrIdentityMismatch   = errors.New("move does not match the assigned seat")
	ErrUnexpectedMessage  = errors.New("unexpected message")
)

// transport.
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrOutboxFull       = errors.New("outbox is full")
)
