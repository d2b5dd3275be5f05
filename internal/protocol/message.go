package protocol

import (
	"errors"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/Brenn007/matchmaking-project/internal/entity"
)

type Type string

const (
	TypeJoin         Type = "join"
	TypeQueueStatus  Type = "queue_status"
	TypeMatchFound   Type = "match_found"
	TypeMove         Type = "move"
	TypeGameState    Type = "game_state"
	TypeMoveRejected Type = "move_rejected"
	TypeGameEnd      Type = "game_end"
	TypeOpponentLeft Type = "opponent_left"
)

// Message is one frame of the wire protocol. The set of implementations is closed.
type Message interface {
	Type() Type
}

// Join asks the server to queue the connection. client → server.
type Join struct {
	PlayerName string `json:"player_name"`
}

// QueueStatus tells a waiting player where they stand. server → client.
type QueueStatus struct {
	Position     int `json:"position"`
	TotalWaiting int `json:"total_waiting"`
}

// MatchFound carries the seat the server assigned. server → client.
type MatchFound struct {
	SessionID    uint64 `json:"session_id"`
	SeatNumber   int    `json:"seat_number"`
	OpponentName string `json:"opponent_name"`
}

// Move is a move request. client → server.
type Move struct {
	SessionID  uint64 `json:"session_id"`
	SeatNumber int    `json:"seat_number"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
}

// GameState is the board after an accepted move. server → client.
type GameState struct {
	SessionID  uint64 `json:"session_id"`
	Board      string `json:"board"`
	TurnSeat   int    `json:"turn_seat"`
	Finished   bool   `json:"finished"`
	WinnerSeat *int   `json:"winner_seat"`
}

type RejectReason string

const (
	ReasonNotYourTurn      RejectReason = "not_your_turn"
	ReasonInvalidCell      RejectReason = "invalid_cell"
	ReasonGameOver         RejectReason = "game_over"
	ReasonNotInSession     RejectReason = "not_in_session"
	ReasonIdentityMismatch RejectReason = "identity_mismatch"
)

// MoveRejected goes to the sender of a refused move only. server → client.
type MoveRejected struct {
	Reason RejectReason `json:"reason"`
}

// GameEnd announces a terminal outcome; a nil winner is a draw. server → client.
type GameEnd struct {
	SessionID  uint64           `json:"session_id"`
	WinnerSeat *int             `json:"winner_seat"`
	Reason     entity.EndReason `json:"reason"`
}

// OpponentLeft tells the remaining player their peer disconnected. server → client.
type OpponentLeft struct {
	SessionID uint64 `json:"session_id"`
}

func (Join) Type() Type { return TypeJoin }
func (QueueStatus) Type() Type { return TypeQueueStatus }
func (MatchFound) Type() Type { return TypeMatchFound }
func (Move) Type() Type { return TypeMove }
func (GameState) Type() Type { return TypeGameState }
func (MoveRejected) Type() Type { return TypeMoveRejected }
func (GameEnd) Type() Type { return TypeGameEnd }
func (OpponentLeft) Type() Type { return TypeOpponentLeft }

func NewMatchFound(view entity.SessionView, seat entity.Seat) MatchFound {
	return MatchFound{
		SessionID:    view.ID,
		SeatNumber:   int(seat),
		OpponentName: view.Player(seat.Opponent()).Name,
	}
}

func NewGameState(view entity.SessionView) GameState {
	return GameState{
		SessionID:  view.ID,
		Board:      view.Board.String(),
		TurnSeat:   int(view.Turn),
		Finished:   view.IsFinished(),
		WinnerSeat: seatPtr(view.Winner),
	}
}

func NewGameEnd(view entity.SessionView) GameEnd {
	return GameEnd{
		SessionID:  view.ID,
		WinnerSeat: seatPtr(view.Winner),
		Reason:     view.EndReason(),
	}
}

// RejectReasonFor maps a refused move to its wire reason code.
func RejectReasonFor(err error) (RejectReason, bool) {
	switch {
	case errors.Is(err, apperror.ErrGameOver):
		return ReasonGameOver, true
	case errors.Is(err, apperror.ErrNotYourTurn):
		return ReasonNotYourTurn, true
	case errors.Is(err, apperror.ErrInvalidCell):
		return ReasonInvalidCell, true
	case errors.Is(err, apperror.ErrSessionNotFound):
		return ReasonNotInSession, true
	case errors.Is(err, apperror.ErrIdentityMismatch):
		return ReasonIdentityMismatch, true
	default:
		return "", false
	}
}

func seatPtr(seat entity.Seat) *int {
	if !seat.IsValid() {
		return nil
	}

	value := int(seat)

	return &value
}
