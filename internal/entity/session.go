package entity

import (
	"fmt"
	"time"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDrawn      Status = "drawn"
	StatusAbandoned  Status = "abandoned"
)

// Outcome is the result of an accepted move.
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeWin      Outcome = "win"
	OutcomeDraw     Outcome = "draw"
)

// EndReason explains why a session left in_progress.
type EndReason string

const (
	EndReasonWin     EndReason = "win"
	EndReasonDraw    EndReason = "draw"
	EndReasonForfeit EndReason = "forfeit"
)

// Session is the authoritative state of one match. It is not safe for
// concurrent use; the registry serializes every call per session.
type Session struct {
	ID        uint64
	Board     Board
	Players   [2]Player
	Turn      Seat
	Status    Status
	Winner    Seat
	Moves     int
	CreatedAt time.Time
}

// NewSession seats first as seat 1 and second as seat 2.
func NewSession(id uint64, first, second Player) *Session {
	return &Session{
		ID:        id,
		Board:     NewBoard(),
		Players:   [2]Player{first, second},
		Turn:      SeatOne,
		Status:    StatusInProgress,
		Winner:    SeatNone,
		CreatedAt: time.Now(),
	}
}

func (that *Session) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Session) IsFinished() bool {
	return that.Status != StatusInProgress
}

// SubmitMove applies a move for seat at the board index.
//
// Checks run in a fixed order: game over, turn, cell. A move that fills the
// board and completes a line is a win, never a draw.
func (that *Session) SubmitMove(seat Seat, index int) (Outcome, error) {
	if !that.IsInProgress() {
		return "", apperror.ErrGameOver
	}

	if seat != that.Turn {
		return "", apperror.ErrNotYourTurn
	}

	if err := that.Board.Place(index, seat.Mark()); err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidCell, err)
	}

	that.Moves++

	if winner, ok := that.Board.WinningLine(); ok {
		that.Status = StatusWon
		that.Winner = winner
		return OutcomeWin, nil
	}

	if that.Board.IsFull() {
		that.Status = StatusDrawn
		return OutcomeDraw, nil
	}

	that.Turn = that.Turn.Opponent()

	return OutcomeContinue, nil
}

// Abandon ends an in-progress session in favour of the remaining seat.
// It returns false when the session was already finished, so a second call
// caused by a disconnect race is a no-op.
func (that *Session) Abandon(remaining Seat) bool {
	if !that.IsInProgress() || !remaining.IsValid() {
		return false
	}

	that.Status = StatusAbandoned
	that.Winner = remaining

	return true
}

func (that *Session) View() SessionView {
	return SessionView{
		ID:        that.ID,
		Board:     that.Board,
		Players:   that.Players,
		Turn:      that.Turn,
		Status:    that.Status,
		Winner:    that.Winner,
		Moves:     that.Moves,
		CreatedAt: that.CreatedAt,
	}
}

// SessionView is a copy of a session taken under its lock.
type SessionView struct {
	ID        uint64
	Board     Board
	Players   [2]Player
	Turn      Seat
	Status    Status
	Winner    Seat
	Moves     int
	CreatedAt time.Time
}

func (that SessionView) Player(seat Seat) Player {
	if !seat.IsValid() {
		return Player{}
	}

	return that.Players[seat.index()]
}

// SeatOf returns the seat held by the connection, SeatNone if it is not seated here.
func (that SessionView) SeatOf(connID string) Seat {
	for i, player := range that.Players {
		if player.ConnID() == connID {
			return Seat(i + 1)
		}
	}

	return SeatNone
}

func (that SessionView) IsFinished() bool {
	return that.Status != StatusInProgress
}

func (that SessionView) EndReason() EndReason {
	switch that.Status {
	case StatusWon:
		return EndReasonWin
	case StatusDrawn:
		return EndReasonDraw
	case StatusAbandoned:
		return EndReasonForfeit
	default:
		return ""
	}
}

func (that SessionView) Summary() SessionSummary {
	return SessionSummary{
		ID:        that.ID,
		Players:   [2]string{that.Players[0].Name, that.Players[1].Name},
		Board:     that.Board.String(),
		Turn:      that.Turn,
		Status:    that.Status,
		Winner:    that.Winner,
		Moves:     that.Moves,
		StartedAt: that.CreatedAt,
	}
}
