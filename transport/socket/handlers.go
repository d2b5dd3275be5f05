package socket

import (
	"fmt"
	"strings"
	"time"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/Brenn007/matchmaking-project/internal/entity"
	"github.com/Brenn007/matchmaking-project/internal/protocol"
)

func (that *Dispatcher) handleJoin(conn Conn, msg protocol.Message) error {
	join, ok := msg.(protocol.Join)
	if !ok {
		return fmt.Errorf("%w: %T", apperror.ErrUnexpectedMessage, msg)
	}

	entry := entity.QueueEntry{
		Player: entity.Player{
			Name: strings.TrimSpace(join.PlayerName),
			Conn: conn,
		},
		EnqueuedAt: time.Now(),
	}

	if err := that.matchmaker.Enqueue(entry); err != nil {
		return fmt.Errorf("failed to join: %w", err)
	}

	return nil
}

// handleMove applies a move for the seat the server assigned to conn.
// Game rule failures are answered with move_rejected and are not protocol errors.
func (that *Dispatcher) handleMove(conn Conn, msg protocol.Message) error {
	move, ok := msg.(protocol.Move)
	if !ok {
		return fmt.Errorf("%w: %T", apperror.ErrUnexpectedMessage, msg)
	}

	log := that.logger.With("method", "handleMove", "connID", conn.ID())

	handle, seat, err := that.registry.Route(conn.ID())
	if err != nil {
		reject(conn, protocol.ReasonNotInSession)
		return nil
	}

	if handle.ID() != move.SessionID || int(seat) != move.SeatNumber {
		reject(conn, protocol.ReasonIdentityMismatch)

		return fmt.Errorf("%w: claimed session %d seat %d, assigned session %d seat %d",
			apperror.ErrIdentityMismatch, move.SessionID, move.SeatNumber, handle.ID(), seat)
	}

	view, outcome, err := handle.SubmitMove(seat, move.Row, move.Col)
	if err != nil {
		reason, ok := protocol.RejectReasonFor(err)
		if !ok {
			return fmt.Errorf("failed to submit move: %w", err)
		}

		log.Debug("move rejected", "sessionID", handle.ID(), "reason", reason)
		reject(conn, reason)

		return nil
	}

	if outcome != entity.OutcomeContinue {
		log.Info("session finished", "sessionID", view.ID, "outcome", outcome, "winner", view.Winner)
		that.registry.Destroy(view.ID)
	}

	return nil
}

func reject(conn entity.Connection, reason protocol.RejectReason) {
	_ = send(conn, protocol.MoveRejected{Reason: reason})
}

func send(conn entity.Connection, msg protocol.Message) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msg.Type(), err)
	}

	if err = conn.Send(payload); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type(), err)
	}

	return nil
}
