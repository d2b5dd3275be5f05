package socket

import (
	"log/slog"

	"github.com/Brenn007/matchmaking-project/internal/entity"
	"github.com/Brenn007/matchmaking-project/internal/protocol"
)

// Notifier turns matchmaking and session events into frames for the
// players involved. It runs under matchmaker or session locks and only
// queues into connection outboxes.
type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger.With("component", "notifier"),
	}
}

func (that *Notifier) PlayerQueued(entry entity.QueueEntry, position, total int) {
	that.deliver(entry.Player.Conn, protocol.QueueStatus{Position: position, TotalWaiting: total})
}

func (that *Notifier) MatchFound(view entity.SessionView) {
	for _, seat := range []entity.Seat{entity.SeatOne, entity.SeatTwo} {
		that.deliver(view.Player(seat).Conn, protocol.NewMatchFound(view, seat))
	}
}

func (that *Notifier) MatchCreated(entity.SessionView) {}

func (that *Notifier) MoveApplied(view entity.SessionView, _ entity.Seat, _, _ int, _ entity.Outcome) {
	that.broadcast(view, protocol.NewGameState(view))
}

// MatchEnded sends game_end to both seats, or opponent_left to the remaining seat on a forfeit.
func (that *Notifier) MatchEnded(view entity.SessionView, reason entity.EndReason) {
	if reason == entity.EndReasonForfeit {
		that.deliver(view.Player(view.Winner).Conn, protocol.OpponentLeft{SessionID: view.ID})
		return
	}

	that.broadcast(view, protocol.NewGameEnd(view))
}

func (that *Notifier) broadcast(view entity.SessionView, msg protocol.Message) {
	for _, player := range view.Players {
		that.deliver(player.Conn, msg)
	}
}

func (that *Notifier) deliver(conn entity.Connection, msg protocol.Message) {
	if conn == nil {
		return
	}

	if err := send(conn, msg); err != nil {
		that.logger.Warn("failed to deliver message",
			"method", "deliver", "connID", conn.ID(), "type", msg.Type(), "error", err)
	}
}
