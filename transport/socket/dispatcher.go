package socket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/Brenn007/matchmaking-project/internal/entity"
	"github.com/Brenn007/matchmaking-project/internal/protocol"
	"github.com/Brenn007/matchmaking-project/internal/usecase"
)

// MaxProtocolErrors consecutive bad frames close the connection.
const MaxProtocolErrors = 3

type matchmaker interface {
	Enqueue(entry entity.QueueEntry) error
	Withdraw(connID string) bool
}

type sessionRegistry interface {
	Route(connID string) (*usecase.SessionHandle, entity.Seat, error)
	Destroy(id uint64)
}

type Dispatcher struct {
	logger     *slog.Logger
	matchmaker matchmaker
	registry   sessionRegistry

	handlers map[protocol.Type]func(conn Conn, msg protocol.Message) error
}

func NewDispatcher(logger *slog.Logger, matchmaker matchmaker, registry sessionRegistry) *Dispatcher {
	dispatcher := &Dispatcher{
		logger:     logger.With("component", "dispatcher"),
		matchmaker: matchmaker,
		registry:   registry,

		handlers: make(map[protocol.Type]func(Conn, protocol.Message) error),
	}

	dispatcher.handlers[protocol.TypeJoin] = dispatcher.handleJoin
	dispatcher.handlers[protocol.TypeMove] = dispatcher.handleMove

	return dispatcher
}

// Serve reads frames from conn until it fails or ctx is done, then releases
// everything the connection held.
func (that *Dispatcher) Serve(ctx context.Context, conn Conn) {
	log := that.logger.With("method", "Serve", "connID", conn.ID())

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	defer that.disconnect(conn)

	log.Info("connection opened")

	strikes := 0
	for {
		frame, err := conn.Receive()
		if err == nil {
			err = that.dispatch(conn, frame)
		} else if !errors.Is(err, apperror.ErrFrameTooLarge) {
			log.Info("connection closed", "reason", err)
			return
		}

		if err == nil {
			strikes = 0
			continue
		}

		strikes++
		log.Warn("rejected frame", "error", err, "strikes", strikes)

		if strikes >= MaxProtocolErrors {
			log.Warn("too many protocol errors, closing connection")
			return
		}
	}
}

// dispatch handles one frame. Any returned error is a protocol error.
func (that *Dispatcher) dispatch(conn Conn, frame []byte) error {
	msg, err := protocol.Decode(frame)
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	handler, ok := that.handlers[msg.Type()]
	if !ok {
		return fmt.Errorf("%w: %s from client", apperror.ErrUnexpectedMessage, msg.Type())
	}

	return handler(conn, msg)
}

// disconnect withdraws a waiting player or forfeits a live session.
// There is no grace period: the session ends as soon as the read side fails.
func (that *Dispatcher) disconnect(conn Conn) {
	log := that.logger.With("method", "disconnect", "connID", conn.ID())

	_ = conn.Close()

	if that.matchmaker.Withdraw(conn.ID()) {
		return
	}

	handle, seat, err := that.registry.Route(conn.ID())
	if err != nil {
		return
	}

	view, applied, err := handle.Abandon(seat.Opponent())
	if err != nil {
		return
	}

	if applied {
		log.Info("session abandoned", "sessionID", view.ID, "winner", view.Winner)
	}

	that.registry.Destroy(handle.ID())
}
