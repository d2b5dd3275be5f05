package socket

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/Brenn007/matchmaking-project/internal/entity"
	"github.com/Brenn007/matchmaking-project/internal/pkg"
	"github.com/Brenn007/matchmaking-project/internal/protocol"
)

// Conn is a player connection as the dispatcher sees it.
type Conn interface {
	entity.Connection
	Receive() ([]byte, error)
}

type ConnOptions struct {
	WriteTimeout time.Duration
	OutboxSize   int
	MaxFrameSize int
}

// frameTransport moves whole frames over one underlying connection.
// readFrame has a single caller, writeFrame is only called by the writer goroutine.
type frameTransport interface {
	readFrame() ([]byte, error)
	writeFrame(payload []byte, deadline time.Time) error
	close() error
}

// connection queues outgoing frames in a bounded outbox drained by its own
// writer, so a stalled peer never blocks the sender.
type connection struct {
	id           string
	logger       *slog.Logger
	transport    frameTransport
	writeTimeout time.Duration

	outbox    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newConnection(logger *slog.Logger, transport frameTransport, options ConnOptions) *connection {
	id := pkg.NewConnectionID()

	conn := &connection{
		id:           id,
		logger:       logger.With("connID", id),
		transport:    transport,
		writeTimeout: options.WriteTimeout,

		outbox: make(chan []byte, options.OutboxSize),
		done:   make(chan struct{}),
	}

	go conn.writeLoop()

	return conn
}

// NewTCPConn wraps a stream connection speaking newline-delimited frames.
func NewTCPConn(logger *slog.Logger, netConn net.Conn, options ConnOptions) Conn {
	return newConnection(logger, &streamTransport{
		conn:   netConn,
		frames: protocol.NewFrameReader(netConn, options.MaxFrameSize),
	}, options)
}

func (that *connection) ID() string {
	return that.id
}

// Send queues payload without blocking. A full outbox closes the connection.
func (that *connection) Send(payload []byte) error {
	select {
	case <-that.done:
		return apperror.ErrConnectionClosed
	default:
	}

	select {
	case that.outbox <- payload:
		return nil
	default:
		that.logger.Warn("outbox is full, closing connection", "method", "Send")
		_ = that.Close()

		return apperror.ErrOutboxFull
	}
}

func (that *connection) Receive() ([]byte, error) {
	frame, err := that.transport.readFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	return frame, nil
}

func (that *connection) Close() error {
	that.closeOnce.Do(func() {
		close(that.done)
		that.closeErr = that.transport.close()
	})

	return that.closeErr
}

func (that *connection) writeLoop() {
	log := that.logger.With("method", "writeLoop")

	for {
		select {
		case <-that.done:
			return
		case payload := <-that.outbox:
			if err := that.transport.writeFrame(payload, time.Now().Add(that.writeTimeout)); err != nil {
				log.Warn("failed to write frame, closing connection", "error", err)
				_ = that.Close()

				return
			}
		}
	}
}

type streamTransport struct {
	conn   net.Conn
	frames *protocol.FrameReader
}

func (that *streamTransport) readFrame() ([]byte, error) {
	return that.frames.ReadFrame()
}

func (that *streamTransport) writeFrame(payload []byte, deadline time.Time) error {
	if err := that.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if _, err := that.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}

	return nil
}

func (that *streamTransport) close() error {
	return that.conn.Close()
}
