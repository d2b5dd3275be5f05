package socket

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Server accepts stream connections speaking newline-delimited frames.
type Server struct {
	logger     *slog.Logger
	dispatcher *Dispatcher
	options    ConnOptions
}

func NewServer(logger *slog.Logger, dispatcher *Dispatcher, options ConnOptions) *Server {
	return &Server{
		logger:     logger.With("component", "socket_server"),
		dispatcher: dispatcher,
		options:    options,
	}
}

// Start listens on port and serves until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	that.logger.Info("socket server started", "method", "Start", "port", port)

	return that.Serve(ctx, listener)
}

// Serve runs the accept loop on listener. It returns once ctx is done and
// every connection has been released.
func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Serve")

	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("socket server stopped")
				return nil
			}

			return fmt.Errorf("failed to accept connection: %w", err)
		}

		conn := NewTCPConn(that.logger, netConn, that.options)
		log.Info("connection accepted", "connID", conn.ID(), "remote", netConn.RemoteAddr().String())

		wg.Add(1)
		go func() {
			defer wg.Done()
			that.dispatcher.Serve(ctx, conn)
		}()
	}
}
