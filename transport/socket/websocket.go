package socket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketServer carries the same protocol with one frame per text message.
type WebSocketServer struct {
	logger     *slog.Logger
	dispatcher *Dispatcher
	options    ConnOptions
	upgrader   websocket.Upgrader
}

func NewWebSocketServer(logger *slog.Logger, dispatcher *Dispatcher, options ConnOptions) *WebSocketServer {
	return &WebSocketServer{
		logger:     logger.With("component", "websocket_server"),
		dispatcher: dispatcher,
		options:    options,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

// Start serves /ws on port until ctx is done.
func (that *WebSocketServer) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	mux := http.NewServeMux()
	mux.Handle("/ws", that.Handler(ctx))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	log.Info("websocket server started", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start websocket server: %w", err)
	}

	return nil
}

// Handler upgrades the request and serves the connection until it ends.
func (that *WebSocketServer) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		log := that.logger.With("method", "Handler")

		wsConn, err := that.upgrader.Upgrade(writer, req, nil)
		if err != nil {
			log.Error("failed to upgrade connection", "error", err)
			return
		}

		conn := NewWebSocketConn(that.logger, wsConn, that.options)

		log.Info("websocket connection established", "connID", conn.ID(), "remote", req.RemoteAddr)

		that.dispatcher.Serve(ctx, conn)
	})
}

// NewWebSocketConn wraps an upgraded websocket connection.
func NewWebSocketConn(logger *slog.Logger, wsConn *websocket.Conn, options ConnOptions) Conn {
	wsConn.SetReadLimit(int64(options.MaxFrameSize))

	return newConnection(logger, &websocketTransport{conn: wsConn}, options)
}

type websocketTransport struct {
	conn *websocket.Conn
}

func (that *websocketTransport) readFrame() ([]byte, error) {
	for {
		messageType, payload, err := that.conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return payload, nil
		}
	}
}

func (that *websocketTransport) writeFrame(payload []byte, deadline time.Time) error {
	if err := that.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, bytes.TrimRight(payload, "\n")); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *websocketTransport) close() error {
	return that.conn.Close()
}
