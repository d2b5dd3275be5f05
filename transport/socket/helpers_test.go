package socket

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Brenn007/matchmaking-project/internal/entity"
	"github.com/Brenn007/matchmaking-project/internal/protocol"
	"github.com/Brenn007/matchmaking-project/internal/usecase"
)

const readTimeout = 2 * time.Second

var testOptions = ConnOptions{
	WriteTimeout: time.Second,
	OutboxSize:   16,
	MaxFrameSize: 4096,
}

type endedRecorder struct {
	usecase.NopObserver

	mu    sync.Mutex
	ended []entity.SessionView
}

func (that *endedRecorder) MatchEnded(view entity.SessionView, _ entity.EndReason) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.ended = append(that.ended, view)
}

func (that *endedRecorder) Ended() []entity.SessionView {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.SessionView(nil), that.ended...)
}

type testEngine struct {
	registry   *usecase.SessionRegistry
	matchmaker *usecase.Matchmaker
	dispatcher *Dispatcher
	ended      *endedRecorder
}

func newTestEngine() *testEngine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	notifier := NewNotifier(logger)
	ended := &endedRecorder{}
	registry := usecase.NewSessionRegistry(logger, usecase.MultiObserver{notifier, ended})
	matchmaker := usecase.NewMatchmaker(logger, usecase.NewQueue(), registry, notifier)

	return &testEngine{
		registry:   registry,
		matchmaker: matchmaker,
		dispatcher: NewDispatcher(logger, matchmaker, registry),
		ended:      ended,
	}
}

// startServer serves the engine on a loopback port for the duration of the test.
func startServer(t *testing.T, engine *testEngine) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), engine.dispatcher, testOptions)

	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	return listener.Addr().String()
}

type testClient struct {
	t      *testing.T
	conn   net.Conn
	frames *protocol.FrameReader
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testClient{t: t, conn: conn, frames: protocol.NewFrameReader(conn, 4096)}
}

func (that *testClient) send(msg protocol.Message) {
	that.t.Helper()

	frame, err := protocol.Encode(msg)
	require.NoError(that.t, err)

	that.sendRaw(string(frame))
}

func (that *testClient) sendRaw(raw string) {
	that.t.Helper()

	_, err := that.conn.Write([]byte(raw))
	require.NoError(that.t, err)
}

func (that *testClient) receive() protocol.Message {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(readTimeout)))

	frame, err := that.frames.ReadFrame()
	require.NoError(that.t, err)

	msg, err := protocol.Decode(frame)
	require.NoError(that.t, err)

	return msg
}

// expectSilence asserts nothing arrives within wait.
func (that *testClient) expectSilence(wait time.Duration) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(wait)))

	_, err := that.frames.ReadFrame()

	var netErr net.Error
	require.ErrorAs(that.t, err, &netErr)
	require.True(that.t, netErr.Timeout(), "expected a read timeout, got %v", err)
}

// expectClosed asserts the server hung up.
func (that *testClient) expectClosed() {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(readTimeout)))

	_, err := that.frames.ReadFrame()
	require.ErrorIs(that.t, err, io.EOF)
}

// pair connects two players and returns them with the session id.
func pair(t *testing.T, addr string) (*testClient, *testClient, uint64) {
	t.Helper()

	alice := dial(t, addr)
	alice.send(protocol.Join{PlayerName: "alice"})
	require.Equal(t, protocol.QueueStatus{Position: 1, TotalWaiting: 1}, alice.receive())

	bob := dial(t, addr)
	bob.send(protocol.Join{PlayerName: "bob"})
	require.Equal(t, protocol.QueueStatus{Position: 2, TotalWaiting: 2}, bob.receive())

	found, ok := alice.receive().(protocol.MatchFound)
	require.True(t, ok)
	require.Equal(t, 1, found.SeatNumber)
	require.Equal(t, "bob", found.OpponentName)

	require.Equal(t, protocol.MatchFound{SessionID: found.SessionID, SeatNumber: 2, OpponentName: "alice"}, bob.receive())

	return alice, bob, found.SessionID
}
