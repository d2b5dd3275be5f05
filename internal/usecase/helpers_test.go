package usecase

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/Brenn007/matchmaking-project/internal/entity"
)

type stubConn struct {
	id string
}

func (that stubConn) ID() string { return that.id }

func (that stubConn) Send([]byte) error { return nil }

func (that stubConn) Close() error { return nil }

func newPlayer(name string) entity.Player {
	return entity.Player{Name: name, Conn: stubConn{id: "conn-" + name}}
}

func newEntry(name string) entity.QueueEntry {
	return entity.QueueEntry{Player: newPlayer(name)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockObserver struct {
	mock.Mock
}

func newMockObserver(t *testing.T) *mockObserver {
	observer := &mockObserver{}
	t.Cleanup(func() { observer.AssertExpectations(t) })

	return observer
}

func (that *mockObserver) MatchCreated(view entity.SessionView) {
	that.Called(view)
}

func (that *mockObserver) MoveApplied(view entity.SessionView, seat entity.Seat, row, col int, outcome entity.Outcome) {
	that.Called(view, seat, row, col, outcome)
}

func (that *mockObserver) MatchEnded(view entity.SessionView, reason entity.EndReason) {
	that.Called(view, reason)
}

type queuedEvent struct {
	name            string
	position, total int
}

type recordingNotifier struct {
	mu      sync.Mutex
	queued  []queuedEvent
	matches []entity.SessionView
}

func (that *recordingNotifier) PlayerQueued(entry entity.QueueEntry, position, total int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.queued = append(that.queued, queuedEvent{name: entry.Player.Name, position: position, total: total})
}

func (that *recordingNotifier) MatchFound(view entity.SessionView) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.matches = append(that.matches, view)
}

func (that *recordingNotifier) Matches() []entity.SessionView {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.SessionView(nil), that.matches...)
}
