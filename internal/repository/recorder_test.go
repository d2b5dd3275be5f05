package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Brenn007/matchmaking-project/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockWriter struct {
	mock.Mock
}

func (that *mockWriter) RecordMatchStart(ctx context.Context, record MatchRecord) error {
	return that.Called(ctx, record).Error(0)
}

func (that *mockWriter) AppendMove(ctx context.Context, matchID uint64, move MoveRecord) error {
	return that.Called(ctx, matchID, move).Error(0)
}

func (that *mockWriter) RecordMatchEnd(ctx context.Context, record MatchRecord) error {
	return that.Called(ctx, record).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func playedSession(t *testing.T) *entity.Session {
	t.Helper()

	session := entity.NewSession(4, entity.Player{Name: "alice"}, entity.Player{Name: "bob"})
	_, err := session.SubmitMove(entity.SeatOne, 0)
	require.NoError(t, err)

	return session
}

func TestRecorder(t *testing.T) {
	t.Run("Writes events in order after Run starts", func(t *testing.T) {
		// Given: a recorder over a mocked writer
		writer := &mockWriter{}
		recorder := NewRecorder(discardLogger(), writer, 8)
		session := playedSession(t)

		var order []string
		writer.On("RecordMatchStart", mock.Anything, mock.MatchedBy(func(record MatchRecord) bool {
			return record.ID == 4 && record.Players == [2]string{"alice", "bob"}
		})).Run(func(mock.Arguments) { order = append(order, "start") }).Return(nil).Once()
		writer.On("AppendMove", mock.Anything, uint64(4), mock.MatchedBy(func(move MoveRecord) bool {
			return move.Turn == 1 && move.Seat == entity.SeatOne && move.Row == 0 && move.Col == 0
		})).Run(func(mock.Arguments) { order = append(order, "move") }).Return(nil).Once()
		writer.On("RecordMatchEnd", mock.Anything, mock.MatchedBy(func(record MatchRecord) bool {
			return record.Reason == entity.EndReasonForfeit && record.EndedAt != nil && record.Winner == entity.SeatTwo
		})).Run(func(mock.Arguments) { order = append(order, "end") }).Return(errRedisDown).Once()

		// When: a session lifecycle is observed and the recorder is stopped
		recorder.MatchCreated(session.View())
		recorder.MoveApplied(session.View(), entity.SeatOne, 0, 0, entity.OutcomeContinue)
		session.Abandon(entity.SeatTwo)
		recorder.MatchEnded(session.View(), entity.EndReasonForfeit)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- recorder.Run(ctx) }()

		require.Eventually(t, func() bool { return len(recorder.inbox) == 0 }, time.Second, 5*time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		// Then: every event reached the writer in order, a failed write is only logged
		writer.AssertExpectations(t)
		assert.Equal(t, []string{"start", "move", "end"}, order)
	})

	t.Run("A full inbox drops events instead of blocking", func(t *testing.T) {
		writer := &mockWriter{}
		recorder := NewRecorder(discardLogger(), writer, 1)
		session := playedSession(t)

		recorder.MatchCreated(session.View())
		recorder.MatchCreated(session.View())
		recorder.MatchCreated(session.View())

		assert.Len(t, recorder.inbox, 1)
	})

	t.Run("Events queued before shutdown are flushed", func(t *testing.T) {
		writer := &mockWriter{}
		writer.On("RecordMatchStart", mock.Anything, mock.Anything).Return(nil).Twice()

		recorder := NewRecorder(discardLogger(), writer, 4)
		session := playedSession(t)
		recorder.MatchCreated(session.View())
		recorder.MatchCreated(session.View())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, recorder.Run(ctx))
		writer.AssertExpectations(t)
	})
}
