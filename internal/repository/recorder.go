package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Brenn007/matchmaking-project/internal/entity"
)

const (
	writeTimeout = 2 * time.Second
	drainTimeout = 5 * time.Second
)

type matchWriter interface {
	RecordMatchStart(ctx context.Context, record MatchRecord) error
	AppendMove(ctx context.Context, matchID uint64, move MoveRecord) error
	RecordMatchEnd(ctx context.Context, record MatchRecord) error
}

type job struct {
	name    string
	matchID uint64
	run     func(ctx context.Context) error
}

// Recorder persists session events off the session lock. Events are queued
// into a bounded inbox and written by Run; when the inbox is full the event
// is dropped and logged.
type Recorder struct {
	logger *slog.Logger
	writer matchWriter
	inbox  chan job
}

func NewRecorder(logger *slog.Logger, writer matchWriter, size int) *Recorder {
	return &Recorder{
		logger: logger.With("component", "recorder"),
		writer: writer,
		inbox:  make(chan job, size),
	}
}

func (that *Recorder) MatchCreated(view entity.SessionView) {
	record := NewMatchRecord(view)

	that.push(job{name: "match_start", matchID: view.ID, run: func(ctx context.Context) error {
		return that.writer.RecordMatchStart(ctx, record)
	}})
}

func (that *Recorder) MoveApplied(view entity.SessionView, seat entity.Seat, row, col int, outcome entity.Outcome) {
	move := MoveRecord{
		Turn:     view.Moves,
		Seat:     seat,
		Row:      row,
		Col:      col,
		Outcome:  outcome,
		PlayedAt: time.Now(),
	}

	that.push(job{name: "move", matchID: view.ID, run: func(ctx context.Context) error {
		return that.writer.AppendMove(ctx, view.ID, move)
	}})
}

func (that *Recorder) MatchEnded(view entity.SessionView, reason entity.EndReason) {
	record := NewMatchRecord(view)
	record.Reason = reason
	endedAt := time.Now()
	record.EndedAt = &endedAt

	that.push(job{name: "match_end", matchID: view.ID, run: func(ctx context.Context) error {
		return that.writer.RecordMatchEnd(ctx, record)
	}})
}

func (that *Recorder) push(event job) {
	select {
	case that.inbox <- event:
	default:
		that.logger.Warn("recorder inbox is full, dropping event",
			"method", "push", "event", event.name, "sessionID", event.matchID)
	}
}

// Run writes queued events until ctx is done, then flushes what is left.
func (that *Recorder) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	for {
		select {
		case event := <-that.inbox:
			that.write(ctx, event)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()

			for {
				select {
				case event := <-that.inbox:
					that.write(flushCtx, event)
				default:
					log.Info("recorder stopped")
					return nil
				}
			}
		}
	}
}

func (that *Recorder) write(ctx context.Context, event job) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := event.run(writeCtx); err != nil {
		that.logger.Error("failed to persist event",
			"method", "write", "event", event.name, "sessionID", event.matchID, "error", err)
	}
}
