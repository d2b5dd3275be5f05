package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/Brenn007/matchmaking-project/internal/entity"
)

// matchNotifier delivers matchmaking events to players. It is called with
// the matchmaker lock held and must not block.
type matchNotifier interface {
	PlayerQueued(entry entity.QueueEntry, position, total int)
	MatchFound(view entity.SessionView)
}

type Matchmaker struct {
	logger   *slog.Logger
	queue    *Queue
	registry *SessionRegistry
	notifier matchNotifier

	mu sync.Mutex
}

func NewMatchmaker(logger *slog.Logger, queue *Queue, registry *SessionRegistry, notifier matchNotifier) *Matchmaker {
	return &Matchmaker{
		logger:   logger.With("component", "matchmaker"),
		queue:    queue,
		registry: registry,
		notifier: notifier,
	}
}

// Enqueue puts the player in line and pairs immediately when an opponent waits.
func (that *Matchmaker) Enqueue(entry entity.QueueEntry) error {
	log := that.logger.With("method", "Enqueue")

	if entry.Player.Name == "" {
		return apperror.ErrEmptyPlayerName
	}

	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now()
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	connID := entry.Player.ConnID()
	if that.queue.Position(connID) > 0 {
		return fmt.Errorf("%w: connection %s is queued", apperror.ErrAlreadyJoined, connID)
	}

	if _, ok := that.registry.Lookup(connID); ok {
		return fmt.Errorf("%w: connection %s is seated", apperror.ErrAlreadyJoined, connID)
	}

	position := that.queue.Enqueue(entry)
	that.notifier.PlayerQueued(entry, position, that.queue.Len())

	log.Info("player queued", "connID", connID, "name", entry.Player.Name, "position", position)

	that.tryPair()

	return nil
}

// TryPair seats the two oldest waiting players in a new session.
func (that *Matchmaker) TryPair() (entity.SessionView, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.tryPair()
}

func (that *Matchmaker) tryPair() (entity.SessionView, bool) {
	entries := that.queue.Drain(2)
	if len(entries) < 2 {
		that.queue.PushFront(entries...)
		return entity.SessionView{}, false
	}

	view := that.registry.Create(entries[0].Player, entries[1].Player)
	that.notifier.MatchFound(view)

	return view, true
}

// Withdraw drops a waiting player, reporting whether it was still queued.
func (that *Matchmaker) Withdraw(connID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	removed := that.queue.Remove(connID)
	if removed {
		that.logger.Info("player left the queue", "method", "Withdraw", "connID", connID)
	}

	return removed
}

// Run sweeps the queue on every tick until ctx is done.
func (that *Matchmaker) Run(ctx context.Context, interval time.Duration) error {
	log := that.logger.With("method", "Run")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("matchmaking loop started", "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("matchmaking loop stopped")
			return nil
		case <-ticker.C:
			for {
				if _, ok := that.TryPair(); !ok {
					break
				}
			}
		}
	}
}

func (that *Matchmaker) Snapshot() entity.Snapshot {
	entries := that.queue.Entries()

	waiting := make([]entity.WaitingPlayer, 0, len(entries))
	for i, entry := range entries {
		waiting = append(waiting, entity.WaitingPlayer{
			Name:       entry.Player.Name,
			Position:   i + 1,
			EnqueuedAt: entry.EnqueuedAt,
		})
	}

	return entity.Snapshot{
		QueueLength:         len(entries),
		ActiveSessionCount:  that.registry.ActiveCount(),
		TotalMatchesCreated: that.registry.CreatedCount(),
		Waiting:             waiting,
		Sessions:            that.registry.Summaries(),
	}
}
