package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/Brenn007/matchmaking-project/internal/entity"
)

func newTestMatchmaker() (*Matchmaker, *SessionRegistry, *recordingNotifier) {
	registry := NewSessionRegistry(discardLogger(), nil)
	notifier := &recordingNotifier{}

	return NewMatchmaker(discardLogger(), NewQueue(), registry, notifier), registry, notifier
}

func TestMatchmaker_Enqueue(t *testing.T) {
	t.Run("Pairs in FIFO order and keeps the third player waiting", func(t *testing.T) {
		// Given: a matchmaker with an empty queue
		matchmaker, registry, notifier := newTestMatchmaker()

		// When: P1, P2, P3 join in order
		require.NoError(t, matchmaker.Enqueue(newEntry("p1")))
		require.NoError(t, matchmaker.Enqueue(newEntry("p2")))
		require.NoError(t, matchmaker.Enqueue(newEntry("p3")))

		// Then: P1 is seat 1, P2 is seat 2, P3 is still queued
		matches := notifier.Matches()
		require.Len(t, matches, 1)
		assert.Equal(t, "p1", matches[0].Player(entity.SeatOne).Name)
		assert.Equal(t, "p2", matches[0].Player(entity.SeatTwo).Name)

		snapshot := matchmaker.Snapshot()
		assert.Equal(t, 1, snapshot.QueueLength)
		assert.Equal(t, 1, snapshot.ActiveSessionCount)
		assert.Equal(t, 1, registry.ActiveCount())

		assert.Equal(t, []queuedEvent{
			{name: "p1", position: 1, total: 1},
			{name: "p2", position: 2, total: 2},
			{name: "p3", position: 1, total: 1},
		}, notifier.queued)
	})

	t.Run("Rejects a second join from the same connection", func(t *testing.T) {
		matchmaker, _, _ := newTestMatchmaker()
		require.NoError(t, matchmaker.Enqueue(newEntry("p1")))

		err := matchmaker.Enqueue(newEntry("p1"))

		require.ErrorIs(t, err, apperror.ErrAlreadyJoined)
	})

	t.Run("Rejects a join from a seated connection", func(t *testing.T) {
		matchmaker, _, _ := newTestMatchmaker()
		require.NoError(t, matchmaker.Enqueue(newEntry("p1")))
		require.NoError(t, matchmaker.Enqueue(newEntry("p2")))

		err := matchmaker.Enqueue(newEntry("p2"))

		require.ErrorIs(t, err, apperror.ErrAlreadyJoined)
	})

	t.Run("Rejects an empty name", func(t *testing.T) {
		matchmaker, _, _ := newTestMatchmaker()

		err := matchmaker.Enqueue(newEntry(""))

		require.ErrorIs(t, err, apperror.ErrEmptyPlayerName)
	})

	t.Run("Concurrent joins never seat a player twice", func(t *testing.T) {
		// Given: many players joining at once
		matchmaker, _, notifier := newTestMatchmaker()
		const players = 101

		var wg sync.WaitGroup
		for i := 0; i < players; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, matchmaker.Enqueue(newEntry(fmt.Sprintf("p%d", i))))
			}(i)
		}
		wg.Wait()

		// Then: every player is seated once or still waiting
		seen := make(map[string]int)
		for _, view := range notifier.Matches() {
			seen[view.Player(entity.SeatOne).Name]++
			seen[view.Player(entity.SeatTwo).Name]++
		}
		for name, count := range seen {
			assert.Equal(t, 1, count, name)
		}
		assert.Len(t, seen, players-1)
		assert.Equal(t, 1, matchmaker.Snapshot().QueueLength)
	})
}

func TestMatchmaker_Withdraw(t *testing.T) {
	// Given: a lone waiting player
	matchmaker, _, notifier := newTestMatchmaker()
	require.NoError(t, matchmaker.Enqueue(newEntry("p1")))

	// When: they disconnect before pairing
	removed := matchmaker.Withdraw("conn-p1")

	// Then: the next joiner is not paired with them
	assert.True(t, removed)
	assert.False(t, matchmaker.Withdraw("conn-p1"))
	require.NoError(t, matchmaker.Enqueue(newEntry("p2")))
	assert.Empty(t, notifier.Matches())
}

func TestMatchmaker_TryPair(t *testing.T) {
	t.Run("One waiting player stays at the front", func(t *testing.T) {
		matchmaker, _, _ := newTestMatchmaker()
		require.NoError(t, matchmaker.Enqueue(newEntry("p1")))

		_, ok := matchmaker.TryPair()

		assert.False(t, ok)
		assert.Equal(t, 1, matchmaker.queue.Position("conn-p1"))
	})

	t.Run("Pairs entries queued behind the matchmaker's back", func(t *testing.T) {
		matchmaker, _, _ := newTestMatchmaker()
		matchmaker.queue.Enqueue(newEntry("p1"))
		matchmaker.queue.Enqueue(newEntry("p2"))

		view, ok := matchmaker.TryPair()

		require.True(t, ok)
		assert.Equal(t, "p1", view.Player(entity.SeatOne).Name)
	})
}

func TestMatchmaker_Run(t *testing.T) {
	// Given: two players queued directly, without eager pairing
	matchmaker, _, notifier := newTestMatchmaker()
	matchmaker.queue.Enqueue(newEntry("p1"))
	matchmaker.queue.Enqueue(newEntry("p2"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// When: the periodic sweep runs
	go func() { done <- matchmaker.Run(ctx, 5*time.Millisecond) }()

	// Then: they are paired and the loop stops on cancel
	require.Eventually(t, func() bool { return len(notifier.Matches()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestMatchmaker_Snapshot(t *testing.T) {
	// Given: two finished pairings and one waiting player
	matchmaker, registry, notifier := newTestMatchmaker()
	for _, name := range []string{"p1", "p2", "p3", "p4"} {
		require.NoError(t, matchmaker.Enqueue(newEntry(name)))
	}
	for _, view := range notifier.Matches() {
		registry.Destroy(view.ID)
	}
	waitingSince := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, matchmaker.Enqueue(entity.QueueEntry{Player: newPlayer("p5"), EnqueuedAt: waitingSince}))

	// When: the snapshot is taken
	snapshot := matchmaker.Snapshot()

	// Then: destroyed sessions still count as created and the waiting player is listed
	assert.Equal(t, 0, snapshot.ActiveSessionCount)
	assert.Equal(t, uint64(2), snapshot.TotalMatchesCreated)
	assert.Equal(t, 1, snapshot.QueueLength)
	assert.Equal(t, []entity.WaitingPlayer{{Name: "p5", Position: 1, EnqueuedAt: waitingSince}}, snapshot.Waiting)
	assert.Empty(t, snapshot.Sessions)
}
