package usecase

import (
	"sync"

	"github.com/Brenn007/matchmaking-project/internal/entity"
)

// Queue is the FIFO of players waiting for an opponent.
type Queue struct {
	mu      sync.Mutex
	entries []entity.QueueEntry
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends entry and returns its 1-based position.
func (that *Queue) Enqueue(entry entity.QueueEntry) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.entries = append(that.entries, entry)

	return len(that.entries)
}

// Drain removes and returns up to n oldest entries.
func (that *Queue) Drain(n int) []entity.QueueEntry {
	that.mu.Lock()
	defer that.mu.Unlock()

	if n > len(that.entries) {
		n = len(that.entries)
	}

	if n <= 0 {
		return nil
	}

	drained := make([]entity.QueueEntry, n)
	copy(drained, that.entries[:n])
	that.entries = that.entries[n:]

	return drained
}

// PushFront returns entries to the head of the queue, keeping their order.
func (that *Queue) PushFront(entries ...entity.QueueEntry) {
	if len(entries) == 0 {
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	restored := make([]entity.QueueEntry, 0, len(entries)+len(that.entries))
	restored = append(restored, entries...)
	that.entries = append(restored, that.entries...)
}

func (that *Queue) Remove(connID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, entry := range that.entries {
		if entry.Player.ConnID() == connID {
			that.entries = append(that.entries[:i], that.entries[i+1:]...)
			return true
		}
	}

	return false
}

// Position returns the 1-based position of the connection, 0 if it is not queued.
func (that *Queue) Position(connID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, entry := range that.entries {
		if entry.Player.ConnID() == connID {
			return i + 1
		}
	}

	return 0
}

func (that *Queue) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.entries)
}

func (that *Queue) Entries() []entity.QueueEntry {
	that.mu.Lock()
	defer that.mu.Unlock()

	entries := make([]entity.QueueEntry, len(that.entries))
	copy(entries, that.entries)

	return entries
}
