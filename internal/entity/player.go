package entity

import "time"

// Connection is the transport handle of a player as seen by the core.
type Connection interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// Player lives as long as its connection. The core never persists it.
type Player struct {
	Name string
	Conn Connection
}

func (that Player) ConnID() string {
	if that.Conn == nil {
		return ""
	}

	return that.Conn.ID()
}

type QueueEntry struct {
	Player     Player
	EnqueuedAt time.Time
}
