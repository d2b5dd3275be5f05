package entity

import "time"

type SessionSummary struct {
	ID        uint64    `json:"id"`
	Players   [2]string `json:"players"`
	Board     string    `json:"board"`
	Turn      Seat      `json:"turn_seat"`
	Status    Status    `json:"status"`
	Winner    Seat      `json:"winner_seat,omitempty"`
	Moves     int       `json:"moves"`
	StartedAt time.Time `json:"started_at"`
}

type WaitingPlayer struct {
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Snapshot is the read-only monitoring view of the engine.
type Snapshot struct {
	QueueLength         int              `json:"queue_length"`
	ActiveSessionCount  int              `json:"active_session_count"`
	TotalMatchesCreated uint64           `json:"total_matches_created"`
	Waiting             []WaitingPlayer  `json:"waiting"`
	Sessions            []SessionSummary `json:"sessions"`
}
