package usecase

import "github.com/Brenn007/matchmaking-project/internal/entity"

// MatchObserver receives session lifecycle events. Calls are made while the
// session lock is held, so implementations must return quickly.
type MatchObserver interface {
	MatchCreated(view entity.SessionView)
	MoveApplied(view entity.SessionView, seat entity.Seat, row, col int, outcome entity.Outcome)
	MatchEnded(view entity.SessionView, reason entity.EndReason)
}

type NopObserver struct{}

func (NopObserver) MatchCreated(entity.SessionView) {}

func (NopObserver) MoveApplied(entity.SessionView, entity.Seat, int, int, entity.Outcome) {}

func (NopObserver) MatchEnded(entity.SessionView, entity.EndReason) {}

// MultiObserver forwards every event to each observer in order.
type MultiObserver []MatchObserver

func (that MultiObserver) MatchCreated(view entity.SessionView) {
	for _, observer := range that {
		observer.MatchCreated(view)
	}
}

func (that MultiObserver) MoveApplied(view entity.SessionView, seat entity.Seat, row, col int, outcome entity.Outcome) {
	for _, observer := range that {
		observer.MoveApplied(view, seat, row, col, outcome)
	}
}

func (that MultiObserver) MatchEnded(view entity.SessionView, reason entity.EndReason) {
	for _, observer := range that {
		observer.MatchEnded(view, reason)
	}
}
