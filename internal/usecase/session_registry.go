package usecase

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/Brenn007/matchmaking-project/internal/entity"
)

// SeatRef is the server-assigned place of a connection in a session.
type SeatRef struct {
	SessionID uint64
	Seat      entity.Seat
}

// SessionRegistry owns every live session and the routing from connections to seats.
type SessionRegistry struct {
	logger   *slog.Logger
	observer MatchObserver

	mu       sync.RWMutex
	lastID   uint64
	sessions map[uint64]*SessionHandle
	byConn   map[string]SeatRef
}

func NewSessionRegistry(logger *slog.Logger, observer MatchObserver) *SessionRegistry {
	if observer == nil {
		observer = NopObserver{}
	}

	return &SessionRegistry{
		logger:   logger.With("component", "session_registry"),
		observer: observer,

		sessions: make(map[uint64]*SessionHandle),
		byConn:   make(map[string]SeatRef),
	}
}

// Create starts a session with first in seat 1 and second in seat 2.
func (that *SessionRegistry) Create(first, second entity.Player) entity.SessionView {
	log := that.logger.With("method", "Create")

	that.mu.Lock()
	that.lastID++
	id := that.lastID

	handle := &SessionHandle{
		id:       id,
		connIDs:  [2]string{first.ConnID(), second.ConnID()},
		session:  entity.NewSession(id, first, second),
		observer: that.observer,
		registry: that,
	}
	that.sessions[id] = handle
	that.byConn[first.ConnID()] = SeatRef{SessionID: id, Seat: entity.SeatOne}
	that.byConn[second.ConnID()] = SeatRef{SessionID: id, Seat: entity.SeatTwo}
	that.mu.Unlock()

	view, err := handle.View()
	if err != nil {
		panic(fmt.Sprintf("session %d destroyed during creation", id))
	}

	that.observer.MatchCreated(view)

	log.Info("session created", "sessionID", id, "seatOne", first.Name, "seatTwo", second.Name)

	return view
}

func (that *SessionRegistry) Get(id uint64) (*SessionHandle, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	handle, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", apperror.ErrSessionNotFound, id)
	}

	return handle, nil
}

// Lookup returns the seat the server assigned to the connection.
func (that *SessionRegistry) Lookup(connID string) (SeatRef, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ref, ok := that.byConn[connID]

	return ref, ok
}

// Route resolves a connection straight to its session handle.
func (that *SessionRegistry) Route(connID string) (*SessionHandle, entity.Seat, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ref, ok := that.byConn[connID]
	if !ok {
		return nil, entity.SeatNone, fmt.Errorf("%w: connection %s", apperror.ErrSessionNotFound, connID)
	}

	handle, ok := that.sessions[ref.SessionID]
	if !ok {
		panic(fmt.Sprintf("connection %s routed to missing session %d", connID, ref.SessionID))
	}

	return handle, ref.Seat, nil
}

// Destroy removes the session and any routing left. Later calls on held handles
// return ErrSessionNotFound. Destroying an unknown id is a no-op.
func (that *SessionRegistry) Destroy(id uint64) {
	log := that.logger.With("method", "Destroy")

	that.mu.Lock()
	handle, ok := that.sessions[id]
	if !ok {
		that.mu.Unlock()
		return
	}

	delete(that.sessions, id)
	that.dropRouting(id, handle.connIDs)
	that.mu.Unlock()

	handle.markDestroyed()

	log.Info("session destroyed", "sessionID", id)
}

// releaseSeats drops the routing of a finished session so its players can
// join again while the session is still being torn down.
func (that *SessionRegistry) releaseSeats(id uint64, connIDs [2]string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.dropRouting(id, connIDs)
}

// dropRouting expects mu to be held. Routing already moved to a newer session is kept.
func (that *SessionRegistry) dropRouting(id uint64, connIDs [2]string) {
	for _, connID := range connIDs {
		if ref, ok := that.byConn[connID]; ok && ref.SessionID == id {
			delete(that.byConn, connID)
		}
	}
}

func (that *SessionRegistry) ActiveCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

// CreatedCount is the number of sessions created since startup.
func (that *SessionRegistry) CreatedCount() uint64 {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.lastID
}

// Summaries returns the live sessions ordered by id.
func (that *SessionRegistry) Summaries() []entity.SessionSummary {
	that.mu.RLock()
	handles := make([]*SessionHandle, 0, len(that.sessions))
	for _, handle := range that.sessions {
		handles = append(handles, handle)
	}
	that.mu.RUnlock()

	summaries := make([]entity.SessionSummary, 0, len(handles))
	for _, handle := range handles {
		view, err := handle.View()
		if err != nil {
			continue
		}
		summaries = append(summaries, view.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})

	return summaries
}

// SessionHandle serializes every operation on one session.
type SessionHandle struct {
	id      uint64
	connIDs [2]string

	mu        sync.Mutex
	session   *entity.Session
	destroyed bool
	observer  MatchObserver
	registry  *SessionRegistry
}

func (that *SessionHandle) ID() uint64 {
	return that.id
}

// SubmitMove applies a move given as row/col. The returned view is taken
// after the move; on a rejected move it reflects the unchanged state.
func (that *SessionHandle) SubmitMove(seat entity.Seat, row, col int) (entity.SessionView, entity.Outcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.checkAlive(); err != nil {
		return entity.SessionView{}, "", err
	}

	outcome, err := that.session.SubmitMove(seat, entity.CellIndex(row, col))
	view := that.session.View()
	if err != nil {
		return view, "", err
	}

	if outcome != entity.OutcomeContinue {
		that.registry.releaseSeats(that.id, that.connIDs)
	}

	that.observer.MoveApplied(view, seat, row, col, outcome)
	if outcome != entity.OutcomeContinue {
		that.observer.MatchEnded(view, view.EndReason())
	}

	return view, outcome, nil
}

// Abandon forfeits the session to remaining. The bool reports whether this
// call ended the session.
func (that *SessionHandle) Abandon(remaining entity.Seat) (entity.SessionView, bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.checkAlive(); err != nil {
		return entity.SessionView{}, false, err
	}

	applied := that.session.Abandon(remaining)
	view := that.session.View()
	if applied {
		that.registry.releaseSeats(that.id, that.connIDs)
		that.observer.MatchEnded(view, entity.EndReasonForfeit)
	}

	return view, applied, nil
}

func (that *SessionHandle) View() (entity.SessionView, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.checkAlive(); err != nil {
		return entity.SessionView{}, err
	}

	return that.session.View(), nil
}

func (that *SessionHandle) checkAlive() error {
	if that.destroyed {
		return apperror.ErrSessionNotFound
	}

	if that.session == nil {
		panic("live session handle without a session")
	}

	return nil
}

func (that *SessionHandle) markDestroyed() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.destroyed = true
}
