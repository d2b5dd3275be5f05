package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Brenn007/matchmaking-project/internal/entity"
	"github.com/Brenn007/matchmaking-project/internal/repository"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	Snapshot(w http.ResponseWriter, r *http.Request)
	GetMatch(w http.ResponseWriter, r *http.Request)
	GetPlayerStats(w http.ResponseWriter, r *http.Request)
}

type snapshotter interface {
	Snapshot() entity.Snapshot
}

type matchReader interface {
	GetMatch(ctx context.Context, id uint64) (repository.MatchRecord, error)
	GetMoves(ctx context.Context, id uint64) ([]repository.MoveRecord, error)
	GetPlayerStats(ctx context.Context, name string) (repository.PlayerStats, error)
	TotalMatches(ctx context.Context) (int64, error)
}

// snapshotResponse adds the persisted match count when history is enabled.
type snapshotResponse struct {
	entity.Snapshot
	RecordedMatches *int64 `json:"recorded_matches,omitempty"`
}

type matchResponse struct {
	repository.MatchRecord
	MoveList []repository.MoveRecord `json:"move_list"`
}

type handlers struct {
	logger      *slog.Logger
	snapshotter snapshotter
	matchReader matchReader
}

// NewHandlers builds the monitoring handlers. A nil matchReader disables the history endpoints.
func NewHandlers(logger *slog.Logger, snapshotter snapshotter, matchReader matchReader) Handlers {
	return &handlers{
		logger:      logger.With("component", "rest"),
		snapshotter: snapshotter,
		matchReader: matchReader,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	response := snapshotResponse{Snapshot: that.snapshotter.Snapshot()}

	if that.matchReader != nil {
		total, err := that.matchReader.TotalMatches(r.Context())
		if err != nil {
			that.logger.Warn("failed to get recorded matches", "method", "Snapshot", "error", err)
		} else {
			response.RecordedMatches = &total
		}
	}

	that.writeJSON(w, http.StatusOK, response)
}

func (that *handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetMatch")

	if that.matchReader == nil {
		http.Error(w, "match history is disabled", http.StatusServiceUnavailable)
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	record, err := that.matchReader.GetMatch(r.Context(), id)
	if errors.Is(err, repository.ErrMatchNotFound) {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get match", "sessionID", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	moves, err := that.matchReader.GetMoves(r.Context(), id)
	if err != nil {
		log.Error("failed to get moves", "sessionID", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, matchResponse{MatchRecord: record, MoveList: moves})
}

func (that *handlers) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetPlayerStats")

	if that.matchReader == nil {
		http.Error(w, "match history is disabled", http.StatusServiceUnavailable)
		return
	}

	name := chi.URLParam(r, "name")

	stats, err := that.matchReader.GetPlayerStats(r.Context(), name)
	if errors.Is(err, repository.ErrPlayerStatsNotFound) {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get player stats", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, stats)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "method", "writeJSON", "error", err)
	}
}
