package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Brenn007/matchmaking-project/internal/entity"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrPlayerStatsNotFound = errors.New("player stats not found")
)

const totalMatchesKey = "matches:total"

// MatchRecord is the stored history of one session.
type MatchRecord struct {
	ID        uint64           `json:"id"`
	Players   [2]string        `json:"players"`
	Status    entity.Status    `json:"status"`
	Winner    entity.Seat      `json:"winner_seat,omitempty"`
	Reason    entity.EndReason `json:"reason,omitempty"`
	Board     string           `json:"board"`
	Moves     int              `json:"moves"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
}

func NewMatchRecord(view entity.SessionView) MatchRecord {
	return MatchRecord{
		ID:        view.ID,
		Players:   [2]string{view.Players[0].Name, view.Players[1].Name},
		Status:    view.Status,
		Winner:    view.Winner,
		Reason:    view.EndReason(),
		Board:     view.Board.String(),
		Moves:     view.Moves,
		StartedAt: view.CreatedAt,
	}
}

type MoveRecord struct {
	Turn     int            `json:"turn"`
	Seat     entity.Seat    `json:"seat"`
	Row      int            `json:"row"`
	Col      int            `json:"col"`
	Outcome  entity.Outcome `json:"outcome"`
	PlayedAt time.Time      `json:"played_at"`
}

type PlayerStats struct {
	Games    int64 `json:"games" redis:"games"`
	Wins     int64 `json:"wins" redis:"wins"`
	Losses   int64 `json:"losses" redis:"losses"`
	Draws    int64 `json:"draws" redis:"draws"`
	Forfeits int64 `json:"forfeits" redis:"forfeits"`
}

// MatchRepository keeps match records, move lists and per-player stats in Redis.
type MatchRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchRepository stores records with ttl; zero keeps them forever.
func NewMatchRepository(client *redis.Client, ttl time.Duration) *MatchRepository {
	return &MatchRepository{
		client: client,
		ttl:    ttl,
	}
}

func matchKey(id uint64) string {
	return "match:" + strconv.FormatUint(id, 10)
}

func movesKey(id uint64) string {
	return matchKey(id) + ":moves"
}

func statsKey(name string) string {
	return "player:" + name + ":stats"
}

// RecordMatchStart stores a new match and counts it.
func (that *MatchRepository) RecordMatchStart(ctx context.Context, record MatchRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, matchKey(record.ID), recordJSON, that.ttl)
		pipe.Incr(ctx, totalMatchesKey)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record match start: %w", err)
	}

	return nil
}

func (that *MatchRepository) AppendMove(ctx context.Context, matchID uint64, move MoveRecord) error {
	moveJSON, err := json.Marshal(move)
	if err != nil {
		return fmt.Errorf("could not marshal move: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, movesKey(matchID), moveJSON)
		if that.ttl > 0 {
			pipe.Expire(ctx, movesKey(matchID), that.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append move: %w", err)
	}

	return nil
}

// RecordMatchEnd overwrites the match record and updates both players' stats.
func (that *MatchRepository) RecordMatchEnd(ctx context.Context, record MatchRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, matchKey(record.ID), recordJSON, that.ttl)

		for i, name := range record.Players {
			seat := entity.Seat(i + 1)
			key := statsKey(name)

			pipe.HIncrBy(ctx, key, "games", 1)

			switch {
			case !record.Winner.IsValid():
				pipe.HIncrBy(ctx, key, "draws", 1)
			case record.Winner == seat:
				pipe.HIncrBy(ctx, key, "wins", 1)
			default:
				pipe.HIncrBy(ctx, key, "losses", 1)
				if record.Reason == entity.EndReasonForfeit {
					pipe.HIncrBy(ctx, key, "forfeits", 1)
				}
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record match end: %w", err)
	}

	return nil
}

func (that *MatchRepository) GetMatch(ctx context.Context, id uint64) (MatchRecord, error) {
	response, err := that.client.Get(ctx, matchKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return MatchRecord{}, ErrMatchNotFound
	}

	if err != nil {
		return MatchRecord{}, fmt.Errorf("failed to get match by id: %w", err)
	}

	var record MatchRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return MatchRecord{}, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return record, nil
}

func (that *MatchRepository) GetMoves(ctx context.Context, id uint64) ([]MoveRecord, error) {
	response, err := that.client.LRange(ctx, movesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	moves := make([]MoveRecord, 0, len(response))
	for _, raw := range response {
		var move MoveRecord
		if err = json.Unmarshal([]byte(raw), &move); err != nil {
			return nil, fmt.Errorf("failed to unmarshal move: %w", err)
		}
		moves = append(moves, move)
	}

	return moves, nil
}

func (that *MatchRepository) GetPlayerStats(ctx context.Context, name string) (PlayerStats, error) {
	cmd := that.client.HGetAll(ctx, statsKey(name))

	fields, err := cmd.Result()
	if err != nil {
		return PlayerStats{}, fmt.Errorf("failed to get player stats: %w", err)
	}

	if len(fields) == 0 {
		return PlayerStats{}, ErrPlayerStatsNotFound
	}

	var stats PlayerStats
	if err = cmd.Scan(&stats); err != nil {
		return PlayerStats{}, fmt.Errorf("failed to scan player stats: %w", err)
	}

	return stats, nil
}

func (that *MatchRepository) TotalMatches(ctx context.Context) (int64, error) {
	total, err := that.client.Get(ctx, totalMatchesKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get total matches: %w", err)
	}

	return total, nil
}
