package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/domain/repositories"
	"savingz.backend/pkg/logger"
)

const (
	leaderboardCacheKey      = "leaderboard:ranked"
	leaderboardGenerationKey = "leaderboard:generation"
	maxLeaderboardLimit      = 100
)

// LeaderboardUsecase ranks savers by total amount saved
type LeaderboardUsecase struct {
	depositRepo  repositories.DepositRepository
	cache        Cache
	ttl          time.Duration
	defaultLimit int
}

// NewLeaderboardUsecase creates a leaderboard usecase; cache may be nil
func NewLeaderboardUsecase(depositRepo repositories.DepositRepository, cache Cache, ttl time.Duration, defaultLimit int) *LeaderboardUsecase {
	if defaultLimit < 1 || defaultLimit > maxLeaderboardLimit {
		defaultLimit = 10
	}
	return &LeaderboardUsecase{
		depositRepo:  depositRepo,
		cache:        cache,
		ttl:          ttl,
		defaultLimit: defaultLimit,
	}
}

// DefaultLimit is the limit used when the caller does not give one
func (u *LeaderboardUsecase) DefaultLimit() int {
	return u.defaultLimit
}

// GetLeaderboard returns the top limit savers
func (u *LeaderboardUsecase) GetLeaderboard(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error) {
	if limit < 1 || limit > maxLeaderboardLimit {
		return nil, domainerrors.Invalid("limit must be between 1 and 100")
	}

	// The generation is read before the totals so a ranking computed while a
	// deposit commits is stored under a generation Invalidate has replaced.
	generation, cacheable := u.generation(ctx)
	ranked, ok := u.cached(ctx, generation, cacheable)
	if !ok {
		totals, err := u.depositRepo.SumByUser(ctx)
		if err != nil {
			return nil, err
		}
		ranked = RankSavers(totals)
		if cacheable {
			u.store(ctx, generation, ranked)
		}
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Invalidate starts a new cache generation and drops the cached ranking.
// Failures are logged only.
func (u *LeaderboardUsecase) Invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Set(ctx, leaderboardGenerationKey, uuid.NewString(), 0); err != nil {
		logger.Warn(ctx, "Failed to bump leaderboard cache generation", zap.Error(err))
	}
	if err := u.cache.Del(ctx, leaderboardCacheKey); err != nil {
		logger.Warn(ctx, "Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

type cachedRanking struct {
	Generation string                      `json:"generation"`
	Entries    []entities.LeaderboardEntry `json:"entries"`
}

func (u *LeaderboardUsecase) generation(ctx context.Context) (string, bool) {
	if u.cache == nil || u.ttl <= 0 {
		return "", false
	}
	gen, err := u.cache.Get(ctx, leaderboardGenerationKey)
	if err != nil {
		if u.cache.IsMiss(err) {
			return "", true
		}
		logger.Warn(ctx, "Leaderboard cache read failed", zap.Error(err))
		return "", false
	}
	return gen, true
}

func (u *LeaderboardUsecase) cached(ctx context.Context, generation string, cacheable bool) ([]entities.LeaderboardEntry, bool) {
	if !cacheable {
		return nil, false
	}
	raw, err := u.cache.Get(ctx, leaderboardCacheKey)
	if err != nil {
		if !u.cache.IsMiss(err) {
			logger.Warn(ctx, "Leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var entry cachedRanking
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Warn(ctx, "Discarding corrupt leaderboard cache entry", zap.Error(err))
		return nil, false
	}
	if entry.Generation != generation {
		return nil, false
	}
	if entry.Entries == nil {
		entry.Entries = []entities.LeaderboardEntry{}
	}
	return entry.Entries, true
}

func (u *LeaderboardUsecase) store(ctx context.Context, generation string, ranked []entities.LeaderboardEntry) {
	raw, err := json.Marshal(cachedRanking{Generation: generation, Entries: ranked})
	if err != nil {
		return
	}
	if err := u.cache.Set(ctx, leaderboardCacheKey, string(raw), u.ttl); err != nil {
		logger.Warn(ctx, "Leaderboard cache write failed", zap.Error(err))
	}
}

// RankSavers orders totals by amount saved, highest first, breaking ties by
// user id ascending, and assigns 1-based ranks.
func RankSavers(totals []entities.UserTotal) []entities.LeaderboardEntry {
	sorted := make([]entities.UserTotal, len(totals))
	copy(sorted, totals)
	sort.Slice(sorted, func(i, j int) bool {
		if c := sorted[i].TotalSaved.Cmp(sorted[j].TotalSaved); c != 0 {
			return c > 0
		}
		return bytes.Compare(sorted[i].UserID[:], sorted[j].UserID[:]) < 0
	})

	entries := make([]entities.LeaderboardEntry, len(sorted))
	for i, t := range sorted {
		entries[i] = entities.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      t.UserID,
			DisplayName: t.DisplayName(),
			TotalSaved:  t.TotalSaved,
		}
	}
	return entries
}
