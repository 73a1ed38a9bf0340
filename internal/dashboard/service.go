package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fleetdesk/fleetdesk/internal/platform/cache"
)

const cacheKey = "dashboard:counts"

// Manager serves dashboard counts from a short-lived cache. Concurrent
// misses collapse into one database query via singleflight.
type Manager struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.JSONCache
	group  singleflight.Group
	now    func() time.Time
}

func NewManager(logger *slog.Logger, repo Repository, jsonCache *cache.JSONCache) *Manager {
	return &Manager{logger: logger, repo: repo, cache: jsonCache, now: time.Now}
}

// Counts returns the dashboard numbers, cached or fresh.
func (m *Manager) Counts(ctx context.Context) (Counts, error) {
	var cached Counts
	hit, err := m.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		m.logger.Warn("dashboard cache read failed", "error", err)
	}
	if hit {
		return cached, nil
	}

	result, err, _ := m.group.Do(cacheKey, func() (any, error) {
		counts, err := m.repo.Counts(ctx, m.now().UTC())
		if err != nil {
			return Counts{}, err
		}
		if err := m.cache.Set(ctx, cacheKey, counts); err != nil {
			m.logger.Warn("dashboard cache write failed", "error", err)
		}
		return counts, nil
	})
	if err != nil {
		return Counts{}, err
	}
	return result.(Counts), nil
}
