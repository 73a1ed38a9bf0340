package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/platform/cache"
	_ "github.com/fleetdesk/fleetdesk/testing"
)

type fakeRepo struct {
	counts Counts
	calls  atomic.Int64
	delay  time.Duration
}

func (f *fakeRepo) Counts(ctx context.Context, today time.Time) (Counts, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.counts, nil
}

func newTestManager(t *testing.T, repo Repository) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(slog.Default(), repo, cache.NewJSONCache(client, 30*time.Second))
}

func TestCountsCachesResult(t *testing.T) {
	repo := &fakeRepo{counts: Counts{ActiveJobs: 3, TotalVehicles: 7}}
	manager := newTestManager(t, repo)
	ctx := context.Background()

	first, err := manager.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.ActiveJobs)

	second, err := manager.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, repo.calls.Load(), "second read must come from cache")
}

func TestCountsCollapsesConcurrentMisses(t *testing.T) {
	repo := &fakeRepo{counts: Counts{UnassignedJobs: 2}, delay: 20 * time.Millisecond}
	manager := newTestManager(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counts, err := manager.Counts(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 2, counts.UnassignedJobs)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, repo.calls.Load(), int64(2), "concurrent misses must collapse")
}
