package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
)

type mockDashboardStore struct {
	byStatus map[models.ApplicationStatus]int
	byClass  map[models.Standard]int
	computes int
}

func (m *mockDashboardStore) ApplicationCounts(ctx context.Context) (int, map[models.ApplicationStatus]int, error) {
	m.computes++
	total := 0
	for _, n := range m.byStatus {
		total += n
	}
	return total, m.byStatus, nil
}

func (m *mockDashboardStore) StudentCounts(ctx context.Context) (int, map[models.Standard]int, error) {
	total := 0
	for _, n := range m.byClass {
		total += n
	}
	return total, m.byClass, nil
}

func (m *mockDashboardStore) AttendanceToday(ctx context.Context, date string) (map[models.AttendanceStatus]int, error) {
	return map[models.AttendanceStatus]int{models.AttendancePresent: 40, models.AttendanceAbsent: 3}, nil
}

func (m *mockDashboardStore) FeesCollected(ctx context.Context) (int, error) {
	return 250000, nil
}

func (m *mockDashboardStore) RecentApplications(ctx context.Context, limit int) ([]models.Application, error) {
	return []models.Application{*sampleApplication("app-1", models.StatusEnquiryNew)}, nil
}

// memoryCache is an in-process CacheRepository backed by a JSON map.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range c.entries {
		delete(c.entries, key)
	}
	return nil
}

func newDashboardFixture(store *mockDashboardStore) *DashboardService {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	return NewDashboardService(store, cache, NewMetricsService(), time.Minute, zap.NewNop())
}

func TestDashboardServiceStatsPendingCount(t *testing.T) {
	store := &mockDashboardStore{
		byStatus: map[models.ApplicationStatus]int{
			models.StatusEnquiryNew:        4,
			models.StatusEnquiryHot:        2,
			models.StatusEnquiryWarm:       1,
			models.StatusEnquiryCold:       3,
			models.StatusDocumentsPending:  5,
			models.StatusDocumentsVerified: 7,
			models.StatusAdmitted:          10,
			models.StatusRejected:          2,
		},
		byClass: map[models.Standard]int{models.StandardLKG: 25, models.StandardUKG: 30},
	}
	svc := newDashboardFixture(store)

	stats, cacheHit, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)

	// Cold enquiries, verified, admitted and rejected are not pending.
	assert.Equal(t, 12, stats.PendingApplications)
	assert.Equal(t, 34, stats.TotalApplications)
	assert.Equal(t, 55, stats.ActiveStudents)
	assert.Equal(t, 250000, stats.FeesCollected)
	assert.Equal(t, 43, stats.AttendanceToday[models.AttendancePresent]+stats.AttendanceToday[models.AttendanceAbsent])
	require.Len(t, stats.RecentApplications, 1)
	assert.NotEmpty(t, stats.GeneratedAt)

	snapshot := svc.SystemMetrics()
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
}

func TestDashboardServiceStatsServesFromCache(t *testing.T) {
	store := &mockDashboardStore{
		byStatus: map[models.ApplicationStatus]int{models.StatusEnquiryNew: 1},
		byClass:  map[models.Standard]int{},
	}
	svc := newDashboardFixture(store)

	first, hit, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, 1, store.computes)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
}

func TestDashboardServiceInvalidateForcesRecompute(t *testing.T) {
	store := &mockDashboardStore{
		byStatus: map[models.ApplicationStatus]int{models.StatusEnquiryNew: 1},
		byClass:  map[models.Standard]int{},
	}
	svc := newDashboardFixture(store)

	_, _, err := svc.Stats(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	store.byStatus[models.StatusEnquiryNew] = 2
	stats, _, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.computes)
	assert.Equal(t, 2, stats.TotalApplications)
}

func TestDashboardServiceStatsWithCacheDisabled(t *testing.T) {
	store := &mockDashboardStore{
		byStatus: map[models.ApplicationStatus]int{models.StatusEnquiryNew: 1},
		byClass:  map[models.Standard]int{},
	}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), false)
	svc := NewDashboardService(store, cache, nil, time.Minute, zap.NewNop())

	_, _, err := svc.Stats(context.Background())
	require.NoError(t, err)
	_, _, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.computes)
}
