package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *TrafficSampleRepository {
	t.Helper()
	repo, err := NewTrafficSampleRepository(filepath.Join(t.TempDir(), "traffic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAppendAndFindByLocation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, repo.Append(ctx, &models.TrafficSample{
			ID:              id,
			Location:        "Central Square",
			CongestionLevel: i + 1,
			AverageSpeed:    50.5,
			VehicleCount:    300,
			Timestamp:       base.Add(time.Duration(i) * time.Minute),
			Latitude:        40.71,
			Longitude:       -74.0,
		}))
	}
	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "x1", Location: "Tunnel Exit", Timestamp: base}))

	history, err := repo.FindByLocation(ctx, "Central Square")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "s3", history[0].ID)
	assert.Equal(t, 3, history[0].CongestionLevel)
	assert.True(t, history[0].Timestamp.Equal(base.Add(2*time.Minute)))
	assert.InDelta(t, 40.71, history[0].Latitude, 1e-9)
}

func TestFindLatestPerLocation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "a-old", Location: "Bridge Entrance", Timestamp: base.Add(-time.Hour)}))
	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "a-new", Location: "Bridge Entrance", Timestamp: base}))
	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "b", Location: "Highway I-95", Timestamp: base.Add(-2 * time.Hour)}))

	latest, err := repo.FindLatestPerLocation(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "a-new", latest[0].ID)
	assert.Equal(t, "b", latest[1].ID)
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	sample := &models.TrafficSample{ID: "dup", Location: "Central Square", Timestamp: time.Now()}

	require.NoError(t, repo.Append(ctx, sample))
	assert.Error(t, repo.Append(ctx, sample))
}

func TestNewRepositoryCreatesParentDirectories(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "data", "traffic.db")
	repo, err := NewTrafficSampleRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.Append(context.Background(), &models.TrafficSample{ID: "n1", Location: "Tunnel Exit", Timestamp: time.Now()}))
	assert.FileExists(t, dbPath)
}
