package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrafficSampleRepositoryLatestPerLocation(t *testing.T) {
	ctx := context.Background()
	repo := NewTrafficSampleRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "a1", Location: "Central Square", Timestamp: base}))
	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "a2", Location: "Central Square", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "a0", Location: "Central Square", Timestamp: base.Add(-time.Hour)}))
	require.NoError(t, repo.Append(ctx, &models.TrafficSample{ID: "b1", Location: "Bridge Entrance", Timestamp: base}))

	latest, err := repo.FindLatestPerLocation(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "b1", latest[0].ID)
	assert.Equal(t, "a2", latest[1].ID)
}

func TestTrafficSampleRepositoryKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewTrafficSampleRepository()
	ts := time.Now()
	sample := &models.TrafficSample{Location: "Tunnel Exit", Timestamp: ts, CongestionLevel: 3}

	require.NoError(t, repo.Append(ctx, sample))
	require.NoError(t, repo.Append(ctx, sample))

	history, err := repo.FindByLocation(ctx, "Tunnel Exit")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// stored rows are copies
	history[0].CongestionLevel = 9
	again, _ := repo.FindByLocation(ctx, "Tunnel Exit")
	assert.Equal(t, 3, again[0].CongestionLevel)
}

func TestTrafficSampleRepositoryConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	repo := NewTrafficSampleRepository()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = repo.Append(ctx, &models.TrafficSample{Location: "Highway I-95", Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, repo.Count())
}

func TestDeviceRepositoryNotFound(t *testing.T) {
	repo := NewDeviceRepository()
	_, err := repo.GetByDeviceID(context.Background(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
