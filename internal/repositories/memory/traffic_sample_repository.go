// Package memory holds map-backed repositories for tests and throwaway runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/chrisdamba/trafficsim/internal/models"
)

type TrafficSampleRepository struct {
	mu         sync.RWMutex
	byLocation map[string][]models.TrafficSample
}

func NewTrafficSampleRepository() *TrafficSampleRepository {
	return &TrafficSampleRepository{byLocation: make(map[string][]models.TrafficSample)}
}

func (r *TrafficSampleRepository) Append(ctx context.Context, sample *models.TrafficSample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.byLocation[sample.Location] = append(r.byLocation[sample.Location], *sample)
	r.mu.Unlock()
	return nil
}

func (r *TrafficSampleRepository) FindLatestPerLocation(ctx context.Context) ([]*models.TrafficSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make([]*models.TrafficSample, 0, len(r.byLocation))
	for _, samples := range r.byLocation {
		if len(samples) == 0 {
			continue
		}
		best := samples[0]
		for _, s := range samples[1:] {
			if s.Timestamp.After(best.Timestamp) {
				best = s
			}
		}
		latest = append(latest, &best)
	}
	sort.Slice(latest, func(i, j int) bool { return latest[i].Location < latest[j].Location })
	return latest, nil
}

func (r *TrafficSampleRepository) FindByLocation(ctx context.Context, location string) ([]*models.TrafficSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	samples := r.byLocation[location]
	out := make([]*models.TrafficSample, len(samples))
	for i := range samples {
		s := samples[i]
		out[i] = &s
	}
	return out, nil
}

// Count returns the number of stored samples.
func (r *TrafficSampleRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, samples := range r.byLocation {
		n += len(samples)
	}
	return n
}
