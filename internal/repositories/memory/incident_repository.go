package memory

import (
	"context"
	"sync"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
)

// IncidentRepository keeps incidents in report order.
type IncidentRepository struct {
	mu        sync.RWMutex
	incidents []models.Incident
	index     map[string]int
}

func NewIncidentRepository() *IncidentRepository {
	return &IncidentRepository{index: make(map[string]int)}
}

func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index[incident.ID] = len(r.incidents)
	r.incidents = append(r.incidents, *incident)
	return nil
}

func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[incident.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	r.incidents[i] = *incident
	return nil
}

func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	inc := r.incidents[i]
	return &inc, nil
}

func (r *IncidentRepository) GetAll(ctx context.Context) ([]*models.Incident, error) {
	return r.filter(func(*models.Incident) bool { return true }), nil
}

func (r *IncidentRepository) FindByStatus(ctx context.Context, status string) ([]*models.Incident, error) {
	return r.filter(func(i *models.Incident) bool { return i.Status == status }), nil
}

func (r *IncidentRepository) filter(keep func(*models.Incident) bool) []*models.Incident {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Incident, 0, len(r.incidents))
	for i := range r.incidents {
		inc := r.incidents[i]
		if keep(&inc) {
			out = append(out, &inc)
		}
	}
	return out
}
