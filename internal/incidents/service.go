// Package incidents tracks emergency incidents reported at monitored
// locations and the response workflow for each incident type.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/lucsky/cuid"
	"go.uber.org/zap"
)

var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrInvalidIncident  = errors.New("invalid incident")
)

type Service struct {
	repo   repositories.IncidentRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo repositories.IncidentRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Active returns the incidents that have not been resolved yet.
func (s *Service) Active(ctx context.Context) ([]*models.Incident, error) {
	return s.repo.FindByStatus(ctx, models.IncidentStatusActive)
}

// Report stores a new incident as ACTIVE, stamped with the current time.
func (s *Service) Report(ctx context.Context, incident *models.Incident) (*models.Incident, error) {
	if strings.TrimSpace(incident.IncidentType) == "" {
		return nil, fmt.Errorf("%w: incident_type is required", ErrInvalidIncident)
	}
	if strings.TrimSpace(incident.Location) == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidIncident)
	}
	if incident.Severity < 1 || incident.Severity > 5 {
		return nil, fmt.Errorf("%w: severity must be between 1 and 5, got %d", ErrInvalidIncident, incident.Severity)
	}

	incident.ID = cuid.New()
	incident.Status = models.IncidentStatusActive
	incident.ReportedAt = s.now()
	incident.ResolvedAt = nil

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to report incident: %w", err)
	}
	s.logger.Info("incident reported",
		zap.String("id", incident.ID),
		zap.String("type", incident.IncidentType),
		zap.String("location", incident.Location),
		zap.Int("severity", incident.Severity))
	return incident, nil
}

// Resolve marks the incident RESOLVED. Resolving an already resolved incident
// keeps its original resolution time.
func (s *Service) Resolve(ctx context.Context, id string) (*models.Incident, error) {
	incident, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrIncidentNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if incident.Status == models.IncidentStatusResolved {
		return incident, nil
	}

	resolvedAt := s.now()
	incident.Status = models.IncidentStatusResolved
	incident.ResolvedAt = &resolvedAt

	err = s.repo.Update(ctx, incident)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrIncidentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve incident %s: %w", id, err)
	}
	s.logger.Info("incident resolved", zap.String("id", id))
	return incident, nil
}

type Summary struct {
	Total    int            `json:"totalOperations"`
	Critical int            `json:"criticalOperations"`
	ByType   map[string]int `json:"operationsByType"`
}

// Summarize counts every incident, the active critical ones and the totals
// per incident type.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Total: len(all), ByType: make(map[string]int)}
	for _, inc := range all {
		sum.ByType[inc.IncidentType]++
		if inc.Status == models.IncidentStatusActive && inc.Critical() {
			sum.Critical++
		}
	}
	return sum, nil
}
