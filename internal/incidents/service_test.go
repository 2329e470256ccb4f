package incidents

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(now time.Time) *Service {
	s := NewService(memory.NewIncidentRepository(), zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestReportStampsAndActivates(t *testing.T) {
	now := time.Date(2024, 7, 3, 17, 45, 0, 0, time.UTC)
	s := newTestService(now)

	inc, err := s.Report(context.Background(), &models.Incident{
		IncidentType: models.IncidentTypeTrafficAccident,
		Location:     "Highway I-95",
		Severity:     4,
		Status:       models.IncidentStatusResolved,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inc.ID)
	assert.Equal(t, models.IncidentStatusActive, inc.Status)
	assert.Equal(t, now, inc.ReportedAt)
	assert.Nil(t, inc.ResolvedAt)

	active, err := s.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, inc.ID, active[0].ID)
}

func TestReportValidates(t *testing.T) {
	s := newTestService(time.Now())
	tests := []struct {
		name     string
		incident models.Incident
	}{
		{"missing type", models.Incident{Location: "Central Square", Severity: 2}},
		{"missing location", models.Incident{IncidentType: "FIRE", Severity: 2}},
		{"severity too low", models.Incident{IncidentType: "FIRE", Location: "Central Square"}},
		{"severity too high", models.Incident{IncidentType: "FIRE", Location: "Central Square", Severity: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := tt.incident
			_, err := s.Report(context.Background(), &inc)
			assert.ErrorIs(t, err, ErrInvalidIncident)
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	reported := time.Date(2024, 7, 3, 17, 45, 0, 0, time.UTC)
	s := newTestService(reported)

	inc, err := s.Report(ctx, &models.Incident{IncidentType: "FIRE", Location: "Tunnel Exit", Severity: 5})
	require.NoError(t, err)

	resolved := reported.Add(40 * time.Minute)
	s.now = func() time.Time { return resolved }
	got, err := s.Resolve(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentStatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, resolved, *got.ResolvedAt)
	assert.Equal(t, reported, got.ReportedAt)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// resolving again keeps the first resolution time
	s.now = func() time.Time { return resolved.Add(time.Hour) }
	again, err := s.Resolve(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, resolved, *again.ResolvedAt)
}

func TestResolveUnknownIncident(t *testing.T) {
	s := newTestService(time.Now())
	inc, err := s.Resolve(context.Background(), "missing")
	assert.Nil(t, inc)
	assert.ErrorIs(t, err, ErrIncidentNotFound)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	s := newTestService(time.Now())

	var ids []string
	for _, inc := range []models.Incident{
		{IncidentType: models.IncidentTypeTrafficAccident, Location: "Highway I-95", Severity: 5},
		{IncidentType: models.IncidentTypeTrafficAccident, Location: "Bridge Entrance", Severity: 2},
		{IncidentType: "FIRE", Location: "Tunnel Exit", Severity: 4},
		{IncidentType: "MEDICAL", Location: "Central Square", Severity: 4},
	} {
		inc := inc
		got, err := s.Report(ctx, &inc)
		require.NoError(t, err)
		ids = append(ids, got.ID)
	}
	_, err := s.Resolve(ctx, ids[3])
	require.NoError(t, err)

	sum, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Critical)
	assert.Equal(t, map[string]int{models.IncidentTypeTrafficAccident: 2, "FIRE": 1, "MEDICAL": 1}, sum.ByType)
}

func TestActionsFor(t *testing.T) {
	actions := ActionsFor(models.IncidentTypeTrafficAccident)
	assert.Equal(t, []models.WorkflowAction{
		{Action: "Dispatch ambulance", Priority: models.PriorityHigh},
		{Action: "Redirect traffic", Priority: models.PriorityMedium},
		{Action: "Notify police", Priority: models.PriorityHigh},
	}, actions)

	// callers get their own copy
	actions[0].Priority = models.PriorityLow
	assert.Equal(t, models.PriorityHigh, ActionsFor(models.IncidentTypeTrafficAccident)[0].Priority)

	assert.Empty(t, ActionsFor("FIRE"))
	assert.NotNil(t, ActionsFor("FIRE"))
}
