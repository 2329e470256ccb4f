package models

import "time"

const (
	IncidentStatusActive   = "ACTIVE"
	IncidentStatusResolved = "RESOLVED"

	IncidentTypeTrafficAccident = "TRAFFIC_ACCIDENT"

	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"

	// Severities at or above this count as critical on the dashboard.
	CriticalSeverity = 4
)

type Incident struct {
	ID           string     `json:"id"`
	IncidentType string     `json:"incident_type"` // TRAFFIC_ACCIDENT, FIRE, MEDICAL, ...
	Location     string     `json:"location"`
	Severity     int        `json:"severity"` // 1-5
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	ReportedAt   time.Time  `json:"reported_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
}

func (i *Incident) Critical() bool {
	return i.Severity >= CriticalSeverity
}

type WorkflowAction struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
}
