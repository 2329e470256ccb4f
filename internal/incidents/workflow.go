package incidents

import "github.com/chrisdamba/trafficsim/internal/models"

var workflows = map[string][]models.WorkflowAction{
	models.IncidentTypeTrafficAccident: {
		{Action: "Dispatch ambulance", Priority: models.PriorityHigh},
		{Action: "Redirect traffic", Priority: models.PriorityMedium},
		{Action: "Notify police", Priority: models.PriorityHigh},
	},
}

// ActionsFor returns the response actions for incidentType, or an empty list
// when the type has no workflow.
func ActionsFor(incidentType string) []models.WorkflowAction {
	actions := workflows[incidentType]
	out := make([]models.WorkflowAction, len(actions))
	copy(out, actions)
	return out
}
