package domain

// Preset is a named time-entry template: the fields of a creation request
// minus start/stop. Applying one merges the template with "now" defaults.
type Preset struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	ProjectName   string   `json:"project_name,omitempty"`
	WorkspaceName string   `json:"workspace_name,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Billable      bool     `json:"billable"`
}

// RecurringConfig is a stored recurring-entry definition. Scheduling ("when
// to run") is an external trigger; this config only describes what to create.
type RecurringConfig struct {
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	ProjectName   string         `json:"project_name,omitempty"`
	ProjectID     *int64         `json:"project_id,omitempty"`
	WorkspaceName string         `json:"workspace_name,omitempty"`
	WorkspaceID   int64          `json:"workspace_id"`
	Tags          []string       `json:"tags,omitempty"`
	Billable      bool           `json:"billable"`
	Schedule      map[string]any `json:"schedule"`
	DurationSec   int64          `json:"duration"`
	CreatedAt     string         `json:"created_at"`
	LastRun       string         `json:"last_run,omitempty"`
}
