package domain

// Workspace is the scoping context for every name lookup.
type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Project represents a Toggl project in the domain layer.
type Project struct {
	ID             int64   `json:"id"`
	WorkspaceID    int64   `json:"workspace_id"`
	Name           string  `json:"name"`
	Active         bool    `json:"active"`
	Billable       bool    `json:"billable"`
	Private        bool    `json:"is_private"`
	Color          string  `json:"color,omitempty"`
	ClientID       *int64  `json:"client_id,omitempty"`
	StartDate      string  `json:"start_date,omitempty"`
	EndDate        string  `json:"end_date,omitempty"`
	EstimatedHours *int64  `json:"estimated_hours,omitempty"`
}

// Tag is a workspace-scoped label. Tags are auto-provisioned on resolution;
// projects are not.
type Tag struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
}

// NewProjectRequest is the payload for creating a project.
type NewProjectRequest struct {
	WorkspaceID    int64  `json:"workspace_id"`
	Name           string `json:"name"`
	Active         bool   `json:"active"`
	Billable       bool   `json:"billable"`
	Private        bool   `json:"is_private"`
	Color          string `json:"color,omitempty"`
	ClientID       *int64 `json:"client_id,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	EstimatedHours *int64 `json:"estimated_hours,omitempty"`
}

// PatchOp is a single JSON-Patch style operation accepted by the bulk
// project update endpoint.
type PatchOp struct {
	Op    string `json:"op"`   // add, remove, replace
	Path  string `json:"path"` // e.g. "/color"
	Value any    `json:"value,omitempty"`
}
