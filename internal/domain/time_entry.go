package domain

// TimeEntry represents a Toggl time entry in the domain.
// Timestamps are carried in the API wire form (UTC, millisecond precision);
// StartLocal/StopLocal are display enrichments added before a response is
// returned to the caller.
type TimeEntry struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	ProjectID   *int64   `json:"project_id,omitempty"`
	WorkspaceID int64    `json:"workspace_id"`
	Tags        []string `json:"tags,omitempty"`
	TagIDs      []int64  `json:"tag_ids,omitempty"`
	Start       string   `json:"start"`
	Stop        *string  `json:"stop,omitempty"`
	DurationSec int64    `json:"duration"` // Negative means running in Toggl API semantics
	Billable    bool     `json:"billable"`

	StartLocal string `json:"start_local,omitempty"`
	StopLocal  string `json:"stop_local,omitempty"`
}

// Running reports whether the entry is currently being tracked.
func (e TimeEntry) Running() bool {
	return e.DurationSec < 0
}

// NewEntryRequest is the payload for creating a time entry. Start and Stop
// are wire-format UTC timestamps; an empty Start means "now" and a negative
// Duration means a running timer.
type NewEntryRequest struct {
	WorkspaceID int64    `json:"workspace_id"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ProjectID   *int64   `json:"project_id,omitempty"`
	Start       string   `json:"start,omitempty"`
	Stop        string   `json:"stop,omitempty"`
	DurationSec int64    `json:"duration"`
	Billable    bool     `json:"billable"`
}

// EntryPatch carries the fields of an update. Nil means "leave unchanged".
type EntryPatch struct {
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	Start       *string   `json:"start,omitempty"`
	Stop        *string   `json:"stop,omitempty"`
	DurationSec *int64    `json:"duration,omitempty"`
	Billable    *bool     `json:"billable,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.Description == nil && p.Tags == nil && p.ProjectID == nil &&
		p.Start == nil && p.Stop == nil && p.DurationSec == nil && p.Billable == nil
}
