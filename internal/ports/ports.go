package ports

import (
	"context"

	"toggl-mcp/internal/domain"
)

// Directory provides read access to the service's entity lists. Lookups are
// assumed consistent with the immediately preceding write from this process;
// no cross-process guarantee.
type Directory interface {
	ListWorkspaces(ctx context.Context) ([]domain.Workspace, error)
	DefaultWorkspaceID(ctx context.Context) (int64, error)
	ListProjects(ctx context.Context, workspaceID int64) ([]domain.Project, error)
	ListTags(ctx context.Context, workspaceID int64) ([]domain.Tag, error)
	CreateTag(ctx context.Context, workspaceID int64, name string) (domain.Tag, error)
	ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error)
	CurrentTimeEntry(ctx context.Context) (*domain.TimeEntry, error)
}

// Mutator performs single-item, single-round-trip writes against the
// service. Each call returns the canonical entity or a typed failure; retry
// policy, if any, lives below this interface.
type Mutator interface {
	CreateEntry(ctx context.Context, req domain.NewEntryRequest) (domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, workspaceID, entryID int64, patch domain.EntryPatch) (domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, workspaceID, entryID int64) error
	StopEntry(ctx context.Context, workspaceID, entryID int64) (domain.TimeEntry, error)
	CreateProject(ctx context.Context, req domain.NewProjectRequest) (domain.Project, error)
	PatchProjects(ctx context.Context, workspaceID int64, projectIDs []int64, ops []domain.PatchOp) (map[string]any, error)
	DeleteProject(ctx context.Context, workspaceID, projectID int64) error
}

// PresetStore is durable key-value persistence for automation templates,
// keyed by preset name and recurring-config ID. Get returns
// domain.ErrEntityNotFound (wrapped) for a missing key; writes are atomic
// from the caller's perspective.
type PresetStore interface {
	GetPreset(name string) (domain.Preset, error)
	PutPreset(p domain.Preset) error
	ListPresets() ([]domain.Preset, error)
	DeletePreset(name string) error

	GetRecurring(id string) (domain.RecurringConfig, error)
	PutRecurring(c domain.RecurringConfig) error
	ListRecurring() ([]domain.RecurringConfig, error)
	DeleteRecurring(id string) error
}
