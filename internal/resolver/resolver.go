// Package resolver turns human-readable entity names into service
// identifiers. Matching is exact and workspace-scoped; ambiguity is an
// error, never a guess.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
)

// Resolver resolves workspace, project, tag and entry names against the
// directory. It holds no state across tool invocations; per-invocation
// reuse of directory fetches happens through a Scope.
type Resolver struct {
	dir              ports.Directory
	defaultWorkspace string // workspace name configured as the fallback
	log              *slog.Logger
}

func New(dir ports.Directory, defaultWorkspace string, log *slog.Logger) *Resolver {
	return &Resolver{dir: dir, defaultWorkspace: defaultWorkspace, log: log}
}

// Scope starts a resolution scope for a single tool invocation. Directory
// responses are memoized inside the scope and discarded with it, so names
// resolved within one call agree with each other without going stale across
// an agent session.
func (r *Resolver) Scope() *Scope {
	return &Scope{
		r:        r,
		projects: make(map[int64][]domain.Project),
		tags:     make(map[int64][]domain.Tag),
	}
}

// Scope memoizes directory fetches for the duration of one invocation.
type Scope struct {
	r          *Resolver
	workspaces []domain.Workspace
	wsFetched  bool
	projects   map[int64][]domain.Project
	tags       map[int64][]domain.Tag
	entries    []domain.TimeEntry
	enFetched  bool
}

func (s *Scope) listWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	if !s.wsFetched {
		ws, err := s.r.dir.ListWorkspaces(ctx)
		if err != nil {
			return nil, err
		}
		s.workspaces = ws
		s.wsFetched = true
	}
	return s.workspaces, nil
}

func (s *Scope) listProjects(ctx context.Context, wsID int64) ([]domain.Project, error) {
	if ps, ok := s.projects[wsID]; ok {
		return ps, nil
	}
	ps, err := s.r.dir.ListProjects(ctx, wsID)
	if err != nil {
		return nil, err
	}
	s.projects[wsID] = ps
	return ps, nil
}

func (s *Scope) listTags(ctx context.Context, wsID int64) ([]domain.Tag, error) {
	if ts, ok := s.tags[wsID]; ok {
		return ts, nil
	}
	ts, err := s.r.dir.ListTags(ctx, wsID)
	if err != nil {
		return nil, err
	}
	s.tags[wsID] = ts
	return ts, nil
}

func (s *Scope) listEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	if !s.enFetched {
		es, err := s.r.dir.ListTimeEntries(ctx)
		if err != nil {
			return nil, err
		}
		s.entries = es
		s.enFetched = true
	}
	return s.entries, nil
}

// Workspaces returns the memoized workspace list.
func (s *Scope) Workspaces(ctx context.Context) ([]domain.Workspace, error) {
	return s.listWorkspaces(ctx)
}

// Projects returns the memoized project list for a workspace.
func (s *Scope) Projects(ctx context.Context, wsID int64) ([]domain.Project, error) {
	return s.listProjects(ctx, wsID)
}

// Entries returns the memoized recent time entries.
func (s *Scope) Entries(ctx context.Context) ([]domain.TimeEntry, error) {
	return s.listEntries(ctx)
}

// ResolveWorkspace resolves a workspace name to its ID. An empty name falls
// back to the configured default workspace name, and failing that to the
// account's default workspace.
func (s *Scope) ResolveWorkspace(ctx context.Context, name string) (int64, error) {
	if name == "" {
		name = s.r.defaultWorkspace
	}
	if name == "" {
		id, err := s.r.dir.DefaultWorkspaceID(ctx)
		if err != nil {
			return 0, fmt.Errorf("default workspace: %w", err)
		}
		return id, nil
	}
	workspaces, err := s.listWorkspaces(ctx)
	if err != nil {
		return 0, err
	}
	var found []int64
	for _, ws := range workspaces {
		if ws.Name == name {
			found = append(found, ws.ID)
		}
	}
	switch len(found) {
	case 0:
		return 0, fmt.Errorf("workspace %q: %w", name, domain.ErrEntityNotFound)
	case 1:
		return found[0], nil
	default:
		return 0, fmt.Errorf("workspace %q matches %d workspaces: %w", name, len(found), domain.ErrAmbiguousMatch)
	}
}

// ResolveProject resolves a project name within one workspace. Zero matches
// and duplicates are both errors; there is no fuzzy fallback.
func (s *Scope) ResolveProject(ctx context.Context, name string, wsID int64) (int64, error) {
	projects, err := s.listProjects(ctx, wsID)
	if err != nil {
		return 0, err
	}
	var found []int64
	for _, p := range projects {
		if p.Name == name {
			found = append(found, p.ID)
		}
	}
	switch len(found) {
	case 0:
		return 0, fmt.Errorf("project %q: %w", name, domain.ErrEntityNotFound)
	case 1:
		return found[0], nil
	default:
		return 0, fmt.Errorf("project %q matches %d projects: %w", name, len(found), domain.ErrAmbiguousMatch)
	}
}

// ProjectNames returns the id-to-name mapping for a workspace, for callers
// that need to render or filter by project name.
func (s *Scope) ProjectNames(ctx context.Context, wsID int64) (map[int64]string, error) {
	projects, err := s.listProjects(ctx, wsID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names, nil
}

// ResolveTags resolves tag names to IDs, creating absent tags when
// createMissing is set. Each name is handled independently: a creation
// failure is recorded against that name only and does not block the rest.
// IDs come back in input order with 0 holding the place of a failed name;
// errs is index-aligned and nil-filled for successes.
func (s *Scope) ResolveTags(ctx context.Context, names []string, wsID int64, createMissing bool) (ids []int64, errs []error) {
	ids = make([]int64, len(names))
	errs = make([]error, len(names))

	existing, err := s.listTags(ctx, wsID)
	if err != nil {
		for i := range errs {
			errs[i] = err
		}
		return ids, errs
	}
	byName := make(map[string][]int64, len(existing))
	for _, t := range existing {
		byName[t.Name] = append(byName[t.Name], t.ID)
	}

	for i, name := range names {
		matches := byName[name]
		switch {
		case len(matches) == 1:
			ids[i] = matches[0]
		case len(matches) > 1:
			errs[i] = fmt.Errorf("tag %q matches %d tags: %w", name, len(matches), domain.ErrAmbiguousMatch)
		case !createMissing:
			errs[i] = fmt.Errorf("tag %q: %w", name, domain.ErrEntityNotFound)
		default:
			tag, err := s.r.dir.CreateTag(ctx, wsID, name)
			if err != nil {
				s.r.log.Warn("tag creation failed", slog.String("tag", name), slog.String("error", err.Error()))
				errs[i] = fmt.Errorf("create tag %q: %w", name, err)
				continue
			}
			ids[i] = tag.ID
			byName[name] = []int64{tag.ID}
			s.tags[wsID] = append(s.tags[wsID], tag)
		}
	}
	return ids, errs
}

// ResolveEntryByDescription finds the single time entry in a workspace whose
// description matches exactly. Zero matches or more than one are per-item
// errors for the caller to record, never a silent first-match pick.
func (s *Scope) ResolveEntryByDescription(ctx context.Context, desc string, wsID int64) (domain.TimeEntry, error) {
	entries, err := s.listEntries(ctx)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	var found []domain.TimeEntry
	for _, e := range entries {
		if e.WorkspaceID == wsID && e.Description == desc {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return domain.TimeEntry{}, fmt.Errorf("time entry %q: %w", desc, domain.ErrEntityNotFound)
	case 1:
		return found[0], nil
	default:
		return domain.TimeEntry{}, fmt.Errorf("time entry %q matches %d entries: %w", desc, len(found), domain.ErrAmbiguousMatch)
	}
}
