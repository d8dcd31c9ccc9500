package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/resolver"
	"toggl-mcp/internal/timeconv"
)

// memStore is an in-memory ports.PresetStore for engine tests.
type memStore struct {
	presets   map[string]domain.Preset
	recurring map[string]domain.RecurringConfig
}

func newMemStore() *memStore {
	return &memStore{
		presets:   make(map[string]domain.Preset),
		recurring: make(map[string]domain.RecurringConfig),
	}
}

func (s *memStore) GetPreset(name string) (domain.Preset, error) {
	p, ok := s.presets[name]
	if !ok {
		return domain.Preset{}, fmt.Errorf("preset %q: %w", name, domain.ErrEntityNotFound)
	}
	return p, nil
}

func (s *memStore) PutPreset(p domain.Preset) error {
	s.presets[p.Name] = p
	return nil
}

func (s *memStore) ListPresets() ([]domain.Preset, error) {
	out := make([]domain.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) DeletePreset(name string) error {
	if _, ok := s.presets[name]; !ok {
		return fmt.Errorf("preset %q: %w", name, domain.ErrEntityNotFound)
	}
	delete(s.presets, name)
	return nil
}

func (s *memStore) GetRecurring(id string) (domain.RecurringConfig, error) {
	c, ok := s.recurring[id]
	if !ok {
		return domain.RecurringConfig{}, fmt.Errorf("recurring %q: %w", id, domain.ErrEntityNotFound)
	}
	return c, nil
}

func (s *memStore) PutRecurring(c domain.RecurringConfig) error {
	s.recurring[c.ID] = c
	return nil
}

func (s *memStore) ListRecurring() ([]domain.RecurringConfig, error) {
	out := make([]domain.RecurringConfig, 0, len(s.recurring))
	for _, c := range s.recurring {
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) DeleteRecurring(id string) error {
	if _, ok := s.recurring[id]; !ok {
		return fmt.Errorf("recurring %q: %w", id, domain.ErrEntityNotFound)
	}
	delete(s.recurring, id)
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	return []domain.Workspace{{ID: 20, Name: "Work"}}, nil
}

func (fakeDirectory) DefaultWorkspaceID(ctx context.Context) (int64, error) { return 20, nil }

func (fakeDirectory) ListProjects(ctx context.Context, wsID int64) ([]domain.Project, error) {
	return []domain.Project{{ID: 100, WorkspaceID: 20, Name: "Backend"}}, nil
}

func (fakeDirectory) ListTags(ctx context.Context, wsID int64) ([]domain.Tag, error) {
	return nil, nil
}

func (fakeDirectory) CreateTag(ctx context.Context, wsID int64, name string) (domain.Tag, error) {
	return domain.Tag{ID: 1, WorkspaceID: wsID, Name: name}, nil
}

func (fakeDirectory) ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	return nil, nil
}

func (fakeDirectory) CurrentTimeEntry(ctx context.Context) (*domain.TimeEntry, error) {
	return nil, nil
}

func newEngine(t *testing.T) (*Engine, *memStore, *resolver.Scope) {
	t.Helper()
	conv, err := timeconv.New("UTC")
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	engine := &Engine{Log: log, Store: store, Conv: conv}
	scope := resolver.New(fakeDirectory{}, "", log).Scope()
	return engine, store, scope
}

func TestSavePreset_RequiresName(t *testing.T) {
	engine, _, _ := newEngine(t)
	err := engine.SavePreset(domain.Preset{Description: "no name"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSavePreset_RoundTripAndOverwrite(t *testing.T) {
	engine, _, _ := newEngine(t)

	require.NoError(t, engine.SavePreset(domain.Preset{Name: "focus", Description: "v1"}))
	require.NoError(t, engine.SavePreset(domain.Preset{Name: "focus", Description: "v2"}))

	got, err := engine.GetPreset("focus")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Description)

	all, err := engine.ListPresets()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetPreset_NotFound(t *testing.T) {
	engine, _, _ := newEngine(t)
	_, err := engine.GetPreset("ghost")
	assert.True(t, errors.Is(err, domain.ErrEntityNotFound))
}

func TestDeletePreset_NotFound(t *testing.T) {
	engine, _, _ := newEngine(t)
	err := engine.DeletePreset("ghost")
	assert.True(t, errors.Is(err, domain.ErrEntityNotFound))
}

func TestApplyPreset_BuildsRunningTimerRequest(t *testing.T) {
	engine, _, scope := newEngine(t)
	require.NoError(t, engine.SavePreset(domain.Preset{
		Name:          "focus",
		Description:   "Deep work",
		WorkspaceName: "Work",
		ProjectName:   "Backend",
		Tags:          []string{"focus"},
		Billable:      true,
	}))

	req, preset, err := engine.ApplyPreset(context.Background(), scope, "focus")
	require.NoError(t, err)
	assert.Equal(t, "focus", preset.Name)
	assert.Equal(t, int64(20), req.WorkspaceID)
	require.NotNil(t, req.ProjectID)
	assert.Equal(t, int64(100), *req.ProjectID)
	assert.Equal(t, "Deep work", req.Description)
	assert.Equal(t, int64(-1), req.DurationSec)
	assert.NotEmpty(t, req.Start)
	assert.Empty(t, req.Stop)
	assert.True(t, req.Billable)
}

func TestApplyPreset_UnknownProjectFails(t *testing.T) {
	engine, _, scope := newEngine(t)
	require.NoError(t, engine.SavePreset(domain.Preset{Name: "broken", ProjectName: "Ghost"}))

	_, _, err := engine.ApplyPreset(context.Background(), scope, "broken")
	assert.True(t, errors.Is(err, domain.ErrEntityNotFound))
}

func TestCreateRecurring_ResolvesAndDefaults(t *testing.T) {
	engine, store, scope := newEngine(t)

	cfg, err := engine.CreateRecurring(context.Background(), scope, domain.RecurringConfig{
		Description: "Daily standup",
		ProjectName: "Backend",
		Schedule:    map[string]any{"days": []string{"monday"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)
	assert.NotEmpty(t, cfg.CreatedAt)
	assert.Equal(t, int64(20), cfg.WorkspaceID)
	require.NotNil(t, cfg.ProjectID)
	assert.Equal(t, int64(100), *cfg.ProjectID)
	assert.Equal(t, int64(3600), cfg.DurationSec)

	stored, err := store.GetRecurring(cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, stored.ID)
}

func TestCreateRecurring_Validation(t *testing.T) {
	engine, _, scope := newEngine(t)
	ctx := context.Background()

	_, err := engine.CreateRecurring(ctx, scope, domain.RecurringConfig{
		Schedule: map[string]any{"time": "09:00"},
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = engine.CreateRecurring(ctx, scope, domain.RecurringConfig{Description: "no schedule"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestMaterializeRecurring_DefaultsToNowPlusDuration(t *testing.T) {
	engine, _, _ := newEngine(t)
	cfg := domain.RecurringConfig{Description: "run", WorkspaceID: 20, DurationSec: 1800}

	req, err := engine.MaterializeRecurring(cfg, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, req.Start)
	assert.NotEmpty(t, req.Stop)

	span, err := engine.Conv.SpanSeconds(req.Start, req.Stop)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), span)
}

func TestMaterializeRecurring_WithOverrides(t *testing.T) {
	engine, _, _ := newEngine(t)
	cfg := domain.RecurringConfig{Description: "run", WorkspaceID: 20, DurationSec: 1800}

	req, err := engine.MaterializeRecurring(cfg, "2024-05-01T09:00:00", "2024-05-01T09:45:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T09:00:00.000Z", req.Start)
	assert.Equal(t, "2024-05-01T09:45:00.000Z", req.Stop)
}

func TestMaterializeRecurring_MalformedOverride(t *testing.T) {
	engine, _, _ := newEngine(t)
	cfg := domain.RecurringConfig{Description: "run", WorkspaceID: 20}

	_, err := engine.MaterializeRecurring(cfg, "sometime", "")
	assert.True(t, errors.Is(err, domain.ErrMalformedTimestamp))
}

func TestMarkRan_SetsLastRun(t *testing.T) {
	engine, store, scope := newEngine(t)
	cfg, err := engine.CreateRecurring(context.Background(), scope, domain.RecurringConfig{
		Description: "Daily standup",
		Schedule:    map[string]any{"time": "09:00"},
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.LastRun)

	ran, err := engine.MarkRan(cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, ran.LastRun)

	stored, err := store.GetRecurring(cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, ran.LastRun, stored.LastRun)
}

func TestDeleteRecurring_NotFound(t *testing.T) {
	engine, _, _ := newEngine(t)
	err := engine.DeleteRecurring("ghost")
	assert.True(t, errors.Is(err, domain.ErrEntityNotFound))
}
