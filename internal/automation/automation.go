// Package automation materializes stored preset and recurring-entry
// templates into concrete new-time-entry requests. Scheduling is not done
// here: "when to run" is an external trigger, "what to create" is this
// engine's job.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolver"
	"toggl-mcp/internal/timeconv"
)

// Engine owns preset and recurring-entry templates: their CRUD against the
// store and their materialization into entry requests.
type Engine struct {
	Log   *slog.Logger
	Store ports.PresetStore
	Conv  *timeconv.Converter
}

// SavePreset stores or replaces a preset under its name.
func (e *Engine) SavePreset(p domain.Preset) error {
	if p.Name == "" {
		return fmt.Errorf("%w: preset needs a name", domain.ErrValidation)
	}
	if err := e.Store.PutPreset(p); err != nil {
		return err
	}
	e.Log.Info("preset saved", slog.String("name", p.Name))
	return nil
}

// GetPreset fetches one preset by name.
func (e *Engine) GetPreset(name string) (domain.Preset, error) {
	p, err := e.Store.GetPreset(name)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return domain.Preset{}, fmt.Errorf("preset %q: %w", name, domain.ErrEntityNotFound)
		}
		return domain.Preset{}, err
	}
	return p, nil
}

// ListPresets returns every stored preset.
func (e *Engine) ListPresets() ([]domain.Preset, error) {
	return e.Store.ListPresets()
}

// DeletePreset removes a preset by explicit request.
func (e *Engine) DeletePreset(name string) error {
	if err := e.Store.DeletePreset(name); err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return fmt.Errorf("preset %q: %w", name, domain.ErrEntityNotFound)
		}
		return err
	}
	e.Log.Info("preset deleted", slog.String("name", name))
	return nil
}

// ApplyPreset merges a stored preset with current-time defaults into a
// ready-to-send running-timer request, resolving its workspace and project
// names inside the given scope.
func (e *Engine) ApplyPreset(ctx context.Context, scope *resolver.Scope, name string) (domain.NewEntryRequest, domain.Preset, error) {
	preset, err := e.GetPreset(name)
	if err != nil {
		return domain.NewEntryRequest{}, domain.Preset{}, err
	}
	wsID, err := scope.ResolveWorkspace(ctx, preset.WorkspaceName)
	if err != nil {
		return domain.NewEntryRequest{}, preset, err
	}
	req := domain.NewEntryRequest{
		WorkspaceID: wsID,
		Description: preset.Description,
		Tags:        preset.Tags,
		Billable:    preset.Billable,
		Start:       e.Conv.NowWire(),
		DurationSec: -1,
	}
	if preset.ProjectName != "" {
		pid, err := scope.ResolveProject(ctx, preset.ProjectName, wsID)
		if err != nil {
			return domain.NewEntryRequest{}, preset, err
		}
		req.ProjectID = &pid
	}
	return req, preset, nil
}

// CreateRecurring resolves and stores a recurring-entry definition,
// assigning it a fresh ID. Names are resolved at creation so later runs do
// not depend on them still being unique.
func (e *Engine) CreateRecurring(ctx context.Context, scope *resolver.Scope, cfg domain.RecurringConfig) (domain.RecurringConfig, error) {
	if cfg.Description == "" {
		return domain.RecurringConfig{}, fmt.Errorf("%w: recurring entry needs a description", domain.ErrValidation)
	}
	if len(cfg.Schedule) == 0 {
		return domain.RecurringConfig{}, fmt.Errorf("%w: recurring entry needs a schedule", domain.ErrValidation)
	}
	wsID, err := scope.ResolveWorkspace(ctx, cfg.WorkspaceName)
	if err != nil {
		return domain.RecurringConfig{}, err
	}
	cfg.WorkspaceID = wsID
	if cfg.ProjectName != "" {
		pid, err := scope.ResolveProject(ctx, cfg.ProjectName, wsID)
		if err != nil {
			return domain.RecurringConfig{}, err
		}
		cfg.ProjectID = &pid
	}
	if cfg.DurationSec == 0 {
		cfg.DurationSec = 3600
	}
	cfg.ID = uuid.NewString()
	cfg.CreatedAt = e.Conv.NowWire()
	if err := e.Store.PutRecurring(cfg); err != nil {
		return domain.RecurringConfig{}, err
	}
	e.Log.Info("recurring entry created", slog.String("id", cfg.ID), slog.String("description", cfg.Description))
	return cfg, nil
}

// GetRecurring fetches one recurring config by ID.
func (e *Engine) GetRecurring(id string) (domain.RecurringConfig, error) {
	cfg, err := e.Store.GetRecurring(id)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return domain.RecurringConfig{}, fmt.Errorf("recurring entry %q: %w", id, domain.ErrEntityNotFound)
		}
		return domain.RecurringConfig{}, err
	}
	return cfg, nil
}

// ListRecurring returns every stored recurring config.
func (e *Engine) ListRecurring() ([]domain.RecurringConfig, error) {
	return e.Store.ListRecurring()
}

// DeleteRecurring removes a recurring config by explicit request.
func (e *Engine) DeleteRecurring(id string) error {
	if err := e.Store.DeleteRecurring(id); err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return fmt.Errorf("recurring entry %q: %w", id, domain.ErrEntityNotFound)
		}
		return err
	}
	e.Log.Info("recurring entry deleted", slog.String("id", id))
	return nil
}

// MaterializeRecurring builds the entry request for one run of a recurring
// config. Start and stop overrides are caller-local timestamps; with no
// overrides the entry starts now and runs for the stored duration.
func (e *Engine) MaterializeRecurring(cfg domain.RecurringConfig, startLocal, stopLocal string) (domain.NewEntryRequest, error) {
	req := domain.NewEntryRequest{
		WorkspaceID: cfg.WorkspaceID,
		Description: cfg.Description,
		Tags:        cfg.Tags,
		ProjectID:   cfg.ProjectID,
		Billable:    cfg.Billable,
		DurationSec: cfg.DurationSec,
	}
	if startLocal != "" {
		start, err := e.Conv.ToWire(startLocal)
		if err != nil {
			return domain.NewEntryRequest{}, err
		}
		req.Start = start
	} else {
		req.Start = e.Conv.NowWire()
	}
	switch {
	case stopLocal != "":
		stop, err := e.Conv.ToWire(stopLocal)
		if err != nil {
			return domain.NewEntryRequest{}, err
		}
		req.Stop = stop
	case req.DurationSec > 0:
		stop, err := e.Conv.StopFromDuration(req.Start, req.DurationSec)
		if err != nil {
			return domain.NewEntryRequest{}, err
		}
		req.Stop = stop
	}
	return req, nil
}

// MarkRan records a completed run on the stored config.
func (e *Engine) MarkRan(cfg domain.RecurringConfig) (domain.RecurringConfig, error) {
	cfg.LastRun = e.Conv.NowWire()
	if err := e.Store.PutRecurring(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
