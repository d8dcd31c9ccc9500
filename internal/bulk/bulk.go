// Package bulk drives per-item apply/aggregate loops for create, update and
// delete across many time entries. Items are processed independently and
// sequentially; one item's failure never aborts or rolls back another.
package bulk

import (
	"context"
	"fmt"
	"log/slog"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolver"
	"toggl-mcp/internal/timeconv"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ItemResult records the outcome of one submitted item. Index matches the
// input position; the aggregate never drops or reorders items.
type ItemResult struct {
	Index   int    `json:"index"`
	Status  string `json:"status"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error_detail,omitempty"`
	Kind    string `json:"error_kind,omitempty"`
}

// Report is the partial-success aggregate for a bulk call.
type Report struct {
	Results      []ItemResult `json:"results"`
	SuccessCount int          `json:"success_count"`
	ErrorCount   int          `json:"error_count"`
}

func (r *Report) record(i int, payload any, err error) {
	res := ItemResult{Index: i, Status: StatusSuccess, Payload: payload}
	if err != nil {
		res = ItemResult{Index: i, Status: StatusError, Error: err.Error(), Kind: domain.ErrorKind(err)}
		r.ErrorCount++
	} else {
		r.SuccessCount++
	}
	r.Results = append(r.Results, res)
}

// EntryInput describes one time entry in a bulk create. Timestamps are
// caller-local and converted before transmission.
type EntryInput struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ProjectName string   `json:"project_name,omitempty"`
	Start       string   `json:"start,omitempty"`
	Stop        string   `json:"stop,omitempty"`
	DurationSec *int64   `json:"duration,omitempty"`
	Billable    bool     `json:"billable,omitempty"`
}

// UpdateInput describes one update. The target entry is identified by ID or,
// when EntryName is set and ID is zero, by exact description match.
// ProjectName, when set, is resolved per item and applied to the patch.
type UpdateInput struct {
	ID          int64             `json:"id,omitempty"`
	EntryName   string            `json:"entry_name,omitempty"` // identification, not a new value
	ProjectName string            `json:"project_name,omitempty"`
	Patch       domain.EntryPatch `json:"patch"`
}

// Coordinator applies bulk operations item by item through the Mutator.
// Concurrency and retry are the transport's concern, not this loop's.
type Coordinator struct {
	Log     *slog.Logger
	Mutator ports.Mutator
	Conv    *timeconv.Converter
}

// CreateEntries creates the given entries in input order, resolving each
// item's project and timestamps independently.
func (c *Coordinator) CreateEntries(ctx context.Context, scope *resolver.Scope, wsID int64, items []EntryInput) Report {
	var report Report
	for i, item := range items {
		payload, err := c.createOne(ctx, scope, wsID, item)
		report.record(i, payload, err)
	}
	c.logReport("bulk create", report)
	return report
}

func (c *Coordinator) createOne(ctx context.Context, scope *resolver.Scope, wsID int64, item EntryInput) (any, error) {
	req := domain.NewEntryRequest{
		WorkspaceID: wsID,
		Description: item.Description,
		Tags:        item.Tags,
		Billable:    item.Billable,
		DurationSec: -1,
	}
	if item.ProjectName != "" {
		pid, err := scope.ResolveProject(ctx, item.ProjectName, wsID)
		if err != nil {
			return nil, err
		}
		req.ProjectID = &pid
	}
	if len(item.Tags) > 0 {
		// Auto-provision tags; a failed tag fails this item only.
		_, errs := scope.ResolveTags(ctx, item.Tags, wsID, true)
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	if item.DurationSec != nil {
		req.DurationSec = *item.DurationSec
		if req.DurationSec < 0 && item.Start != "" {
			return nil, fmt.Errorf("%w: negative duration is only valid without a start time", domain.ErrValidation)
		}
		if req.DurationSec >= 0 && item.Start == "" {
			return nil, fmt.Errorf("%w: duration without start only allowed for a running timer", domain.ErrValidation)
		}
	}
	if item.Start != "" {
		start, err := c.Conv.ToWire(item.Start)
		if err != nil {
			return nil, err
		}
		req.Start = start
	} else {
		req.Start = c.Conv.NowWire()
	}
	switch {
	case item.Stop != "":
		stop, err := c.Conv.ToWire(item.Stop)
		if err != nil {
			return nil, err
		}
		req.Stop = stop
	case item.Start != "" && req.DurationSec > 0:
		stop, err := c.Conv.StopFromDuration(req.Start, req.DurationSec)
		if err != nil {
			return nil, err
		}
		req.Stop = stop
	}
	if req.Stop != "" && item.DurationSec == nil {
		dur, err := c.Conv.SpanSeconds(req.Start, req.Stop)
		if err != nil {
			return nil, err
		}
		req.DurationSec = dur
	}

	created, err := c.Mutator.CreateEntry(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.Conv.Enrich(created), nil
}

// UpdateEntries applies the patches in input order. Items identified by
// description that match zero or several entries fail individually.
func (c *Coordinator) UpdateEntries(ctx context.Context, scope *resolver.Scope, wsID int64, items []UpdateInput) Report {
	var report Report
	for i, item := range items {
		payload, err := c.updateOne(ctx, scope, wsID, item)
		report.record(i, payload, err)
	}
	c.logReport("bulk update", report)
	return report
}

func (c *Coordinator) updateOne(ctx context.Context, scope *resolver.Scope, wsID int64, item UpdateInput) (any, error) {
	id := item.ID
	if id == 0 {
		if item.EntryName == "" {
			return nil, fmt.Errorf("%w: update item needs an id or an entry name", domain.ErrValidation)
		}
		entry, err := scope.ResolveEntryByDescription(ctx, item.EntryName, wsID)
		if err != nil {
			return nil, err
		}
		id = entry.ID
	}
	patch := item.Patch
	if item.ProjectName != "" {
		pid, err := scope.ResolveProject(ctx, item.ProjectName, wsID)
		if err != nil {
			return nil, err
		}
		patch.ProjectID = &pid
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: empty patch", domain.ErrValidation)
	}
	if patch.Tags != nil {
		_, errs := scope.ResolveTags(ctx, *patch.Tags, wsID, true)
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	if patch.Start != nil {
		start, err := c.Conv.ToWire(*patch.Start)
		if err != nil {
			return nil, err
		}
		patch.Start = &start
	}
	if patch.Stop != nil {
		stop, err := c.Conv.ToWire(*patch.Stop)
		if err != nil {
			return nil, err
		}
		patch.Stop = &stop
	}
	updated, err := c.Mutator.UpdateEntry(ctx, wsID, id, patch)
	if err != nil {
		return nil, err
	}
	return c.Conv.Enrich(updated), nil
}

// DeleteEntries deletes entries identified by numeric IDs or, when
// areDescriptions is set, by exact descriptions.
func (c *Coordinator) DeleteEntries(ctx context.Context, scope *resolver.Scope, wsID int64, identifiers []string, areDescriptions bool) Report {
	var report Report
	for i, ident := range identifiers {
		err := c.deleteOne(ctx, scope, wsID, ident, areDescriptions)
		var payload any
		if err == nil {
			payload = map[string]string{"deleted": ident}
		}
		report.record(i, payload, err)
	}
	c.logReport("bulk delete", report)
	return report
}

func (c *Coordinator) deleteOne(ctx context.Context, scope *resolver.Scope, wsID int64, ident string, isDescription bool) error {
	var id int64
	if isDescription {
		entry, err := scope.ResolveEntryByDescription(ctx, ident, wsID)
		if err != nil {
			return err
		}
		id = entry.ID
	} else {
		if _, err := fmt.Sscanf(ident, "%d", &id); err != nil {
			return fmt.Errorf("%w: %q is not a time entry id", domain.ErrValidation, ident)
		}
	}
	return c.Mutator.DeleteEntry(ctx, wsID, id)
}

func (c *Coordinator) logReport(op string, r Report) {
	c.Log.Info(op+" completed",
		slog.Int("items", len(r.Results)),
		slog.Int("succeeded", r.SuccessCount),
		slog.Int("failed", r.ErrorCount),
	)
}
