package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"toggl-mcp/internal/bulk"
	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/search"
)

func (h *ToolHandlers) registerTimeEntryTools(s McpServer) {
	s.AddTool(mcp.NewTool("new_time_entry",
		mcp.WithDescription("Create a time entry. With no start time a running timer starts now; with a start and a duration the stop time is derived."),
		mcp.WithString("description",
			mcp.Description("Entry description"),
		),
		mcp.WithArray("tags",
			mcp.Description("Tag names; missing tags are created"),
		),
		mcp.WithString("project_name",
			mcp.Description("Project name within the workspace"),
		),
		mcp.WithString("start",
			mcp.Description("Start time, local naive or with explicit offset (e.g. 2024-05-01T09:00:00)"),
		),
		mcp.WithString("stop",
			mcp.Description("Stop time, same formats as start"),
		),
		mcp.WithNumber("duration",
			mcp.Description("Duration in seconds; requires a start time"),
		),
		mcp.WithBoolean("billable",
			mcp.Description("Mark the entry billable"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleNewTimeEntry)

	s.AddTool(mcp.NewTool("stop_time_entry",
		mcp.WithDescription("Stop a running time entry identified by its exact description"),
		mcp.WithString("time_entry_name",
			mcp.Required(),
			mcp.Description("Exact description of the entry to stop"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleStopTimeEntry)

	s.AddTool(mcp.NewTool("delete_time_entry",
		mcp.WithDescription("Delete a time entry identified by its exact description"),
		mcp.WithString("time_entry_name",
			mcp.Required(),
			mcp.Description("Exact description of the entry to delete"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleDeleteTimeEntry)

	s.AddTool(mcp.NewTool("get_current_time_entry",
		mcp.WithDescription("Get the currently running time entry, if any"),
	), h.handleGetCurrentTimeEntry)

	s.AddTool(mcp.NewTool("update_time_entry",
		mcp.WithDescription("Update fields of a time entry identified by its exact description"),
		mcp.WithString("time_entry_name",
			mcp.Required(),
			mcp.Description("Exact description of the entry to update"),
		),
		mcp.WithString("new_description",
			mcp.Description("Replacement description"),
		),
		mcp.WithArray("tags",
			mcp.Description("Replacement tag list; missing tags are created"),
		),
		mcp.WithString("project_name",
			mcp.Description("Replacement project name"),
		),
		mcp.WithString("start",
			mcp.Description("Replacement start time"),
		),
		mcp.WithString("stop",
			mcp.Description("Replacement stop time"),
		),
		mcp.WithNumber("duration",
			mcp.Description("Replacement duration in seconds"),
		),
		mcp.WithBoolean("billable",
			mcp.Description("Replacement billable flag"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleUpdateTimeEntry)

	s.AddTool(mcp.NewTool("get_time_entries_for_range",
		mcp.WithDescription("List time entries whose start falls within a range of local days, given as day offsets from today (0 = today, -1 = yesterday)"),
		mcp.WithNumber("from_day_offset",
			mcp.Description("First day of the range as an offset from today (default 0)"),
		),
		mcp.WithNumber("to_day_offset",
			mcp.Description("Last day of the range as an offset from today (default 0)"),
		),
	), h.handleGetTimeEntriesForRange)

	s.AddTool(mcp.NewTool("advanced_search_time_entries",
		mcp.WithDescription("Search recent time entries with combined filters; all given criteria must match"),
		mcp.WithString("search_text",
			mcp.Description("Text to match against the searched fields"),
		),
		mcp.WithArray("search_fields",
			mcp.Description("Fields searched for search_text: description, tags (default description)"),
		),
		mcp.WithArray("project_names",
			mcp.Description("Match entries assigned to any of these projects"),
		),
		mcp.WithArray("tags",
			mcp.Description("Match entries carrying any of these tags"),
		),
		mcp.WithString("start_date",
			mcp.Description("Earliest local start date or timestamp, inclusive"),
		),
		mcp.WithString("end_date",
			mcp.Description("Latest local start date or timestamp, inclusive; a bare date covers the whole day"),
		),
		mcp.WithNumber("min_duration_minutes",
			mcp.Description("Minimum duration in minutes, inclusive; excludes running entries"),
		),
		mcp.WithNumber("max_duration_minutes",
			mcp.Description("Maximum duration in minutes, inclusive; excludes running entries"),
		),
		mcp.WithBoolean("billable",
			mcp.Description("Match only billable (true) or non-billable (false) entries"),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Match text case-sensitively"),
		),
		mcp.WithBoolean("exact_match",
			mcp.Description("Require whole-field equality instead of substring match"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleAdvancedSearch)

	s.AddTool(mcp.NewTool("full_text_search",
		mcp.WithDescription("Substring search over recent time entries"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		mcp.WithArray("search_fields",
			mcp.Description("Fields to search: description, tags (default description)"),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Match case-sensitively"),
		),
	), h.handleFullTextSearch)

	s.AddTool(mcp.NewTool("bulk_create_time_entries",
		mcp.WithDescription("Create several time entries in one call. Items are processed independently; the result reports success or failure per item in input order."),
		mcp.WithArray("entries",
			mcp.Required(),
			mcp.Description("Entry objects with the same fields as new_time_entry"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleBulkCreate)

	s.AddTool(mcp.NewTool("bulk_update_time_entries",
		mcp.WithDescription("Update several time entries in one call. Each item targets an entry by id or by exact description (entry_name); items are processed independently."),
		mcp.WithArray("entries",
			mcp.Required(),
			mcp.Description("Update objects: id or entry_name plus the fields to change"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleBulkUpdate)

	s.AddTool(mcp.NewTool("bulk_delete_time_entries",
		mcp.WithDescription("Delete several time entries in one call, identified by numeric ids or by exact descriptions"),
		mcp.WithArray("entry_identifiers",
			mcp.Required(),
			mcp.Description("Entry ids (as strings) or exact descriptions"),
		),
		mcp.WithBoolean("are_descriptions",
			mcp.Description("Treat identifiers as descriptions instead of ids"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleBulkDelete)
}

func (h *ToolHandlers) handleNewTimeEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	item := bulk.EntryInput{
		Description: req.GetString("description", ""),
		Tags:        req.GetStringSlice("tags", nil),
		ProjectName: req.GetString("project_name", ""),
		Start:       req.GetString("start", ""),
		Stop:        req.GetString("stop", ""),
		DurationSec: optInt64(req, "duration"),
		Billable:    req.GetBool("billable", false),
	}
	report := h.bulk.CreateEntries(ctx, scope, wsID, []bulk.EntryInput{item})
	if report.ErrorCount > 0 {
		r := report.Results[0]
		return mcp.NewToolResultError(fmt.Sprintf("create time entry: %s (%s)", r.Error, r.Kind)), nil
	}
	return jsonResult(map[string]any{
		"time_entry":    report.Results[0].Payload,
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleStopTimeEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("time_entry_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	entry, err := scope.ResolveEntryByDescription(ctx, name, wsID)
	if err != nil {
		return errResult("resolve time entry", err)
	}
	stopped, err := h.mut.StopEntry(ctx, wsID, entry.ID)
	if err != nil {
		return errResult("stop time entry", err)
	}
	return jsonResult(map[string]any{
		"time_entry":    h.conv.Enrich(stopped),
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleDeleteTimeEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("time_entry_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	entry, err := scope.ResolveEntryByDescription(ctx, name, wsID)
	if err != nil {
		return errResult("resolve time entry", err)
	}
	if err := h.mut.DeleteEntry(ctx, wsID, entry.ID); err != nil {
		return errResult("delete time entry", err)
	}
	return jsonResult(map[string]any{
		"deleted": name,
		"id":      entry.ID,
	})
}

func (h *ToolHandlers) handleGetCurrentTimeEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, err := h.dir.CurrentTimeEntry(ctx)
	if err != nil {
		return errResult("get current time entry", err)
	}
	if entry == nil {
		return jsonResult(map[string]any{
			"time_entry":    nil,
			"message":       "no time entry is currently running",
			"timezone_info": h.conv.Info(),
		})
	}
	return jsonResult(map[string]any{
		"time_entry":    h.conv.Enrich(*entry),
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleUpdateTimeEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("time_entry_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}

	item := bulk.UpdateInput{
		EntryName:   name,
		ProjectName: req.GetString("project_name", ""),
	}
	if v := req.GetString("new_description", ""); v != "" {
		item.Patch.Description = &v
	}
	if _, ok := req.GetArguments()["tags"]; ok {
		tags := req.GetStringSlice("tags", nil)
		item.Patch.Tags = &tags
	}
	if v := req.GetString("start", ""); v != "" {
		item.Patch.Start = &v
	}
	if v := req.GetString("stop", ""); v != "" {
		item.Patch.Stop = &v
	}
	item.Patch.DurationSec = optInt64(req, "duration")
	item.Patch.Billable = optBool(req, "billable")

	report := h.bulk.UpdateEntries(ctx, scope, wsID, []bulk.UpdateInput{item})
	if report.ErrorCount > 0 {
		r := report.Results[0]
		return mcp.NewToolResultError(fmt.Sprintf("update time entry: %s (%s)", r.Error, r.Kind)), nil
	}
	return jsonResult(map[string]any{
		"time_entry":    report.Results[0].Payload,
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleGetTimeEntriesForRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := req.GetInt("from_day_offset", 0)
	to := req.GetInt("to_day_offset", 0)
	if from > to {
		return mcp.NewToolResultError(fmt.Sprintf("invalid range: from_day_offset %d is after to_day_offset %d", from, to)), nil
	}
	startWire, _ := h.conv.DayRange(from)
	_, endWire := h.conv.DayRange(to)
	startBound, err := h.conv.ParseWire(startWire)
	if err != nil {
		return errResult("range start", err)
	}
	endBound, err := h.conv.ParseWire(endWire)
	if err != nil {
		return errResult("range end", err)
	}

	scope := h.resolver.Scope()
	entries, err := scope.Entries(ctx)
	if err != nil {
		return errResult("list time entries", err)
	}
	matched := make([]domain.TimeEntry, 0, len(entries))
	for _, e := range entries {
		start, err := h.conv.ParseWire(e.Start)
		if err != nil {
			continue
		}
		if !start.Before(startBound) && start.Before(endBound) {
			matched = append(matched, e)
		}
	}
	return jsonResult(map[string]any{
		"time_entries":  h.conv.EnrichAll(matched),
		"count":         len(matched),
		"range_start":   startWire,
		"range_end":     endWire,
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleAdvancedSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	criteria := search.Criteria{
		Text:          req.GetString("search_text", ""),
		Fields:        req.GetStringSlice("search_fields", nil),
		Projects:      req.GetStringSlice("project_names", nil),
		Tags:          req.GetStringSlice("tags", nil),
		StartDate:     req.GetString("start_date", ""),
		EndDate:       req.GetString("end_date", ""),
		MinMinutes:    optInt64(req, "min_duration_minutes"),
		MaxMinutes:    optInt64(req, "max_duration_minutes"),
		Billable:      optBool(req, "billable"),
		CaseSensitive: req.GetBool("case_sensitive", false),
		ExactMatch:    req.GetBool("exact_match", false),
	}

	entries, err := scope.Entries(ctx)
	if err != nil {
		return errResult("list time entries", err)
	}
	inWorkspace := make([]domain.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.WorkspaceID == wsID {
			inWorkspace = append(inWorkspace, e)
		}
	}
	projectNames, err := scope.ProjectNames(ctx, wsID)
	if err != nil {
		return errResult("list projects", err)
	}
	matched, err := h.search.Filter(inWorkspace, criteria, projectNames)
	if err != nil {
		return errResult("search time entries", err)
	}
	return jsonResult(map[string]any{
		"time_entries":  h.conv.EnrichAll(matched),
		"count":         len(matched),
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleFullTextSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	criteria := search.Criteria{
		Text:          query,
		Fields:        req.GetStringSlice("search_fields", nil),
		CaseSensitive: req.GetBool("case_sensitive", false),
	}
	scope := h.resolver.Scope()
	entries, err := scope.Entries(ctx)
	if err != nil {
		return errResult("list time entries", err)
	}
	matched, err := h.search.Filter(entries, criteria, nil)
	if err != nil {
		return errResult("search time entries", err)
	}
	return jsonResult(map[string]any{
		"time_entries":  h.conv.EnrichAll(matched),
		"count":         len(matched),
		"query":         query,
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleBulkCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Entries       []bulk.EntryInput `json:"entries"`
		WorkspaceName string            `json:"workspace_name"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Entries) == 0 {
		return mcp.NewToolResultError("entries must not be empty"), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, args.WorkspaceName)
	if err != nil {
		return errResult("resolve workspace", err)
	}
	return jsonResult(h.bulk.CreateEntries(ctx, scope, wsID, args.Entries))
}

// bulkUpdateItem is the wire shape of one bulk update; flat fields are
// folded into the patch.
type bulkUpdateItem struct {
	ID          int64     `json:"id,omitempty"`
	EntryName   string    `json:"entry_name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	ProjectName string    `json:"project_name,omitempty"`
	Start       *string   `json:"start,omitempty"`
	Stop        *string   `json:"stop,omitempty"`
	DurationSec *int64    `json:"duration,omitempty"`
	Billable    *bool     `json:"billable,omitempty"`
}

func (h *ToolHandlers) handleBulkUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Entries       []bulkUpdateItem `json:"entries"`
		WorkspaceName string           `json:"workspace_name"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Entries) == 0 {
		return mcp.NewToolResultError("entries must not be empty"), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, args.WorkspaceName)
	if err != nil {
		return errResult("resolve workspace", err)
	}
	items := make([]bulk.UpdateInput, len(args.Entries))
	for i, e := range args.Entries {
		items[i] = bulk.UpdateInput{
			ID:          e.ID,
			EntryName:   e.EntryName,
			ProjectName: e.ProjectName,
			Patch: domain.EntryPatch{
				Description: e.Description,
				Tags:        e.Tags,
				Start:       e.Start,
				Stop:        e.Stop,
				DurationSec: e.DurationSec,
				Billable:    e.Billable,
			},
		}
	}
	return jsonResult(h.bulk.UpdateEntries(ctx, scope, wsID, items))
}

func (h *ToolHandlers) handleBulkDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Identifiers     []string `json:"entry_identifiers"`
		AreDescriptions bool     `json:"are_descriptions"`
		WorkspaceName   string   `json:"workspace_name"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Identifiers) == 0 {
		return mcp.NewToolResultError("entry_identifiers must not be empty"), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, args.WorkspaceName)
	if err != nil {
		return errResult("resolve workspace", err)
	}
	return jsonResult(h.bulk.DeleteEntries(ctx, scope, wsID, args.Identifiers, args.AreDescriptions))
}
