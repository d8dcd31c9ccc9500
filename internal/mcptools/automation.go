package mcptools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"toggl-mcp/internal/domain"
)

func (h *ToolHandlers) registerAutomationTools(s McpServer) {
	s.AddTool(mcp.NewTool("save_timer_preset",
		mcp.WithDescription("Save a named timer template for one-call starts. Saving an existing name overwrites it."),
		mcp.WithString("preset_name",
			mcp.Required(),
			mcp.Description("Name of the preset"),
		),
		mcp.WithString("description",
			mcp.Description("Entry description the preset applies"),
		),
		mcp.WithString("project_name",
			mcp.Description("Project name the preset applies"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name the preset applies"),
		),
		mcp.WithArray("tags",
			mcp.Description("Tags the preset applies"),
		),
		mcp.WithBoolean("billable",
			mcp.Description("Billable flag the preset applies"),
		),
	), h.handleSavePreset)

	s.AddTool(mcp.NewTool("get_timer_preset",
		mcp.WithDescription("Get a saved timer preset by name"),
		mcp.WithString("preset_name",
			mcp.Required(),
			mcp.Description("Name of the preset"),
		),
	), h.handleGetPreset)

	s.AddTool(mcp.NewTool("list_timer_presets",
		mcp.WithDescription("List all saved timer presets"),
	), h.handleListPresets)

	s.AddTool(mcp.NewTool("delete_timer_preset",
		mcp.WithDescription("Delete a saved timer preset"),
		mcp.WithString("preset_name",
			mcp.Required(),
			mcp.Description("Name of the preset"),
		),
	), h.handleDeletePreset)

	s.AddTool(mcp.NewTool("start_timer_with_preset",
		mcp.WithDescription("Start a running timer now from a saved preset"),
		mcp.WithString("preset_name",
			mcp.Required(),
			mcp.Description("Name of the preset to start"),
		),
	), h.handleStartWithPreset)

	s.AddTool(mcp.NewTool("create_recurring_entry",
		mcp.WithDescription("Store a recurring time entry definition. Scheduling is left to an external trigger; run_recurring_entry performs one run."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Description of the entries to create"),
		),
		mcp.WithObject("schedule",
			mcp.Required(),
			mcp.Description("Free-form schedule hint, e.g. {\"days\": [\"monday\"], \"time\": \"09:00\"}"),
		),
		mcp.WithString("project_name",
			mcp.Description("Project name for the entries"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
		mcp.WithArray("tags",
			mcp.Description("Tags for the entries"),
		),
		mcp.WithBoolean("billable",
			mcp.Description("Billable flag for the entries"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Duration of each run in minutes (default 60)"),
		),
	), h.handleCreateRecurring)

	s.AddTool(mcp.NewTool("get_recurring_entry",
		mcp.WithDescription("Get a recurring entry definition by ID"),
		mcp.WithString("entry_id",
			mcp.Required(),
			mcp.Description("ID of the recurring entry"),
		),
	), h.handleGetRecurring)

	s.AddTool(mcp.NewTool("list_recurring_entries",
		mcp.WithDescription("List all recurring entry definitions"),
	), h.handleListRecurring)

	s.AddTool(mcp.NewTool("delete_recurring_entry",
		mcp.WithDescription("Delete a recurring entry definition"),
		mcp.WithString("entry_id",
			mcp.Required(),
			mcp.Description("ID of the recurring entry"),
		),
	), h.handleDeleteRecurring)

	s.AddTool(mcp.NewTool("run_recurring_entry",
		mcp.WithDescription("Create one time entry from a recurring definition, now or at the given times"),
		mcp.WithString("entry_id",
			mcp.Required(),
			mcp.Description("ID of the recurring entry"),
		),
		mcp.WithString("start_time",
			mcp.Description("Start override, local naive or with explicit offset"),
		),
		mcp.WithString("end_time",
			mcp.Description("Stop override, same formats as start_time"),
		),
	), h.handleRunRecurring)
}

func (h *ToolHandlers) handleSavePreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("preset_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	preset := domain.Preset{
		Name:          name,
		Description:   req.GetString("description", ""),
		ProjectName:   req.GetString("project_name", ""),
		WorkspaceName: req.GetString("workspace_name", ""),
		Tags:          req.GetStringSlice("tags", nil),
		Billable:      req.GetBool("billable", false),
	}
	if err := h.auto.SavePreset(preset); err != nil {
		return errResult("save preset", err)
	}
	return jsonResult(map[string]any{
		"saved":  name,
		"preset": preset,
	})
}

func (h *ToolHandlers) handleGetPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("preset_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	preset, err := h.auto.GetPreset(name)
	if err != nil {
		return errResult("get preset", err)
	}
	return jsonResult(map[string]any{"preset": preset})
}

func (h *ToolHandlers) handleListPresets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	presets, err := h.auto.ListPresets()
	if err != nil {
		return errResult("list presets", err)
	}
	return jsonResult(map[string]any{
		"presets": presets,
		"count":   len(presets),
	})
}

func (h *ToolHandlers) handleDeletePreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("preset_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.auto.DeletePreset(name); err != nil {
		return errResult("delete preset", err)
	}
	return jsonResult(map[string]any{"deleted": name})
}

func (h *ToolHandlers) handleStartWithPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("preset_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := h.resolver.Scope()
	create, preset, err := h.auto.ApplyPreset(ctx, scope, name)
	if err != nil {
		return errResult(fmt.Sprintf("apply preset %q", name), err)
	}
	if len(create.Tags) > 0 {
		_, errs := scope.ResolveTags(ctx, create.Tags, create.WorkspaceID, true)
		for _, err := range errs {
			if err != nil {
				return errResult("resolve tags", err)
			}
		}
	}
	started, err := h.mut.CreateEntry(ctx, create)
	if err != nil {
		return errResult("start timer", err)
	}
	return jsonResult(map[string]any{
		"time_entry":    h.conv.Enrich(started),
		"preset":        preset,
		"timezone_info": h.conv.Info(),
	})
}

func (h *ToolHandlers) handleCreateRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	schedule, ok := req.GetArguments()["schedule"].(map[string]any)
	if !ok || len(schedule) == 0 {
		return mcp.NewToolResultError("schedule must be a non-empty object"), nil
	}
	scope := h.resolver.Scope()
	cfg := domain.RecurringConfig{
		Description:   description,
		ProjectName:   req.GetString("project_name", ""),
		WorkspaceName: req.GetString("workspace_name", ""),
		Tags:          req.GetStringSlice("tags", nil),
		Billable:      req.GetBool("billable", false),
		Schedule:      schedule,
		DurationSec:   int64(req.GetInt("duration_minutes", 60)) * 60,
	}
	created, err := h.auto.CreateRecurring(ctx, scope, cfg)
	if err != nil {
		return errResult("create recurring entry", err)
	}
	return jsonResult(map[string]any{"recurring_entry": created})
}

func (h *ToolHandlers) handleGetRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("entry_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := h.auto.GetRecurring(id)
	if err != nil {
		return errResult("get recurring entry", err)
	}
	return jsonResult(map[string]any{"recurring_entry": cfg})
}

func (h *ToolHandlers) handleListRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configs, err := h.auto.ListRecurring()
	if err != nil {
		return errResult("list recurring entries", err)
	}
	return jsonResult(map[string]any{
		"recurring_entries": configs,
		"count":             len(configs),
	})
}

func (h *ToolHandlers) handleDeleteRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("entry_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.auto.DeleteRecurring(id); err != nil {
		return errResult("delete recurring entry", err)
	}
	return jsonResult(map[string]any{"deleted": id})
}

func (h *ToolHandlers) handleRunRecurring(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("entry_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := h.auto.GetRecurring(id)
	if err != nil {
		return errResult("get recurring entry", err)
	}
	create, err := h.auto.MaterializeRecurring(cfg, req.GetString("start_time", ""), req.GetString("end_time", ""))
	if err != nil {
		return errResult("materialize recurring entry", err)
	}
	scope := h.resolver.Scope()
	if len(create.Tags) > 0 {
		_, errs := scope.ResolveTags(ctx, create.Tags, create.WorkspaceID, true)
		for _, err := range errs {
			if err != nil {
				return errResult("resolve tags", err)
			}
		}
	}
	created, err := h.mut.CreateEntry(ctx, create)
	if err != nil {
		return errResult("create time entry", err)
	}
	cfg, err = h.auto.MarkRan(cfg)
	if err != nil {
		h.log.Warn("failed to record recurring run", slog.String("id", id), slog.String("error", err.Error()))
	}
	return jsonResult(map[string]any{
		"time_entry":    h.conv.Enrich(created),
		"recurring_id":  cfg.ID,
		"last_run":      cfg.LastRun,
		"timezone_info": h.conv.Info(),
	})
}
