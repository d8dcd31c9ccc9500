package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/search"
)

// projectColors is the fixed palette accepted by the project endpoints.
var projectColors = []string{
	"#4dc3ff", "#bc85e6", "#df7baa", "#f68d38", "#b27636",
	"#8ab734", "#14a88e", "#268bb5", "#6668b4", "#a4506c",
	"#67412c", "#3c6526", "#094558", "#bc2d07", "#999999",
}

func validColor(c string) bool {
	for _, v := range projectColors {
		if strings.EqualFold(v, c) {
			return true
		}
	}
	return false
}

func (h *ToolHandlers) registerProjectTools(s McpServer) {
	s.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a project in a workspace. Color, when given, must come from the fixed palette: "+strings.Join(projectColors, ", ")),
		mcp.WithString("project_name",
			mcp.Required(),
			mcp.Description("Name of the new project"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
		mcp.WithBoolean("active",
			mcp.Description("Whether the project starts active (default true)"),
		),
		mcp.WithBoolean("billable",
			mcp.Description("Whether the project is billable by default"),
		),
		mcp.WithBoolean("is_private",
			mcp.Description("Whether the project is private (default true)"),
		),
		mcp.WithString("color",
			mcp.Description("Hex color from the palette"),
		),
		mcp.WithNumber("client_id",
			mcp.Description("Client to attach the project to"),
		),
		mcp.WithString("start_date",
			mcp.Description("Project start date, YYYY-MM-DD"),
		),
		mcp.WithString("end_date",
			mcp.Description("Project end date, YYYY-MM-DD"),
		),
		mcp.WithNumber("estimated_hours",
			mcp.Description("Estimated hours for the project"),
		),
	), h.handleCreateProject)

	s.AddTool(mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project identified by its exact name"),
		mcp.WithString("project_name",
			mcp.Required(),
			mcp.Description("Exact name of the project to delete"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleDeleteProject)

	s.AddTool(mcp.NewTool("update_projects",
		mcp.WithDescription("Apply patch operations to one or more projects identified by name"),
		mcp.WithArray("project_names",
			mcp.Required(),
			mcp.Description("Exact names of the projects to update"),
		),
		mcp.WithArray("operations",
			mcp.Required(),
			mcp.Description("Patch operations, each {op: add|remove|replace, path: e.g. /color, value}"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
	), h.handleUpdateProjects)

	s.AddTool(mcp.NewTool("get_all_projects",
		mcp.WithDescription("List projects in a workspace"),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
		mcp.WithBoolean("active_only",
			mcp.Description("Return only active projects"),
		),
	), h.handleGetAllProjects)

	s.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Search projects by name"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to match against project names"),
		),
		mcp.WithString("workspace_name",
			mcp.Description("Workspace name; defaults to the configured workspace"),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Match case-sensitively"),
		),
		mcp.WithBoolean("exact_match",
			mcp.Description("Require whole-name equality instead of substring match"),
		),
	), h.handleSearchProjects)

	s.AddTool(mcp.NewTool("list_workspaces",
		mcp.WithDescription("List the workspaces of the authenticated account"),
	), h.handleListWorkspaces)
}

func (h *ToolHandlers) handleCreateProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	create := domain.NewProjectRequest{
		WorkspaceID: wsID,
		Name:        name,
		Active:      req.GetBool("active", true),
		Billable:    req.GetBool("billable", false),
		Private:     req.GetBool("is_private", true),
		Color:       req.GetString("color", ""),
		StartDate:   req.GetString("start_date", ""),
		EndDate:     req.GetString("end_date", ""),
		ClientID:    optInt64(req, "client_id"),
	}
	if create.Color != "" && !validColor(create.Color) {
		return mcp.NewToolResultError(fmt.Sprintf("color %q is not in the palette: %s", create.Color, strings.Join(projectColors, ", "))), nil
	}
	create.EstimatedHours = optInt64(req, "estimated_hours")
	project, err := h.mut.CreateProject(ctx, create)
	if err != nil {
		return errResult("create project", err)
	}
	return jsonResult(map[string]any{"project": project})
}

func (h *ToolHandlers) handleDeleteProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	pid, err := scope.ResolveProject(ctx, name, wsID)
	if err != nil {
		return errResult("resolve project", err)
	}
	if err := h.mut.DeleteProject(ctx, wsID, pid); err != nil {
		return errResult("delete project", err)
	}
	return jsonResult(map[string]any{
		"deleted": name,
		"id":      pid,
	})
}

func (h *ToolHandlers) handleUpdateProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ProjectNames  []string         `json:"project_names"`
		Operations    []domain.PatchOp `json:"operations"`
		WorkspaceName string           `json:"workspace_name"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.ProjectNames) == 0 || len(args.Operations) == 0 {
		return mcp.NewToolResultError("project_names and operations must not be empty"), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, args.WorkspaceName)
	if err != nil {
		return errResult("resolve workspace", err)
	}
	ids := make([]int64, len(args.ProjectNames))
	for i, name := range args.ProjectNames {
		pid, err := scope.ResolveProject(ctx, name, wsID)
		if err != nil {
			return errResult(fmt.Sprintf("resolve project %q", name), err)
		}
		ids[i] = pid
	}
	result, err := h.mut.PatchProjects(ctx, wsID, ids, args.Operations)
	if err != nil {
		return errResult("update projects", err)
	}
	return jsonResult(result)
}

func (h *ToolHandlers) handleGetAllProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	projects, err := scope.Projects(ctx, wsID)
	if err != nil {
		return errResult("list projects", err)
	}
	if req.GetBool("active_only", false) {
		active := make([]domain.Project, 0, len(projects))
		for _, p := range projects {
			if p.Active {
				active = append(active, p)
			}
		}
		projects = active
	}
	return jsonResult(map[string]any{
		"projects": projects,
		"count":    len(projects),
	})
}

func (h *ToolHandlers) handleSearchProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := h.resolver.Scope()
	wsID, err := scope.ResolveWorkspace(ctx, req.GetString("workspace_name", ""))
	if err != nil {
		return errResult("resolve workspace", err)
	}
	projects, err := scope.Projects(ctx, wsID)
	if err != nil {
		return errResult("list projects", err)
	}
	caseSensitive := req.GetBool("case_sensitive", false)
	exact := req.GetBool("exact_match", false)
	matched := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if search.MatchText(p.Name, query, caseSensitive, exact) {
			matched = append(matched, p)
		}
	}
	return jsonResult(map[string]any{
		"projects": matched,
		"count":    len(matched),
		"query":    query,
	})
}

func (h *ToolHandlers) handleListWorkspaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaces, err := h.dir.ListWorkspaces(ctx)
	if err != nil {
		return errResult("list workspaces", err)
	}
	return jsonResult(map[string]any{
		"workspaces": workspaces,
		"count":      len(workspaces),
	})
}
