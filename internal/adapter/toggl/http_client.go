// Package toggl implements ports.Directory and ports.Mutator against the
// Toggl Track API v9.
package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"toggl-mcp/internal/domain"
)

const createdWith = "toggl-mcp"

// Client talks to the Toggl Track API v9.
type Client struct {
	baseURL string
	auth    string // precomputed Basic auth header value
	http    *http.Client
	log     *slog.Logger
}

// NewClient builds a client. Authentication is either token-based
// (token:api_token) or credential-based (email:password); token wins when
// both are supplied.
func NewClient(baseURL, apiToken, email, password string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.track.toggl.com"
	}
	cred := apiToken + ":api_token"
	if apiToken == "" {
		cred = email + ":" + password
	}
	return &Client{
		baseURL: baseURL,
		auth:    "Basic " + base64.StdEncoding.EncodeToString([]byte(cred)),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// do executes one request and decodes the JSON response into out (skipped
// when out is nil). Non-2xx statuses map to the typed upstream error kinds.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = "/api/v9" + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusError(resp.StatusCode, string(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrService, err)
	}
	return nil
}

func statusError(code int, body string) error {
	body = strings.TrimSpace(body)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", domain.ErrUnauthorized, code, body)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d: %s", domain.ErrEntityNotFound, code, body)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", domain.ErrRateLimited, code, body)
	case code >= 500:
		return fmt.Errorf("%w: status %d: %s", domain.ErrService, code, body)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrValidation, code, body)
	}
}

// --- Directory ---

func (c *Client) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	var raw []rawWorkspace
	if err := c.do(ctx, http.MethodGet, "/me/workspaces", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Workspace, 0, len(raw))
	for _, w := range raw {
		out = append(out, domain.Workspace{ID: w.ID, Name: w.Name})
	}
	return out, nil
}

func (c *Client) DefaultWorkspaceID(ctx context.Context) (int64, error) {
	var me struct {
		DefaultWorkspaceID int64 `json:"default_workspace_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &me); err != nil {
		return 0, err
	}
	if me.DefaultWorkspaceID == 0 {
		return 0, fmt.Errorf("default workspace: %w", domain.ErrEntityNotFound)
	}
	return me.DefaultWorkspaceID, nil
}

// ListProjects pages through the workspace's projects.
func (c *Client) ListProjects(ctx context.Context, workspaceID int64) ([]domain.Project, error) {
	const pageSize = 50
	var out []domain.Project
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))
		var raw []rawProject
		path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
		if err := c.do(ctx, http.MethodGet, path, q, nil, &raw); err != nil {
			return nil, err
		}
		for _, p := range raw {
			out = append(out, p.toDomain())
		}
		if len(raw) < pageSize {
			return out, nil
		}
	}
}

func (c *Client) ListTags(ctx context.Context, workspaceID int64) ([]domain.Tag, error) {
	var raw []rawTag
	path := fmt.Sprintf("/workspaces/%d/tags", workspaceID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Tag, 0, len(raw))
	for _, t := range raw {
		out = append(out, domain.Tag{ID: t.ID, WorkspaceID: t.WorkspaceID, Name: t.Name})
	}
	return out, nil
}

func (c *Client) CreateTag(ctx context.Context, workspaceID int64, name string) (domain.Tag, error) {
	var raw rawTag
	path := fmt.Sprintf("/workspaces/%d/tags", workspaceID)
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &raw); err != nil {
		return domain.Tag{}, err
	}
	c.log.Debug("tag created", slog.String("name", name), slog.Int64("id", raw.ID))
	return domain.Tag{ID: raw.ID, WorkspaceID: raw.WorkspaceID, Name: raw.Name}, nil
}

func (c *Client) ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	var raw []rawTimeEntry
	if err := c.do(ctx, http.MethodGet, "/me/time_entries", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *Client) CurrentTimeEntry(ctx context.Context) (*domain.TimeEntry, error) {
	var raw *rawTimeEntry
	if err := c.do(ctx, http.MethodGet, "/me/time_entries/current", nil, nil, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	e := raw.toDomain()
	return &e, nil
}

// --- Mutator ---

func (c *Client) CreateEntry(ctx context.Context, req domain.NewEntryRequest) (domain.TimeEntry, error) {
	payload := map[string]any{
		"created_with": createdWith,
		"workspace_id": req.WorkspaceID,
		"description":  req.Description,
		"billable":     req.Billable,
		"duration":     req.DurationSec,
		"start":        req.Start,
	}
	if len(req.Tags) > 0 {
		payload["tags"] = req.Tags
	}
	if req.ProjectID != nil {
		payload["project_id"] = *req.ProjectID
	}
	if req.Stop != "" {
		payload["stop"] = req.Stop
	}
	var raw rawTimeEntry
	path := fmt.Sprintf("/workspaces/%d/time_entries", req.WorkspaceID)
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &raw); err != nil {
		return domain.TimeEntry{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) UpdateEntry(ctx context.Context, workspaceID, entryID int64, patch domain.EntryPatch) (domain.TimeEntry, error) {
	payload := map[string]any{"created_with": createdWith}
	if patch.Description != nil {
		payload["description"] = *patch.Description
	}
	if patch.Tags != nil {
		payload["tags"] = *patch.Tags
	}
	if patch.ProjectID != nil {
		payload["project_id"] = *patch.ProjectID
	}
	if patch.Start != nil {
		payload["start"] = *patch.Start
	}
	if patch.Stop != nil {
		payload["stop"] = *patch.Stop
	}
	if patch.DurationSec != nil {
		payload["duration"] = *patch.DurationSec
	}
	if patch.Billable != nil {
		payload["billable"] = *patch.Billable
	}
	var raw rawTimeEntry
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", workspaceID, entryID)
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &raw); err != nil {
		return domain.TimeEntry{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) DeleteEntry(ctx context.Context, workspaceID, entryID int64) error {
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", workspaceID, entryID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) StopEntry(ctx context.Context, workspaceID, entryID int64) (domain.TimeEntry, error) {
	var raw rawTimeEntry
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d/stop", workspaceID, entryID)
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, &raw); err != nil {
		return domain.TimeEntry{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) CreateProject(ctx context.Context, req domain.NewProjectRequest) (domain.Project, error) {
	payload := map[string]any{
		"name":       req.Name,
		"active":     req.Active,
		"billable":   req.Billable,
		"is_private": req.Private,
	}
	if req.Color != "" {
		payload["color"] = req.Color
	}
	if req.ClientID != nil {
		payload["client_id"] = *req.ClientID
	}
	if req.StartDate != "" {
		payload["start_date"] = req.StartDate
	}
	if req.EndDate != "" {
		payload["end_date"] = req.EndDate
	}
	if req.EstimatedHours != nil {
		payload["estimated_hours"] = *req.EstimatedHours
	}
	var raw rawProject
	path := fmt.Sprintf("/workspaces/%d/projects", req.WorkspaceID)
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &raw); err != nil {
		return domain.Project{}, err
	}
	return raw.toDomain(), nil
}

// PatchProjects applies JSON-Patch style operations to several projects in
// one round trip; the endpoint takes a comma-separated ID list.
func (c *Client) PatchProjects(ctx context.Context, workspaceID int64, projectIDs []int64, ops []domain.PatchOp) (map[string]any, error) {
	ids := make([]string, len(projectIDs))
	for i, id := range projectIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	var out map[string]any
	path := fmt.Sprintf("/workspaces/%d/projects/%s", workspaceID, strings.Join(ids, ","))
	if err := c.do(ctx, http.MethodPatch, path, nil, ops, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteProject(ctx context.Context, workspaceID, projectID int64) error {
	path := fmt.Sprintf("/workspaces/%d/projects/%d", workspaceID, projectID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// --- wire types ---

type rawWorkspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type rawTimeEntry struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	ProjectID   *int64   `json:"project_id"`
	WorkspaceID int64    `json:"workspace_id"`
	Tags        []string `json:"tags"`
	TagIDs      []int64  `json:"tag_ids"`
	Start       string   `json:"start"`
	Stop        *string  `json:"stop"`
	Duration    int64    `json:"duration"`
	Billable    bool     `json:"billable"`
}

func (r rawTimeEntry) toDomain() domain.TimeEntry {
	return domain.TimeEntry{
		ID:          r.ID,
		Description: r.Description,
		ProjectID:   r.ProjectID,
		WorkspaceID: r.WorkspaceID,
		Tags:        r.Tags,
		TagIDs:      r.TagIDs,
		Start:       r.Start,
		Stop:        r.Stop,
		DurationSec: r.Duration,
		Billable:    r.Billable,
	}
}

type rawProject struct {
	ID             int64  `json:"id"`
	WorkspaceID    int64  `json:"workspace_id"`
	Name           string `json:"name"`
	Active         bool   `json:"active"`
	Billable       bool   `json:"billable"`
	Private        bool   `json:"is_private"`
	Color          string `json:"color"`
	ClientID       *int64 `json:"client_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	EstimatedHours *int64 `json:"estimated_hours"`
}

func (r rawProject) toDomain() domain.Project {
	return domain.Project{
		ID:             r.ID,
		WorkspaceID:    r.WorkspaceID,
		Name:           r.Name,
		Active:         r.Active,
		Billable:       r.Billable,
		Private:        r.Private,
		Color:          r.Color,
		ClientID:       r.ClientID,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		EstimatedHours: r.EstimatedHours,
	}
}

type rawTag struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
}
