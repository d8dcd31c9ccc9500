package toggl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-mcp/internal/domain"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.URL, "token123", "", "", log)
}

func TestDo_SetsAuthAndPrefix(t *testing.T) {
	var gotPath, gotAuth, gotAccept string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `[]`)
	}))

	_, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v9/me/workspaces", gotPath)
	// base64("token123:api_token")
	assert.Equal(t, "Basic dG9rZW4xMjM6YXBpX3Rva2Vu", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrEntityNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusInternalServerError, domain.ErrService},
		{http.StatusBadGateway, domain.ErrService},
		{http.StatusBadRequest, domain.ErrValidation},
	}
	for _, tc := range cases {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			fmt.Fprint(w, "nope")
		}))
		_, err := client.ListWorkspaces(context.Background())
		assert.True(t, errors.Is(err, tc.want), "status %d should map to %v, got %v", tc.status, tc.want, err)
	}
}

func TestDo_TransportErrorIsServiceError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient("http://127.0.0.1:1", "token", "", "", log)
	_, err := client.ListWorkspaces(context.Background())
	assert.True(t, errors.Is(err, domain.ErrService))
}

func TestListProjects_Paginates(t *testing.T) {
	const pageSize = 50
	var pagesServed []int
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pagesServed = append(pagesServed, page)

		count := pageSize
		if page == 2 {
			count = 3
		}
		projects := make([]map[string]any, count)
		for i := range projects {
			projects[i] = map[string]any{
				"id":           (page-1)*pageSize + i + 1,
				"workspace_id": 20,
				"name":         fmt.Sprintf("p%d", (page-1)*pageSize+i+1),
				"active":       true,
			}
		}
		json.NewEncoder(w).Encode(projects)
	}))

	got, err := client.ListProjects(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pagesServed)
	assert.Len(t, got, pageSize+3)
	assert.Equal(t, "p1", got[0].Name)
	assert.Equal(t, "p53", got[len(got)-1].Name)
}

func TestCurrentTimeEntry_NullBody(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "null")
	}))
	entry, err := client.CurrentTimeEntry(context.Background())
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCurrentTimeEntry_Running(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 9, "workspace_id": 20, "description": "tracking", "start": "2024-05-01T09:00:00+00:00", "duration": -1}`)
	}))
	entry, err := client.CurrentTimeEntry(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(9), entry.ID)
	assert.True(t, entry.Running())
}

func TestCreateEntry_PayloadShape(t *testing.T) {
	var payload map[string]any
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v9/workspaces/20/time_entries", r.URL.Path)
		fmt.Fprint(w, `{"id": 1, "workspace_id": 20, "description": "work", "start": "2024-05-01T09:00:00+00:00", "duration": -1}`)
	}))

	pid := int64(100)
	_, err := client.CreateEntry(context.Background(), domain.NewEntryRequest{
		WorkspaceID: 20,
		Description: "work",
		ProjectID:   &pid,
		Tags:        []string{"dev"},
		Start:       "2024-05-01T09:00:00.000Z",
		DurationSec: -1,
	})
	require.NoError(t, err)

	assert.Equal(t, "toggl-mcp", payload["created_with"])
	assert.Equal(t, float64(20), payload["workspace_id"])
	assert.Equal(t, float64(100), payload["project_id"])
	assert.Equal(t, []any{"dev"}, payload["tags"])
	assert.Equal(t, float64(-1), payload["duration"])
	_, hasStop := payload["stop"]
	assert.False(t, hasStop)
}

func TestUpdateEntry_OnlySetFieldsSent(t *testing.T) {
	var payload map[string]any
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v9/workspaces/20/time_entries/9", r.URL.Path)
		fmt.Fprint(w, `{"id": 9, "workspace_id": 20, "description": "renamed", "start": "2024-05-01T09:00:00+00:00", "duration": 60}`)
	}))

	desc := "renamed"
	_, err := client.UpdateEntry(context.Background(), 20, 9, domain.EntryPatch{Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "renamed", payload["description"])
	for _, absent := range []string{"tags", "project_id", "start", "stop", "duration", "billable"} {
		_, ok := payload[absent]
		assert.False(t, ok, "unexpected field %q", absent)
	}
}

func TestStopEntry(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v9/workspaces/20/time_entries/9/stop", r.URL.Path)
		fmt.Fprint(w, `{"id": 9, "workspace_id": 20, "description": "done", "start": "2024-05-01T09:00:00+00:00", "stop": "2024-05-01T10:00:00+00:00", "duration": 3600}`)
	}))

	entry, err := client.StopEntry(context.Background(), 20, 9)
	require.NoError(t, err)
	assert.False(t, entry.Running())
	require.NotNil(t, entry.Stop)
}

func TestPatchProjects_CommaJoinedIDs(t *testing.T) {
	var ops []domain.PatchOp
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v9/workspaces/20/projects/100,101", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ops))
		fmt.Fprint(w, `{"success": [100, 101]}`)
	}))

	out, err := client.PatchProjects(context.Background(), 20, []int64{100, 101}, []domain.PatchOp{
		{Op: "replace", Path: "/color", Value: "#bc2d07"},
	})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "replace", ops[0].Op)
	assert.Contains(t, out, "success")
}

func TestDefaultWorkspaceID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v9/me", r.URL.Path)
		fmt.Fprint(w, `{"default_workspace_id": 42}`)
	}))
	id, err := client.DefaultWorkspaceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestDefaultWorkspaceID_MissingIsNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	_, err := client.DefaultWorkspaceID(context.Background())
	assert.True(t, errors.Is(err, domain.ErrEntityNotFound))
}
