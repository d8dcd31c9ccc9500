package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TOGGL_API_TOKEN", "TOGGL_EMAIL", "TOGGL_PASSWORD", "TOGGL_BASE_URL",
		"TOGGL_WORKSPACE", "TOGGL_MCP_TZ", "TOGGL_MCP_DIR", "MYSQL_DSN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_RequiresAuth(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_TokenAuth(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOGGL_API_TOKEN", "tok")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Toggl.APIToken)
	assert.Equal(t, "https://api.track.toggl.com", cfg.Toggl.BaseURL)
}

func TestLoad_CredentialAuthNeedsBoth(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOGGL_EMAIL", "a@b.c")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TOGGL_PASSWORD", "pw")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", cfg.Toggl.Email)
}

func TestLoad_OptionalSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOGGL_API_TOKEN", "tok")
	t.Setenv("TOGGL_BASE_URL", "http://localhost:8080")
	t.Setenv("TOGGL_WORKSPACE", "Work")
	t.Setenv("TOGGL_MCP_TZ", "Asia/Tokyo")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/toggl")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Toggl.BaseURL)
	assert.Equal(t, "Work", cfg.Workspace)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, "user:pass@tcp(db:3306)/toggl", cfg.Store.MySQLDSN)
}
