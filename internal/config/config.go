package config

import (
	"errors"
	"os"
)

// Config holds environment-driven configuration.
type Config struct {
	Toggl struct {
		APIToken string
		Email    string
		Password string
		BaseURL  string // default: https://api.track.toggl.com
	}
	Workspace string // optional default workspace name
	Timezone  string // IANA name; empty means the host's local timezone
	Store     struct {
		Dir      string // file-store directory, default ~/.toggl-mcp
		MySQLDSN string // when set, the preset store lives in MySQL instead
	}
}

// Load reads configuration from environment variables. Authentication is
// either TOGGL_API_TOKEN or TOGGL_EMAIL plus TOGGL_PASSWORD.
func Load() (Config, error) {
	var cfg Config

	cfg.Toggl.APIToken = os.Getenv("TOGGL_API_TOKEN")
	cfg.Toggl.Email = os.Getenv("TOGGL_EMAIL")
	cfg.Toggl.Password = os.Getenv("TOGGL_PASSWORD")
	if cfg.Toggl.APIToken == "" && (cfg.Toggl.Email == "" || cfg.Toggl.Password == "") {
		return cfg, errors.New("TOGGL_API_TOKEN or TOGGL_EMAIL and TOGGL_PASSWORD are required")
	}
	cfg.Toggl.BaseURL = os.Getenv("TOGGL_BASE_URL")
	if cfg.Toggl.BaseURL == "" {
		cfg.Toggl.BaseURL = "https://api.track.toggl.com"
	}

	cfg.Workspace = os.Getenv("TOGGL_WORKSPACE")
	cfg.Timezone = os.Getenv("TOGGL_MCP_TZ")
	cfg.Store.Dir = os.Getenv("TOGGL_MCP_DIR")
	cfg.Store.MySQLDSN = os.Getenv("MYSQL_DSN")

	return cfg, nil
}
