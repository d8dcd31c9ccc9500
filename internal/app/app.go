package app

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/adapter/file"
	msql "toggl-mcp/internal/adapter/mysql"
	tg "toggl-mcp/internal/adapter/toggl"
	"toggl-mcp/internal/automation"
	"toggl-mcp/internal/bulk"
	"toggl-mcp/internal/config"
	"toggl-mcp/internal/mcptools"
	"toggl-mcp/internal/migrate"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolver"
	"toggl-mcp/internal/search"
	"toggl-mcp/internal/timeconv"
)

// App wires adapters, engines and the MCP server.
type App struct {
	log    *slog.Logger
	server *server.MCPServer
	close  func() error
}

const serverVersion = "1.0.0"

func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	conv, err := timeconv.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	togglClient := tg.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.APIToken, cfg.Toggl.Email, cfg.Toggl.Password, log)

	// The preset store lives in MySQL when a DSN is configured, otherwise in
	// JSON files under the state directory.
	var (
		store   ports.PresetStore
		closeFn = func() error { return nil }
	)
	if cfg.Store.MySQLDSN != "" {
		// Run migrations before opening the store for use
		if err := migrate.Run(ctx, cfg.Store.MySQLDSN, log); err != nil {
			return nil, err
		}
		dbStore, err := msql.NewStore(ctx, cfg.Store.MySQLDSN, log)
		if err != nil {
			return nil, err
		}
		store = dbStore
		closeFn = dbStore.Close
	} else {
		fileStore, err := file.New(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	}

	res := resolver.New(togglClient, cfg.Workspace, log)
	handlers := mcptools.NewToolHandlers(
		log,
		togglClient,
		togglClient,
		res,
		&search.Engine{Conv: conv},
		&bulk.Coordinator{Log: log, Mutator: togglClient, Conv: conv},
		&automation.Engine{Log: log, Store: store, Conv: conv},
		conv,
	)

	s := server.NewMCPServer("toggl-mcp", serverVersion,
		server.WithToolCapabilities(false),
	)
	handlers.RegisterTools(s)

	return &App{log: log, server: s, close: closeFn}, nil
}

// Serve runs the MCP server over stdio until the transport closes.
func (a *App) Serve() error {
	defer func() {
		if err := a.close(); err != nil {
			a.log.Warn("store close failed", slog.String("error", err.Error()))
		}
	}()
	return server.ServeStdio(a.server)
}
