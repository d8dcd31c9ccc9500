//go:build e2e

package e2e

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	msql "toggl-mcp/internal/adapter/mysql"
	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/migrate"
)

func TestMySQLPresetStore_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "testdb",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true", "test", "pass", host, port.Port(), "testdb")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := migrate.Run(ctx, dsn, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := msql.NewStore(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("mysql store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	// Presets: put, get, overwrite, list, delete
	preset := domain.Preset{
		Name:        "deep-work",
		Description: "Focus block",
		ProjectName: "Engineering",
		Tags:        []string{"focus"},
		Billable:    true,
	}
	if err := store.PutPreset(preset); err != nil {
		t.Fatalf("put preset: %v", err)
	}
	got, err := store.GetPreset("deep-work")
	if err != nil {
		t.Fatalf("get preset: %v", err)
	}
	if got.Description != "Focus block" || !got.Billable {
		t.Fatalf("unexpected preset: %+v", got)
	}

	preset.Description = "Focus block v2"
	if err := store.PutPreset(preset); err != nil {
		t.Fatalf("overwrite preset: %v", err)
	}
	got, err = store.GetPreset("deep-work")
	if err != nil {
		t.Fatalf("get preset after overwrite: %v", err)
	}
	if got.Description != "Focus block v2" {
		t.Fatalf("overwrite not applied: %+v", got)
	}

	presets, err := store.ListPresets()
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(presets))
	}

	if err := store.DeletePreset("deep-work"); err != nil {
		t.Fatalf("delete preset: %v", err)
	}
	if _, err := store.GetPreset("deep-work"); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	if err := store.DeletePreset("deep-work"); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected not-found on double delete, got %v", err)
	}

	// Recurring configs: put, get, list, delete
	cfg := domain.RecurringConfig{
		ID:          "3f6f3c0e-8f3f-4e83-9f0a-0a4c1f6d2a11",
		Description: "Daily standup",
		WorkspaceID: 456,
		Schedule:    map[string]any{"days": []any{"monday"}, "time": "09:00"},
		DurationSec: 900,
		CreatedAt:   "2025-08-01T09:00:00.000Z",
	}
	if err := store.PutRecurring(cfg); err != nil {
		t.Fatalf("put recurring: %v", err)
	}
	gotCfg, err := store.GetRecurring(cfg.ID)
	if err != nil {
		t.Fatalf("get recurring: %v", err)
	}
	if gotCfg.Description != "Daily standup" || gotCfg.DurationSec != 900 {
		t.Fatalf("unexpected recurring config: %+v", gotCfg)
	}

	configs, err := store.ListRecurring()
	if err != nil {
		t.Fatalf("list recurring: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("expected 1 recurring config, got %d", len(configs))
	}

	if err := store.DeleteRecurring(cfg.ID); err != nil {
		t.Fatalf("delete recurring: %v", err)
	}
	if _, err := store.GetRecurring(cfg.ID); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}
