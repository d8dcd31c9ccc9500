// Package mysql implements ports.PresetStore on a MySQL database, for
// deployments that want automation templates shared across hosts instead of
// sitting in a home directory.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"toggl-mcp/internal/domain"
)

// Store keeps presets and recurring configs as JSON rows keyed by name/id.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) get(table, key string, out any) error {
	var body []byte
	q := fmt.Sprintf("SELECT body FROM %s WHERE %s = ?", table, keyColumn(table))
	err := s.db.QueryRow(q, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", table, key, domain.ErrEntityNotFound)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (s *Store) put(table, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	col := keyColumn(table)
	q := fmt.Sprintf(`INSERT INTO %s (%s, body, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE body=VALUES(body), updated_at=VALUES(updated_at)`, table, col)
	_, err = s.db.Exec(q, key, body, time.Now().UTC())
	return err
}

func (s *Store) delete(table, key string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, keyColumn(table))
	res, err := s.db.Exec(q, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", table, key, domain.ErrEntityNotFound)
	}
	return nil
}

func (s *Store) list(table string, each func([]byte) error) error {
	q := fmt.Sprintf("SELECT body FROM %s ORDER BY updated_at", table)
	rows, err := s.db.Query(q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return err
		}
		if err := each(body); err != nil {
			return err
		}
	}
	return rows.Err()
}

func keyColumn(table string) string {
	if table == "toggl_presets" {
		return "name"
	}
	return "id"
}

func (s *Store) GetPreset(name string) (domain.Preset, error) {
	var p domain.Preset
	if err := s.get("toggl_presets", name, &p); err != nil {
		return domain.Preset{}, err
	}
	return p, nil
}

func (s *Store) PutPreset(p domain.Preset) error {
	return s.put("toggl_presets", p.Name, p)
}

func (s *Store) ListPresets() ([]domain.Preset, error) {
	var out []domain.Preset
	err := s.list("toggl_presets", func(body []byte) error {
		var p domain.Preset
		if err := json.Unmarshal(body, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func (s *Store) DeletePreset(name string) error {
	return s.delete("toggl_presets", name)
}

func (s *Store) GetRecurring(id string) (domain.RecurringConfig, error) {
	var c domain.RecurringConfig
	if err := s.get("toggl_recurring_entries", id, &c); err != nil {
		return domain.RecurringConfig{}, err
	}
	return c, nil
}

func (s *Store) PutRecurring(c domain.RecurringConfig) error {
	return s.put("toggl_recurring_entries", c.ID, c)
}

func (s *Store) ListRecurring() ([]domain.RecurringConfig, error) {
	var out []domain.RecurringConfig
	err := s.list("toggl_recurring_entries", func(body []byte) error {
		var c domain.RecurringConfig
		if err := json.Unmarshal(body, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

func (s *Store) DeleteRecurring(id string) error {
	return s.delete("toggl_recurring_entries", id)
}

// Close closes the underlying DB. Not part of ports.PresetStore to keep the
// interface minimal.
func (s *Store) Close() error { return s.db.Close() }
