// Package file persists automation templates as JSON documents in a
// directory, one file for presets and one for recurring entries.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"toggl-mcp/internal/domain"
)

const (
	presetsFile   = "presets.json"
	recurringFile = "recurring.json"
)

type presetsDoc struct {
	Version int             `json:"version"`
	Presets []domain.Preset `json:"presets"`
}

type recurringDoc struct {
	Version int                      `json:"version"`
	Entries []domain.RecurringConfig `json:"recurring_entries"`
}

// Store implements ports.PresetStore on top of two JSON files. Writes go
// through a temp file and rename so a crash never leaves a half-written
// document behind.
type Store struct {
	dir string
}

// New creates the storage directory if needed. An empty dir defaults to
// ~/.toggl-mcp.
func New(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".toggl-mcp")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) loadPresets() (presetsDoc, error) {
	doc := presetsDoc{Version: 1}
	if err := s.load(presetsFile, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func (s *Store) loadRecurring() (recurringDoc, error) {
	doc := recurringDoc{Version: 1}
	if err := s.load(recurringFile, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func (s *Store) load(name string, out any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *Store) save(name string, doc any) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) GetPreset(name string) (domain.Preset, error) {
	doc, err := s.loadPresets()
	if err != nil {
		return domain.Preset{}, err
	}
	for _, p := range doc.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Preset{}, fmt.Errorf("preset %q: %w", name, domain.ErrEntityNotFound)
}

func (s *Store) PutPreset(p domain.Preset) error {
	doc, err := s.loadPresets()
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range doc.Presets {
		if existing.Name == p.Name {
			doc.Presets[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Presets = append(doc.Presets, p)
	}
	return s.save(presetsFile, doc)
}

func (s *Store) ListPresets() ([]domain.Preset, error) {
	doc, err := s.loadPresets()
	if err != nil {
		return nil, err
	}
	return doc.Presets, nil
}

func (s *Store) DeletePreset(name string) error {
	doc, err := s.loadPresets()
	if err != nil {
		return err
	}
	kept := doc.Presets[:0]
	for _, p := range doc.Presets {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(doc.Presets) {
		return fmt.Errorf("preset %q: %w", name, domain.ErrEntityNotFound)
	}
	doc.Presets = kept
	return s.save(presetsFile, doc)
}

func (s *Store) GetRecurring(id string) (domain.RecurringConfig, error) {
	doc, err := s.loadRecurring()
	if err != nil {
		return domain.RecurringConfig{}, err
	}
	for _, c := range doc.Entries {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.RecurringConfig{}, fmt.Errorf("recurring entry %q: %w", id, domain.ErrEntityNotFound)
}

func (s *Store) PutRecurring(c domain.RecurringConfig) error {
	doc, err := s.loadRecurring()
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range doc.Entries {
		if existing.ID == c.ID {
			doc.Entries[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Entries = append(doc.Entries, c)
	}
	return s.save(recurringFile, doc)
}

func (s *Store) ListRecurring() ([]domain.RecurringConfig, error) {
	doc, err := s.loadRecurring()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func (s *Store) DeleteRecurring(id string) error {
	doc, err := s.loadRecurring()
	if err != nil {
		return err
	}
	kept := doc.Entries[:0]
	for _, c := range doc.Entries {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(doc.Entries) {
		return fmt.Errorf("recurring entry %q: %w", id, domain.ErrEntityNotFound)
	}
	doc.Entries = kept
	return s.save(recurringFile, doc)
}
