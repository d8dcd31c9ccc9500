// Package timeconv normalizes timestamps between the caller's local
// wall-clock time and the UTC wire format the Toggl API exchanges.
package timeconv

import (
	"fmt"
	"strings"
	"time"

	"toggl-mcp/internal/domain"
)

const (
	// WireFormat is the fixed-precision UTC form required by the API.
	WireFormat = "2006-01-02T15:04:05.000Z"
	// LocalDisplayFormat is the human-readable local form with zone name.
	LocalDisplayFormat = "2006-01-02 15:04:05 MST"

	naiveFormat = "2006-01-02T15:04:05"
	dateFormat  = "2006-01-02"
)

// Converter performs bidirectional local/UTC conversion against one
// configured location. The zero value is not usable; construct with New.
type Converter struct {
	loc *time.Location
}

// New builds a Converter for the named IANA timezone. An empty name selects
// the host's local timezone.
func New(tz string) (*Converter, error) {
	if tz == "" {
		return &Converter{loc: time.Local}, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return &Converter{loc: loc}, nil
}

// Location returns the configured local location.
func (c *Converter) Location() *time.Location { return c.loc }

// ToWire converts a caller-supplied timestamp to the wire format. Inputs
// with an explicit offset are honored; naive inputs are interpreted in the
// configured local timezone. Fractional seconds and a bare trailing Z are
// stripped before the naive parse, matching what callers tend to send.
func (c *Converter) ToWire(s string) (string, error) {
	t, err := c.parse(s, c.loc)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(WireFormat), nil
}

// ParseWire parses a wire-format (or otherwise UTC-anchored) timestamp into
// a time.Time. Naive inputs are interpreted as UTC here, the opposite
// default from ToWire: anything already on the wire came from the service.
func (c *Converter) ParseWire(s string) (time.Time, error) {
	return c.parse(s, time.UTC)
}

func (c *Converter) parse(s string, naiveLoc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", domain.ErrMalformedTimestamp)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	clean := s
	if i := strings.IndexByte(clean, '.'); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.TrimSuffix(clean, "Z")
	if t, err := time.ParseInLocation(naiveFormat, clean, naiveLoc); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(dateFormat, clean, naiveLoc); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedTimestamp, s)
}

// ToLocal renders a wire timestamp in the local display format.
func (c *Converter) ToLocal(wire string) (string, error) {
	t, err := c.ParseWire(wire)
	if err != nil {
		return "", err
	}
	return t.In(c.loc).Format(LocalDisplayFormat), nil
}

// NowWire returns the current instant in wire format.
func (c *Converter) NowWire() string {
	return time.Now().UTC().Format(WireFormat)
}

// NowLocal returns the current instant in the local display format.
func (c *Converter) NowLocal() string {
	return time.Now().In(c.loc).Format(LocalDisplayFormat)
}

// StopFromDuration computes the implied stop time: start plus duration.
func (c *Converter) StopFromDuration(startWire string, durationSec int64) (string, error) {
	t, err := c.ParseWire(startWire)
	if err != nil {
		return "", err
	}
	return t.Add(time.Duration(durationSec) * time.Second).UTC().Format(WireFormat), nil
}

// SpanSeconds returns the whole-second span between two wire timestamps.
func (c *Converter) SpanSeconds(startWire, stopWire string) (int64, error) {
	start, err := c.ParseWire(startWire)
	if err != nil {
		return 0, err
	}
	stop, err := c.ParseWire(stopWire)
	if err != nil {
		return 0, err
	}
	return int64(stop.Sub(start) / time.Second), nil
}

// DayRange returns the wire-format bounds of the local day at the given
// offset from today: local midnight up to the next local midnight.
func (c *Converter) DayRange(offset int) (string, string) {
	now := time.Now().In(c.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc).AddDate(0, 0, offset)
	end := start.AddDate(0, 0, 1)
	return start.UTC().Format(WireFormat), end.UTC().Format(WireFormat)
}

// Enrich adds local display forms of the start/stop fields to a copy of the
// entry. It is a pure function of the UTC instants and the configured
// location, so applying it twice yields the same fields. Unparseable
// timestamps leave the corresponding local field empty.
func (c *Converter) Enrich(e domain.TimeEntry) domain.TimeEntry {
	if e.Start != "" {
		if local, err := c.ToLocal(e.Start); err == nil {
			e.StartLocal = local
		}
	}
	if e.Stop != nil && *e.Stop != "" {
		if local, err := c.ToLocal(*e.Stop); err == nil {
			e.StopLocal = local
		}
	}
	return e
}

// EnrichAll maps Enrich over a slice, preserving order.
func (c *Converter) EnrichAll(entries []domain.TimeEntry) []domain.TimeEntry {
	out := make([]domain.TimeEntry, len(entries))
	for i, e := range entries {
		out[i] = c.Enrich(e)
	}
	return out
}

// Info describes the configured timezone for inclusion in tool responses.
func (c *Converter) Info() map[string]string {
	now := time.Now().In(c.loc)
	return map[string]string{
		"timezone_name":   c.loc.String(),
		"timezone_offset": now.Format("-0700"),
		"current_time":    now.Format(LocalDisplayFormat),
	}
}
