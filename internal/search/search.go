// Package search filters an already-fetched collection of time entries
// against multi-criteria queries, purely in memory.
package search

import (
	"strings"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/timeconv"
)

// Criteria is the immutable input to Filter. Zero-value fields are
// unconstrained; all set predicates are AND-combined.
type Criteria struct {
	Text          string
	Fields        []string // searched fields for Text; defaults to description
	Projects      []string // project names; entry passes on intersection
	Tags          []string // tag names; entry passes on intersection
	StartDate     string   // local date or timestamp, inclusive lower bound
	EndDate       string   // local date or timestamp, inclusive upper bound
	MinMinutes    *int64
	MaxMinutes    *int64
	Billable      *bool
	CaseSensitive bool
	ExactMatch    bool
}

// Empty reports whether the criteria constrain nothing.
func (c Criteria) Empty() bool {
	return c.Text == "" && len(c.Projects) == 0 && len(c.Tags) == 0 &&
		c.StartDate == "" && c.EndDate == "" &&
		c.MinMinutes == nil && c.MaxMinutes == nil && c.Billable == nil
}

// Engine matches entries against criteria. The converter supplies local-time
// semantics for date-range comparisons; projectNames maps resolved project
// IDs to their names for the project predicate.
type Engine struct {
	Conv *timeconv.Converter
}

// Filter returns the entries matching c, in input order. No network access,
// no reordering; empty criteria returns the input unchanged.
func (e *Engine) Filter(entries []domain.TimeEntry, c Criteria, projectNames map[int64]string) ([]domain.TimeEntry, error) {
	if c.Empty() {
		return entries, nil
	}

	var startBound, endBound *int64
	if c.StartDate != "" {
		t, err := e.Conv.ToWire(c.StartDate)
		if err != nil {
			return nil, err
		}
		ts, _ := e.Conv.ParseWire(t)
		v := ts.Unix()
		startBound = &v
	}
	if c.EndDate != "" {
		t, err := e.Conv.ToWire(c.EndDate)
		if err != nil {
			return nil, err
		}
		ts, _ := e.Conv.ParseWire(t)
		// A bare date as the upper bound means the whole of that local day.
		v := ts.Unix()
		if len(c.EndDate) == len("2006-01-02") {
			v += 24*60*60 - 1
		}
		endBound = &v
	}

	out := make([]domain.TimeEntry, 0, len(entries))
	for _, entry := range entries {
		ok, err := e.matches(entry, c, projectNames, startBound, endBound)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (e *Engine) matches(entry domain.TimeEntry, c Criteria, projectNames map[int64]string, startBound, endBound *int64) (bool, error) {
	if c.Text != "" && !e.matchesText(entry, c) {
		return false, nil
	}
	if len(c.Projects) > 0 {
		if entry.ProjectID == nil {
			return false, nil
		}
		name := projectNames[*entry.ProjectID]
		if !containsString(c.Projects, name) {
			return false, nil
		}
	}
	if len(c.Tags) > 0 && !intersects(entry.Tags, c.Tags) {
		return false, nil
	}
	if startBound != nil || endBound != nil {
		start, err := e.Conv.ParseWire(entry.Start)
		if err != nil {
			return false, nil // unparseable start never matches a dated query
		}
		ts := start.Unix()
		if startBound != nil && ts < *startBound {
			return false, nil
		}
		if endBound != nil && ts > *endBound {
			return false, nil
		}
	}
	if c.MinMinutes != nil || c.MaxMinutes != nil {
		if entry.Running() {
			return false, nil
		}
		minutes := entry.DurationSec / 60
		if c.MinMinutes != nil && minutes < *c.MinMinutes {
			return false, nil
		}
		if c.MaxMinutes != nil && minutes > *c.MaxMinutes {
			return false, nil
		}
	}
	if c.Billable != nil && entry.Billable != *c.Billable {
		return false, nil
	}
	return true, nil
}

func (e *Engine) matchesText(entry domain.TimeEntry, c Criteria) bool {
	fields := c.Fields
	if len(fields) == 0 {
		fields = []string{"description"}
	}
	for _, field := range fields {
		var value string
		switch field {
		case "description":
			value = entry.Description
		case "tags":
			value = strings.Join(entry.Tags, " ")
		default:
			continue
		}
		if MatchText(value, c.Text, c.CaseSensitive, c.ExactMatch) {
			return true
		}
	}
	return false
}

// MatchText reports whether value satisfies query under the given
// case-sensitivity and exact-match flags.
func MatchText(value, query string, caseSensitive, exact bool) bool {
	if !caseSensitive {
		value = strings.ToLower(value)
		query = strings.ToLower(query)
	}
	if exact {
		return value == query
	}
	return strings.Contains(value, query)
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsString(b, x) {
			return true
		}
	}
	return false
}
