package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/timeconv"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	conv, err := timeconv.New("UTC")
	require.NoError(t, err)
	return &Engine{Conv: conv}
}

func ptr[T any](v T) *T { return &v }

func sampleEntries() []domain.TimeEntry {
	pid1, pid2 := int64(100), int64(101)
	stop := "2024-05-01T10:00:00.000Z"
	return []domain.TimeEntry{
		{ID: 1, Description: "Fix login bug", ProjectID: &pid1, Tags: []string{"dev", "urgent"},
			Start: "2024-05-01T09:00:00.000Z", Stop: &stop, DurationSec: 3600, Billable: true},
		{ID: 2, Description: "Team meeting", ProjectID: &pid2, Tags: []string{"meeting"},
			Start: "2024-05-02T14:00:00.000Z", DurationSec: 1800},
		{ID: 3, Description: "fix typo", Tags: []string{"dev"},
			Start: "2024-05-03T08:00:00.000Z", DurationSec: 300},
		{ID: 4, Description: "Running work", ProjectID: &pid1, Tags: []string{"dev"},
			Start: "2024-05-03T09:00:00.000Z", DurationSec: -1},
	}
}

func projectNames() map[int64]string {
	return map[int64]string{100: "Backend", 101: "Ops"}
}

func ids(entries []domain.TimeEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestFilter_EmptyCriteriaReturnsInputUnchanged(t *testing.T) {
	e := newEngine(t)
	entries := sampleEntries()
	got, err := e.Filter(entries, Criteria{}, nil)
	require.NoError(t, err)
	assert.Equal(t, ids(entries), ids(got))
}

func TestFilter_TextDefaultField(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Text: "fix"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(got))
}

func TestFilter_TextCaseSensitive(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Text: "fix", CaseSensitive: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(got))
}

func TestFilter_TextExactMatch(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Text: "fix typo", ExactMatch: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(got))
}

func TestFilter_TextAcrossFields(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Text: "urgent", Fields: []string{"description", "tags"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilter_Projects(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Projects: []string{"Backend"}}, projectNames())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(got))
}

func TestFilter_ProjectExcludesUnassigned(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Projects: []string{"Backend", "Ops"}}, projectNames())
	require.NoError(t, err)
	assert.NotContains(t, ids(got), int64(3))
}

func TestFilter_Tags(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Tags: []string{"meeting"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(got))
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{
		StartDate: "2024-05-01",
		EndDate:   "2024-05-02",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestFilter_BareEndDateCoversWholeDay(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{EndDate: "2024-05-02"}, nil)
	require.NoError(t, err)
	assert.Contains(t, ids(got), int64(2)) // 14:00 on the end date still matches
}

func TestFilter_MalformedDateIsError(t *testing.T) {
	e := newEngine(t)
	_, err := e.Filter(sampleEntries(), Criteria{StartDate: "not-a-date"}, nil)
	assert.True(t, errors.Is(err, domain.ErrMalformedTimestamp))
}

func TestFilter_DurationBoundsInMinutes(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{MinMinutes: ptr(int64(30)), MaxMinutes: ptr(int64(60))}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestFilter_DurationBoundsExcludeRunning(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{MinMinutes: ptr(int64(0))}, nil)
	require.NoError(t, err)
	assert.NotContains(t, ids(got), int64(4))
}

func TestFilter_Billable(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{Billable: ptr(true)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(got))

	got, err = e.Filter(sampleEntries(), Criteria{Billable: ptr(false)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, ids(got))
}

func TestFilter_CriteriaAreANDCombined(t *testing.T) {
	e := newEngine(t)
	got, err := e.Filter(sampleEntries(), Criteria{
		Text: "fix",
		Tags: []string{"dev"},
		Projects: []string{"Backend"},
	}, projectNames())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	e := newEngine(t)
	entries := sampleEntries()
	// Reverse to prove no re-sort happens.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	got, err := e.Filter(entries, Criteria{Tags: []string{"dev"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 1}, ids(got))
}

func TestMatchText(t *testing.T) {
	assert.True(t, MatchText("Fix login", "fix", false, false))
	assert.False(t, MatchText("Fix login", "fix", true, false))
	assert.True(t, MatchText("Fix login", "fix login", false, true))
	assert.False(t, MatchText("Fix login bug", "fix login", false, true))
}
