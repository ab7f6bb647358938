package models

import (
	"time"
)

// TodayWindow is the calendar date a run is scoped to. It is computed once at run start
// and reused for listing filtering and for the dedup query.
type TodayWindow struct {
	year  int
	month time.Month
	day   int
	loc   *time.Location
}

// NewTodayWindow truncates now to its calendar date in loc
func NewTodayWindow(now time.Time, loc *time.Location) TodayWindow {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()
	return TodayWindow{year: y, month: m, day: d, loc: loc}
}

// Contains compares only year, month and day
func (w TodayWindow) Contains(t time.Time) bool {
	y, m, d := t.Date()
	return y == w.year && m == w.month && d == w.day
}

// Date returns midnight of the window's day
func (w TodayWindow) Date() time.Time {
	loc := w.loc
	if loc == nil {
		loc = time.Local
	}
	return time.Date(w.year, w.month, w.day, 0, 0, 0, 0, loc)
}

// String formats the window the way the listing page and the store do (dd/mm/yyyy)
func (w TodayWindow) String() string {
	return w.Date().Format(PublishedDateLayout)
}

// IngestionSummary is reported by every completed run
type IngestionSummary struct {
	RunID              string    `json:"run_id"`
	Window             string    `json:"window"`
	NoData             bool      `json:"no_data"`
	ListedRows         int       `json:"listed_rows"`
	Candidates         int       `json:"candidates"`
	Enriched           int       `json:"enriched"`
	InsertedCount      int       `json:"inserted_count"`
	SkippedAsDuplicate int       `json:"skipped_as_duplicate"`
	FailedEnrichment   int       `json:"failed_enrichment"`
	FailureSummary     string    `json:"failure_summary,omitempty"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
}

// Duration returns how long the run took
func (s *IngestionSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
