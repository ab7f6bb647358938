package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// IngestionMetrics tracks cumulative results of ingestion runs for the stats endpoint
type IngestionMetrics struct {
	TotalRuns             int64         `json:"total_runs"`
	SuccessfulRuns        int64         `json:"successful_runs"`
	FailedRuns            int64         `json:"failed_runs"`
	NoDataRuns            int64         `json:"no_data_runs"`
	RejectedRuns          int64         `json:"rejected_runs"`
	TotalInserted         int64         `json:"total_inserted"`
	TotalDuplicates       int64         `json:"total_duplicates"`
	TotalFailedEnrichment int64         `json:"total_failed_enrichment"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	LastRunAt             time.Time     `json:"last_run_at"`
	LastError             string        `json:"last_error,omitempty"`
	mutex                 sync.RWMutex
}

// RunOutcome is what a finished run contributes to the metrics
type RunOutcome struct {
	NoData           bool
	Inserted         int
	Duplicates       int
	FailedEnrichment int
	Duration         time.Duration
	Err              error
}

// NewIngestionMetrics creates an empty metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{}
}

// RecordRun records the outcome of one completed or failed run
func (m *IngestionMetrics) RecordRun(outcome RunOutcome) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRuns++
	m.TotalProcessingTime += outcome.Duration
	m.AverageProcessingTime = time.Duration(int64(m.TotalProcessingTime) / m.TotalRuns)
	m.LastRunAt = time.Now()

	if outcome.Err != nil {
		m.FailedRuns++
		m.LastError = outcome.Err.Error()
		return
	}

	m.SuccessfulRuns++
	m.LastError = ""
	if outcome.NoData {
		m.NoDataRuns++
	}
	m.TotalInserted += int64(outcome.Inserted)
	m.TotalDuplicates += int64(outcome.Duplicates)
	m.TotalFailedEnrichment += int64(outcome.FailedEnrichment)
}

// RecordRejected counts a trigger turned away because a run was in flight
func (m *IngestionMetrics) RecordRejected() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.RejectedRuns++
}

// GetSuccessRate returns the run success rate as a percentage
func (m *IngestionMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalRuns == 0 {
		return 0.0
	}
	return float64(m.SuccessfulRuns) / float64(m.TotalRuns) * 100.0
}

// IngestionMetricsSnapshot is a lock-free copy of the counters
type IngestionMetricsSnapshot struct {
	TotalRuns             int64         `json:"total_runs"`
	SuccessfulRuns        int64         `json:"successful_runs"`
	FailedRuns            int64         `json:"failed_runs"`
	NoDataRuns            int64         `json:"no_data_runs"`
	RejectedRuns          int64         `json:"rejected_runs"`
	TotalInserted         int64         `json:"total_inserted"`
	TotalDuplicates       int64         `json:"total_duplicates"`
	TotalFailedEnrichment int64         `json:"total_failed_enrichment"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	LastRunAt             time.Time     `json:"last_run_at"`
	LastError             string        `json:"last_error,omitempty"`
}

// GetSnapshot returns a thread-safe snapshot of current metrics
func (m *IngestionMetrics) GetSnapshot() IngestionMetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return IngestionMetricsSnapshot{
		TotalRuns:             m.TotalRuns,
		SuccessfulRuns:        m.SuccessfulRuns,
		FailedRuns:            m.FailedRuns,
		NoDataRuns:            m.NoDataRuns,
		RejectedRuns:          m.RejectedRuns,
		TotalInserted:         m.TotalInserted,
		TotalDuplicates:       m.TotalDuplicates,
		TotalFailedEnrichment: m.TotalFailedEnrichment,
		AverageProcessingTime: m.AverageProcessingTime,
		LastRunAt:             m.LastRunAt,
		LastError:             m.LastError,
	}
}

// LogSummary logs a metrics summary
func (m *IngestionMetrics) LogSummary() {
	snapshot := m.GetSnapshot()

	logrus.WithFields(logrus.Fields{
		"component":               "IngestionMetrics",
		"total_runs":              snapshot.TotalRuns,
		"successful_runs":         snapshot.SuccessfulRuns,
		"failed_runs":             snapshot.FailedRuns,
		"no_data_runs":            snapshot.NoDataRuns,
		"rejected_runs":           snapshot.RejectedRuns,
		"total_inserted":          snapshot.TotalInserted,
		"total_duplicates":        snapshot.TotalDuplicates,
		"total_failed_enrichment": snapshot.TotalFailedEnrichment,
		"average_processing_time": snapshot.AverageProcessingTime,
	}).Info("Ingestion metrics summary")
}
