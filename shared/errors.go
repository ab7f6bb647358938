package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur during a run
type ErrorCategory string

const (
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategorySession       ErrorCategory = "session"
	ErrorCategoryNetwork       ErrorCategory = "network"
	ErrorCategoryPersistence   ErrorCategory = "persistence"
	ErrorCategoryEnrichment    ErrorCategory = "enrichment"
	ErrorCategoryProcessing    ErrorCategory = "processing"
	ErrorCategoryTimeout       ErrorCategory = "timeout"
)

var (
	// ErrNoData signals that the search returned no result table. It ends a run early
	// with nothing inserted and is not a failure.
	ErrNoData = errors.New("no data available to scrape")

	// ErrRunInProgress is returned when a trigger arrives while another run is in flight
	ErrRunInProgress = errors.New("an ingestion run is already in progress")
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Details     interface{}   `json:"details,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Retryable   bool          `json:"retryable"`
	Cause       error         `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Retryable:   retryable,
		Cause:       cause,
	}
}

// WithDetails adds additional details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"timestamp":        e.Timestamp,
		"details":          e.Details,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}

// NewSessionError wraps a browser session failure. Session errors are fatal for the run.
func NewSessionError(operation string, cause error) *ServiceError {
	return NewServiceError(ErrorCategorySession, "SESSION_FAILED",
		fmt.Sprintf("navigation session failed during %s", operation),
		"NavigationSession", operation, false, cause)
}

// NewPersistenceError wraps a store query or insert failure
func NewPersistenceError(operation string, cause error) *ServiceError {
	return NewServiceError(ErrorCategoryPersistence, "PERSISTENCE_FAILED",
		fmt.Sprintf("tender store %s failed", operation),
		"TenderStore", operation, IsRetryableError(cause), cause)
}

// NewEnrichmentError wraps a per-item detail page failure. Timeouts and unreachable hosts
// get their own categories.
func NewEnrichmentError(detailURL string, cause error) *ServiceError {
	category, code := ErrorCategoryEnrichment, "DETAIL_FAILED"

	var netErr net.Error
	switch {
	case errors.Is(cause, context.DeadlineExceeded), errors.As(cause, &netErr) && netErr.Timeout():
		category, code = ErrorCategoryTimeout, "DETAIL_TIMEOUT"
	case netErr != nil:
		category, code = ErrorCategoryNetwork, "DETAIL_UNREACHABLE"
	}

	return NewServiceError(category, code,
		fmt.Sprintf("failed to enrich tender from %s", detailURL),
		"DetailEnricher", "enrich", IsRetryableError(cause), cause)
}

// IsCategory reports whether err wraps a ServiceError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Category == category
	}
	return false
}

// BuildBatchProcessingErrorSummary creates an error summary for batch processing results
func BuildBatchProcessingErrorSummary(successCount, totalErrorCount int, sampleErrors []error) string {
	var summaryBuilder strings.Builder
	summaryBuilder.WriteString(fmt.Sprintf("batch processing completed with %d successes and %d failures", successCount, totalErrorCount))

	sampleSize := len(sampleErrors)
	if sampleSize > 3 {
		sampleSize = 3
	}

	for i := 0; i < sampleSize; i++ {
		summaryBuilder.WriteString(fmt.Sprintf("; %s", sampleErrors[i].Error()))
	}

	if totalErrorCount > sampleSize {
		summaryBuilder.WriteString(fmt.Sprintf("; and %d additional errors", totalErrorCount-sampleSize))
	}

	return summaryBuilder.String()
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Retryable
	}

	// Default heuristics for standard errors
	errorMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout", "connection refused", "connection reset",
		"temporary failure", "service unavailable", "too many requests",
		"network", "dns", "socket", "deadline exceeded",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errorMsg, pattern) {
			return true
		}
	}

	return false
}
