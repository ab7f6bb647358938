package shared

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DetailFetcherHTTP  = "http"
	DetailFetcherColly = "colly"
)

// UnifiedConfiguration holds all configuration parameters for the entire application
type UnifiedConfiguration struct {
	Browser  BrowserConfig  `json:"browser"`
	Detail   DetailConfig   `json:"detail"`
	Database DatabaseConfig `json:"database"`
	Pipeline PipelineConfig `json:"pipeline"`
	Logging  LoggingConfig  `json:"logging"`
}

// BrowserConfig holds the search session configuration
type BrowserConfig struct {
	SearchURL         string        `json:"search_url"`
	ProcedureType     string        `json:"procedure_type"`
	PageSize          string        `json:"page_size"`
	NavigationTimeout time.Duration `json:"navigation_timeout"`
	ChromePath        string        `json:"chrome_path"`
	Headless          bool          `json:"headless"`
	// IgnoreCertificateErrors is opt-in only
	IgnoreCertificateErrors bool `json:"ignore_certificate_errors"`
}

// DetailConfig holds detail page fetching configuration
type DetailConfig struct {
	SiteBaseURL        string        `json:"site_base_url"`
	Fetcher            string        `json:"fetcher"`
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
	RequestsPerSecond  float64       `json:"requests_per_second"`
	MaxRetryAttempts   int           `json:"max_retries"`
	MaxConcurrency     int           `json:"max_concurrency"`
	// InsecureSkipVerify disables certificate checks; opt-in only
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver          string        `json:"driver"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// PipelineConfig holds run scheduling configuration
type PipelineConfig struct {
	TimeZone    string        `json:"time_zone"`
	RunTimeout  time.Duration `json:"run_timeout"`
	RunInterval time.Duration `json:"run_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"`
	ErrorLogFile string `json:"error_log_file"`
	ServiceName  string `json:"service_name"`
}

// NewDefaultUnifiedConfiguration returns production-ready default configuration
func NewDefaultUnifiedConfiguration() *UnifiedConfiguration {
	return &UnifiedConfiguration{
		Browser: BrowserConfig{
			ProcedureType:     "1",
			PageSize:          "50",
			NavigationTimeout: 60 * time.Second,
			Headless:          true,
		},
		Detail: DetailConfig{
			Fetcher:            DetailFetcherHTTP,
			HTTPRequestTimeout: 30 * time.Second,
			RequestsPerSecond:  5,
			MaxRetryAttempts:   2,
			MaxConcurrency:     5,
			InsecureSkipVerify: false,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Pipeline: PipelineConfig{
			TimeZone:   "Local",
			RunTimeout: 15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "json",
			ErrorLogFile: "error.log",
			ServiceName:  "tender-backend",
		},
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for invalid values
func (c *UnifiedConfiguration) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "UnifiedConfiguration")
	defaults := NewDefaultUnifiedConfiguration()

	// Browser
	if c.Browser.ProcedureType == "" {
		c.Browser.ProcedureType = defaults.Browser.ProcedureType
		logger.Debug("Applied default Browser.ProcedureType")
	}
	if c.Browser.PageSize == "" {
		c.Browser.PageSize = defaults.Browser.PageSize
		logger.Debug("Applied default Browser.PageSize")
	}
	if c.Browser.NavigationTimeout <= 0 {
		c.Browser.NavigationTimeout = defaults.Browser.NavigationTimeout
		logger.Debug("Applied default Browser.NavigationTimeout")
	}

	// Detail
	if c.Detail.Fetcher != DetailFetcherHTTP && c.Detail.Fetcher != DetailFetcherColly {
		if c.Detail.Fetcher != "" {
			logger.WithField("fetcher", c.Detail.Fetcher).Warn("Unknown detail fetcher, falling back to http")
		}
		c.Detail.Fetcher = DetailFetcherHTTP
	}
	if c.Detail.HTTPRequestTimeout <= 0 {
		c.Detail.HTTPRequestTimeout = defaults.Detail.HTTPRequestTimeout
		logger.Debug("Applied default Detail.HTTPRequestTimeout")
	}
	if c.Detail.MaxRetryAttempts < 0 {
		c.Detail.MaxRetryAttempts = defaults.Detail.MaxRetryAttempts
		logger.Debug("Applied default Detail.MaxRetryAttempts")
	}
	if c.Detail.MaxConcurrency <= 0 {
		c.Detail.MaxConcurrency = defaults.Detail.MaxConcurrency
		logger.Debug("Applied default Detail.MaxConcurrency")
	}

	// Database
	if c.Database.Driver == "" {
		c.Database.Driver = defaults.Database.Driver
		logger.Debug("Applied default Database.Driver")
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
		logger.Debug("Applied default Database.MaxOpenConns")
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
		logger.Debug("Applied default Database.MaxIdleConns")
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = defaults.Database.ConnMaxLifetime
		logger.Debug("Applied default Database.ConnMaxLifetime")
	}
	if c.Database.ConnMaxIdleTime <= 0 {
		c.Database.ConnMaxIdleTime = defaults.Database.ConnMaxIdleTime
		logger.Debug("Applied default Database.ConnMaxIdleTime")
	}
	if c.Database.PingTimeout <= 0 {
		c.Database.PingTimeout = defaults.Database.PingTimeout
		logger.Debug("Applied default Database.PingTimeout")
	}

	// Pipeline
	if c.Pipeline.TimeZone == "" {
		c.Pipeline.TimeZone = defaults.Pipeline.TimeZone
		logger.Debug("Applied default Pipeline.TimeZone")
	}
	if c.Pipeline.RunTimeout <= 0 {
		c.Pipeline.RunTimeout = defaults.Pipeline.RunTimeout
		logger.Debug("Applied default Pipeline.RunTimeout")
	}
	if c.Pipeline.RunInterval < 0 {
		c.Pipeline.RunInterval = 0
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
		logger.Debug("Applied default Logging.Level")
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
		logger.Debug("Applied default Logging.Format")
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = defaults.Logging.ServiceName
		logger.Debug("Applied default Logging.ServiceName")
	}
}

// Validate reports settings that have no usable default
func (c *UnifiedConfiguration) Validate() error {
	if c.Browser.SearchURL == "" {
		return NewServiceError(ErrorCategoryConfiguration, "MISSING_SEARCH_URL",
			"search URL is not configured", "UnifiedConfiguration", "Validate", false, nil)
	}
	if c.Detail.SiteBaseURL == "" {
		return NewServiceError(ErrorCategoryConfiguration, "MISSING_SITE_BASE_URL",
			"site base URL is not configured", "UnifiedConfiguration", "Validate", false, nil)
	}
	return nil
}

// Location resolves the configured time zone, falling back to the local zone
func (c *UnifiedConfiguration) Location() *time.Location {
	loc, err := time.LoadLocation(c.Pipeline.TimeZone)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "UnifiedConfiguration",
			"time_zone": c.Pipeline.TimeZone,
		}).WithError(err).Warn("Unknown time zone, using local time")
		return time.Local
	}
	return loc
}

// ToJSON serializes the configuration to JSON
func (c *UnifiedConfiguration) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
