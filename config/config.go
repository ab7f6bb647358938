package config

import (
	"os"
	"strconv"
	"time"

	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort  string
	DatabaseURL string

	DatabaseDriver           string
	SearchURL                string
	SiteBaseURL              string
	ProcedureType            string
	PageSize                 string
	DetailConcurrency        string
	DetailTimeoutSeconds     string
	DetailFetcher            string
	DetailRatePerSecond      string
	NavigationTimeoutSeconds string
	TimeZone                 string
	IngestIntervalMinutes    string
	LogLevel                 string
	LogFormat                string
	ErrorLogFile             string
	ChromePath               string
	BrowserHeadless          string
	InsecureSkipVerify       string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "1234"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		DatabaseDriver:           getEnv("DATABASE_DRIVER", "postgres"),
		SearchURL:                getEnv("SEARCH_URL", ""),
		SiteBaseURL:              getEnv("SITE_BASE_URL", ""),
		ProcedureType:            getEnv("PROCEDURE_TYPE", "1"),
		PageSize:                 getEnv("PAGE_SIZE", "50"),
		DetailConcurrency:        getEnv("DETAIL_CONCURRENCY", "5"),
		DetailTimeoutSeconds:     getEnv("DETAIL_TIMEOUT_SECONDS", "30"),
		DetailFetcher:            getEnv("DETAIL_FETCHER", shared.DetailFetcherHTTP),
		DetailRatePerSecond:      getEnv("DETAIL_RATE_PER_SECOND", "5"),
		NavigationTimeoutSeconds: getEnv("NAVIGATION_TIMEOUT_SECONDS", "60"),
		TimeZone:                 getEnv("TIMEZONE", "Local"),
		IngestIntervalMinutes:    getEnv("INGEST_INTERVAL_MINUTES", "0"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "json"),
		ErrorLogFile:             getEnv("ERROR_LOG_FILE", "error.log"),
		ChromePath:               getEnv("CHROME_PATH", ""),
		BrowserHeadless:          getEnv("BROWSER_HEADLESS", "true"),
		InsecureSkipVerify:       getEnv("DETAIL_INSECURE_SKIP_VERIFY", "false"),
	}
}

// ToUnifiedConfiguration converts the raw environment values into typed settings.
// Unparsable numbers are logged and replaced by defaults.
func (c *Config) ToUnifiedConfiguration() *shared.UnifiedConfiguration {
	unified := shared.NewDefaultUnifiedConfiguration()

	unified.Browser.SearchURL = c.SearchURL
	unified.Browser.ProcedureType = c.ProcedureType
	unified.Browser.PageSize = c.PageSize
	unified.Browser.ChromePath = c.ChromePath
	unified.Browser.Headless = boolean("BROWSER_HEADLESS", c.BrowserHeadless, unified.Browser.Headless)
	unified.Browser.NavigationTimeout = seconds("NAVIGATION_TIMEOUT_SECONDS", c.NavigationTimeoutSeconds, unified.Browser.NavigationTimeout)

	unified.Detail.SiteBaseURL = c.SiteBaseURL
	unified.Detail.Fetcher = c.DetailFetcher
	unified.Detail.HTTPRequestTimeout = seconds("DETAIL_TIMEOUT_SECONDS", c.DetailTimeoutSeconds, unified.Detail.HTTPRequestTimeout)
	unified.Detail.MaxConcurrency = integer("DETAIL_CONCURRENCY", c.DetailConcurrency, unified.Detail.MaxConcurrency)
	unified.Detail.RequestsPerSecond = float("DETAIL_RATE_PER_SECOND", c.DetailRatePerSecond, unified.Detail.RequestsPerSecond)
	unified.Detail.InsecureSkipVerify = boolean("DETAIL_INSECURE_SKIP_VERIFY", c.InsecureSkipVerify, unified.Detail.InsecureSkipVerify)
	unified.Browser.IgnoreCertificateErrors = unified.Detail.InsecureSkipVerify

	unified.Database.Driver = c.DatabaseDriver

	unified.Pipeline.TimeZone = c.TimeZone
	unified.Pipeline.RunInterval = time.Duration(integer("INGEST_INTERVAL_MINUTES", c.IngestIntervalMinutes, 0)) * time.Minute

	unified.Logging.Level = c.LogLevel
	unified.Logging.Format = c.LogFormat
	unified.Logging.ErrorLogFile = c.ErrorLogFile

	unified.ValidateAndApplyDefaults()
	return unified
}

func seconds(key, raw string, fallback time.Duration) time.Duration {
	n := integer(key, raw, int(fallback/time.Second))
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func integer(key, raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %d", key, raw, fallback)
		return fallback
	}
	return n
}

func float(key, raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, raw, fallback)
		return fallback
	}
	return f
}

func boolean(key, raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %t", key, raw, fallback)
		return fallback
	}
	return b
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
