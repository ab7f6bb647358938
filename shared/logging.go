package shared

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies level and format to the standard logrus logger and, when
// ErrorLogFile is set, appends error entries to that file.
func ConfigureLogging(cfg LoggingConfig) (io.Closer, error) {
	return configureLogger(logrus.StandardLogger(), cfg)
}

func configureLogger(logger *logrus.Logger, cfg LoggingConfig) (io.Closer, error) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.ErrorLogFile == "" {
		return nopCloser{}, nil
	}

	hook, err := NewErrorFileHook(cfg.ErrorLogFile)
	if err != nil {
		return nil, err
	}
	logger.AddHook(hook)
	return hook, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ErrorFileHook writes error and worse entries to a file in append mode
type ErrorFileHook struct {
	file      *os.File
	formatter logrus.Formatter
	mutex     sync.Mutex
}

// NewErrorFileHook opens path for appending
func NewErrorFileHook(path string) (*ErrorFileHook, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file %s: %w", path, err)
	}
	return &ErrorFileHook{
		file:      file,
		formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true},
	}, nil
}

// Levels implements logrus.Hook
func (h *ErrorFileHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire implements logrus.Hook
func (h *ErrorFileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	_, err = h.file.Write(line)
	return err
}

// Close closes the underlying file
func (h *ErrorFileHook) Close() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.file.Close()
}
