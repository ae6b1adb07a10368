package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ysouyno/isbld/internal/foundation/normalization"
)

// Environment variables read by the CLI.
const (
	EnvLogLevel  = "ISBLD_LOG_LEVEL"
	EnvLogFormat = "ISBLD_LOG_FORMAT"
)

// LoadEnv loads <dir>/.env into the process environment. Variables already
// set are not overwritten and a missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return err
	}
	slog.Debug("Loaded environment variables", "path", path)
	return nil
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug": LogLevelDebug,
	"info":  LogLevelInfo,
	"warn":  LogLevelWarn,
	"error": LogLevelError,
}, LogLevelInfo)

// ParseLogLevel maps raw to a LogLevel. Unrecognized values yield info and an
// error naming the accepted ones.
func ParseLogLevel(raw string) (LogLevel, error) {
	l, err := logLevelNormalizer.Lookup(raw)
	if err != nil {
		return l, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	return l, nil
}

// Slog converts the level to its slog equivalent.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// ParseLogFormat maps raw to a LogFormat. Unrecognized values yield text and
// an error naming the accepted ones.
func ParseLogFormat(raw string) (LogFormat, error) {
	f, err := logFormatNormalizer.Lookup(raw)
	if err != nil {
		return f, fmt.Errorf("%s: %w", EnvLogFormat, err)
	}
	return f, nil
}
