package config

import (
	"fmt"
	"os"

	"github.com/ysouyno/isbld/internal/foundation/errors"
)

// Validate checks that the external paths named by cfg exist. path is the
// configuration file reported back to the operator.
func Validate(cfg *Config, path string) error {
	if !exists(cfg.ToolchainHome) {
		return missing(ErrMissingToolchainPath, cfg.ToolchainHome, path)
	}
	if !exists(cfg.ArchiverPath) {
		return missing(ErrMissingArchiverPath, cfg.ArchiverPath, path)
	}
	return nil
}

func missing(sentinel *errors.ClassifiedError, target, cfgPath string) error {
	return errors.ConfigError(sentinel.Message()).
		WithKind(sentinel.Kind()).
		WithContext("path", target).
		WithContext("config", cfgPath).
		WithHint(fmt.Sprintf("%s not exists, please edit %s", target, cfgPath)).
		Build()
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
