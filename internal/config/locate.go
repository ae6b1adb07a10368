package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the file extension of the configuration document.
const Extension = ".yaml"

// Locate returns <dir of exe>/<exe base name>.yaml.
func Locate(exePath string) string {
	return Sibling(exePath, Extension)
}

// Sibling returns a path next to exePath sharing its base name with ext appended.
func Sibling(exePath, ext string) string {
	base := filepath.Base(exePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(exePath), stem+ext)
}

// Executable returns the resolved path of the running program.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
