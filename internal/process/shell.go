package process

import (
	"os"
	"runtime"
)

// Shell is the command interpreter every tool is launched through.
type Shell struct {
	Path string
	// Args precede the command tokens, e.g. "/C".
	Args []string
}

// DefaultShell returns "cmd /C", honouring %ComSpec% on Windows.
func DefaultShell() Shell {
	path := "cmd"
	if runtime.GOOS == "windows" {
		if spec := os.Getenv("ComSpec"); spec != "" {
			path = spec
		}
	}
	return Shell{Path: path, Args: []string{"/C"}}
}
