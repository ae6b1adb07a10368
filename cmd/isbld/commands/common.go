package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ysouyno/isbld/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Paths  Paths
}

// Paths are the per-installation locations derived from the executable.
type Paths struct {
	Executable string
	ProgramDir string
	Config     string
	History    string
}

// HistoryExtension is appended to the executable's base name for the run database.
const HistoryExtension = ".db"

// CLI definition & global flags.
type CLI struct {
	Config     string           `short:"c" help:"Configuration file path (default: <program>.yaml next to the executable)" type:"path" env:"ISBLD_CONFIG"`
	ProgramDir string           `name:"program-dir" help:"Directory holding the project and Script Files (default: the executable's directory)" type:"path" env:"ISBLD_PROGRAM_DIR"`
	Verbose    bool             `short:"v" help:"Enable verbose logging"`
	Version    kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Compile the installer script and build the project (default)"`
	Init    InitCmd    `cmd:"" help:"Write a configuration document with placeholder values"`
	Params  ParamsCmd  `cmd:"" help:"Print the resolved toolchain parameters and command lines"`
	History HistoryCmd `cmd:"" help:"List recent build runs"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever the installer sources change"`
}

// AfterApply runs after flag parsing; setup logging once.
// Variables from a .env file next to the executable apply unless already set.
func (c *CLI) AfterApply() error {
	var envErr error
	if exe, err := config.Executable(); err == nil {
		envErr = config.LoadEnv(filepath.Dir(exe))
	}

	slog.SetDefault(newLogger(os.Stderr, c.Verbose, os.Getenv(config.EnvLogLevel), os.Getenv(config.EnvLogFormat)))
	if envErr != nil {
		slog.Warn("Ignoring unreadable .env file", "error", envErr)
	}
	return nil
}

// newLogger builds the CLI logger. Unrecognized level or format values are
// reported through the logger itself and replaced by their defaults.
func newLogger(w io.Writer, verbose bool, rawLevel, rawFormat string) *slog.Logger {
	lvl, levelErr := config.ParseLogLevel(rawLevel)
	format, formatErr := config.ParseLogFormat(rawFormat)

	level := lvl.Slog()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)

	for _, err := range []error{levelErr, formatErr} {
		if err != nil {
			logger.Warn("Ignoring logging setting", "error", err)
		}
	}
	return logger
}

// ResolvePaths fills in every location the flags left unset.
func (c *CLI) ResolvePaths() (Paths, error) {
	exe, err := config.Executable()
	if err != nil {
		return Paths{}, err
	}
	return resolvePaths(exe, c.Config, c.ProgramDir), nil
}

func resolvePaths(exe, cfgPath, programDir string) Paths {
	p := Paths{
		Executable: exe,
		ProgramDir: filepath.Dir(exe),
		Config:     config.Locate(exe),
		History:    config.Sibling(exe, HistoryExtension),
	}
	if programDir != "" {
		p.ProgramDir = programDir
	}
	if cfgPath != "" {
		p.Config = cfgPath
	}
	return p
}

// signalContext is cancelled on SIGINT/SIGTERM so running tools are stopped.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
