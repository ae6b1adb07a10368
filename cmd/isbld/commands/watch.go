package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ysouyno/isbld/internal/config"
	"github.com/ysouyno/isbld/internal/logfields"
	"github.com/ysouyno/isbld/internal/toolchain"
	"github.com/ysouyno/isbld/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildCmd `embed:""`

	Debounce  time.Duration `help:"Quiet period before a rebuild starts" default:"2s"`
	NoInitial bool          `name:"no-initial" help:"Wait for the first change instead of building immediately"`
}

func (w *WatchCmd) Run(g *Global, _ *CLI) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := newSession(g.Paths, &w.BuildCmd, os.Stdout)
	if err != nil {
		return err
	}
	defer s.Close()
	return RunWatch(ctx, s, w.Debounce, !w.NoInitial)
}

// RunWatch builds once (when initial is set) and then after every settled change.
func RunWatch(ctx context.Context, s *session, debounce time.Duration, initial bool) error {
	// The project file name is only known once the configuration loads.
	cfg, err := config.LoadOrCreate(s.paths.Config)
	if err != nil {
		return err
	}
	dirs := []string{
		filepath.Join(s.paths.ProgramDir, toolchain.ScriptFilesDir),
		s.paths.ProgramDir,
	}
	if filepath.Dir(s.paths.Config) != s.paths.ProgramDir {
		dirs = append(dirs, filepath.Dir(s.paths.Config))
	}
	filter := watch.SourceFilter(cfg.ProjectName, s.paths.Config)

	w, err := watch.New(dirs, debounce, filter, s.Build)
	if err != nil {
		return err
	}
	if initial {
		if err := s.Build(ctx); err != nil && ctx.Err() == nil {
			// Keep watching; the next edit may fix it.
			slog.Error("Initial build failed", logfields.Error(err))
		}
	}
	return w.Run(ctx)
}
