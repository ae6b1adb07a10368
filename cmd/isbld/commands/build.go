package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ysouyno/isbld/internal/build"
	"github.com/ysouyno/isbld/internal/history"
	"github.com/ysouyno/isbld/internal/logfields"
	"github.com/ysouyno/isbld/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Archive     bool   `help:"Pack the output into a self-extracting archive after building"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file after each run" type:"path"`
	NoHistory   bool   `name:"no-history" help:"Do not record the run in the history database"`
}

func (b *BuildCmd) Run(g *Global, _ *CLI) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := newSession(g.Paths, b, os.Stdout)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Build(ctx)
}

// session owns the collaborators shared by every run of one CLI invocation.
type session struct {
	paths       Paths
	archive     bool
	metricsFile string
	out         io.Writer

	svc   *build.DefaultBuildService
	prom  *metrics.PrometheusRecorder
	store *history.Store
}

func newSession(paths Paths, b *BuildCmd, out io.Writer) (*session, error) {
	s := &session{
		paths:       paths,
		archive:     b.Archive,
		metricsFile: b.MetricsFile,
		out:         out,
		svc:         build.NewBuildService().WithExecutorFactory(build.RunnerFactory(out)),
	}
	if b.MetricsFile != "" {
		s.prom = metrics.NewPrometheusRecorder(nil)
		s.svc.WithRecorder(s.prom)
	}
	if !b.NoHistory {
		store, err := history.Open(paths.History)
		if err != nil {
			// Losing the history must not block a build.
			slog.Warn("Run history disabled", logfields.Path(paths.History), logfields.Error(err))
		} else {
			s.store = store
			s.svc.WithHistory(store)
		}
	}
	return s, nil
}

// Build runs the pipeline once and reports the outcome on out.
func (s *session) Build(ctx context.Context) error {
	result, err := s.svc.Run(ctx, build.BuildRequest{
		ConfigPath: s.paths.Config,
		ProgramDir: s.paths.ProgramDir,
		Options:    build.BuildOptions{Archive: s.archive},
	})

	if s.prom != nil {
		if werr := s.prom.WriteTextfile(s.metricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(s.metricsFile), logfields.Error(werr))
		}
	}
	if result != nil && len(result.Steps) > 0 {
		_, _ = fmt.Fprintf(s.out, "Build %s in %s (run %s)\n", result.Status, result.Duration.Round(time.Millisecond), result.RunID)
	}
	return err
}

func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		slog.Warn("Failed to close history database", logfields.Error(err))
	}
}
