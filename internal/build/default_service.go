package build

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ysouyno/isbld/internal/config"
	"github.com/ysouyno/isbld/internal/foundation/errors"
	"github.com/ysouyno/isbld/internal/history"
	"github.com/ysouyno/isbld/internal/logfields"
	"github.com/ysouyno/isbld/internal/metrics"
	"github.com/ysouyno/isbld/internal/process"
	"github.com/ysouyno/isbld/internal/toolchain"
)

// ExecutorFactory creates the Executor for a loaded configuration.
type ExecutorFactory func(cfg *config.Config) (Executor, error)

// HistoryStore persists finished runs. *history.Store satisfies it.
type HistoryStore interface {
	Save(ctx context.Context, run history.Run) error
}

// RevisionFunc reports the revision of the project directory.
type RevisionFunc func(dir string) (string, error)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	executorFactory ExecutorFactory
	recorder        metrics.Recorder
	store           HistoryStore
	revision        RevisionFunc
}

// NewBuildService creates a DefaultBuildService relaying tool output to stdout.
// History is disabled until WithHistory is called.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		executorFactory: RunnerFactory(os.Stdout),
		recorder:        metrics.NoopRecorder{},
		revision:        history.Revision,
	}
}

// RunnerFactory returns an ExecutorFactory building a process.Runner that
// decodes output with the configured encoding and relays it to out.
func RunnerFactory(out io.Writer) ExecutorFactory {
	return func(cfg *config.Config) (Executor, error) {
		dec, err := process.NewDecoder(cfg.OutputEncoding)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, config.ErrConfigMalformed.Message()).
				Fatal().
				WithKind(errors.KindConfigMalformed).
				WithContext("output_encoding", cfg.OutputEncoding).
				Build()
		}
		return process.NewRunner(out).WithDecoder(dec), nil
	}
}

// WithExecutorFactory allows injecting a custom executor (for testing).
func (s *DefaultBuildService) WithExecutorFactory(f ExecutorFactory) *DefaultBuildService {
	s.executorFactory = f
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHistory enables recording finished runs into store.
func (s *DefaultBuildService) WithHistory(store HistoryStore) *DefaultBuildService {
	s.store = store
	return s
}

// WithRevisionFunc replaces the project revision lookup.
func (s *DefaultBuildService) WithRevisionFunc(f RevisionFunc) *DefaultBuildService {
	s.revision = f
	return s
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (result *BuildResult, err error) {
	result = &BuildResult{
		RunID:     history.NewRunID(),
		StartTime: time.Now(),
		Status:    BuildStatusFailed,
	}
	log := slog.With(logfields.RunID(result.RunID))
	prepared := false

	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		switch {
		case err == nil:
			result.Status = BuildStatusSuccess
		case ctx.Err() != nil:
			result.Status = BuildStatusCancelled
		}
		s.recorder.ObserveRunDuration(result.Duration)
		s.recorder.IncRunOutcome(result.Status.metricLabel())
		log.Info("Build finished",
			logfields.Status(string(result.Status)),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
		if prepared {
			s.save(ctx, log, result, err)
		}
	}()

	cfg, err := config.LoadOrCreate(req.ConfigPath)
	if err != nil {
		return result, err
	}
	if err = config.Validate(cfg, req.ConfigPath); err != nil {
		return result, err
	}

	result.Project = cfg.ProjectName
	result.Params = toolchain.Resolve(cfg, req.ProgramDir)
	result.Revision = s.lookupRevision(log, req.ProgramDir)

	exec, err := s.executorFactory(cfg)
	if err != nil {
		return result, err
	}
	prepared = true

	log.Info("Starting build",
		slog.String("project", result.Params.Project),
		slog.Bool("archive", req.Options.Archive))

	pipeline := NewPipeline(exec).WithRecorder(s.recorder).WithArchive(req.Options.Archive)
	result.Steps, err = pipeline.Run(ctx, result.Params)
	return result, err
}

func (s *DefaultBuildService) lookupRevision(log *slog.Logger, dir string) string {
	if s.revision == nil {
		return ""
	}
	rev, err := s.revision(dir)
	if err != nil {
		log.Debug("Project revision unavailable", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return rev
}

// save records the run. History failures never change the build outcome.
func (s *DefaultBuildService) save(ctx context.Context, log *slog.Logger, result *BuildResult, runErr error) {
	if s.store == nil {
		return
	}
	// An interrupted run is still recorded.
	saveCtx := context.WithoutCancel(ctx)
	if err := s.store.Save(saveCtx, result.Record(runErr)); err != nil {
		log.Warn("Failed to record run history", logfields.Error(err))
	}
}
