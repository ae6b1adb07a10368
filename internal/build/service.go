package build

import (
	"context"
	"time"

	"github.com/ysouyno/isbld/internal/history"
	"github.com/ysouyno/isbld/internal/metrics"
	"github.com/ysouyno/isbld/internal/toolchain"
)

// BuildService is the canonical interface for executing installer builds.
type BuildService interface {
	// Run executes a complete build: load config → resolve → compile → build [→ archive].
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// ConfigPath is the configuration document next to the executable.
	ConfigPath string

	// ProgramDir is the directory holding the executable, the project and Script Files.
	ProgramDir string

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// Archive appends the self-extracting archive step.
	Archive bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// RunID identifies the run in logs and history.
	RunID string

	// Status indicates overall build outcome.
	Status BuildStatus

	// Project is the configured project file name (empty when config loading failed).
	Project string

	// Revision is the HEAD commit of ProgramDir when it is a git work tree.
	Revision string

	// Params are the resolved toolchain parameters (zero when config loading failed).
	Params toolchain.Params

	// Steps holds one entry per executed step, in execution order.
	Steps []StepResult

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// StepResult is the outcome of one toolchain invocation.
type StepResult struct {
	Name     string
	Command  string
	Lines    int
	Dropped  int
	ExitCode int
	Duration time.Duration
	Err      error
}

// Failed reports whether the step returned an error.
func (s StepResult) Failed() bool { return s.Err != nil }

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates every step completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates a step (or the preparation) failed.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the run was interrupted.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}

func (s BuildStatus) metricLabel() metrics.ResultLabel {
	switch s {
	case BuildStatusSuccess:
		return metrics.ResultSuccess
	case BuildStatusCancelled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFailed
	}
}

func (s BuildStatus) historyStatus() string {
	switch s {
	case BuildStatusSuccess:
		return history.StatusSucceeded
	case BuildStatusCancelled:
		return history.StatusCanceled
	default:
		return history.StatusFailed
	}
}

// Record converts the result into a history row.
func (r *BuildResult) Record(err error) history.Run {
	run := history.Run{
		ID:       r.RunID,
		Project:  r.Project,
		Revision: r.Revision,
		Started:  r.StartTime,
		Finished: r.EndTime,
		Status:   r.Status.historyStatus(),
	}
	if err != nil {
		run.Error = err.Error()
	}
	for _, s := range r.Steps {
		step := history.Step{
			Name:     s.Name,
			Command:  s.Command,
			Lines:    s.Lines,
			ExitCode: s.ExitCode,
			Duration: s.Duration,
		}
		if s.Err != nil {
			step.Error = s.Err.Error()
		}
		run.Steps = append(run.Steps, step)
	}
	return run
}
