package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ysouyno/isbld/internal/command"
	"github.com/ysouyno/isbld/internal/logfields"
	"github.com/ysouyno/isbld/internal/metrics"
	"github.com/ysouyno/isbld/internal/process"
	"github.com/ysouyno/isbld/internal/toolchain"
)

// Executor runs one shell command line to completion, relaying its output.
// *process.Runner satisfies it.
type Executor interface {
	Run(ctx context.Context, line string) (process.Result, error)
}

// Pipeline runs the toolchain steps strictly in sequence.
type Pipeline struct {
	exec     Executor
	recorder metrics.Recorder
	archive  bool
}

// NewPipeline creates a pipeline running the compile and build steps through exec.
func NewPipeline(exec Executor) *Pipeline {
	return &Pipeline{exec: exec, recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder.
func (p *Pipeline) WithRecorder(r metrics.Recorder) *Pipeline {
	if r != nil {
		p.recorder = r
	}
	return p
}

// WithArchive enables the trailing archive step.
func (p *Pipeline) WithArchive(on bool) *Pipeline {
	p.archive = on
	return p
}

// Steps returns the commands the pipeline will run for params, in order.
func (p *Pipeline) Steps(params toolchain.Params) []command.Command {
	steps := []command.Command{command.Compile(params), command.Build(params)}
	if p.archive {
		steps = append(steps, command.Archive(params))
	}
	return steps
}

// Run executes every step once, in order. The first failing step aborts the
// remaining ones; the returned steps include the failed one.
func (p *Pipeline) Run(ctx context.Context, params toolchain.Params) ([]StepResult, error) {
	steps := p.Steps(params)
	results := make([]StepResult, 0, len(steps))

	for i, c := range steps {
		if err := ctx.Err(); err != nil {
			p.skip(steps[i:], metrics.ResultCanceled)
			return results, fmt.Errorf("%s step not started: %w", c.Name, err)
		}

		res := p.runStep(ctx, c)
		results = append(results, res)
		if res.Err != nil {
			p.skip(steps[i+1:], metrics.ResultSkipped)
			return results, fmt.Errorf("%s step: %w", c.Name, res.Err)
		}
	}
	return results, nil
}

func (p *Pipeline) runStep(ctx context.Context, c command.Command) StepResult {
	line := c.Line()
	slog.Info("Running step", logfields.Step(c.Name), logfields.Command(line))

	start := time.Now()
	out, err := p.exec.Run(ctx, line)
	elapsed := time.Since(start)

	res := StepResult{
		Name:     c.Name,
		Command:  line,
		Lines:    out.Lines,
		Dropped:  out.Dropped,
		ExitCode: out.ExitCode,
		Duration: elapsed,
		Err:      err,
	}

	p.recorder.ObserveStepDuration(c.Name, elapsed)
	p.recorder.AddRelayedLines(c.Name, out.Lines)

	attrs := []any{
		logfields.Step(c.Name),
		logfields.Lines(out.Lines),
		logfields.ExitCode(out.ExitCode),
		logfields.DurationMS(float64(elapsed.Milliseconds())),
	}
	switch {
	case err == nil:
		p.recorder.IncStepResult(c.Name, metrics.ResultSuccess)
		slog.Info("Step finished", attrs...)
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		p.recorder.IncStepResult(c.Name, metrics.ResultCanceled)
		slog.Warn("Step interrupted", append(attrs, logfields.Error(err))...)
	default:
		p.recorder.IncStepResult(c.Name, metrics.ResultFailed)
		slog.Error("Step failed", append(attrs, logfields.Error(err))...)
	}
	if out.Dropped > 0 {
		slog.Warn("Dropped undecodable output lines", logfields.Step(c.Name), slog.Int("dropped", out.Dropped))
	}
	return res
}

func (p *Pipeline) skip(rest []command.Command, label metrics.ResultLabel) {
	for _, c := range rest {
		p.recorder.IncStepResult(c.Name, label)
	}
}
