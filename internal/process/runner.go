package process

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/ysouyno/isbld/internal/command"
)

// Result describes a finished child process.
type Result struct {
	Lines    int
	Dropped  int
	ExitCode int
	Duration time.Duration
}

// Runner launches command lines through Shell.
type Runner struct {
	shell     Shell
	out       io.Writer
	err       io.Writer
	decoder   *Decoder
	waitDelay time.Duration
}

// DefaultWaitDelay bounds how long a cancelled run keeps reading output that
// an escaped descendant still holds open.
const DefaultWaitDelay = 2 * time.Second

// NewRunner creates a runner that relays output to out using the default shell.
func NewRunner(out io.Writer) *Runner {
	if out == nil {
		out = os.Stdout
	}
	return &Runner{
		shell:     DefaultShell(),
		out:       out,
		err:       os.Stderr,
		waitDelay: DefaultWaitDelay,
	}
}

// WithShell replaces the command interpreter.
func (r *Runner) WithShell(s Shell) *Runner {
	r.shell = s
	return r
}

// WithStderr sets where the child's standard error goes.
func (r *Runner) WithStderr(w io.Writer) *Runner {
	r.err = w
	return r
}

// WithDecoder sets the output decoder; nil means UTF-8.
func (r *Runner) WithDecoder(d *Decoder) *Runner {
	r.decoder = d
	return r
}

// WithWaitDelay sets how long after cancellation the output pipe is forcibly
// closed.
func (r *Runner) WithWaitDelay(d time.Duration) *Runner {
	r.waitDelay = d
	return r
}

// Run executes line and writes every decoded stdout line to the relay writer
// as it is produced. It returns once the output is exhausted and the process
// has exited.
func (r *Runner) Run(ctx context.Context, line string) (Result, error) {
	start := time.Now()
	p, err := r.Start(ctx, line)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for text := range p.Lines() {
		if _, err := fmt.Fprintln(r.out, text); err != nil {
			slog.Debug("Relay write failed", "error", err)
		}
		res.Lines++
	}
	err = p.Wait()
	res.Dropped = p.dropped
	res.ExitCode = p.ExitCode()
	res.Duration = time.Since(start)
	return res, err
}

// Start launches line and returns the running process. Callers must range
// over Lines (or not) and then call Wait.
func (r *Runner) Start(ctx context.Context, line string) (*Process, error) {
	tokens := command.Fields(line)
	args := make([]string, 0, len(r.shell.Args)+len(tokens))
	args = append(args, r.shell.Args...)
	args = append(args, tokens...)

	cmd := exec.CommandContext(ctx, r.shell.Path, args...)
	if cmd.Err != nil {
		// Shell lookup failed; nothing was started so nothing is captured.
		return nil, spawnError(r.shell.Path, cmd.Err)
	}
	prepare(cmd, r.shell, tokens)
	// Cancellation kills the shell and everything it started.
	cmd.Cancel = func() error { return killTree(cmd) }
	cmd.WaitDelay = r.waitDelay
	cmd.Stderr = r.err

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, captureError(err)
	}
	if err := cmd.Start(); err != nil {
		return nil, spawnError(r.shell.Path, err)
	}
	slog.Debug("Started child process", "shell", r.shell.Path, "pid", cmd.Process.Pid, "tokens", len(tokens))

	p := &Process{
		ctx:     ctx,
		cmd:     cmd,
		stdout:  stdout,
		decoder: r.decoder,
		done:    make(chan struct{}),
	}
	p.stopWatch = context.AfterFunc(ctx, func() { p.closeAfter(r.waitDelay) })
	return p, nil
}

// Process is a running child whose output has not been fully consumed.
type Process struct {
	ctx     context.Context
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	decoder *Decoder
	readErr error
	dropped int

	done      chan struct{}
	stopWatch func() bool
}

// closeAfter closes stdout once delay has passed without Wait returning. A
// descendant that survived the kill may still hold the write end, which would
// otherwise block Lines and Wait until it exits.
func (p *Process) closeAfter(delay time.Duration) {
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		slog.Debug("Closing output of cancelled process", "pid", p.cmd.Process.Pid)
		_ = p.stdout.Close()
	case <-p.done:
	}
}

// Lines yields decoded stdout lines in the order the child writes them.
// Line terminators (\n or \r\n) are stripped. The sequence ends when the
// stream closes or a read fails; the read error is reported by Wait.
func (p *Process) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		br := bufio.NewReader(p.stdout)
		for {
			raw, err := br.ReadBytes('\n')
			if len(raw) > 0 {
				raw = bytes.TrimRight(raw, "\r\n")
				text, ok := p.decoder.Decode(raw)
				if !ok {
					p.dropped++
				} else if !yield(text) {
					return
				}
			}
			if err != nil {
				if !stderrors.Is(err, io.EOF) && !stderrors.Is(err, os.ErrClosed) {
					p.readErr = err
				}
				return
			}
		}
	}
}

// Wait drains any unread output, waits for the child and classifies the outcome.
func (p *Process) Wait() error {
	defer close(p.done)
	defer p.stopWatch()

	_, _ = io.Copy(io.Discard, p.stdout)
	waitErr := p.cmd.Wait()

	if p.readErr != nil {
		return captureError(p.readErr)
	}
	if waitErr == nil {
		return nil
	}
	if ctxErr := p.ctx.Err(); ctxErr != nil {
		return fmt.Errorf("process interrupted: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if stderrors.As(waitErr, &exitErr) {
		return toolFailed(exitErr.ExitCode(), waitErr)
	}
	return captureError(waitErr)
}

// ExitCode returns the exit status once Wait has returned, or -1.
func (p *Process) ExitCode() int {
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}
