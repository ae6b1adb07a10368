package process

import "github.com/ysouyno/isbld/internal/foundation/errors"

var (
	// ErrProcessSpawn indicates the shell could not be started.
	ErrProcessSpawn = errors.ProcessError("failed to start shell").WithKind(errors.KindProcessSpawn).Build()

	// ErrOutputCapture indicates the child's standard output could not be attached or read.
	ErrOutputCapture = errors.ProcessError("could not capture standard output").WithKind(errors.KindOutputCapture).Build()

	// ErrToolFailed indicates the child exited with a non-zero status.
	ErrToolFailed = errors.ToolchainError("tool exited with non-zero status").WithKind(errors.KindToolFailed).Build()
)

func spawnError(shell string, cause error) error {
	return errors.WrapError(cause, errors.CategoryProcess, ErrProcessSpawn.Message()).
		Fatal().
		WithKind(errors.KindProcessSpawn).
		WithContext("shell", shell).
		Build()
}

func captureError(cause error) error {
	return errors.WrapError(cause, errors.CategoryProcess, ErrOutputCapture.Message()).
		Fatal().
		WithKind(errors.KindOutputCapture).
		Build()
}

func toolFailed(code int, cause error) error {
	return errors.WrapError(cause, errors.CategoryToolchain, ErrToolFailed.Message()).
		Fatal().
		WithKind(errors.KindToolFailed).
		WithContext("exit_code", code).
		Build()
}
