package cli

import (
	"errors"

	"github.com/danieljhkim/rip/internal/exitcodes"
	"github.com/danieljhkim/rip/internal/safety"
)

// configError marks a settings or environment problem.
type configError struct {
	err error
}

func (e *configError) Error() string {
	return "invalid configuration: " + e.err.Error()
}

func (e *configError) Unwrap() error {
	return e.err
}

// itemsFailedError reports that some items of an operation failed. The
// failures have already been printed.
type itemsFailedError struct {
	count int
}

func (e *itemsFailedError) Error() string {
	return PrintCount(e.count, "item", "items") + " failed"
}

// silentExit ends the command with code without printing anything more.
type silentExit struct {
	code int
}

func (e *silentExit) Error() string {
	return "exit"
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	var silent *silentExit
	var forbidden *safety.ForbiddenError
	var cfg *configError
	var failed *itemsFailedError

	switch {
	case err == nil:
		return exitcodes.Success
	case errors.As(err, &silent):
		return silent.code
	case errors.As(err, &forbidden):
		return exitcodes.SafetyViolation
	case errors.As(err, &cfg):
		return exitcodes.InvalidConfig
	case errors.As(err, &failed):
		return exitcodes.RuntimeError
	default:
		return exitcodes.Failure
	}
}
