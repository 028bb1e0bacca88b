package engine

import (
	"errors"
)

var (
	ErrActionFailed = errors.New("task failed")
	ErrPanic        = errors.New("task panicked")
)

// ExitCoder is implemented by errors that carry a process exit status.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitCode extracts the exit status from err, or -1 if it has none.
func ExitCode(err error) int {
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
