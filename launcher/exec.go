package launcher

import (
	"errors"
	"fmt"
)

// ErrNoCommand is returned when there is no target command to run.
var ErrNoCommand = errors.New("no command specified")

// ExecError reports that the target command could not be started.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
