//go:build unix

package launcher

import (
	"os/exec"

	"golang.org/x/sys/unix"
)

// execve is swapped out in tests.
var execve = unix.Exec

// Exec replaces the current process with argv run under env. It only
// returns on failure.
func Exec(argv []string, env []string) error {
	if len(argv) == 0 {
		return ErrNoCommand
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return &ExecError{Command: argv[0], Err: err}
	}

	if err := execve(path, argv, env); err != nil {
		return &ExecError{Command: argv[0], Err: err}
	}
	return nil
}
