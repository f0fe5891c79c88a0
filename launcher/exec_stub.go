//go:build !unix

package launcher

import (
	"errors"
)

// Exec is only supported on unix platforms.
func Exec(argv []string, _ []string) error {
	if len(argv) == 0 {
		return ErrNoCommand
	}
	return &ExecError{Command: argv[0], Err: errors.ErrUnsupported}
}
