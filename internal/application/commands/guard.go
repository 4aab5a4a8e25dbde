package commands

import (
	"fmt"
	"runtime/debug"
)

// guard runs fn and converts a panic raised by host code into an error so a
// misbehaving host cannot take the calling window down
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}
