//go:build unix

package cli

import (
	"os"
	"syscall"
)

var focusSignal os.Signal = syscall.SIGUSR1
