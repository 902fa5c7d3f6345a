//go:build !windows

package main

import (
	"os"
	"syscall"
)

// termsigs lists the signals on which a partially written temporary file
// is removed before exiting.
var termsigs = []os.Signal{
	syscall.SIGHUP,
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGPIPE,
	syscall.SIGTERM,
}
