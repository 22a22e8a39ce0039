//go:build windows

package main

import (
	"os/exec"
)

// detachDaemon is a no-op: a Windows child already outlives "recur tui".
func detachDaemon(*exec.Cmd) {}
