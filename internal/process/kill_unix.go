//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; callers still Wait on the direct child.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// SetProcessGroup makes cmd the leader of a new process group so that
// KillProcessGroup reaches the helpers it spawns.
func SetProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
