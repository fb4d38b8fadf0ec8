//go:build windows

package supervisor

import (
	"os"
	"os/exec"
	"syscall"
)

func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// Windows has no SIGTERM; both phases terminate the process.
func terminateProcessGroup(p *os.Process) error {
	return p.Kill()
}

func killProcessGroup(p *os.Process) error {
	return p.Kill()
}
