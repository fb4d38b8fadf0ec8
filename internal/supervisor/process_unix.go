//go:build !windows

package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// configureProcAttr runs the child in its own process group so the runner and
// the server it spawns can be signalled together.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func terminateProcessGroup(p *os.Process) error {
	return signalProcessGroup(p.Pid, syscall.SIGTERM)
}

func killProcessGroup(p *os.Process) error {
	return signalProcessGroup(p.Pid, syscall.SIGKILL)
}

func signalProcessGroup(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(-pid, sig); err != nil {
		if err2 := syscall.Kill(pid, sig); err2 != nil {
			return fmt.Errorf("failed to signal process group -%d: %v, also failed to signal process %d: %v", pid, err, pid, err2)
		}
	}
	return nil
}
