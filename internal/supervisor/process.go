package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Process is a launched child process.
type Process interface {
	Pid() int
	Stdout() io.Reader
	Stderr() io.Reader
	// Terminate asks the process and its children to exit.
	Terminate() error
	// Kill forces the process and its children to exit.
	Kill() error
	// Wait blocks until the process exits. It is called exactly once and
	// leaves the output streams open so buffered output can still be read.
	Wait() error
	// Close releases the output streams, unblocking pending reads.
	Close() error
}

// Launcher starts processes. The supervisor never goes through a shell.
type Launcher interface {
	Launch(command string, args []string) (Process, error)
}

// ExecLauncher launches real processes in their own process group.
type ExecLauncher struct {
	// Env is appended to the current environment.
	Env []string
}

// Launch starts command with args. Output is connected through os.Pipe so that
// reading it is independent of Wait.
func (l ExecLauncher) Launch(command string, args []string) (Process, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", command, err)
	}

	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), l.Env...)
	configureProcAttr(cmd)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	startErr := cmd.Start()
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		stdoutR.Close()
		stderrR.Close()
		return nil, startErr
	}

	return &execProcess{cmd: cmd, stdout: stdoutR, stderr: stderrR}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File
}

func (p *execProcess) Pid() int          { return p.cmd.Process.Pid }
func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }
func (p *execProcess) Terminate() error  { return terminateProcessGroup(p.cmd.Process) }
func (p *execProcess) Kill() error       { return killProcessGroup(p.cmd.Process) }

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Close() error {
	return errors.Join(p.stdout.Close(), p.stderr.Close())
}

// describeExit renders a Wait error as the reason shown to the user.
func describeExit(err error) string {
	if err == nil {
		return "exit code 0"
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) && coder.ExitCode() >= 0 {
		return fmt.Sprintf("exit code %d", coder.ExitCode())
	}
	return err.Error()
}
