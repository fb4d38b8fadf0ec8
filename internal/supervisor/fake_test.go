package supervisor

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

type fakeExit struct{ code int }

func (e fakeExit) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e fakeExit) ExitCode() int { return e.code }

type fakeProcess struct {
	pid  int
	args []string

	outR, errR *io.PipeReader
	outW, errW *io.PipeWriter

	exitCh   chan error
	exitOnce sync.Once

	ignoreTerm bool
	terminated atomic.Int32
	killed     atomic.Int32
}

func newFakeProcess(pid int, args []string) *fakeProcess {
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	return &fakeProcess{
		pid:    pid,
		args:   args,
		outR:   outR,
		outW:   outW,
		errR:   errR,
		errW:   errW,
		exitCh: make(chan error, 1),
	}
}

func (p *fakeProcess) Pid() int          { return p.pid }
func (p *fakeProcess) Stdout() io.Reader { return p.outR }
func (p *fakeProcess) Stderr() io.Reader { return p.errR }
func (p *fakeProcess) Wait() error       { return <-p.exitCh }

func (p *fakeProcess) Close() error {
	p.outR.Close()
	p.errR.Close()
	return nil
}

func (p *fakeProcess) Terminate() error {
	p.terminated.Add(1)
	if !p.ignoreTerm {
		p.exit(fakeExit{code: 143})
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.killed.Add(1)
	p.exit(errors.New("signal: killed"))
	return nil
}

func (p *fakeProcess) exit(err error) {
	p.exitOnce.Do(func() {
		p.outW.Close()
		p.errW.Close()
		p.exitCh <- err
	})
}

func (p *fakeProcess) stdout(line string) {
	go p.outW.Write([]byte(line + "\n"))
}

func (p *fakeProcess) stderr(line string) {
	go p.errW.Write([]byte(line + "\n"))
}

// fakeLauncher hands out fakeProcesses and lets each test script them.
type fakeLauncher struct {
	mu        sync.Mutex
	procs     []*fakeProcess
	launchErr error

	// onLaunch runs for every new process before Launch returns.
	onLaunch func(p *fakeProcess)
	// ignoreTerm makes new processes ignore Terminate.
	ignoreTerm bool
}

func (l *fakeLauncher) Launch(command string, args []string) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.launchErr != nil {
		return nil, l.launchErr
	}
	p := newFakeProcess(1000+len(l.procs), append([]string{command}, args...))
	p.ignoreTerm = l.ignoreTerm
	l.procs = append(l.procs, p)
	if l.onLaunch != nil {
		l.onLaunch(p)
	}
	return p, nil
}

func (l *fakeLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.procs)
}

func (l *fakeLauncher) last() *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.procs) == 0 {
		return nil
	}
	return l.procs[len(l.procs)-1]
}
