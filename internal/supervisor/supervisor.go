package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"mcpkeep/internal/api"
	"mcpkeep/pkg/logging"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultReadyTimeout = 10 * time.Second
	DefaultStopTimeout  = 5 * time.Second

	outputDrainTimeout = time.Second
)

// ErrReleased is returned by Start after Cleanup.
var ErrReleased = errors.New("supervisor has been released")

// Options configure a Supervisor. Zero values select the defaults.
type Options struct {
	Launcher     Launcher
	Command      string
	Package      string
	Config       Config
	ReadyTimeout time.Duration
	StopTimeout  time.Duration
	LogCapacity  int
}

// Supervisor owns at most one browser server process.
type Supervisor struct {
	launcher     Launcher
	command      string
	pkg          string
	readyTimeout time.Duration
	stopTimeout  time.Duration

	// opMu serializes lifecycle operations.
	opMu   sync.Mutex
	starts singleflight.Group

	mu       sync.RWMutex
	cfg      Config
	state    api.ServiceState
	endpoint string
	lastErr  error
	proc     *handle
	released bool

	logs   *logRing
	events *Hub
}

// handle tracks one launched process.
type handle struct {
	proc Process
	done chan struct{}

	// guarded by Supervisor.mu
	exited     bool
	stopping   bool
	exitErr    error
	lastStderr string
}

// failure describes why the process exited, with the last line it wrote to
// stderr when there is one. Must be called with Supervisor.mu held.
func (h *handle) failure() string {
	reason := describeExit(h.exitErr)
	if h.lastStderr != "" {
		reason += ": " + h.lastStderr
	}
	return reason
}

// New creates a stopped supervisor.
func New(opts Options) *Supervisor {
	if opts.Launcher == nil {
		opts.Launcher = ExecLauncher{}
	}
	if opts.Command == "" {
		opts.Command = api.PackageRunner
	}
	if opts.Package == "" {
		opts.Package = api.BrowserPackage
	}
	if opts.Config.Port == 0 {
		opts.Config.Port = api.DefaultBrowserPort
	}
	if opts.Config.Mode == "" {
		opts.Config.Mode = api.BrowserVisible
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}

	return &Supervisor{
		launcher:     opts.Launcher,
		command:      opts.Command,
		pkg:          opts.Package,
		readyTimeout: opts.ReadyTimeout,
		stopTimeout:  opts.StopTimeout,
		cfg:          opts.Config,
		state:        api.StateStopped,
		logs:         newLogRing(opts.LogCapacity),
		events:       NewHub(),
	}
}

// Subscribe returns a channel of lifecycle events and a function to cancel it.
func (s *Supervisor) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.Subscribe(buffer)
}

// Start launches the server unless it is already running and returns its
// endpoint. Callers that arrive while a start is in flight share its result;
// their overrides are ignored.
func (s *Supervisor) Start(ctx context.Context, override *ConfigOverride) (string, error) {
	ch := s.starts.DoChan("start", func() (interface{}, error) {
		s.opMu.Lock()
		defer s.opMu.Unlock()
		return s.startLocked(override)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stop terminates the process, escalating to a kill after the stop timeout or
// when ctx is done. It is a no-op when nothing is running and never fails.
func (s *Supervisor) Stop(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.stopLocked(ctx)
}

// Restart stops and starts the server as one operation.
func (s *Supervisor) Restart(ctx context.Context, override *ConfigOverride) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.stopLocked(ctx)
	return s.startLocked(override)
}

// UpdateConfig merges override into the configuration and restarts the server
// if it is running so the change takes effect.
func (s *Supervisor) UpdateConfig(ctx context.Context, override ConfigOverride) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.cfg = s.cfg.Merge(override)
	active := s.proc != nil
	s.mu.Unlock()

	if !active {
		return nil
	}

	logging.Info("Supervisor", "Configuration changed, restarting browser server")
	s.stopLocked(ctx)
	_, err := s.startLocked(nil)
	return err
}

// Cleanup stops the server and releases the supervisor. Subscribers' channels
// are closed and further starts fail with ErrReleased.
func (s *Supervisor) Cleanup(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.stopLocked(ctx)

	s.mu.Lock()
	s.released = true
	s.mu.Unlock()

	s.events.Close()
}

// Status returns the current state.
func (s *Supervisor) Status() api.ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Endpoint returns the SSE URL while running and "" otherwise.
func (s *Supervisor) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// LastError returns the error that put the supervisor into the error state.
func (s *Supervisor) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// IsRunning reports whether the server is running.
func (s *Supervisor) IsRunning() bool {
	return s.Status() == api.StateRunning
}

// Config returns the configuration used for the next launch.
func (s *Supervisor) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// PID returns the process id of the running server, or 0.
func (s *Supervisor) PID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.proc == nil {
		return 0
	}
	return s.proc.proc.Pid()
}

// Logs returns a copy of the captured output, oldest first.
func (s *Supervisor) Logs() []LogEntry {
	return s.logs.snapshot()
}

// Snapshot returns the status in API form.
func (s *Supervisor) Snapshot() api.SupervisorStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := api.SupervisorStatus{
		State:    s.state,
		Endpoint: s.endpoint,
		Port:     s.cfg.Port,
		Mode:     s.cfg.Mode,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.proc != nil {
		st.PID = s.proc.proc.Pid()
	}
	return st
}

func (s *Supervisor) startLocked(override *ConfigOverride) (string, error) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return "", ErrReleased
	}
	if s.state == api.StateRunning && s.endpoint != "" {
		ep := s.endpoint
		s.mu.Unlock()
		return ep, nil
	}
	if override != nil {
		s.cfg = s.cfg.Merge(*override)
	}
	cfg := s.cfg
	s.setStateLocked(api.StateStarting, nil)
	s.mu.Unlock()

	args := cfg.Args(s.pkg)
	logging.Info("Supervisor", "Starting browser server: %s %v", s.command, args)

	proc, err := s.launcher.Launch(s.command, args)
	if err != nil {
		err = fmt.Errorf("failed to launch browser server: %w", err)
		s.fail(err)
		return "", err
	}

	h := &handle{proc: proc, done: make(chan struct{})}
	s.mu.Lock()
	s.proc = h
	s.mu.Unlock()

	ready := make(chan struct{})
	var readyOnce sync.Once
	markReady := func() { readyOnce.Do(func() { close(ready) }) }

	var pumps sync.WaitGroup
	pumps.Add(2)
	go func() {
		defer pumps.Done()
		s.pump(h, proc.Stdout(), "stdout", cfg.Port, markReady)
	}()
	go func() {
		defer pumps.Done()
		s.pump(h, proc.Stderr(), "stderr", cfg.Port, markReady)
	}()
	go s.monitor(h, &pumps)

	timer := time.NewTimer(s.readyTimeout)
	defer timer.Stop()

	timedOut := false
	select {
	case <-ready:
	case <-timer.C:
		timedOut = true
	case <-h.done:
	}

	s.mu.Lock()
	if h.exited {
		err := fmt.Errorf("browser server exited before becoming ready: %s", h.failure())
		s.proc = nil
		s.endpoint = ""
		s.setStateLocked(api.StateError, err)
		s.mu.Unlock()
		logging.Error("Supervisor", err, "Browser server failed to start")
		return "", err
	}
	s.endpoint = cfg.Endpoint()
	s.setStateLocked(api.StateRunning, nil)
	s.events.Publish(Event{Type: EventReady, Endpoint: s.endpoint})
	ep := s.endpoint
	s.mu.Unlock()

	if timedOut {
		logging.Warn("Supervisor", "No readiness message within %s, assuming browser server is ready", s.readyTimeout)
	}
	logging.Info("Supervisor", "Browser server running at %s (pid %d)", ep, proc.Pid())
	return ep, nil
}

func (s *Supervisor) stopLocked(ctx context.Context) {
	s.mu.Lock()
	h := s.proc
	if h == nil {
		// A failed start or a crash leaves no handle; stop still clears the error.
		if s.state == api.StateError {
			s.endpoint = ""
			s.setStateLocked(api.StateStopped, nil)
		}
		s.mu.Unlock()
		return
	}
	h.stopping = true
	s.mu.Unlock()

	pid := h.proc.Pid()
	logging.Info("Supervisor", "Stopping browser server (pid %d)", pid)

	if err := h.proc.Terminate(); err != nil {
		logging.Debug("Supervisor", "Terminate pid %d: %v", pid, err)
	}

	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
	case <-timer.C:
		logging.Warn("Supervisor", "Browser server did not exit within %s, killing it", s.stopTimeout)
		s.kill(h)
	case <-ctx.Done():
		s.kill(h)
	}

	s.mu.Lock()
	if s.proc == h {
		s.proc = nil
	}
	s.endpoint = ""
	s.setStateLocked(api.StateStopped, nil)
	s.mu.Unlock()
}

func (s *Supervisor) kill(h *handle) {
	if err := h.proc.Kill(); err != nil {
		logging.Debug("Supervisor", "Kill pid %d: %v", h.proc.Pid(), err)
	}
	select {
	case <-h.done:
	case <-time.After(s.stopTimeout):
		logging.Warn("Supervisor", "Browser server (pid %d) still not reaped after kill", h.proc.Pid())
	}
}

// monitor waits for the process and handles exits nobody asked for. The
// handle is marked exited only after the output has been drained.
func (s *Supervisor) monitor(h *handle, pumps *sync.WaitGroup) {
	err := h.proc.Wait()
	s.drain(h, pumps)

	s.mu.Lock()
	h.exited = true
	h.exitErr = err
	close(h.done)

	if s.proc != h || h.stopping || s.state != api.StateRunning {
		s.mu.Unlock()
		return
	}

	exitErr := fmt.Errorf("browser server exited unexpectedly: %s", h.failure())
	s.proc = nil
	s.endpoint = ""
	s.setStateLocked(api.StateError, exitErr)
	s.mu.Unlock()

	logging.Error("Supervisor", exitErr, "Browser server stopped")
}

// drain waits for the pumps to reach EOF after the process exited.
// Grandchildren can keep the pipes open, so after outputDrainTimeout the
// streams are closed underneath the pumps.
func (s *Supervisor) drain(h *handle, pumps *sync.WaitGroup) {
	drained := make(chan struct{})
	go func() {
		pumps.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(outputDrainTimeout):
		logging.Debug("Supervisor", "Output of pid %d still open after exit, closing it", h.proc.Pid())
	}
	if err := h.proc.Close(); err != nil {
		logging.Debug("Supervisor", "Close output of pid %d: %v", h.proc.Pid(), err)
	}

	select {
	case <-drained:
	case <-time.After(outputDrainTimeout):
	}
}

// pump records one output stream and watches it for readiness.
func (s *Supervisor) pump(h *handle, r io.Reader, stream string, port int, markReady func()) {
	var splitter lineSplitter
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			for _, line := range splitter.feed(chunk) {
				s.record(h, stream, line)
			}
			if MatchesReadiness(chunk, port) {
				markReady()
			}
		}
		if err != nil {
			if line := splitter.flush(); line != "" {
				s.record(h, stream, line)
			}
			return
		}
	}
}

func (s *Supervisor) record(h *handle, stream, line string) {
	if trimmed := strings.TrimSpace(line); stream == "stderr" && trimmed != "" {
		s.mu.Lock()
		h.lastStderr = trimmed
		s.mu.Unlock()
	}

	e := LogEntry{Time: time.Now(), Stream: stream, Line: line}
	s.logs.add(e)
	s.events.Publish(Event{Type: EventLog, Time: e.Time, Stream: stream, Line: line})
	logging.Debug("Supervisor", "[%s] %s", stream, line)
}

func (s *Supervisor) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proc = nil
	s.endpoint = ""
	s.setStateLocked(api.StateError, err)
	logging.Error("Supervisor", err, "Browser server failed")
}

// setStateLocked must be called with mu held. Publish does not block, so
// events leave in the same order as the transitions.
func (s *Supervisor) setStateLocked(state api.ServiceState, err error) {
	if state != api.StateError {
		err = nil
	}
	changed := s.state != state
	s.state = state
	s.lastErr = err
	if !changed && err == nil {
		return
	}

	ev := Event{Type: EventStatus, Status: state}
	if err != nil {
		ev.Error = err.Error()
	}
	s.events.Publish(ev)
	if err != nil {
		s.events.Publish(Event{Type: EventError, Error: err.Error()})
	}
}
