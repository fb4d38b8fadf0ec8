package api

// ServiceState represents the current state of a supervised process.
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateError    ServiceState = "error"
)

// SupervisorStatus is a point-in-time view of the supervised browser process.
type SupervisorStatus struct {
	State     ServiceState `json:"state" yaml:"state"`
	Endpoint  string       `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	LastError string       `json:"lastError,omitempty" yaml:"lastError,omitempty"`
	PID       int          `json:"pid,omitempty" yaml:"pid,omitempty"`
	Port      int          `json:"port" yaml:"port"`
	Mode      BrowserMode  `json:"mode" yaml:"mode"`
}
