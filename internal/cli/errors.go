package cli

import (
	"errors"
	"fmt"
)

// ServerNotRunningError is returned when the control endpoint cannot be reached.
type ServerNotRunningError struct {
	Endpoint string
	Reason   error
}

func (e *ServerNotRunningError) Error() string {
	return fmt.Sprintf("mcpkeep is not running at %s (%v). Start it with: mcpkeep serve", e.Endpoint, e.Reason)
}

func (e *ServerNotRunningError) Unwrap() error {
	return e.Reason
}

// IsServerNotRunning reports whether err is a ServerNotRunningError.
func IsServerNotRunning(err error) bool {
	var target *ServerNotRunningError
	return errors.As(err, &target)
}

// ToolError carries the text of a tool result flagged as an error.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}
