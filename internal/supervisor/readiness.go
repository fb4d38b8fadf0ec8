package supervisor

import (
	"strconv"
	"strings"
)

// readinessMarkers are matched case-sensitively, in addition to the port.
var readinessMarkers = []string{
	"listening",
	"Listening",
	"started",
	"Started",
	"ready",
	"Ready",
	"MCP server",
	"Playwright",
}

// ReadinessPatterns returns every substring that marks the server as ready
// when it is listening on port.
func ReadinessPatterns(port int) []string {
	p := strconv.Itoa(port)
	out := make([]string, 0, len(readinessMarkers)+2)
	out = append(out, readinessMarkers...)
	return append(out, p, ":"+p)
}

// MatchesReadiness reports whether a chunk of process output signals readiness.
// Matching is a plain substring test; chunks come from stdout or stderr alike.
func MatchesReadiness(chunk string, port int) bool {
	for _, pattern := range ReadinessPatterns(port) {
		if strings.Contains(chunk, pattern) {
			return true
		}
	}
	return false
}
