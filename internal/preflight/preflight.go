// Package preflight checks that the tools the browser supervisor launches are installed.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mcpkeep/pkg/logging"

	"golang.org/x/sync/errgroup"
)

const versionTimeout = 5 * time.Second

// Result describes one command lookup.
type Result struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Available bool   `json:"available" yaml:"available"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Swapped in tests.
var (
	lookPath   = exec.LookPath
	runVersion = func(ctx context.Context, path string) (string, error) {
		out, err := exec.CommandContext(ctx, path, "--version").Output()
		return string(out), err
	}
)

// RequiredCommands are checked by CheckAll.
var RequiredCommands = []string{"npx", "node"}

// CheckCommand resolves name on PATH and asks it for its version. A command
// that is found but fails to report a version is still available.
func CheckCommand(ctx context.Context, name string) Result {
	res := Result{Name: name}

	path, err := lookPath(name)
	if err != nil {
		res.Error = fmt.Sprintf("%s not found on PATH", name)
		logging.Debug("Preflight", "%s", res.Error)
		return res
	}
	res.Path = path
	res.Available = true

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := runVersion(ctx, path)
	if err != nil {
		res.Error = fmt.Sprintf("failed to query version: %v", err)
		logging.Warn("Preflight", "%s found at %s but version check failed: %v", name, path, err)
		return res
	}
	res.Version = strings.TrimSpace(out)
	return res
}

// CheckAll runs CheckCommand for every required command concurrently and
// returns results in RequiredCommands order.
func CheckAll(ctx context.Context) []Result {
	results := make([]Result, len(RequiredCommands))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range RequiredCommands {
		g.Go(func() error {
			results[i] = CheckCommand(gctx, name)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Ready reports whether every result is available.
func Ready(results []Result) bool {
	for _, r := range results {
		if !r.Available {
			return false
		}
	}
	return true
}
