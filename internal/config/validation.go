package config

import (
	"strings"

	"mcpkeep/internal/api"
)

// ValidateDefinition checks a server definition before it enters the store.
func ValidateDefinition(d api.ServerDefinition) error {
	var errs ValidationErrors

	if strings.TrimSpace(d.ID) == "" {
		errs.Add("id", "is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		errs.Add("name", "is required")
	}

	switch d.Transport {
	case api.TransportStdio:
		if strings.TrimSpace(d.Command) == "" {
			errs.Add("command", "is required for stdio servers")
		}
	case api.TransportSSE, api.TransportStreamableHTTP:
		if strings.TrimSpace(d.URL) == "" {
			errs.Add("url", "is required for network servers", string(d.Transport))
		}
	default:
		errs.Add("transport", "must be one of stdio, sse, streamable-http", string(d.Transport))
	}

	if d.BuiltinKind == api.BuiltinBrowserAutomation {
		if d.ID != api.BuiltinBrowserID {
			errs.Add("id", "browser-automation definitions must use id "+api.BuiltinBrowserID, d.ID)
		}
		if d.BrowserMode != "" && !d.BrowserMode.Valid() {
			errs.Add("browserMode", "must be visible or headless", string(d.BrowserMode))
		}
	} else if d.ID == api.BuiltinBrowserID {
		errs.Add("id", "is reserved for the builtin browser server", d.ID)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
