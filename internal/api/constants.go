package api

const (
	// BuiltinBrowserID is the fixed id of the built-in browser-automation definition.
	BuiltinBrowserID = "builtin-playwright"

	// DefaultBrowserPort is the port the supervised browser server listens on.
	DefaultBrowserPort = 8931

	// BrowserPackage is the package-runner target for the browser server.
	BrowserPackage = "@playwright/mcp@latest"

	// PackageRunner launches BrowserPackage without a global install.
	PackageRunner = "npx"

	// SSEPath is appended to the supervised server's base URL.
	SSEPath = "/sse"
)
