// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "1.0.0"

// Milestones:
// 1.0.0 - HTTP API server, Prometheus metrics, body catalog endpoint
// 0.3.0 - Aurora K-index tier line, moon phase panel, meteor providers
// 0.2.0 - Rise/set visibility with local solar fallback, twilight events
// 0.1.0 - Initial release: multi-provider event feed, TUI dashboard
