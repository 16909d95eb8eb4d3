// Package emit implements the relay CLI commands that exercise a runtime:
// `relay emit` dispatches payloads through a channel and prints what
// listeners receive, `relay config` prints the effective configuration.
package emit
