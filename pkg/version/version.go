// Package version holds the build version, set at link time with
// -ldflags "-X github.com/observatorium/catalogctl/pkg/version.Version=...".
package version

var Version = "v0.1.0-dev"
