// Package version exposes build information for the factorygirl CLI.
//
// Values are injected at build time:
//
//	go build -ldflags "-X github.com/kbukum/factorygirl/version.Version=1.0.0"
package version
