// Package version provides build version information for restdemo.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/restdemo/version.Version=1.0.0" ./cmd/restdemo
package version
