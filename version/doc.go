// Package version reports the authgate build version.
//
// Version and GitCommit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/authgate/version.Version=1.4.0" ./cmd/authgate
//
// Without ldflags the VCS stamp from the Go toolchain fills in the commit.
package version
