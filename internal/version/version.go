// Package version holds the build version, overridable at link time:
//
//	go build -ldflags "-X dutyboard/internal/version.Version=v2.2.0"
package version

var Version = "v2.1.0"
