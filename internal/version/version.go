// Package version holds build metadata set through -ldflags.
package version

import "runtime"

// Overridden at build time:
//
//	go build -ldflags "-X github.com/doeshing/unlp/internal/version.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get reports the metadata compiled into this binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent identifies the client on backend requests.
func UserAgent() string {
	return "unlp/" + Version
}
