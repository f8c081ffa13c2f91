package nexususers

import (
	"embed"
	"regexp"
	"strings"
)

//go:embed VERSION BUILD
var EmbeddedFS embed.FS

const ServiceName = "nexus-users"

var buildNumberPattern = regexp.MustCompile(`\d+`)

// BuildInfo describes the embedded release of the service.
type BuildInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
}

func (b BuildInfo) String() string {
	return b.Version + "." + b.Build
}

// GetBuildInfo reads the VERSION and BUILD files embedded at compile time.
// Missing files fall back to "0.0.0" and "local".
func GetBuildInfo() BuildInfo {
	info := BuildInfo{Version: "0.0.0", Build: "local"}

	if versionBytes, err := EmbeddedFS.ReadFile("VERSION"); err == nil {
		if v := strings.TrimSpace(string(versionBytes)); v != "" {
			info.Version = v
		}
	}

	if buildBytes, err := EmbeddedFS.ReadFile("BUILD"); err == nil {
		build := strings.TrimSpace(string(buildBytes))
		if match := buildNumberPattern.FindString(build); match != "" {
			build = match
		}
		if build != "" {
			info.Build = build
		}
	}

	return info
}

func GetVersion() string {
	return GetBuildInfo().String()
}
