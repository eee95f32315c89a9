package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"runtime/debug"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Revision  string `json:"vcs_revision,omitempty"`
	BuildTime string `json:"vcs_time,omitempty"`
	Modified  bool   `json:"vcs_modified,omitempty"`
}

// Version may be set at link time: -ldflags "-X .../internal/handler.Version=1.4.0"
var Version = ""

// HandleVersion reports the binary's version and VCS stamp.
// configured is the VERSION setting, used when no version was linked in.
func HandleVersion(configured string) http.HandlerFunc {
	info := newVersionInfo(configured, readBuildSettings())
	body, _ := json.Marshal(info)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

func newVersionInfo(configured string, settings map[string]string) VersionInfo {
	return VersionInfo{
		Version:   resolveVersion(configured),
		GoVersion: runtime.Version(),
		Revision:  settings["vcs.revision"],
		BuildTime: settings["vcs.time"],
		Modified:  settings["vcs.modified"] == "true",
	}
}

func readBuildSettings() map[string]string {
	settings := map[string]string{}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

// resolveVersion prefers the linked version, then the configured one
func resolveVersion(configured string) string {
	switch {
	case Version != "":
		return Version
	case configured != "":
		return configured
	default:
		return "dev"
	}
}
