package telemetry

import (
	"os"
	"sync"
)

// DefaultArtifactsDir holds events.jsonl unless configured otherwise.
const DefaultArtifactsDir = ".agent"

var (
	cfgMu        sync.RWMutex
	observe      bool
	artifactsDir = DefaultArtifactsDir
)

// Configure applies the [telemetry] section of the application config.
// An empty dir keeps the current directory.
func Configure(enabled bool, dir string) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	observe = enabled
	if dir != "" {
		artifactsDir = dir
	}
}

// ObserveEnabled reports whether events are written. AGT_OBSERVE_JSON set to
// "1" or "0" takes precedence over the configured value.
func ObserveEnabled() bool {
	switch os.Getenv("AGT_OBSERVE_JSON") {
	case "1":
		return true
	case "0":
		return false
	}
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return observe
}

// ArtifactsDir returns the events directory. AGT_ARTIFACTS_DIR takes precedence.
func ArtifactsDir() string {
	if v := os.Getenv("AGT_ARTIFACTS_DIR"); v != "" {
		return v
	}
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return artifactsDir
}
