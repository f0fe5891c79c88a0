package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coder/curl-inject-opt/preload"
)

// DefaultPreloadLib is the interception library path baked in at link time:
//
//	go build -ldflags "-X github.com/coder/curl-inject-opt/launcher.DefaultPreloadLib=/usr/lib/libcurl_inject_opt_preload.so"
var DefaultPreloadLib = ""

// ResolvePreloadLib picks the interception library path. explicit comes from
// the flag, environment or config file. A bare file name is returned as is
// so the dynamic loader searches for it.
func ResolvePreloadLib(explicit string) (string, error) {
	return resolvePreloadLib(explicit, DefaultPreloadLib, os.Executable)
}

func resolvePreloadLib(explicit, linked string, executable func() (string, error)) (string, error) {
	for _, candidate := range []string{explicit, linked} {
		if candidate == "" {
			continue
		}
		if !strings.Contains(candidate, "/") {
			return candidate, nil
		}
		return filepath.Abs(candidate)
	}

	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate launcher executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "..", "lib", preload.LibraryName), nil
}
