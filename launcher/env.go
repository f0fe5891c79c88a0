package launcher

import (
	"fmt"
	"io"
	"sort"

	"github.com/coder/curl-inject-opt/codec"
	"github.com/coder/curl-inject-opt/options"
	"github.com/coder/curl-inject-opt/preload"
	"github.com/coder/curl-inject-opt/shim"
	"github.com/coder/curl-inject-opt/util"
)

// Handoff is what the launcher passes to the interception library.
type Handoff struct {
	Options    options.List
	PreloadLib string
	Debug      bool
	NoInherit  bool
}

// Variables returns the variables to set in the target's environment. The
// preload chain extends whatever chain parent already carries.
func (h Handoff) Variables(parent []string) map[string]string {
	prior, _ := util.LookupEnv(parent, preload.EnvVar)
	vars := map[string]string{
		shim.EnvOptions: codec.EncodeString(h.Options),
		preload.EnvVar:  preload.Prepend(prior, h.PreloadLib),
	}
	if h.Debug {
		vars[shim.EnvDebug] = "1"
	}
	if h.NoInherit {
		vars[shim.EnvNoInherit] = h.PreloadLib
	}
	return vars
}

// Environment returns parent with Variables applied.
func (h Handoff) Environment(parent []string) []string {
	return util.MergeEnvs(parent, h.Variables(parent))
}

// PrintEnv writes vars as KEY=value lines sorted by key.
func PrintEnv(w io.Writer, vars map[string]string) error {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, vars[key]); err != nil {
			return err
		}
	}
	return nil
}
