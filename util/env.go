package util

import (
	"sort"
	"strings"
)

// MergeEnvs returns base with every variable in overrides set. Existing
// entries are replaced in place, new ones are appended in sorted order so
// the result is deterministic.
func MergeEnvs(base []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	applied := make(map[string]bool, len(overrides))

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		value, ok := overrides[key]
		if !ok {
			merged = append(merged, kv)
			continue
		}
		if applied[key] {
			// Drop duplicates of an overridden key.
			continue
		}
		applied[key] = true
		merged = append(merged, key+"="+value)
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		if !applied[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		merged = append(merged, key+"="+overrides[key])
	}

	return merged
}

// LookupEnv finds key in an environment in os.Environ form. The last
// occurrence wins.
func LookupEnv(env []string, key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			value, found = v, true
		}
	}
	return value, found
}

// Truthy interprets an environment flag. Empty, "0", "false", "off" and "no"
// are false, any other value is true.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}
