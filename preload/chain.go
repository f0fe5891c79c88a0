// Package preload builds and edits the dynamic loader's preload list.
package preload

import "strings"

// Separator joins entries of the preload list.
const Separator = ":"

// Prepend returns the chain with lib in front of prior. prior is kept
// verbatim; nothing is removed or deduplicated.
func Prepend(prior, lib string) string {
	if prior == "" {
		return lib
	}
	return lib + Separator + prior
}

// Remove returns chain without any entry equal to lib. The remaining entries
// keep their order.
func Remove(chain, lib string) string {
	if chain == "" {
		return ""
	}
	entries := strings.Split(chain, Separator)
	kept := entries[:0]
	for _, entry := range entries {
		if entry == lib {
			continue
		}
		kept = append(kept, entry)
	}
	return strings.Join(kept, Separator)
}
