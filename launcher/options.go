package launcher

import (
	"fmt"
	"sort"

	"github.com/coder/curl-inject-opt/config"
	"github.com/coder/curl-inject-opt/options"
)

// Occurrence is one option flag as it appeared on the command line. Index
// increases across all option flags, whatever their name.
type Occurrence struct {
	Name  string
	Value string
	Index int
}

// FileOccurrences converts config file options into occurrences that sort
// ahead of every command line occurrence.
func FileOccurrences(opts []config.FileOption) []Occurrence {
	occurrences := make([]Occurrence, 0, len(opts))
	for i, opt := range opts {
		occurrences = append(occurrences, Occurrence{
			Name:  opt.Name,
			Value: opt.Value,
			Index: i - len(opts),
		})
	}
	return occurrences
}

// BuildOptionList resolves and parses every occurrence and orders the result
// by Index. The first invalid occurrence fails the whole list.
func BuildOptionList(occurrences []Occurrence) (options.List, error) {
	sorted := make([]Occurrence, len(occurrences))
	copy(sorted, occurrences)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	list := make(options.List, 0, len(sorted))
	for _, occ := range sorted {
		opt, err := options.ParseNameValue(occ.Name, []byte(occ.Value))
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", occ.Name, err)
		}
		list = append(list, opt)
	}
	return list, nil
}
