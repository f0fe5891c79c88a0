package cli

import (
	"fmt"

	"github.com/coder/serpent"

	"github.com/coder/curl-inject-opt/launcher"
	"github.com/coder/curl-inject-opt/options"
)

// occurrenceRecorder numbers option flags in the order the parser sees
// them, across all flag names.
type occurrenceRecorder struct {
	next        int
	occurrences []launcher.Occurrence
}

func (r *occurrenceRecorder) record(name, value string) {
	r.occurrences = append(r.occurrences, launcher.Occurrence{
		Name:  name,
		Value: value,
		Index: r.next,
	})
	r.next++
}

// Occurrences returns every recorded option flag.
func (r *occurrenceRecorder) Occurrences() []launcher.Occurrence {
	return r.occurrences
}

// optionFlag is the flag value behind one registry option. Values are
// checked later, together with the config file options.
type optionFlag struct {
	desc     options.Descriptor
	recorder *occurrenceRecorder
}

func (f *optionFlag) Set(value string) error {
	f.recorder.record(f.desc.Name, value)
	return nil
}

func (f *optionFlag) String() string {
	return ""
}

func (f *optionFlag) Type() string {
	return f.desc.Kind.String()
}

// optionFlags builds one repeatable flag per registry option.
func optionFlags(recorder *occurrenceRecorder) serpent.OptionSet {
	descriptors := options.All()
	set := make(serpent.OptionSet, 0, len(descriptors))
	for _, desc := range descriptors {
		set = append(set, serpent.Option{
			Name:        desc.Name,
			Flag:        desc.Name,
			Description: fmt.Sprintf("%s Sets %s, may be repeated.", desc.Help, desc.CurlName),
			Value:       &optionFlag{desc: desc, recorder: recorder},
			Group:       optionGroup,
		})
	}
	return set
}

var optionGroup = &serpent.Group{
	Name:        "libcurl Options",
	Description: "Options applied to every libcurl handle of the target command, in the order given.",
}
