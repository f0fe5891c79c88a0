package options

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidValue  = errors.New("invalid value")
	ErrKindMismatch  = errors.New("wrong value type")
)

// Kind is the value shape libcurl expects for an option.
type Kind int

const (
	// Text is a NUL terminated string (char *).
	Text Kind = iota
	// Integer is a C long.
	Integer
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "string"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ID is a libcurl CURLoption value.
type ID int32

// Descriptor describes one settable option.
type Descriptor struct {
	// Name is the human friendly name, also used as CLI flag and wire name.
	Name string
	// CurlName is the libcurl constant name.
	CurlName string
	Target   ID
	Kind     Kind
	Help     string
}

// Value is the value of an option. Exactly one of the fields is meaningful,
// depending on Kind.
type Value struct {
	Kind Kind
	Text []byte
	Int  int64
}

// TextValue returns a Text value. The bytes are not copied.
func TextValue(b []byte) Value {
	return Value{Kind: Text, Text: b}
}

// IntegerValue returns an Integer value.
func IntegerValue(i int64) Value {
	return Value{Kind: Integer, Int: i}
}

func (v Value) String() string {
	if v.Kind == Integer {
		return strconv.FormatInt(v.Int, 10)
	}
	return string(v.Text)
}

// Option is an option with a value of the matching kind.
type Option struct {
	Descriptor Descriptor
	Value      Value
}

func (o Option) Name() string {
	return o.Descriptor.Name
}

func (o Option) String() string {
	return o.Descriptor.Name + "=" + o.Value.String()
}

// List is an ordered list of options. Order is the order in which the
// options get applied to a handle.
type List []Option

// Find looks up a descriptor by name, ignoring ASCII case.
func Find(name string) (Descriptor, bool) {
	for _, d := range registry {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// All returns every known descriptor in table order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Parse parses raw against the kind of desc.
func Parse(desc Descriptor, raw []byte) (Option, error) {
	switch desc.Kind {
	case Text:
		for _, b := range raw {
			if b == 0 {
				return Option{}, fmt.Errorf("%w for option %s: contains a NUL byte", ErrInvalidValue, desc.Name)
			}
		}
		text := make([]byte, len(raw))
		copy(text, raw)
		return Option{Descriptor: desc, Value: TextValue(text)}, nil
	case Integer:
		i, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return Option{}, fmt.Errorf("%w for option %s: invalid integer %q", ErrInvalidValue, desc.Name, raw)
		}
		return Option{Descriptor: desc, Value: IntegerValue(i)}, nil
	default:
		return Option{}, fmt.Errorf("option %s has unsupported kind %v", desc.Name, desc.Kind)
	}
}

// ParseNameValue looks name up in the registry and parses raw against it.
func ParseNameValue(name string, raw []byte) (Option, error) {
	desc, ok := Find(name)
	if !ok {
		return Option{}, fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	return Parse(desc, raw)
}

// NewOption builds an option from an already typed value.
func NewOption(name string, value Value) (Option, error) {
	desc, ok := Find(name)
	if !ok {
		return Option{}, fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	if desc.Kind != value.Kind {
		return Option{}, fmt.Errorf("%w for option %s: expected %v but got %v", ErrKindMismatch, desc.Name, desc.Kind, value.Kind)
	}
	if value.Kind == Text {
		// Go through Parse so the NUL check applies.
		return Parse(desc, value.Text)
	}
	return Option{Descriptor: desc, Value: value}, nil
}
