// Package codec implements the text format used to pass an option list
// through a single environment variable:
//
//	name1=value1,name2=value2
//
// Text values are percent-encoded with only '%' and ',' escaped. Integer
// values are written in decimal. Empty segments are ignored when decoding.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/coder/curl-inject-opt/options"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrMalformed     = errors.New("malformed option list")
	ErrInvalidValue  = errors.New("invalid option value")
)

// ErrorKind classifies a DecodeError.
type ErrorKind int

const (
	UnknownOption ErrorKind = iota
	Malformed
	InvalidValue
)

func (k ErrorKind) sentinel() error {
	switch k {
	case UnknownOption:
		return ErrUnknownOption
	case InvalidValue:
		return ErrInvalidValue
	default:
		return ErrMalformed
	}
}

// DecodeError is returned by Decode. Use errors.Is with ErrUnknownOption,
// ErrMalformed or ErrInvalidValue to tell the kinds apart.
type DecodeError struct {
	Kind ErrorKind
	// Name is the option name, when one could be determined.
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Name != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Name)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Encode serializes list. The empty list encodes to an empty slice.
func Encode(list options.List) []byte {
	var buf []byte
	for i, opt := range list {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, opt.Descriptor.Name...)
		buf = append(buf, '=')
		switch opt.Value.Kind {
		case options.Integer:
			buf = strconv.AppendInt(buf, opt.Value.Int, 10)
		default:
			buf = PercentEncode(buf, opt.Value.Text, EscapeComma)
		}
	}
	return buf
}

// EncodeString is Encode returning a string.
func EncodeString(list options.List) string {
	return string(Encode(list))
}

// Decode parses data produced by Encode. Decoding stops at the first error.
func Decode(data []byte) (options.List, error) {
	var list options.List
	for _, segment := range bytes.Split(data, []byte{','}) {
		if len(segment) == 0 {
			continue
		}
		opt, err := decodeOption(segment)
		if err != nil {
			return nil, err
		}
		list = append(list, opt)
	}
	return list, nil
}

// DecodeString is Decode for a string.
func DecodeString(data string) (options.List, error) {
	return Decode([]byte(data))
}

func decodeOption(segment []byte) (options.Option, error) {
	// Values may contain '=', so only the first one separates the name.
	name, raw, ok := bytes.Cut(segment, []byte{'='})
	if !ok {
		return options.Option{}, &DecodeError{Kind: Malformed, Err: fmt.Errorf("expected name=value, got %q", segment)}
	}

	value, err := PercentDecode(nil, raw)
	if err != nil {
		return options.Option{}, &DecodeError{Kind: Malformed, Name: string(name), Err: err}
	}

	desc, found := options.Find(string(name))
	if !found {
		return options.Option{}, &DecodeError{Kind: UnknownOption, Name: string(name)}
	}

	opt, err := options.Parse(desc, value)
	if err != nil {
		return options.Option{}, &DecodeError{Kind: InvalidValue, Name: desc.Name, Err: err}
	}
	return opt, nil
}
