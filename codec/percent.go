package codec

import "fmt"

const upperHex = "0123456789ABCDEF"

// EscapeComma reports whether b must be escaped inside an option value.
func EscapeComma(b byte) bool {
	return b == ',' || b == '%'
}

// PercentEncode appends src to dst, replacing every byte for which escape
// returns true with %XX.
func PercentEncode(dst, src []byte, escape func(byte) bool) []byte {
	for _, b := range src {
		if escape(b) {
			dst = append(dst, '%', upperHex[b>>4], upperHex[b&0x0f])
			continue
		}
		dst = append(dst, b)
	}
	return dst
}

// PercentDecode appends the decoded form of src to dst. Every % must be
// followed by exactly two hexadecimal digits.
func PercentDecode(dst, src []byte) ([]byte, error) {
	for i := 0; i < len(src); i++ {
		if src[i] != '%' {
			dst = append(dst, src[i])
			continue
		}
		if i+2 >= len(src) {
			return dst, fmt.Errorf("truncated escape sequence at offset %d", i)
		}
		hi, ok := unhex(src[i+1])
		if !ok {
			return dst, fmt.Errorf("invalid hexadecimal digit %q at offset %d", src[i+1], i+1)
		}
		lo, ok := unhex(src[i+2])
		if !ok {
			return dst, fmt.Errorf("invalid hexadecimal digit %q at offset %d", src[i+2], i+2)
		}
		dst = append(dst, hi<<4|lo)
		i += 2
	}
	return dst, nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
