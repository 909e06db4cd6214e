// Package codec implements the text encodings offered by /encode and /decode.
package codec

import (
	"bytes"
	"encoding/ascii85"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Method names an encoding.
type Method string

const (
	Base32  Method = "base32"
	Base64  Method = "base64"
	ROT13   Method = "rot13"
	Hex     Method = "hex"
	Base85  Method = "base85"
	ASCII85 Method = "ascii85"
)

// Methods lists every supported encoding in display order.
var Methods = []Method{Base32, Base64, ROT13, Hex, Base85, ASCII85}

// ErrEmptyInput is returned when there is nothing to encode or decode.
var ErrEmptyInput = errors.New("codec: empty input")

// InvalidInputError is returned when the input is not valid for the method.
type InvalidInputError struct {
	Method Method
	Err    error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("codec: invalid %s input: %v", e.Method, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// Display is the human name of the method.
func (m Method) Display() string {
	switch m {
	case ROT13:
		return "ROT13"
	case Hex:
		return "Hex"
	case ASCII85:
		return "ASCII85"
	default:
		return string(m)
	}
}

// ParseMethod accepts a method name or one of its short aliases.
func ParseMethod(s string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base32", "b32":
		return Base32, true
	case "base64", "b64":
		return Base64, true
	case "rot13", "r13":
		return ROT13, true
	case "hex":
		return Hex, true
	case "base85", "b85":
		return Base85, true
	case "ascii85", "a85":
		return ASCII85, true
	}
	return "", false
}

// EncodeLabel is the header shown above an encoded result, e.g. "Text → base32".
func EncodeLabel(m Method) string {
	return "Text → " + m.Display()
}

// DecodeLabel is the header shown above a decoded result, e.g. "base32 → Text".
func DecodeLabel(m Method) string {
	return m.Display() + " → Text"
}

// Encode converts text with method m.
func Encode(m Method, text string) (string, error) {
	if text == "" {
		return "", ErrEmptyInput
	}

	data := []byte(text)
	switch m {
	case Base32:
		return base32.StdEncoding.EncodeToString(data), nil
	case Base64:
		return base64.URLEncoding.EncodeToString(data), nil
	case ROT13:
		return rot13(text), nil
	case Hex:
		return hex.EncodeToString(data), nil
	case Base85:
		return encodeBase85(data), nil
	case ASCII85:
		buf := make([]byte, ascii85.MaxEncodedLen(len(data)))
		n := ascii85.Encode(buf, data)
		return string(buf[:n]), nil
	}
	return "", fmt.Errorf("codec: unknown method %q", m)
}

// Decode reverses Encode. The decoded bytes must be valid UTF-8.
func Decode(m Method, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	var (
		out []byte
		err error
	)
	switch m {
	case Base32:
		out, err = base32.StdEncoding.DecodeString(text)
	case Base64:
		out, err = base64.URLEncoding.DecodeString(text)
	case ROT13:
		return rot13(text), nil
	case Hex:
		out, err = hex.DecodeString(text)
	case Base85:
		out, err = decodeBase85(text)
	case ASCII85:
		out, err = decodeASCII85(text)
	default:
		return "", fmt.Errorf("codec: unknown method %q", m)
	}
	if err != nil {
		return "", &InvalidInputError{Method: m, Err: err}
	}
	if !utf8.Valid(out) {
		return "", &InvalidInputError{Method: m, Err: errors.New("result is not valid UTF-8")}
	}
	if len(out) == 0 {
		return "", ErrEmptyInput
	}
	return string(out), nil
}

func rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

func decodeASCII85(s string) ([]byte, error) {
	dst := make([]byte, 4*len(s))
	n, _, err := ascii85.Decode(dst, []byte(s), true)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// base85Alphabet is the RFC 1924 character set.
const base85Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!#$%&()*+-;<=>?@^_`{|}~"

var base85Index = func() [256]int {
	var idx [256]int
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(base85Alphabet); i++ {
		idx[base85Alphabet[i]] = i
	}
	return idx
}()

// encodeBase85 pads to a 4-byte boundary, encodes each group as 5 characters
// and drops as many trailing characters as bytes were padded.
func encodeBase85(data []byte) string {
	padding := (4 - len(data)%4) % 4
	buf := make([]byte, len(data)+padding)
	copy(buf, data)

	var out bytes.Buffer
	for i := 0; i < len(buf); i += 4 {
		v := uint32(buf[i])<<24 | uint32(buf[i+1])<<16 | uint32(buf[i+2])<<8 | uint32(buf[i+3])
		var group [5]byte
		for j := 4; j >= 0; j-- {
			group[j] = base85Alphabet[v%85]
			v /= 85
		}
		out.Write(group[:])
	}

	s := out.String()
	return s[:len(s)-padding]
}

func decodeBase85(s string) ([]byte, error) {
	padding := (5 - len(s)%5) % 5
	s += strings.Repeat("~", padding)

	out := make([]byte, 0, len(s)/5*4)
	for i := 0; i < len(s); i += 5 {
		var acc uint64
		for j := 0; j < 5; j++ {
			c := s[i+j]
			d := base85Index[c]
			if d < 0 {
				return nil, fmt.Errorf("bad base85 character %q at position %d", c, i+j)
			}
			acc = acc*85 + uint64(d)
		}
		if acc > 0xFFFFFFFF {
			return nil, fmt.Errorf("base85 overflow in group starting at %d", i)
		}
		out = append(out, byte(acc>>24), byte(acc>>16), byte(acc>>8), byte(acc))
	}
	return out[:len(out)-padding], nil
}
