package codec

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		method Method
		in     string
		want   string
	}{
		{Base32, "hello", "NBSWY3DP"},
		{Base32, "Hello, World!", "JBSWY3DPFQQFO33SNRSCC==="},
		{Base64, "Hello, World!", "SGVsbG8sIFdvcmxkIQ=="},
		{Base64, "¿qué? ~~~>>>", "wr9xdcOpPyB-fn4-Pj4="},
		{ROT13, "Hello", "Uryyb"},
		{Hex, "hello", "68656c6c6f"},
		{Base85, "hello", "Xk~0{Zv"},
		{Base85, "Hello, World!", "NM&qnZ!92JZ*pv8Ap"},
		{Base85, "\x00\x00\x00\x00", "00000"},
		{ASCII85, "hello", "BOu!rDZ"},
		{ASCII85, "Hello, World!", "87cURD_*#4DfTZ)+T"},
		{ASCII85, "\x00\x00\x00\x00", "z"},
	}

	for _, tt := range tests {
		t.Run(string(tt.method)+"/"+tt.in, func(t *testing.T) {
			got, err := Encode(tt.method, tt.in)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeReversesEncode(t *testing.T) {
	inputs := []string{"a", "hello", "Hello, World!", "multi\nline ✓ text", "1234567"}

	for _, m := range Methods {
		for _, in := range inputs {
			enc, err := Encode(m, in)
			if err != nil {
				t.Fatalf("Encode(%s, %q) error = %v", m, in, err)
			}
			got, err := Decode(m, enc)
			if err != nil {
				t.Fatalf("Decode(%s, %q) error = %v", m, enc, err)
			}
			if got != in {
				t.Errorf("Decode(%s, Encode(%q)) = %q", m, in, got)
			}
		}
	}
}

func TestDecodeInvalidInput(t *testing.T) {
	tests := []struct {
		method Method
		in     string
	}{
		{Base32, "not base32!"},
		{Base64, "%%%"},
		{Hex, "abc"},
		{Hex, "zz"},
		{Base85, "\"\"\"\"\""},
		{Base85, "~~~~~"},
		{ASCII85, "vvvvv"},
		{Hex, "ff"},
	}

	for _, tt := range tests {
		t.Run(string(tt.method)+"/"+tt.in, func(t *testing.T) {
			_, err := Decode(tt.method, tt.in)
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("Decode() error = %v, want *InvalidInputError", err)
			}
			if invalid.Method != tt.method {
				t.Errorf("InvalidInputError.Method = %v, want %v", invalid.Method, tt.method)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	for _, m := range Methods {
		if _, err := Encode(m, ""); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Encode(%s, \"\") error = %v, want ErrEmptyInput", m, err)
		}
		if _, err := Decode(m, "   "); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Decode(%s, blank) error = %v, want ErrEmptyInput", m, err)
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
		ok   bool
	}{
		{"base32", Base32, true},
		{"B64", Base64, true},
		{"r13", ROT13, true},
		{"a85", ASCII85, true},
		{"b85", Base85, true},
		{"morse", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseMethod(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMethod(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLabels(t *testing.T) {
	if got := EncodeLabel(ROT13); got != "Text → ROT13" {
		t.Errorf("EncodeLabel() = %q", got)
	}
	if got := DecodeLabel(ASCII85); got != "ASCII85 → Text" {
		t.Errorf("DecodeLabel() = %q", got)
	}
	if got := EncodeLabel(Base32); got != "Text → base32" {
		t.Errorf("EncodeLabel() = %q", got)
	}
}
