package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeGraffiti(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "blank input",
			input:    "   ",
			expected: "",
		},
		{
			name:     "zero padded hello",
			input:    "0x68656c6c6f000000000000000000000000000000000000000000000000000000",
			expected: "hello",
		},
		{
			name:     "no prefix",
			input:    "68656c6c6f",
			expected: "hello",
		},
		{
			name:     "uppercase prefix",
			input:    "0X68656C6C6F",
			expected: "hello",
		},
		{
			name:     "all zero bytes",
			input:    "0x0000000000000000",
			expected: "",
		},
		{
			name:     "single zero byte",
			input:    "0x00",
			expected: "",
		},
		{
			name:     "empty hex payload",
			input:    "0x",
			expected: "",
		},
		{
			name:     "control byte escaped",
			input:    "0x01616263",
			expected: "\\x01abc",
		},
		{
			name:     "newline kept",
			input:    "0x676d0a676d",
			expected: "gm\ngm",
		},
		{
			name:     "odd length falls back to hex",
			input:    "0x123",
			expected: "0x123",
		},
		{
			name:     "non hex falls back to hex",
			input:    "0xzz41",
			expected: "0xzz41",
		},
		{
			name:     "non hex without prefix falls back with prefix",
			input:    "nothex",
			expected: "0xnothex",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "0x2020676d2020",
			expected: "gm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeGraffiti(tt.input))
		})
	}
}

func TestDecodeGraffitiPaddingInsensitive(t *testing.T) {
	payload := "74657374"
	decoded := DecodeGraffiti(payload)
	for _, padding := range []int{1, 4, 27, 60} {
		padded := payload + strings.Repeat("00", padding)
		assert.Equal(t, decoded, DecodeGraffiti(padded), "padding with %v zero bytes changed result", padding)
	}
}

func TestDecodeGraffitiAllZeroAnyLength(t *testing.T) {
	for _, byteLen := range []int{1, 8, 32, 96} {
		input := "0x" + strings.Repeat("00", byteLen)
		assert.Equal(t, "", DecodeGraffiti(input), "all-zero payload of %v bytes", byteLen)
	}
}

func TestIsLikelyText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty", "", false},
		{"blank", "  ", false},
		{"plain text", "gm from lighthouse", true},
		{"text with newline", "line1\nline2", true},
		{"mostly control chars", "\x01\x02\x03\x04a", false},
		{"mostly printable", "abcdefghi\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLikelyText(tt.input))
		})
	}
}
