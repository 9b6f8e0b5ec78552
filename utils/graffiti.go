package utils

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DecodeGraffiti converts a hex encoded graffiti payload into a display safe string.
// Graffiti payloads are right-padded with zero bytes to a fixed width, the padding is
// stripped before decoding. Malformed hex never fails, it degrades to the 0x-prefixed
// input string.
func DecodeGraffiti(rawHex string) string {
	if strings.TrimSpace(rawHex) == "" {
		return ""
	}

	hexStr := rawHex
	if len(hexStr) >= 2 && (hexStr[0:2] == "0x" || hexStr[0:2] == "0X") {
		hexStr = hexStr[2:]
	}

	graffitiBytes, err := hexutil.Decode("0x" + hexStr)
	if err != nil {
		return "0x" + hexStr
	}

	// find the last non-zero byte (graffiti is right-padded with zeros)
	lastNonZero := len(graffitiBytes) - 1
	for lastNonZero >= 0 && graffitiBytes[lastNonZero] == 0 {
		lastNonZero--
	}
	if lastNonZero < 0 {
		return ""
	}

	var result strings.Builder
	for _, r := range string(graffitiBytes[:lastNonZero+1]) {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			result.WriteString(fmt.Sprintf("\\x%02X", r))
		} else {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// IsLikelyText classifies whether a decoded graffiti looks like meaningful text.
// True iff more than 70% of the characters are printable.
func IsLikelyText(graffiti string) bool {
	if strings.TrimSpace(graffiti) == "" {
		return false
	}

	printableCount := 0
	totalCount := 0
	for _, r := range graffiti {
		totalCount++
		if !unicode.IsControl(r) || r == '\n' || r == '\r' || r == '\t' {
			printableCount++
		}
	}

	return float64(printableCount)/float64(totalCount) > 0.7
}
