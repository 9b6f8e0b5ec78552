package rpctypes

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type BytesHexStr []byte

func (s *BytesHexStr) UnmarshalJSON(b []byte) error {
	if s == nil {
		return fmt.Errorf("cannot unmarshal bytes into nil")
	}
	var hexStr string
	if err := json.Unmarshal(b, &hexStr); err != nil {
		return err
	}
	if len(hexStr) >= 2 && hexStr[0] == '0' && hexStr[1] == 'x' {
		hexStr = hexStr[2:]
	}
	out := make([]byte, len(hexStr)/2)
	if _, err := hex.Decode(out, []byte(hexStr)); err != nil {
		return err
	}
	*s = out
	return nil
}

func (s BytesHexStr) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"0x%x\"", []byte(s))), nil
}

func (s BytesHexStr) String() string {
	return fmt.Sprintf("0x%x", []byte(s))
}

type Uint64Str uint64

func (s *Uint64Str) UnmarshalJSON(b []byte) error {
	return uint64Unmarshal((*uint64)(s), b)
}

// Parse a uint64, with or without quotes, in any base, with common prefixes accepted to change base.
func uint64Unmarshal(v *uint64, b []byte) error {
	if v == nil {
		return errors.New("nil dest in uint64 decoding")
	}
	if len(b) == 0 {
		return errors.New("empty uint64 input")
	}
	if b[0] == '"' || b[0] == '\'' {
		if len(b) == 1 || b[len(b)-1] != b[0] {
			return errors.New("uneven/missing quotes")
		}
		b = b[1 : len(b)-1]
	}
	n, err := strconv.ParseUint(string(b), 0, 64)
	if err != nil {
		return err
	}
	*v = n
	return nil
}
