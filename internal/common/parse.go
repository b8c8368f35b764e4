package common

import (
	"errors"
	"strconv"
	"strings"
)

var ErrEmptyQuantity = errors.New("empty quantity")

// ParseQuantity parses a block height written either as a 0x-prefixed hex quantity
// or as a decimal number.
func ParseQuantity(s string) (uint64, error) {
	if s == "" {
		return 0, ErrEmptyQuantity
	}

	if digits, ok := strings.CutPrefix(s, "0x"); ok {
		if digits == "" {
			return 0, ErrEmptyQuantity
		}
		return strconv.ParseUint(digits, 16, 64)
	}

	return strconv.ParseUint(s, 10, 64)
}

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
