package filters

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// ID identifies an installed filter. Block and log filters share one ID space.
type ID struct {
	v uint256.Int
}

// NewID draws a random 256-bit filter ID. Collisions are not checked.
func NewID() (ID, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ID{}, fmt.Errorf("failed to generate filter id: %w", err)
	}

	var id ID
	id.v.SetBytes32(buf[:])

	return id, nil
}

// IDFromUint64 builds an ID from a small number.
func IDFromUint64(n uint64) ID {
	var id ID
	id.v.SetUint64(n)
	return id
}

// ParseID parses a 0x-prefixed hex quantity. Leading zeros are tolerated.
func ParseID(s string) (ID, error) {
	var id ID
	if err := id.UnmarshalText([]byte(s)); err != nil {
		return ID{}, err
	}
	return id, nil
}

// String returns the ID as a hex quantity.
func (id ID) String() string {
	return id.v.Hex()
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.v.Hex()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if len(s) < 2 || (s[:2] != "0x" && s[:2] != "0X") {
		return fmt.Errorf("invalid filter id %q: missing 0x prefix", s)
	}

	digits := strings.TrimLeft(s[2:], "0")
	if digits == "" && len(s) > 2 {
		digits = "0"
	}

	if err := id.v.SetFromHex("0x" + digits); err != nil {
		return fmt.Errorf("invalid filter id %q: %w", s, err)
	}

	return nil
}
