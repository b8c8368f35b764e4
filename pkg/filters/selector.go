package filters

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goran-ethernal/FilterHub/internal/common"
)

// SelectorKind tells which block a BlockSelector refers to.
type SelectorKind uint8

const (
	KindNumber SelectorKind = iota
	KindEarliest
	KindLatest
	KindPending
)

var errUnsupportedTag = errors.New("unsupported block tag")

// BlockSelector is either a block tag or an explicit block number.
type BlockSelector struct {
	Kind   SelectorKind
	Height uint64
}

func Earliest() BlockSelector { return BlockSelector{Kind: KindEarliest} }

func Latest() BlockSelector { return BlockSelector{Kind: KindLatest} }

func Pending() BlockSelector { return BlockSelector{Kind: KindPending} }

func Number(n uint64) BlockSelector { return BlockSelector{Kind: KindNumber, Height: n} }

// IsNumber reports whether the selector names an explicit height, and returns it.
func (s BlockSelector) IsNumber() (uint64, bool) {
	return s.Height, s.Kind == KindNumber
}

// Resolve turns the selector into a concrete height against the given head.
// Latest and Pending both resolve to the head.
func (s BlockSelector) Resolve(head uint64) uint64 {
	switch s.Kind {
	case KindEarliest:
		return 0
	case KindNumber:
		return s.Height
	default:
		return head
	}
}

func (s BlockSelector) String() string {
	switch s.Kind {
	case KindEarliest:
		return "earliest"
	case KindLatest:
		return "latest"
	case KindPending:
		return "pending"
	default:
		return fmt.Sprintf("0x%x", s.Height)
	}
}

// MarshalText encodes the selector as a tag or a hex quantity.
func (s BlockSelector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts "earliest", "latest", "pending", a 0x-prefixed hex quantity or a decimal number.
func (s *BlockSelector) UnmarshalText(text []byte) error {
	str := common.ToLowerWithTrim(string(text))

	switch str {
	case "earliest":
		*s = Earliest()
		return nil
	case "latest":
		*s = Latest()
		return nil
	case "pending":
		*s = Pending()
		return nil
	case "safe", "finalized":
		return fmt.Errorf("%w: %s", errUnsupportedTag, str)
	}

	n, err := common.ParseQuantity(str)
	if err != nil {
		return fmt.Errorf("invalid block selector %q: %w", string(text), err)
	}
	*s = Number(n)

	return nil
}

// UnmarshalJSON accepts the text forms as JSON strings and bare JSON numbers.
func (s *BlockSelector) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		return s.UnmarshalText([]byte(str))
	}

	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block selector %s: %w", string(data), err)
	}
	*s = Number(n)

	return nil
}
