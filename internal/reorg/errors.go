package reorg

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrReorgTooDeep is returned when no common ancestor is found within the configured depth.
var ErrReorgTooDeep = errors.New("reorg deeper than max reorg depth")

// ReorgDetectedError reports a stored block that is no longer part of the upstream chain.
type ReorgDetectedError struct {
	Block  uint64
	Stored common.Hash
	Reason string
}

func (e *ReorgDetectedError) Error() string {
	return fmt.Sprintf("reorg detected at block %d (stored %s): %s", e.Block, e.Stored.Hex(), e.Reason)
}

// NewReorgError creates a new ReorgDetectedError.
func NewReorgError(block uint64, stored common.Hash, reason string) error {
	return &ReorgDetectedError{
		Block:  block,
		Stored: stored,
		Reason: reason,
	}
}
