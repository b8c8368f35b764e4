package reorg

import (
	"context"

	"github.com/goran-ethernal/FilterHub/pkg/chain"
)

// Detector checks locally stored blocks against the upstream chain.
type Detector interface {
	// VerifyParent checks that block extends the stored block below it.
	// It returns a *ReorgDetectedError when it does not.
	VerifyParent(ctx context.Context, block *chain.Block) error

	// VerifyStored checks that the stored block at number is still canonical upstream.
	VerifyStored(ctx context.Context, number uint64) error

	// FindForkPoint walks back from number and returns the lowest height whose stored
	// block is no longer canonical. Everything from that height on has to be discarded.
	FindForkPoint(ctx context.Context, number uint64) (uint64, error)
}
