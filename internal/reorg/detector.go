package reorg

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/reorg"
)

var _ reorg.Detector = (*ReorgDetector)(nil)

// HashStore gives access to the hashes of locally stored blocks.
type HashStore interface {
	BlockHash(ctx context.Context, number uint64) (common.Hash, bool, error)
}

// ReorgDetector detects blockchain reorganizations by comparing stored block hashes
// with the upstream chain.
type ReorgDetector struct {
	store    HashStore
	upstream chain.Reader
	maxDepth uint64
	log      *logger.Logger
}

// NewReorgDetector creates a detector that walks back at most maxDepth blocks.
func NewReorgDetector(store HashStore, upstream chain.Reader, maxDepth uint64, log *logger.Logger) *ReorgDetector {
	return &ReorgDetector{
		store:    store,
		upstream: upstream,
		maxDepth: maxDepth,
		log:      log,
	}
}

// VerifyParent checks block's parent hash against the stored predecessor. Blocks
// without a stored predecessor pass.
func (r *ReorgDetector) VerifyParent(ctx context.Context, block *chain.Block) error {
	number := block.Number()
	if number == 0 {
		return nil
	}

	stored, found, err := r.store.BlockHash(ctx, number-1)
	if err != nil {
		return fmt.Errorf("failed to get stored hash of block %d: %w", number-1, err)
	}
	if !found {
		return nil
	}

	reorged := stored != block.Header.ParentHash
	reorgCheckInc(checkParent, reorged)
	if !reorged {
		return nil
	}

	r.log.Warnf("chain discontinuity detected: block=%d expected_parent=%s actual_parent=%s",
		number,
		stored.Hex(),
		block.Header.ParentHash.Hex(),
	)

	return NewReorgError(number-1, stored,
		fmt.Sprintf("block %d has parent %s", number, block.Header.ParentHash.Hex()))
}

// VerifyStored checks that the stored block at number is still the upstream block at that height.
func (r *ReorgDetector) VerifyStored(ctx context.Context, number uint64) error {
	stored, found, err := r.store.BlockHash(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to get stored hash of block %d: %w", number, err)
	}
	if !found {
		return nil
	}

	canonical, err := r.matchesUpstream(ctx, number, stored)
	if err != nil {
		return err
	}
	reorgCheckInc(checkStored, !canonical)
	if canonical {
		return nil
	}

	return NewReorgError(number, stored, "replaced upstream")
}

// FindForkPoint walks back from number until the stored hash matches upstream again and
// returns the height right above the common ancestor. It fails with ErrReorgTooDeep when
// no ancestor is found within maxDepth blocks.
func (r *ReorgDetector) FindForkPoint(ctx context.Context, number uint64) (uint64, error) {
	var depth uint64

	for height := number; ; height-- {
		canonical, err := r.canonical(ctx, height)
		if err != nil {
			return 0, err
		}
		if canonical {
			r.report(depth, height+1)
			return height + 1, nil
		}

		depth++
		if depth > r.maxDepth {
			return 0, fmt.Errorf("%w: no common ancestor within %d blocks below %d",
				ErrReorgTooDeep, r.maxDepth, number)
		}

		if height == 0 {
			r.report(depth, 0)
			return 0, nil
		}
	}
}

func (r *ReorgDetector) report(depth, from uint64) {
	if depth == 0 {
		return
	}

	r.log.Warnf("reorg detected: depth=%d first_replaced_block=%d", depth, from)
	ReorgDetectedLog(depth, from)
}

// canonical reports whether the stored block at number matches upstream. Heights the
// store does not hold count as canonical, there is nothing to discard there.
func (r *ReorgDetector) canonical(ctx context.Context, number uint64) (bool, error) {
	stored, found, err := r.store.BlockHash(ctx, number)
	if err != nil {
		return false, fmt.Errorf("failed to get stored hash of block %d: %w", number, err)
	}
	if !found {
		return true, nil
	}

	return r.matchesUpstream(ctx, number, stored)
}

func (r *ReorgDetector) matchesUpstream(ctx context.Context, number uint64, stored common.Hash) (bool, error) {
	block, err := r.upstream.BlockByNumber(ctx, number)
	if err != nil {
		return false, fmt.Errorf("failed to get upstream block %d: %w", number, err)
	}
	if block == nil {
		return false, nil
	}

	if block.Hash != stored {
		r.log.Debugf("hash mismatch: block=%d stored_hash=%s current_hash=%s",
			number, stored.Hex(), block.Hash.Hex())
		return false, nil
	}

	return true, nil
}
