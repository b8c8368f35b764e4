package follower

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	internalcommon "github.com/goran-ethernal/FilterHub/internal/common"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	internalreorg "github.com/goran-ethernal/FilterHub/internal/reorg"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/config"
	"github.com/goran-ethernal/FilterHub/pkg/reorg"
)

// Store is the writable side of the local chain store.
type Store interface {
	Bounds(ctx context.Context) (first, last uint64, ok bool, err error)
	InsertBlock(ctx context.Context, block *chain.Block, receipts []*types.Receipt) error
	Rewind(ctx context.Context, from uint64) (int64, error)
	PruneBelow(ctx context.Context, number uint64) (int64, error)
}

// Follower keeps the local chain store in sync with the upstream node.
type Follower struct {
	upstream  chain.Reader
	store     Store
	detector  reorg.Detector
	cfg       config.FollowerConfig
	retention *config.RetentionPolicyConfig
	log       *logger.Logger
}

// New creates a follower importing blocks from upstream into store.
func New(
	upstream chain.Reader,
	store Store,
	detector reorg.Detector,
	cfg config.FollowerConfig,
	retention *config.RetentionPolicyConfig,
	log *logger.Logger,
) *Follower {
	cfg.ApplyDefaults()

	return &Follower{
		upstream:  upstream,
		store:     store,
		detector:  detector,
		cfg:       cfg,
		retention: retention,
		log:       log.WithComponent(internalcommon.ComponentFollower),
	}
}

// Run imports blocks until ctx is cancelled. Iterations run back to back while the
// store is behind, and every poll interval once it caught up. Failed iterations are
// retried on the next tick, a reorg deeper than the configured depth stops the follower.
func (f *Follower) Run(ctx context.Context) error {
	f.log.Infof("Follower started - poll interval: %v, batch size: %d, backfill: %d, max reorg depth: %d",
		f.cfg.PollInterval.Duration, f.cfg.BatchSize, f.cfg.Backfill, f.cfg.MaxReorgDepth)

	ticker := time.NewTicker(f.cfg.PollInterval.Duration)
	defer ticker.Stop()

	for {
		caughtUp, err := f.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, internalreorg.ErrReorgTooDeep) {
				f.log.Errorf("Follower stopped: %v", err)
				return err
			}

			StepErrorInc()
			f.log.Warnf("Follower iteration failed: %v", err)
		}

		if err == nil && !caughtUp {
			if ctx.Err() != nil {
				break
			}
			continue
		}

		select {
		case <-ctx.Done():
			f.log.Info("Follower stopped")
			return nil
		case <-ticker.C:
		}
	}

	f.log.Info("Follower stopped")

	return nil
}

// step runs one import iteration and reports whether the store reached the upstream head.
func (f *Follower) step(ctx context.Context) (bool, error) {
	head, err := f.upstream.HeadHeader(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get upstream head: %w", err)
	}

	headNum := head.Number.Uint64()
	UpstreamHeadSet(headNum)

	_, last, ok, err := f.store.Bounds(ctx)
	if err != nil {
		return false, err
	}

	next := f.startBlock(headNum)
	if ok {
		if err := f.detector.VerifyStored(ctx, last); err != nil {
			return false, f.handleReorg(ctx, last, err)
		}
		next = last + 1
	}

	if next > headNum {
		return true, nil
	}

	end := min(headNum, next+f.cfg.BatchSize-1)

	for number := next; number <= end; number++ {
		block, err := f.upstream.BlockByNumber(ctx, number)
		if err != nil {
			return false, fmt.Errorf("failed to get block %d: %w", number, err)
		}
		if block == nil {
			// upstream head moved back, the next iteration sorts it out
			return false, nil
		}

		if err := f.detector.VerifyParent(ctx, block); err != nil {
			return false, f.handleReorg(ctx, number-1, err)
		}

		receipts, err := f.upstream.ReceiptsByHashes(ctx, number, block.TxHashes)
		if err != nil {
			return false, fmt.Errorf("failed to get receipts of block %d: %w", number, err)
		}

		if err := f.store.InsertBlock(ctx, block, receipts); err != nil {
			return false, err
		}

		BlockImportedLog(number)
	}

	f.log.Debugf("imported blocks - from: %d, to: %d, upstream head: %d", next, end, headNum)

	if err := f.applyRetention(ctx, end); err != nil {
		return false, err
	}

	return end == headNum, nil
}

// startBlock is where an empty store starts importing.
func (f *Follower) startBlock(head uint64) uint64 {
	if head < f.cfg.Backfill {
		return 0
	}
	return head - f.cfg.Backfill
}

// handleReorg discards the stored blocks replaced upstream, searching back from number.
func (f *Follower) handleReorg(ctx context.Context, number uint64, detected error) error {
	var reorgErr *internalreorg.ReorgDetectedError
	if !errors.As(detected, &reorgErr) {
		return detected
	}

	f.log.Warnf("Reorg detected, searching for fork point: %v", reorgErr)

	fork, err := f.detector.FindForkPoint(ctx, number)
	if err != nil {
		return err
	}

	removed, err := f.store.Rewind(ctx, fork)
	if err != nil {
		return err
	}

	var newHead uint64
	if fork > 0 {
		newHead = fork - 1
	}
	RewoundLog(removed, newHead)

	f.log.Infof("Rewound chain store - fork point: %d, removed blocks: %d", fork, removed)

	return nil
}

func (f *Follower) applyRetention(ctx context.Context, head uint64) error {
	if !f.retention.IsEnabled() || head+1 <= f.retention.MaxBlocks {
		return nil
	}

	_, err := f.store.PruneBelow(ctx, head+1-f.retention.MaxBlocks)

	return err
}
