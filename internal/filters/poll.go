package filters

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
)

// ErrBlockNotFound is returned when the backend has no block at a height below its head.
var ErrBlockNotFound = errors.New("block not found")

// pollBlocks returns the hashes of the blocks produced since the last poll in ascending
// order. Backend failures leave the filter untouched.
func (h *Hub) pollBlocks(ctx context.Context, w *blockWatch) (*filters.FilterResult, error) {
	latest, err := h.latestBlock(ctx)
	if err != nil {
		return nil, err
	}

	head := latest.Number()
	if w.lastSeen >= head {
		w.lastAccess = h.clock.Now()
		return filters.BlockHashes(nil), nil
	}

	hashes := make([]common.Hash, 0, head-w.lastSeen)
	for n := w.lastSeen + 1; n < head; n++ {
		block, err := h.blockByNumber(ctx, n)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, block.Hash)
	}
	hashes = append(hashes, latest.Hash)

	w.lastSeen = head
	w.lastAccess = h.clock.Now()

	return filters.BlockHashes(hashes), nil
}

// pollLogs scans the blocks between the filter cursor and the head and advances the cursor
// past them. The caller removes the filter when an error is returned.
func (h *Hub) pollLogs(ctx context.Context, w *logWatch) (*filters.FilterResult, error) {
	latest, err := h.latestBlock(ctx)
	if err != nil {
		return nil, err
	}

	head := latest.Number()
	start, end := scanRange(&w.criteria, head)

	if start > head || end < start {
		w.lastAccess = h.clock.Now()
		return filters.MatchedLogs(nil), nil
	}

	if end-start > h.cfg.LogMaxBlockRange {
		return nil, &filters.RangeTooLargeError{Start: start, End: end, Max: h.cfg.LogMaxBlockRange}
	}

	logs, err := h.collectLogs(ctx, &w.criteria, start, end, latest)
	if err != nil {
		return nil, err
	}

	next := filters.Number(end + 1)
	w.criteria.FromBlock = &next
	w.lastAccess = h.clock.Now()

	return filters.MatchedLogs(logs), nil
}

// scanRange resolves the filter bounds against the head. A missing upper bound means latest.
func scanRange(criteria *filters.LogCriteria, head uint64) (start, end uint64) {
	start = head
	if criteria.FromBlock != nil {
		start = criteria.FromBlock.Resolve(head)
	}

	end = head
	if criteria.ToBlock != nil {
		end = min(criteria.ToBlock.Resolve(head), head)
	}

	return start, end
}

func (h *Hub) collectLogs(
	ctx context.Context,
	criteria *filters.LogCriteria,
	start, end uint64,
	latest *chain.Block,
) ([]*types.Log, error) {
	var matched []*types.Log

	for n := start; n <= end; n++ {
		block := latest
		if n != latest.Number() {
			var err error
			if block, err = h.blockByNumber(ctx, n); err != nil {
				return nil, err
			}
		}

		if len(block.TxHashes) == 0 {
			continue
		}

		receipts, err := h.receipts(ctx, n, block.TxHashes)
		if err != nil {
			return nil, err
		}

		for i, receipt := range receipts {
			if receipt == nil {
				continue
			}
			for _, log := range receipt.Logs {
				if !Matches(criteria, log) {
					continue
				}
				matched = append(matched, withBlockContext(log, block, block.TxHashes[i], uint(i)))
			}
		}
	}

	return matched, nil
}

// withBlockContext copies the log and stamps it with the block it was found in.
func withBlockContext(log *types.Log, block *chain.Block, txHash common.Hash, txIndex uint) *types.Log {
	out := *log
	out.BlockNumber = block.Number()
	out.BlockHash = block.Hash
	out.TxHash = txHash
	out.TxIndex = txIndex
	out.BlockTimestamp = block.Header.Time
	out.Removed = false
	if out.Topics == nil {
		out.Topics = []common.Hash{}
	}

	return &out
}

func (h *Hub) headNumber(ctx context.Context) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.cfg.BackendTimeout.Duration)
	defer cancel()

	header, err := h.reader.HeadHeader(callCtx)
	if err != nil {
		return 0, filters.NewBackendError("head header", err)
	}
	if header == nil || header.Number == nil {
		return 0, filters.NewBackendError("head header", ErrBlockNotFound)
	}

	return header.Number.Uint64(), nil
}

func (h *Hub) latestBlock(ctx context.Context) (*chain.Block, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.cfg.BackendTimeout.Duration)
	defer cancel()

	block, err := h.reader.LatestBlock(callCtx)
	if err != nil {
		return nil, filters.NewBackendError("latest block", err)
	}
	if block == nil {
		return nil, filters.NewBackendError("latest block", ErrBlockNotFound)
	}

	return block, nil
}

func (h *Hub) blockByNumber(ctx context.Context, n uint64) (*chain.Block, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.cfg.BackendTimeout.Duration)
	defer cancel()

	block, err := h.reader.BlockByNumber(callCtx, n)
	if err != nil {
		return nil, filters.NewBackendError(fmt.Sprintf("block %d", n), err)
	}
	if block == nil {
		return nil, filters.NewBackendError(fmt.Sprintf("block %d", n), ErrBlockNotFound)
	}

	return block, nil
}

func (h *Hub) receipts(ctx context.Context, n uint64, txHashes []common.Hash) ([]*types.Receipt, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.cfg.BackendTimeout.Duration)
	defer cancel()

	receipts, err := h.reader.ReceiptsByHashes(callCtx, n, txHashes)
	if err != nil {
		return nil, filters.NewBackendError(fmt.Sprintf("receipts of block %d", n), err)
	}
	if len(receipts) != len(txHashes) {
		return nil, filters.NewBackendError(fmt.Sprintf("receipts of block %d", n),
			fmt.Errorf("expected %d receipts, got %d", len(txHashes), len(receipts)))
	}

	return receipts, nil
}
