package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Block is the part of a block the filter hub needs: its header, the hash reported
// by the backend and the ordered hashes of its transactions.
type Block struct {
	Header   *types.Header
	Hash     common.Hash
	TxHashes []common.Hash
}

// Number returns the block height.
func (b *Block) Number() uint64 {
	return b.Header.Number.Uint64()
}

// Reader is a read-only view over chain data.
type Reader interface {
	// HeadHeader returns the header of the most recent block.
	HeadHeader(ctx context.Context) (*types.Header, error)

	// LatestBlock returns the most recent block.
	LatestBlock(ctx context.Context) (*Block, error)

	// BlockByNumber returns the block at the given height, or nil when the backend does not know it.
	BlockByNumber(ctx context.Context, number uint64) (*Block, error)

	// ReceiptsByHashes returns receipts for the given transactions of block number, in the same order.
	// Entries for unknown transactions are nil.
	ReceiptsByHashes(ctx context.Context, number uint64, txHashes []common.Hash) ([]*types.Receipt, error)
}
