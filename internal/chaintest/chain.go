// Package chaintest provides an in-memory chain.Reader for tests.
package chaintest

import (
	"context"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
)

var _ chain.Reader = (*Chain)(nil)

// Chain is a growable in-memory chain. Every transaction gets a receipt carrying the
// logs it was mined with.
type Chain struct {
	mu       sync.RWMutex
	blocks   []*chain.Block
	receipts map[common.Hash]*types.Receipt
	salt     uint64
}

// New creates a chain holding only a genesis block.
func New() *Chain {
	c := &Chain{receipts: make(map[common.Hash]*types.Receipt)}
	c.Mine()

	return c
}

// NewWithHead creates a chain of empty blocks whose head is at the given height.
func NewWithHead(head uint64) *Chain {
	c := New()
	c.MineEmpty(int(head))

	return c
}

// Mine appends one block with a transaction per entry in txLogs and returns it.
// The logs are copied, their address and topics are kept as given.
func (c *Chain) Mine(txLogs ...[]*types.Log) *chain.Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	number := uint64(len(c.blocks))
	header := &types.Header{
		Number:     new(big.Int).SetUint64(number),
		Time:       number * 12, //nolint:mnd
		Extra:      binary.BigEndian.AppendUint64(nil, c.salt),
		Difficulty: big.NewInt(0),
	}
	if number > 0 {
		header.ParentHash = c.blocks[number-1].Hash
	}

	block := &chain.Block{Header: header, Hash: header.Hash()}

	var logIndex uint
	for i, logs := range txLogs {
		txHash := crypto.Keccak256Hash(block.Hash.Bytes(), binary.BigEndian.AppendUint64(nil, uint64(i)))
		block.TxHashes = append(block.TxHashes, txHash)

		receipt := &types.Receipt{
			Status:           types.ReceiptStatusSuccessful,
			TxHash:           txHash,
			BlockHash:        block.Hash,
			BlockNumber:      new(big.Int).SetUint64(number),
			TransactionIndex: uint(i),
		}
		for _, l := range logs {
			cp := *l
			cp.BlockNumber = number
			cp.BlockHash = block.Hash
			cp.TxHash = txHash
			cp.TxIndex = uint(i)
			cp.Index = logIndex
			logIndex++
			receipt.Logs = append(receipt.Logs, &cp)
		}
		c.receipts[txHash] = receipt
	}

	c.blocks = append(c.blocks, block)

	return block
}

// MineEmpty appends n blocks without transactions.
func (c *Chain) MineEmpty(n int) {
	for range n {
		c.Mine()
	}
}

// Rewind drops every block from the given height on. Blocks mined afterwards get
// different hashes than the dropped ones.
func (c *Chain) Rewind(from uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if from >= uint64(len(c.blocks)) {
		return
	}
	for _, b := range c.blocks[from:] {
		for _, tx := range b.TxHashes {
			delete(c.receipts, tx)
		}
	}
	c.blocks = c.blocks[:from]
	c.salt++
}

// Head returns the current head height.
func (c *Chain) Head() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return uint64(len(c.blocks) - 1)
}

// Block returns the block at the given height, or nil.
func (c *Chain) Block(number uint64) *chain.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if number >= uint64(len(c.blocks)) {
		return nil
	}
	return c.blocks[number]
}

// Receipts returns the receipts of the block at the given height.
func (c *Chain) Receipts(number uint64) []*types.Receipt {
	block := c.Block(number)
	if block == nil {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*types.Receipt, 0, len(block.TxHashes))
	for _, tx := range block.TxHashes {
		out = append(out, c.receipts[tx])
	}
	return out
}

// Receipt returns the receipt of the given transaction, or nil.
func (c *Chain) Receipt(txHash common.Hash) *types.Receipt {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.receipts[txHash]
}

func (c *Chain) HeadHeader(_ context.Context) (*types.Header, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1].Header, nil
}

func (c *Chain) LatestBlock(_ context.Context) (*chain.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1], nil
}

func (c *Chain) BlockByNumber(_ context.Context, number uint64) (*chain.Block, error) {
	return c.Block(number), nil
}

func (c *Chain) ReceiptsByHashes(_ context.Context, _ uint64, txHashes []common.Hash) ([]*types.Receipt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*types.Receipt, len(txHashes))
	for i, tx := range txHashes {
		out[i] = c.receipts[tx]
	}
	return out, nil
}

// Log builds a log emitted by address with the given topics.
func Log(address common.Address, topics ...common.Hash) *types.Log {
	return &types.Log{Address: address, Topics: topics, Data: []byte{0x01}}
}
