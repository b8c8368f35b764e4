package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/config"
)

// Compile-time check to ensure Client implements chain.Reader interface.
var _ chain.Reader = (*Client)(nil)

// maxBatch is the largest number of calls sent in one JSON-RPC batch.
const maxBatch = 100

// Client reads chain data from an upstream Ethereum node.
// It implements the chain.Reader interface.
type Client struct {
	eth   *ethclient.Client
	rpc   *rpc.Client
	retry *config.RetryConfig
	log   *logger.Logger
}

// NewClient creates a new RPC client connected to the given endpoint.
// A nil retry config executes every call once.
func NewClient(ctx context.Context, endpoint string, retry *config.RetryConfig, log *logger.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	return NewClientFromRPC(rpcClient, retry, log), nil
}

// NewClientFromRPC wraps an already connected RPC client.
func NewClientFromRPC(rpcClient *rpc.Client, retry *config.RetryConfig, log *logger.Logger) *Client {
	return &Client{
		eth:   ethclient.NewClient(rpcClient),
		rpc:   rpcClient,
		retry: retry,
		log:   log,
	}
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.eth.Close()
}

// HeadHeader retrieves the latest block header.
func (c *Client) HeadHeader(ctx context.Context) (*types.Header, error) {
	var header *types.Header

	err := c.call(ctx, "eth_getBlockByNumber", func() error {
		var err error
		header, err = c.eth.HeaderByNumber(ctx, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return header, nil
}

// LatestBlock retrieves the latest block with its transaction hashes.
func (c *Client) LatestBlock(ctx context.Context) (*chain.Block, error) {
	return c.getBlock(ctx, "latest")
}

// BlockByNumber retrieves the block at the given height. It returns nil, nil
// when the upstream node does not know the block.
func (c *Client) BlockByNumber(ctx context.Context, number uint64) (*chain.Block, error) {
	return c.getBlock(ctx, toBlockNumArg(number))
}

// ReceiptsByHashes retrieves the receipts of the given transactions in batches.
// Receipts unknown to the upstream node are returned as nil entries.
func (c *Client) ReceiptsByHashes(ctx context.Context, _ uint64, txHashes []common.Hash) ([]*types.Receipt, error) {
	out := make([]*types.Receipt, 0, len(txHashes))

	for i := 0; i < len(txHashes); i += maxBatch {
		end := min(i+maxBatch, len(txHashes))
		chunk := txHashes[i:end]

		results := make([]*types.Receipt, len(chunk))
		ReceiptBatchObserve(len(chunk))

		err := c.call(ctx, "eth_getTransactionReceipt", func() error {
			batch := make([]rpc.BatchElem, len(chunk))
			for j, hash := range chunk {
				results[j] = nil
				batch[j] = rpc.BatchElem{
					Method: "eth_getTransactionReceipt",
					Args:   []any{hash},
					Result: &results[j],
				}
			}

			if err := c.rpc.BatchCallContext(ctx, batch); err != nil {
				return err
			}

			// Check for individual errors
			for _, elem := range batch {
				if elem.Error != nil {
					return elem.Error
				}
			}

			return nil
		})
		if err != nil {
			return nil, err
		}

		out = append(out, results...)
	}

	return out, nil
}

// rpcBlock holds the block fields not covered by the header encoding.
type rpcBlock struct {
	Hash         *common.Hash  `json:"hash"`
	Transactions []common.Hash `json:"transactions"`
}

var errMissingBlockHash = errors.New("block without hash")

func (c *Client) getBlock(ctx context.Context, arg string) (*chain.Block, error) {
	var raw json.RawMessage

	err := c.call(ctx, "eth_getBlockByNumber", func() error {
		// false = transaction hashes only
		return c.rpc.CallContext(ctx, &raw, "eth_getBlockByNumber", arg, false)
	})
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var header types.Header
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("failed to decode header of block %s: %w", arg, err)
	}

	var body rpcBlock
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode block %s: %w", arg, err)
	}
	if body.Hash == nil {
		return nil, fmt.Errorf("block %s: %w", arg, errMissingBlockHash)
	}

	return &chain.Block{
		Header:   &header,
		Hash:     *body.Hash,
		TxHashes: body.Transactions,
	}, nil
}

// call runs fn with the configured retry policy and records request metrics.
func (c *Client) call(ctx context.Context, method string, fn func() error) error {
	start := time.Now()
	err := retryWithBackoff(ctx, c.retry, method, c.log, fn)
	RequestLog(method, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	return nil
}

func errorType(err error) string {
	var rpcErr rpc.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rpcErr):
		return "rpc"
	default:
		return "transport"
	}
}

// toBlockNumArg converts a block number to hex format.
func toBlockNumArg(blockNum uint64) string {
	return fmt.Sprintf("0x%x", blockNum)
}
