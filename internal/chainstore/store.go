package chainstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	internalcommon "github.com/goran-ethernal/FilterHub/internal/common"
	"github.com/goran-ethernal/FilterHub/internal/chainstore/migrations"
	"github.com/goran-ethernal/FilterHub/internal/db"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/config"
	"github.com/russross/meddler"
)

// Compile-time check to ensure Store implements chain.Reader interface.
var _ chain.Reader = (*Store)(nil)

var (
	// ErrEmptyStore is returned by head queries before the first block is imported.
	ErrEmptyStore = errors.New("chain store is empty")
	// ErrIncompleteBlock is returned when a block is inserted without all of its receipts.
	ErrIncompleteBlock = errors.New("block receipts incomplete")
)

// Store is a SQLite backed chain store holding blocks, transaction hashes, receipts and logs.
type Store struct {
	db          *sql.DB
	log         *logger.Logger
	maintenance db.Maintenance
}

// Open opens the store database, applies the schema and prepares maintenance.
func Open(cfg config.DatabaseConfig, maintenanceCfg *config.MaintenanceConfig, log *logger.Logger) (*Store, error) {
	cfg.ApplyDefaults()

	database, err := db.NewSQLiteDBFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return New(database, db.NewMaintenanceCoordinator(cfg.Path, database, maintenanceCfg, log), log), nil
}

// New wraps an already migrated database.
func New(database *sql.DB, maintenance db.Maintenance, log *logger.Logger) *Store {
	if maintenance == nil {
		maintenance = &db.NoOpMaintenance{}
	}

	return &Store{
		db:          database,
		log:         log.WithComponent(internalcommon.ComponentChainStore),
		maintenance: maintenance,
	}
}

// Start starts background database maintenance.
func (s *Store) Start(ctx context.Context) error {
	return s.maintenance.Start(ctx)
}

// Close stops maintenance and closes the database.
func (s *Store) Close() error {
	if err := s.maintenance.Stop(); err != nil {
		s.log.Warnf("failed to stop maintenance: %v", err)
	}

	return s.db.Close()
}

type blockRow struct {
	Number     uint64      `meddler:"number"`
	Hash       common.Hash `meddler:"hash,hash"`
	ParentHash common.Hash `meddler:"parent_hash,hash"`
	Header     []byte      `meddler:"header"`
}

type txRow struct {
	BlockNumber uint64      `meddler:"block_number"`
	TxIndex     uint        `meddler:"tx_index"`
	TxHash      common.Hash `meddler:"tx_hash,hash"`
}

type receiptRow struct {
	TxHash            common.Hash     `meddler:"tx_hash,hash"`
	BlockNumber       uint64          `meddler:"block_number"`
	TxIndex           uint            `meddler:"tx_index"`
	TxType            uint8           `meddler:"tx_type"`
	Status            uint64          `meddler:"status"`
	CumulativeGasUsed uint64          `meddler:"cumulative_gas_used"`
	GasUsed           uint64          `meddler:"gas_used"`
	ContractAddress   *common.Address `meddler:"contract_address,address"`
}

type logRow struct {
	BlockNumber uint64         `meddler:"block_number"`
	LogIndex    uint           `meddler:"log_index"`
	TxHash      common.Hash    `meddler:"tx_hash,hash"`
	TxIndex     uint           `meddler:"tx_index"`
	Address     common.Address `meddler:"address,address"`
	Topic0      *common.Hash   `meddler:"topic0,hash"`
	Topic1      *common.Hash   `meddler:"topic1,hash"`
	Topic2      *common.Hash   `meddler:"topic2,hash"`
	Topic3      *common.Hash   `meddler:"topic3,hash"`
	Data        []byte         `meddler:"data"`
}

func (r *logRow) topics() []common.Hash {
	out := make([]common.Hash, 0, 4)
	for _, t := range []*common.Hash{r.Topic0, r.Topic1, r.Topic2, r.Topic3} {
		if t == nil {
			break
		}
		out = append(out, *t)
	}
	return out
}

func (r *logRow) setTopics(topics []common.Hash) {
	slots := []**common.Hash{&r.Topic0, &r.Topic1, &r.Topic2, &r.Topic3}
	for i := range min(len(topics), len(slots)) {
		topic := topics[i]
		*slots[i] = &topic
	}
}

// HeadHeader returns the header of the highest stored block.
func (s *Store) HeadHeader(ctx context.Context) (*types.Header, error) {
	defer observe("head_header", time.Now())

	row, err := s.headRow(ctx)
	if err != nil {
		return nil, err
	}

	return decodeHeader(row)
}

// LatestBlock returns the highest stored block.
func (s *Store) LatestBlock(ctx context.Context) (*chain.Block, error) {
	defer observe("latest_block", time.Now())

	row, err := s.headRow(ctx)
	if err != nil {
		return nil, err
	}

	return s.toBlock(ctx, row)
}

// BlockByNumber returns the stored block at the given height, or nil when the
// height is not stored.
func (s *Store) BlockByNumber(ctx context.Context, number uint64) (*chain.Block, error) {
	defer observe("block_by_number", time.Now())

	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	row, err := s.queryBlock(ctx, "SELECT * FROM blocks WHERE number = ?", number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return s.toBlock(ctx, row)
}

// ReceiptsByHashes returns the receipts of the given transactions of block number,
// in the requested order. Unknown transactions yield nil entries.
func (s *Store) ReceiptsByHashes(ctx context.Context, number uint64, txHashes []common.Hash) ([]*types.Receipt, error) {
	defer observe("receipts", time.Now())

	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	block, err := s.queryBlock(ctx, "SELECT * FROM blocks WHERE number = ?", number)
	if errors.Is(err, sql.ErrNoRows) {
		return make([]*types.Receipt, len(txHashes)), nil
	}
	if err != nil {
		return nil, err
	}

	var receiptRows []*receiptRow
	if err := s.queryAll(ctx, &receiptRows,
		"SELECT * FROM receipts WHERE block_number = ? ORDER BY tx_index", number); err != nil {
		return nil, fmt.Errorf("failed to query receipts of block %d: %w", number, err)
	}

	var logRows []*logRow
	if err := s.queryAll(ctx, &logRows,
		"SELECT * FROM logs WHERE block_number = ? ORDER BY log_index", number); err != nil {
		return nil, fmt.Errorf("failed to query logs of block %d: %w", number, err)
	}

	byHash := make(map[common.Hash]*types.Receipt, len(receiptRows))
	for _, r := range receiptRows {
		receipt := &types.Receipt{
			Type:              r.TxType,
			Status:            r.Status,
			CumulativeGasUsed: r.CumulativeGasUsed,
			GasUsed:           r.GasUsed,
			TxHash:            r.TxHash,
			BlockHash:         block.Hash,
			BlockNumber:       new(big.Int).SetUint64(number),
			TransactionIndex:  r.TxIndex,
			Logs:              []*types.Log{},
		}
		if r.ContractAddress != nil {
			receipt.ContractAddress = *r.ContractAddress
		}
		byHash[r.TxHash] = receipt
	}

	for _, l := range logRows {
		receipt, ok := byHash[l.TxHash]
		if !ok {
			continue
		}
		receipt.Logs = append(receipt.Logs, &types.Log{
			Address:     l.Address,
			Topics:      l.topics(),
			Data:        l.Data,
			BlockNumber: number,
			TxHash:      l.TxHash,
			TxIndex:     l.TxIndex,
			BlockHash:   block.Hash,
			Index:       l.LogIndex,
		})
	}

	out := make([]*types.Receipt, len(txHashes))
	for i, hash := range txHashes {
		out[i] = byHash[hash]
	}

	return out, nil
}

// BlockHash returns the hash stored for the given height.
func (s *Store) BlockHash(ctx context.Context, number uint64) (common.Hash, bool, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	row, err := s.queryBlock(ctx, "SELECT * FROM blocks WHERE number = ?", number)
	if errors.Is(err, sql.ErrNoRows) {
		return common.Hash{}, false, nil
	}
	if err != nil {
		return common.Hash{}, false, err
	}

	return row.Hash, true, nil
}

// Bounds returns the lowest and highest stored heights. ok is false for an empty store.
func (s *Store) Bounds(ctx context.Context) (first, last uint64, ok bool, err error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	var lo, hi sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MIN(number), MAX(number) FROM blocks").Scan(&lo, &hi); err != nil {
		return 0, 0, false, fmt.Errorf("failed to query block bounds: %w", err)
	}
	if !lo.Valid || !hi.Valid {
		return 0, 0, false, nil
	}

	return uint64(lo.Int64), uint64(hi.Int64), true, nil
}

// InsertBlock stores a block with the receipts of all its transactions, in transaction order.
func (s *Store) InsertBlock(ctx context.Context, block *chain.Block, receipts []*types.Receipt) error {
	defer observe("insert_block", time.Now())

	number := block.Number()
	if len(receipts) != len(block.TxHashes) {
		return fmt.Errorf("block %d: %w: %d transactions, %d receipts",
			number, ErrIncompleteBlock, len(block.TxHashes), len(receipts))
	}

	header, err := rlp.EncodeToBytes(block.Header)
	if err != nil {
		return fmt.Errorf("failed to encode header of block %d: %w", number, err)
	}

	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := meddler.Insert(tx, "blocks", &blockRow{
			Number:     number,
			Hash:       block.Hash,
			ParentHash: block.Header.ParentHash,
			Header:     header,
		}); err != nil {
			return fmt.Errorf("failed to insert block %d: %w", number, err)
		}

		for i, txHash := range block.TxHashes {
			receipt := receipts[i]
			if receipt == nil {
				return fmt.Errorf("block %d: %w: missing receipt for %s", number, ErrIncompleteBlock, txHash.Hex())
			}

			if err := meddler.Insert(tx, "transactions", &txRow{
				BlockNumber: number,
				TxIndex:     uint(i),
				TxHash:      txHash,
			}); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", txHash.Hex(), err)
			}

			if err := insertReceipt(tx, number, uint(i), txHash, receipt); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	BlockInsertedInc(len(block.TxHashes))

	return nil
}

func insertReceipt(tx *sql.Tx, number uint64, txIndex uint, txHash common.Hash, receipt *types.Receipt) error {
	row := &receiptRow{
		TxHash:            txHash,
		BlockNumber:       number,
		TxIndex:           txIndex,
		TxType:            receipt.Type,
		Status:            receipt.Status,
		CumulativeGasUsed: receipt.CumulativeGasUsed,
		GasUsed:           receipt.GasUsed,
	}
	if receipt.ContractAddress != (common.Address{}) {
		addr := receipt.ContractAddress
		row.ContractAddress = &addr
	}

	if err := meddler.Insert(tx, "receipts", row); err != nil {
		return fmt.Errorf("failed to insert receipt %s: %w", txHash.Hex(), err)
	}

	for _, l := range receipt.Logs {
		lr := &logRow{
			BlockNumber: number,
			LogIndex:    l.Index,
			TxHash:      txHash,
			TxIndex:     txIndex,
			Address:     l.Address,
			Data:        l.Data,
		}
		lr.setTopics(l.Topics)

		if err := meddler.Insert(tx, "logs", lr); err != nil {
			return fmt.Errorf("failed to insert log %d of block %d: %w", l.Index, number, err)
		}
	}

	return nil
}

// Rewind removes every block at or above the given height and returns how many were removed.
func (s *Store) Rewind(ctx context.Context, from uint64) (int64, error) {
	removed, err := s.deleteBlocks(ctx, "number >= ?", "block_number >= ?", from)
	if err != nil {
		return 0, fmt.Errorf("failed to rewind to block %d: %w", from, err)
	}

	BlocksRemovedAdd("rewind", removed)
	s.log.Debugf("rewound chain store - from: %d, removed: %d", from, removed)

	return removed, nil
}

// PruneBelow removes every block below the given height and returns how many were removed.
func (s *Store) PruneBelow(ctx context.Context, number uint64) (int64, error) {
	removed, err := s.deleteBlocks(ctx, "number < ?", "block_number < ?", number)
	if err != nil {
		return 0, fmt.Errorf("failed to prune below block %d: %w", number, err)
	}

	BlocksRemovedAdd("prune", removed)
	if removed > 0 {
		s.log.Debugf("pruned chain store - below: %d, removed: %d", number, removed)
	}

	return removed, nil
}

func (s *Store) deleteBlocks(ctx context.Context, blockCond, childCond string, number uint64) (int64, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	var removed int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"logs", "receipts", "transactions"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+childCond, number); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM blocks WHERE "+blockCond, number)
		if err != nil {
			return fmt.Errorf("failed to delete blocks: %w", err)
		}

		removed, err = res.RowsAffected()
		return err
	})

	return removed, err
}

func (s *Store) headRow(ctx context.Context) (*blockRow, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	row, err := s.queryBlock(ctx, "SELECT * FROM blocks ORDER BY number DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyStore
	}

	return row, err
}

func (s *Store) toBlock(ctx context.Context, row *blockRow) (*chain.Block, error) {
	header, err := decodeHeader(row)
	if err != nil {
		return nil, err
	}

	var txs []*txRow
	if err := s.queryAll(ctx, &txs,
		"SELECT * FROM transactions WHERE block_number = ? ORDER BY tx_index", row.Number); err != nil {
		return nil, fmt.Errorf("failed to query transactions of block %d: %w", row.Number, err)
	}

	hashes := make([]common.Hash, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.TxHash
	}

	return &chain.Block{Header: header, Hash: row.Hash, TxHashes: hashes}, nil
}

func (s *Store) queryBlock(ctx context.Context, query string, args ...any) (*blockRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query block: %w", err)
	}

	var row blockRow
	if err := meddler.ScanRow(rows, &row); err != nil {
		return nil, err
	}

	return &row, nil
}

func (s *Store) queryAll(ctx context.Context, dst any, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return meddler.ScanAll(rows, dst)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Errorf("failed to rollback transaction: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func decodeHeader(row *blockRow) (*types.Header, error) {
	var header types.Header
	if err := rlp.DecodeBytes(row.Header, &header); err != nil {
		return nil, fmt.Errorf("failed to decode header of block %d: %w", row.Number, err)
	}

	return &header, nil
}
