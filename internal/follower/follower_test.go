package follower

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/FilterHub/internal/chainstore"
	"github.com/goran-ethernal/FilterHub/internal/chaintest"
	internalcommon "github.com/goran-ethernal/FilterHub/internal/common"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	internalreorg "github.com/goran-ethernal/FilterHub/internal/reorg"
	chainmocks "github.com/goran-ethernal/FilterHub/pkg/chain/mocks"
	"github.com/goran-ethernal/FilterHub/pkg/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *chainstore.Store {
	t.Helper()

	store, err := chainstore.Open(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "chain.db"),
	}, nil, logger.NewNopLogger())
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })

	return store
}

func newTestFollower(
	t *testing.T,
	c *chaintest.Chain,
	cfg config.FollowerConfig,
	retention *config.RetentionPolicyConfig,
) (*Follower, *chainstore.Store) {
	t.Helper()

	cfg.ApplyDefaults()

	store := newTestStore(t)
	detector := internalreorg.NewReorgDetector(store, c, cfg.MaxReorgDepth, logger.NewNopLogger())

	return New(c, store, detector, cfg, retention, logger.NewNopLogger()), store
}

// syncAll steps until the store caught up with the upstream head.
func syncAll(t *testing.T, f *Follower) {
	t.Helper()

	for range 100 {
		caughtUp, err := f.step(context.Background())
		require.NoError(t, err)
		if caughtUp {
			return
		}
	}
	t.Fatal("follower did not catch up")
}

// requireSynced checks every stored block against the upstream chain.
func requireSynced(t *testing.T, store *chainstore.Store, c *chaintest.Chain, first uint64) {
	t.Helper()

	ctx := context.Background()

	lo, hi, ok, err := store.Bounds(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first, lo)
	require.Equal(t, c.Head(), hi)

	for n := lo; n <= hi; n++ {
		hash, found, err := store.BlockHash(ctx, n)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, c.Block(n).Hash, hash, "block %d", n)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	f, _ := newTestFollower(t, chaintest.New(), config.FollowerConfig{}, nil)

	require.Equal(t, uint64(100), f.cfg.BatchSize)
	require.Equal(t, uint64(256), f.cfg.Backfill)
	require.Equal(t, 2*time.Second, f.cfg.PollInterval.Duration)
	require.Equal(t, internalcommon.ComponentFollower, f.log.GetComponent())
}

func TestFollower_Backfill(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		head     uint64
		backfill uint64
		first    uint64
	}{
		{name: "long chain", head: 20, backfill: 5, first: 15},
		{name: "short chain", head: 3, backfill: 5, first: 0},
		{name: "exact", head: 5, backfill: 5, first: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := chaintest.NewWithHead(tt.head)
			f, store := newTestFollower(t, c, config.FollowerConfig{BatchSize: 2, Backfill: tt.backfill}, nil)

			caughtUp, err := f.step(context.Background())
			require.NoError(t, err)
			require.False(t, caughtUp)

			syncAll(t, f)
			requireSynced(t, store, c, tt.first)
		})
	}
}

func TestFollower_ImportsReceipts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	addr := common.HexToAddress("0xa1")

	c := chaintest.New()
	mined := c.Mine(
		[]*types.Log{chaintest.Log(addr, common.HexToHash("0x01"))},
		[]*types.Log{},
	)

	f, store := newTestFollower(t, c, config.FollowerConfig{}, nil)
	syncAll(t, f)

	receipts, err := store.ReceiptsByHashes(ctx, 1, mined.TxHashes)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	require.Len(t, receipts[0].Logs, 1)
	require.Equal(t, addr, receipts[0].Logs[0].Address)
	require.Empty(t, receipts[1].Logs)

	// nothing new upstream
	caughtUp, err := f.step(ctx)
	require.NoError(t, err)
	require.True(t, caughtUp)
}

func TestFollower_Reorg(t *testing.T) {
	t.Parallel()

	t.Run("replaced tip", func(t *testing.T) {
		t.Parallel()

		c := chaintest.NewWithHead(10)
		f, store := newTestFollower(t, c, config.FollowerConfig{MaxReorgDepth: 5}, nil)
		syncAll(t, f)

		c.Rewind(8)
		c.MineEmpty(4)

		syncAll(t, f)
		requireSynced(t, store, c, 0)
	})

	t.Run("shorter chain", func(t *testing.T) {
		t.Parallel()

		c := chaintest.NewWithHead(10)
		f, store := newTestFollower(t, c, config.FollowerConfig{MaxReorgDepth: 5}, nil)
		syncAll(t, f)

		c.Rewind(9)
		c.MineEmpty(1)

		syncAll(t, f)
		requireSynced(t, store, c, 0)
	})

	t.Run("reorg during batch", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := chaintest.NewWithHead(10)
		f, store := newTestFollower(t, c, config.FollowerConfig{MaxReorgDepth: 5}, nil)
		syncAll(t, f)

		// block 11 builds on a replaced block 10 the store still holds
		c.Rewind(10)
		c.MineEmpty(2)

		detected := f.detector.VerifyParent(ctx, c.Block(11))
		require.Error(t, detected)

		require.NoError(t, f.handleReorg(ctx, 10, detected))

		_, last, _, err := store.Bounds(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(9), last)

		syncAll(t, f)
		requireSynced(t, store, c, 0)
	})

	t.Run("too deep", func(t *testing.T) {
		t.Parallel()

		c := chaintest.NewWithHead(10)
		f, _ := newTestFollower(t, c, config.FollowerConfig{MaxReorgDepth: 2}, nil)
		syncAll(t, f)

		c.Rewind(7)
		c.MineEmpty(5)

		_, err := f.step(context.Background())
		require.ErrorIs(t, err, internalreorg.ErrReorgTooDeep)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.ErrorIs(t, f.Run(ctx), internalreorg.ErrReorgTooDeep)
	})
}

func TestFollower_Retention(t *testing.T) {
	t.Parallel()

	c := chaintest.NewWithHead(10)
	f, store := newTestFollower(t, c,
		config.FollowerConfig{BatchSize: 3}, &config.RetentionPolicyConfig{MaxBlocks: 4})

	syncAll(t, f)
	requireSynced(t, store, c, 7)

	c.MineEmpty(2)
	syncAll(t, f)
	requireSynced(t, store, c, 9)
}

func TestFollower_UpstreamErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	upstreamErr := errors.New("connection refused")

	reader := chainmocks.NewReader(t)
	reader.EXPECT().HeadHeader(mock.Anything).Return(nil, upstreamErr).Once()

	store := newTestStore(t)
	detector := internalreorg.NewReorgDetector(store, reader, 10, logger.NewNopLogger())
	f := New(reader, store, detector, config.FollowerConfig{}, nil, logger.NewNopLogger())

	_, err := f.step(ctx)
	require.ErrorIs(t, err, upstreamErr)

	c := chaintest.NewWithHead(3)
	reader.EXPECT().HeadHeader(mock.Anything).RunAndReturn(c.HeadHeader).Once()
	reader.EXPECT().BlockByNumber(mock.Anything, uint64(0)).Return(nil, upstreamErr).Once()

	_, err = f.step(ctx)
	require.ErrorIs(t, err, upstreamErr)

	_, _, ok, err := store.Bounds(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFollower_Run(t *testing.T) {
	t.Parallel()

	c := chaintest.NewWithHead(5)
	f, store := newTestFollower(t, c,
		config.FollowerConfig{PollInterval: internalcommon.NewDuration(10 * time.Millisecond)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, last, ok, err := store.Bounds(ctx)
		return err == nil && ok && last == 5
	}, 5*time.Second, 10*time.Millisecond)

	c.MineEmpty(3)

	require.Eventually(t, func() bool {
		_, last, ok, err := store.Bounds(ctx)
		return err == nil && ok && last == 8
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("follower did not stop")
	}
}
