package reorg

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/FilterHub/internal/chaintest"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	chainmocks "github.com/goran-ethernal/FilterHub/pkg/chain/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// hashStore is a HashStore snapshot of a chain.
type hashStore map[uint64]common.Hash

func (s hashStore) BlockHash(_ context.Context, number uint64) (common.Hash, bool, error) {
	hash, ok := s[number]
	return hash, ok, nil
}

func snapshot(c *chaintest.Chain, from, to uint64) hashStore {
	s := make(hashStore)
	for n := from; n <= to; n++ {
		s[n] = c.Block(n).Hash
	}
	return s
}

func TestReorgDetector_VerifyParent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := chaintest.NewWithHead(5)
	store := snapshot(c, 0, 5)

	detector := NewReorgDetector(store, c, 10, logger.NewNopLogger())

	require.NoError(t, detector.VerifyParent(ctx, c.Mine()))
	require.NoError(t, detector.VerifyParent(ctx, c.Block(0)))

	// predecessor not stored
	delete(store, 5)
	require.NoError(t, detector.VerifyParent(ctx, c.Block(6)))

	store[5] = common.HexToHash("0xbad")

	err := detector.VerifyParent(ctx, c.Block(6))

	var reorgErr *ReorgDetectedError
	require.ErrorAs(t, err, &reorgErr)
	require.Equal(t, uint64(5), reorgErr.Block)
	require.Equal(t, common.HexToHash("0xbad"), reorgErr.Stored)
}

func TestReorgDetector_VerifyStored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := chaintest.NewWithHead(5)
	store := snapshot(c, 0, 5)

	detector := NewReorgDetector(store, c, 10, logger.NewNopLogger())

	require.NoError(t, detector.VerifyStored(ctx, 5))
	require.NoError(t, detector.VerifyStored(ctx, 42))

	// upstream lost the block
	c.Rewind(4)

	var reorgErr *ReorgDetectedError
	require.ErrorAs(t, detector.VerifyStored(ctx, 5), &reorgErr)
	require.Equal(t, uint64(5), reorgErr.Block)

	// upstream replaced the block
	c.MineEmpty(2)
	require.ErrorAs(t, detector.VerifyStored(ctx, 4), &reorgErr)
	require.Equal(t, uint64(4), reorgErr.Block)
}

func TestReorgDetector_FindForkPoint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name     string
		rewindTo uint64
		maxDepth uint64
		stored   [2]uint64
		expected uint64
		err      error
	}{
		{name: "no reorg", rewindTo: 11, maxDepth: 5, stored: [2]uint64{0, 10}, expected: 11},
		{name: "one block", rewindTo: 10, maxDepth: 5, stored: [2]uint64{0, 10}, expected: 10},
		{name: "at max depth", rewindTo: 6, maxDepth: 5, stored: [2]uint64{0, 10}, expected: 6},
		{name: "too deep", rewindTo: 5, maxDepth: 5, stored: [2]uint64{0, 10}, err: ErrReorgTooDeep},
		{name: "below stored range", rewindTo: 6, maxDepth: 20, stored: [2]uint64{8, 10}, expected: 8},
		{name: "down to genesis", rewindTo: 0, maxDepth: 20, stored: [2]uint64{0, 10}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := chaintest.NewWithHead(10)
			store := snapshot(c, tt.stored[0], tt.stored[1])

			if tt.rewindTo <= 10 {
				c.Rewind(tt.rewindTo)
				c.MineEmpty(int(12 - tt.rewindTo))
			}

			detector := NewReorgDetector(store, c, tt.maxDepth, logger.NewNopLogger())

			fork, err := detector.FindForkPoint(ctx, 10)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expected, fork)
		})
	}
}

func TestReorgDetector_UpstreamErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	upstreamErr := errors.New("connection refused")

	reader := chainmocks.NewReader(t)
	reader.EXPECT().BlockByNumber(mock.Anything, uint64(3)).Return(nil, upstreamErr).Twice()

	detector := NewReorgDetector(hashStore{3: common.HexToHash("0x03")}, reader, 10, logger.NewNopLogger())

	require.ErrorIs(t, detector.VerifyStored(ctx, 3), upstreamErr)

	_, err := detector.FindForkPoint(ctx, 3)
	require.ErrorIs(t, err, upstreamErr)
}
