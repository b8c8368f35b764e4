package filters

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/FilterHub/internal/chaintest"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	chainmocks "github.com/goran-ethernal/FilterHub/pkg/chain/mocks"
	"github.com/goran-ethernal/FilterHub/pkg/config"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestHub(reader chain.Reader, maxRange uint64) (*Hub, *mclock.Simulated) {
	clock := &mclock.Simulated{}

	h := NewHub(reader, config.FiltersConfig{LogMaxBlockRange: maxRange}, logger.NewNopLogger())
	h.clock = clock

	return h, clock
}

func startHub(t *testing.T, h *Hub) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h.Start(ctx)

	t.Cleanup(func() {
		h.Stop()
		cancel()
	})
}

func TestHub_InstallLogFilterCursor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from     *filters.BlockSelector
		expected filters.BlockSelector
	}{
		{name: "absent", from: nil, expected: filters.Number(11)},
		{name: "latest", from: selector(filters.Latest()), expected: filters.Number(11)},
		{name: "earliest", from: selector(filters.Earliest()), expected: filters.Number(11)},
		{name: "past number", from: selector(filters.Number(5)), expected: filters.Number(5)},
		{name: "zero", from: selector(filters.Number(0)), expected: filters.Number(0)},
		{name: "head number", from: selector(filters.Number(10)), expected: filters.Number(11)},
		{name: "future number", from: selector(filters.Number(50)), expected: filters.Number(11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _ := newTestHub(chaintest.NewWithHead(10), 100)

			id, err := h.installLogFilter(context.Background(), Normalize(filters.RawFilter{FromBlock: tt.from}))
			require.NoError(t, err)

			w, ok := h.registry.logs[id]
			require.True(t, ok)
			require.Equal(t, tt.expected, *w.criteria.FromBlock)
		})
	}
}

func TestHub_BlockFilterDelta(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := chaintest.NewWithHead(100)
	h, _ := newTestHub(c, 100)

	id, err := h.installBlockFilter(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(100), h.registry.blocks[id].lastSeen)

	// nothing new
	result, err := h.poll(ctx, id)
	require.NoError(t, err)
	require.Equal(t, filters.ResultBlocks, result.Kind)
	require.Empty(t, result.Blocks)
	require.Equal(t, uint64(100), h.registry.blocks[id].lastSeen)

	c.MineEmpty(3)

	result, err = h.poll(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []common.Hash{c.Block(101).Hash, c.Block(102).Hash, c.Block(103).Hash}, result.Blocks)
	require.Equal(t, uint64(103), h.registry.blocks[id].lastSeen)

	result, err = h.poll(ctx, id)
	require.NoError(t, err)
	require.Empty(t, result.Blocks)
}

func TestHub_LogFilterScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := chaintest.New()
	c.MineEmpty(4)

	var want []common.Hash
	for range 6 {
		b := c.Mine(
			[]*types.Log{chaintest.Log(addrA, topic1, topic2), chaintest.Log(addrA, topic2)},
			[]*types.Log{chaintest.Log(addrB, topic1)},
			[]*types.Log{chaintest.Log(addrA, topic1)},
		)
		want = append(want, b.Hash, b.Hash)
	}
	require.Equal(t, uint64(10), c.Head())

	h, _ := newTestHub(c, 100)

	id, err := h.installLogFilter(ctx, Normalize(filters.RawFilter{
		FromBlock: selector(filters.Number(5)),
		Addresses: []common.Address{addrA},
		Topics:    [][]*common.Hash{{hashPtr(topic1)}},
	}))
	require.NoError(t, err)

	result, err := h.poll(ctx, id)
	require.NoError(t, err)
	require.Equal(t, filters.ResultLogs, result.Kind)
	require.Len(t, result.Logs, 12)

	var got []common.Hash
	for i, l := range result.Logs {
		require.Equal(t, addrA, l.Address)
		require.Equal(t, topic1, l.Topics[0])
		require.False(t, l.Removed)
		require.Equal(t, uint64(5+i/2), l.BlockNumber)
		require.Equal(t, c.Block(l.BlockNumber).TxHashes[l.TxIndex], l.TxHash)
		require.Equal(t, c.Block(l.BlockNumber).Header.Time, l.BlockTimestamp)
		require.NotZero(t, l.BlockTimestamp)
		got = append(got, l.BlockHash)
	}
	require.Equal(t, want, got)

	// first and third transaction of each block
	require.Equal(t, uint(0), result.Logs[0].TxIndex)
	require.Equal(t, uint(0), result.Logs[0].Index)
	require.Equal(t, uint(2), result.Logs[1].TxIndex)
	require.Equal(t, uint(3), result.Logs[1].Index)

	require.Equal(t, filters.Number(11), *h.registry.logs[id].criteria.FromBlock)

	result, err = h.poll(ctx, id)
	require.NoError(t, err)
	require.Empty(t, result.Logs)
	require.Equal(t, filters.Number(11), *h.registry.logs[id].criteria.FromBlock)

	c.Mine([]*types.Log{chaintest.Log(addrA, topic1)})

	result, err = h.poll(ctx, id)
	require.NoError(t, err)
	require.Len(t, result.Logs, 1)
	require.Equal(t, uint64(11), result.Logs[0].BlockNumber)
	require.Equal(t, filters.Number(12), *h.registry.logs[id].criteria.FromBlock)
}

func TestHub_LogFilterWithoutTopics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := chaintest.New()
	c.MineEmpty(2)

	h, _ := newTestHub(c, 100)

	id, err := h.installLogFilter(ctx, Normalize(filters.RawFilter{Addresses: []common.Address{addrA}}))
	require.NoError(t, err)

	mined := c.Mine([]*types.Log{chaintest.Log(addrA)})

	result, err := h.poll(ctx, id)
	require.NoError(t, err)
	require.Len(t, result.Logs, 1)
	require.NotNil(t, result.Logs[0].Topics)
	require.Empty(t, result.Logs[0].Topics)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.Contains(t, string(data), `"topics":[]`)

	var decoded []types.Log
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, mined.Hash, decoded[0].BlockHash)
	require.Equal(t, mined.Header.Time, decoded[0].BlockTimestamp)
}

func TestHub_LogFilterBoundedToBlock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := chaintest.New()
	for range 10 {
		c.Mine([]*types.Log{chaintest.Log(addrA, topic1)})
	}

	h, _ := newTestHub(c, 100)

	id, err := h.installLogFilter(ctx, Normalize(filters.RawFilter{
		FromBlock: selector(filters.Number(2)),
		ToBlock:   selector(filters.Number(4)),
	}))
	require.NoError(t, err)

	result, err := h.poll(ctx, id)
	require.NoError(t, err)
	require.Len(t, result.Logs, 3)
	require.Equal(t, filters.Number(5), *h.registry.logs[id].criteria.FromBlock)

	// cursor past the upper bound stays put
	result, err = h.poll(ctx, id)
	require.NoError(t, err)
	require.Empty(t, result.Logs)
	require.Equal(t, filters.Number(5), *h.registry.logs[id].criteria.FromBlock)
}

func TestHub_LogFilterRangeTooLarge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, _ := newTestHub(chaintest.NewWithHead(100), 10)

	id, err := h.installLogFilter(ctx, Normalize(filters.RawFilter{FromBlock: selector(filters.Number(0))}))
	require.NoError(t, err)

	_, err = h.poll(ctx, id)

	var rangeErr *filters.RangeTooLargeError
	require.ErrorAs(t, err, &rangeErr)
	require.Equal(t, uint64(0), rangeErr.Start)
	require.Equal(t, uint64(100), rangeErr.End)
	require.Equal(t, uint64(10), rangeErr.Max)

	_, err = h.poll(ctx, id)
	require.ErrorIs(t, err, filters.ErrFilterNotFound)
}

func TestHub_LogFilterRangeAtLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, _ := newTestHub(chaintest.NewWithHead(100), 10)

	id, err := h.installLogFilter(ctx, Normalize(filters.RawFilter{FromBlock: selector(filters.Number(90))}))
	require.NoError(t, err)

	_, err = h.poll(ctx, id)
	require.NoError(t, err)
	require.Equal(t, filters.Number(101), *h.registry.logs[id].criteria.FromBlock)
}

func TestHub_BackendErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backendErr := errors.New("storage unavailable")
	head := &types.Header{Number: big.NewInt(10)}

	t.Run("log filter is removed", func(t *testing.T) {
		t.Parallel()

		reader := chainmocks.NewReader(t)
		reader.EXPECT().HeadHeader(mock.Anything).Return(head, nil).Once()
		reader.EXPECT().LatestBlock(mock.Anything).Return(nil, backendErr).Once()

		h, _ := newTestHub(reader, 100)

		id, err := h.installLogFilter(ctx, filters.LogCriteria{})
		require.NoError(t, err)

		_, err = h.poll(ctx, id)
		var be *filters.BackendError
		require.ErrorAs(t, err, &be)
		require.ErrorIs(t, err, backendErr)

		_, err = h.poll(ctx, id)
		require.ErrorIs(t, err, filters.ErrFilterNotFound)
	})

	t.Run("log filter is removed on missing block", func(t *testing.T) {
		t.Parallel()

		latest := &chain.Block{Header: head, Hash: common.HexToHash("0x0a"), TxHashes: nil}

		reader := chainmocks.NewReader(t)
		reader.EXPECT().HeadHeader(mock.Anything).Return(head, nil).Once()
		reader.EXPECT().LatestBlock(mock.Anything).Return(latest, nil).Once()
		reader.EXPECT().BlockByNumber(mock.Anything, uint64(8)).Return(nil, nil).Once()

		h, _ := newTestHub(reader, 100)

		id, err := h.installLogFilter(ctx, Normalize(filters.RawFilter{FromBlock: selector(filters.Number(8))}))
		require.NoError(t, err)

		_, err = h.poll(ctx, id)
		require.ErrorIs(t, err, ErrBlockNotFound)
		require.NotContains(t, h.registry.logs, id)
	})

	t.Run("block filter survives", func(t *testing.T) {
		t.Parallel()

		reader := chainmocks.NewReader(t)
		reader.EXPECT().HeadHeader(mock.Anything).Return(head, nil).Once()
		reader.EXPECT().LatestBlock(mock.Anything).Return(nil, backendErr).Once()

		h, _ := newTestHub(reader, 100)

		id, err := h.installBlockFilter(ctx)
		require.NoError(t, err)

		_, err = h.poll(ctx, id)
		require.ErrorIs(t, err, backendErr)

		w, ok := h.registry.blocks[id]
		require.True(t, ok)
		require.Equal(t, uint64(10), w.lastSeen)
	})

	t.Run("creation failure is returned to the caller", func(t *testing.T) {
		t.Parallel()

		reader := chainmocks.NewReader(t)
		reader.EXPECT().HeadHeader(mock.Anything).Return(nil, backendErr).Twice()

		h, _ := newTestHub(reader, 100)
		startHub(t, h)

		_, err := h.NewBlockFilter(ctx)
		require.ErrorIs(t, err, backendErr)

		_, err = h.NewLogFilter(ctx, filters.RawFilter{})
		require.ErrorIs(t, err, backendErr)

		// the hub keeps serving
		removed, err := h.Uninstall(ctx, filters.IDFromUint64(1))
		require.NoError(t, err)
		require.False(t, removed)
	})
}

func TestHub_FrontDoor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := chaintest.NewWithHead(100)
	h, _ := newTestHub(c, 100)
	startHub(t, h)

	blockID, err := h.NewBlockFilter(ctx)
	require.NoError(t, err)

	logID, err := h.NewLogFilter(ctx, filters.RawFilter{Addresses: []common.Address{addrA}})
	require.NoError(t, err)
	require.NotEqual(t, blockID, logID)

	c.MineEmpty(2)
	c.Mine([]*types.Log{chaintest.Log(addrA, topic1)}, []*types.Log{chaintest.Log(addrB, topic1)})

	result, err := h.Poll(ctx, blockID)
	require.NoError(t, err)
	require.Len(t, result.Blocks, 3)

	result, err = h.Poll(ctx, logID)
	require.NoError(t, err)
	require.Len(t, result.Logs, 1)
	require.Equal(t, uint64(103), result.Logs[0].BlockNumber)

	removed, err := h.Uninstall(ctx, blockID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = h.Uninstall(ctx, blockID)
	require.NoError(t, err)
	require.False(t, removed)

	_, err = h.Poll(ctx, blockID)
	var notFound *filters.FilterNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, blockID, notFound.ID)
}

func TestHub_ValidationRejectedBeforeEnqueue(t *testing.T) {
	t.Parallel()

	// the hub is never started, a rejected filter must not wait for it
	h, _ := newTestHub(chainmocks.NewReader(t), 100)

	_, err := h.NewLogFilter(context.Background(), filters.RawFilter{FromBlock: selector(filters.Pending())})
	require.ErrorIs(t, err, filters.ErrInvalidBlockRange)

	_, err = h.NewLogFilter(context.Background(), filters.RawFilter{ToBlock: selector(filters.Earliest())})
	require.ErrorIs(t, err, filters.ErrInvalidToBlock)
}

func TestHub_IdleEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, clock := newTestHub(chaintest.NewWithHead(10), 100)
	startHub(t, h)

	stale, err := h.NewBlockFilter(ctx)
	require.NoError(t, err)
	touched, err := h.NewLogFilter(ctx, filters.RawFilter{})
	require.NoError(t, err)

	clock.WaitForTimers(1)

	// first sweep at 20s removes nothing
	clock.Run(20 * time.Second)
	clock.WaitForTimers(1)

	clock.Run(19 * time.Second)
	_, err = h.Poll(ctx, touched)
	require.NoError(t, err)

	// second sweep at 40s
	clock.Run(time.Second)
	clock.WaitForTimers(1)

	_, err = h.Poll(ctx, stale)
	require.ErrorIs(t, err, filters.ErrFilterNotFound)

	_, err = h.Poll(ctx, touched)
	require.NoError(t, err)
}

func TestHub_AbandonedReply(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	head := &types.Header{Number: big.NewInt(10)}

	reader := chainmocks.NewReader(t)
	reader.EXPECT().HeadHeader(mock.Anything).RunAndReturn(func(context.Context) (*types.Header, error) {
		entered <- struct{}{}
		<-release
		return head, nil
	}).Twice()

	h, _ := newTestHub(reader, 100)
	startHub(t, h)

	callCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := h.NewBlockFilter(callCtx)
		errCh <- err
	}()

	<-entered
	cancel()
	err := <-errCh

	var transportErr *filters.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.ErrorIs(t, err, context.Canceled)

	close(release)

	// the hub delivered into the abandoned slot and is still serving
	id, err := h.NewBlockFilter(context.Background())
	require.NoError(t, err)

	removed, err := h.Uninstall(context.Background(), id)
	require.NoError(t, err)
	require.True(t, removed)
}

func TestHub_Stopped(t *testing.T) {
	t.Parallel()

	h, _ := newTestHub(chaintest.NewWithHead(1), 100)
	h.Start(context.Background())
	h.Stop()

	_, err := h.NewBlockFilter(context.Background())
	require.ErrorIs(t, err, filters.ErrHubStopped)

	var transportErr *filters.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, filters.CodeInternal, transportErr.ErrorCode())

	// stopping twice is fine
	h.Stop()
}

func TestHub_StopWithoutStart(t *testing.T) {
	t.Parallel()

	h, _ := newTestHub(chaintest.NewWithHead(1), 100)
	h.Stop()

	_, err := h.Uninstall(context.Background(), filters.IDFromUint64(1))
	require.ErrorIs(t, err, filters.ErrHubStopped)
}
