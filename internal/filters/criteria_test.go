package filters

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")

	topic1 = common.HexToHash("0x01")
	topic2 = common.HexToHash("0x02")
	topic3 = common.HexToHash("0x03")
	topicX = common.HexToHash("0xff")
)

func selector(s filters.BlockSelector) *filters.BlockSelector { return &s }

func hashPtr(h common.Hash) *common.Hash { return &h }

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      filters.RawFilter
		wantErr  error
		wantCode int
	}{
		{name: "empty filter", raw: filters.RawFilter{}},
		{name: "explicit range", raw: filters.RawFilter{FromBlock: selector(filters.Number(5)), ToBlock: selector(filters.Number(10))}},
		{name: "latest to pending", raw: filters.RawFilter{FromBlock: selector(filters.Latest()), ToBlock: selector(filters.Pending())}},
		{name: "from earliest", raw: filters.RawFilter{FromBlock: selector(filters.Earliest())}},
		{name: "from pending", raw: filters.RawFilter{FromBlock: selector(filters.Pending())}, wantErr: filters.ErrInvalidBlockRange,
			wantCode: filters.CodeInvalidInput},
		{name: "to earliest", raw: filters.RawFilter{ToBlock: selector(filters.Earliest())}, wantErr: filters.ErrInvalidToBlock,
			wantCode: filters.CodeInvalidParams},
		{name: "to zero", raw: filters.RawFilter{ToBlock: selector(filters.Number(0))}, wantErr: filters.ErrInvalidToBlock,
			wantCode: filters.CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.raw)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			var rpcErr rpc.Error
			require.True(t, errors.As(err, &rpcErr))
			require.Equal(t, tt.wantCode, rpcErr.ErrorCode())
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("addresses become a set", func(t *testing.T) {
		t.Parallel()

		c := Normalize(filters.RawFilter{Addresses: []common.Address{addrA, addrB, addrA}})
		require.Len(t, c.Addresses, 2)
		require.Contains(t, c.Addresses, addrA)
		require.Contains(t, c.Addresses, addrB)
	})

	t.Run("no addresses matches any", func(t *testing.T) {
		t.Parallel()

		c := Normalize(filters.RawFilter{Addresses: []common.Address{}})
		require.Nil(t, c.Addresses)
	})

	t.Run("topics truncated to four positions", func(t *testing.T) {
		t.Parallel()

		raw := filters.RawFilter{Topics: [][]*common.Hash{
			{hashPtr(topic1)}, {hashPtr(topic2)}, {hashPtr(topic3)}, {hashPtr(topicX)}, {hashPtr(topic1)}, {hashPtr(topic2)},
		}}

		c := Normalize(raw)
		require.Len(t, c.Topics, filters.MaxTopics)
		require.Contains(t, c.Topics[3], topicX)
	})

	t.Run("wildcard positions", func(t *testing.T) {
		t.Parallel()

		raw := filters.RawFilter{Topics: [][]*common.Hash{
			nil,
			{},
			{hashPtr(topic1), nil},
			{hashPtr(topic1), hashPtr(topic2)},
		}}

		c := Normalize(raw)
		require.Len(t, c.Topics, 4)
		require.Nil(t, c.Topics[0])
		require.Nil(t, c.Topics[1])
		require.Nil(t, c.Topics[2])
		require.Len(t, c.Topics[3], 2)
	})

	t.Run("selectors are copied", func(t *testing.T) {
		t.Parallel()

		from := filters.Number(7)
		raw := filters.RawFilter{FromBlock: &from, ToBlock: selector(filters.Latest())}

		c := Normalize(raw)
		from = filters.Number(99)

		require.Equal(t, filters.Number(7), *c.FromBlock)
		require.Equal(t, filters.Latest(), *c.ToBlock)
	})
}

func TestMatches(t *testing.T) {
	t.Parallel()

	logT1T2 := &types.Log{Address: addrA, Topics: []common.Hash{topic1, topic2}}

	tests := []struct {
		name   string
		raw    filters.RawFilter
		log    *types.Log
		expect bool
	}{
		{
			name:   "empty criteria match everything",
			log:    logT1T2,
			expect: true,
		},
		{
			name:   "wildcard first position",
			raw:    filters.RawFilter{Topics: [][]*common.Hash{nil, {hashPtr(topic2)}}},
			log:    logT1T2,
			expect: true,
		},
		{
			name:   "first position mismatch",
			raw:    filters.RawFilter{Topics: [][]*common.Hash{{hashPtr(topicX)}, {hashPtr(topic2)}}},
			log:    logT1T2,
			expect: false,
		},
		{
			name:   "alternatives in a position",
			raw:    filters.RawFilter{Topics: [][]*common.Hash{{hashPtr(topicX), hashPtr(topic1)}}},
			log:    logT1T2,
			expect: true,
		},
		{
			name:   "constrained position beyond log topics",
			raw:    filters.RawFilter{Topics: [][]*common.Hash{nil, nil, {hashPtr(topic3)}}},
			log:    logT1T2,
			expect: false,
		},
		{
			name:   "wildcard position beyond log topics",
			raw:    filters.RawFilter{Topics: [][]*common.Hash{{hashPtr(topic1)}, nil, nil}},
			log:    logT1T2,
			expect: true,
		},
		{
			name:   "address in set",
			raw:    filters.RawFilter{Addresses: []common.Address{addrB, addrA}},
			log:    logT1T2,
			expect: true,
		},
		{
			name:   "address not in set",
			raw:    filters.RawFilter{Addresses: []common.Address{addrB}},
			log:    logT1T2,
			expect: false,
		},
		{
			name: "address matches but topic does not",
			raw: filters.RawFilter{
				Addresses: []common.Address{addrA},
				Topics:    [][]*common.Hash{{hashPtr(topic2)}},
			},
			log:    logT1T2,
			expect: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			criteria := Normalize(tt.raw)
			require.Equal(t, tt.expect, Matches(&criteria, tt.log))
		})
	}
}
