package filters

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestFilterResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("empty results are empty arrays", func(t *testing.T) {
		t.Parallel()

		out, err := json.Marshal(BlockHashes(nil))
		require.NoError(t, err)
		require.Equal(t, "[]", string(out))

		out, err = json.Marshal(MatchedLogs(nil))
		require.NoError(t, err)
		require.Equal(t, "[]", string(out))
	})

	t.Run("block hashes", func(t *testing.T) {
		t.Parallel()

		hashes := []common.Hash{common.HexToHash("0xaa"), common.HexToHash("0xbb")}

		out, err := json.Marshal(BlockHashes(hashes))
		require.NoError(t, err)

		var decoded FilterResult
		require.NoError(t, json.Unmarshal(out, &decoded))
		require.Equal(t, ResultBlocks, decoded.Kind)
		require.Equal(t, hashes, decoded.Blocks)
		require.Equal(t, 2, decoded.Len())
	})

	t.Run("logs", func(t *testing.T) {
		t.Parallel()

		log := &types.Log{
			Address:     testAddr1,
			Topics:      []common.Hash{testTopic1},
			Data:        []byte{0x01, 0x02},
			BlockNumber: 12,
			TxHash:      common.HexToHash("0xcc"),
			TxIndex:     1,
			BlockHash:   common.HexToHash("0xdd"),
			Index:       3,
		}

		out, err := json.Marshal(MatchedLogs([]*types.Log{log}))
		require.NoError(t, err)

		var raw []map[string]any
		require.NoError(t, json.Unmarshal(out, &raw))
		require.Len(t, raw, 1)
		require.Equal(t, "0xc", raw[0]["blockNumber"])
		require.Equal(t, "0x3", raw[0]["logIndex"])
		require.Equal(t, false, raw[0]["removed"])

		var decoded FilterResult
		require.NoError(t, json.Unmarshal(out, &decoded))
		require.Equal(t, ResultLogs, decoded.Kind)
		require.Len(t, decoded.Logs, 1)
		require.Equal(t, log.TxHash, decoded.Logs[0].TxHash)
		require.Equal(t, log.BlockHash, decoded.Logs[0].BlockHash)
	})
}
