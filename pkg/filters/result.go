package filters

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ResultKind tells which variant a FilterResult holds.
type ResultKind uint8

const (
	ResultBlocks ResultKind = iota
	ResultLogs
)

// FilterResult is the answer to a poll: block hashes for block filters, matched logs for log filters.
type FilterResult struct {
	Kind   ResultKind
	Blocks []common.Hash
	Logs   []*types.Log
}

// BlockHashes wraps the hashes produced by a block filter poll.
func BlockHashes(hashes []common.Hash) *FilterResult {
	return &FilterResult{Kind: ResultBlocks, Blocks: hashes}
}

// MatchedLogs wraps the logs produced by a log filter poll.
func MatchedLogs(logs []*types.Log) *FilterResult {
	return &FilterResult{Kind: ResultLogs, Logs: logs}
}

// Len returns the number of entries in the result.
func (r *FilterResult) Len() int {
	if r.Kind == ResultLogs {
		return len(r.Logs)
	}
	return len(r.Blocks)
}

// MarshalJSON encodes the result as a bare array, never null.
func (r *FilterResult) MarshalJSON() ([]byte, error) {
	if r.Kind == ResultLogs {
		if r.Logs == nil {
			return json.Marshal([]*types.Log{})
		}
		return json.Marshal(r.Logs)
	}

	if r.Blocks == nil {
		return json.Marshal([]common.Hash{})
	}
	return json.Marshal(r.Blocks)
}

// UnmarshalJSON decodes an array of hashes or an array of logs.
func (r *FilterResult) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw) > 0 && len(raw[0]) > 0 && raw[0][0] == '{' {
		r.Kind = ResultLogs
		r.Blocks = nil
		return json.Unmarshal(data, &r.Logs)
	}

	r.Kind = ResultBlocks
	r.Logs = nil
	r.Blocks = make([]common.Hash, 0, len(raw))

	return json.Unmarshal(data, &r.Blocks)
}
