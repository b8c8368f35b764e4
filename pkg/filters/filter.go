package filters

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MaxTopics is the number of indexed topic positions a log can carry.
const MaxTopics = 4

// RawFilter is the log filter as received on the wire.
type RawFilter struct {
	FromBlock *BlockSelector
	ToBlock   *BlockSelector
	Addresses []common.Address
	// Topics holds one entry per position. A nil entry, an empty entry or an entry
	// containing a nil hash leaves the position unconstrained.
	Topics [][]*common.Hash
}

// UnmarshalJSON accepts a single address or a list of addresses, and topic positions
// given as null, a single topic or a list of topics.
func (f *RawFilter) UnmarshalJSON(data []byte) error {
	var input struct {
		FromBlock *BlockSelector    `json:"fromBlock"`
		ToBlock   *BlockSelector    `json:"toBlock"`
		Addresses json.RawMessage   `json:"address"`
		Topics    []json.RawMessage `json:"topics"`
	}
	if err := json.Unmarshal(data, &input); err != nil {
		return err
	}

	f.FromBlock = input.FromBlock
	f.ToBlock = input.ToBlock
	f.Addresses = nil
	f.Topics = nil

	addresses, err := decodeAddresses(input.Addresses)
	if err != nil {
		return err
	}
	f.Addresses = addresses

	for i, raw := range input.Topics {
		position, err := decodeTopicPosition(raw)
		if err != nil {
			return fmt.Errorf("invalid topic at position %d: %w", i, err)
		}
		f.Topics = append(f.Topics, position)
	}

	return nil
}

// MarshalJSON renders the filter the way clients send it.
func (f RawFilter) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if f.FromBlock != nil {
		out["fromBlock"] = f.FromBlock
	}
	if f.ToBlock != nil {
		out["toBlock"] = f.ToBlock
	}
	if len(f.Addresses) > 0 {
		out["address"] = f.Addresses
	}
	if len(f.Topics) > 0 {
		out["topics"] = f.Topics
	}

	return json.Marshal(out)
}

func decodeAddresses(raw json.RawMessage) ([]common.Address, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single common.Address
	if err := json.Unmarshal(raw, &single); err == nil {
		return []common.Address{single}, nil
	}

	var list []common.Address
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	return list, nil
}

var errTopicType = errors.New("expected null, a topic or a list of topics")

func decodeTopicPosition(raw json.RawMessage) ([]*common.Hash, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single common.Hash
	if err := json.Unmarshal(raw, &single); err == nil {
		return []*common.Hash{&single}, nil
	}

	var list []*common.Hash
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", errTopicType, err)
	}

	return list, nil
}

// TopicSet is the set of values accepted at one topic position.
type TopicSet map[common.Hash]struct{}

// LogCriteria is a registered log filter. FromBlock acts as the filter's cursor.
type LogCriteria struct {
	FromBlock *BlockSelector
	ToBlock   *BlockSelector
	// Addresses is nil when any address matches.
	Addresses map[common.Address]struct{}
	// Topics has at most MaxTopics entries, a nil entry is a wildcard.
	Topics []TopicSet
}
