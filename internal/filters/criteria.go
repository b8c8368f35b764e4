package filters

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
)

// Validate rejects block bounds a polling log filter cannot serve.
func Validate(raw filters.RawFilter) error {
	if raw.FromBlock != nil && raw.FromBlock.Kind == filters.KindPending {
		return &filters.InvalidRangeError{From: *raw.FromBlock, To: raw.ToBlock}
	}

	if raw.ToBlock != nil {
		if raw.ToBlock.Kind == filters.KindEarliest {
			return &filters.ValidationError{Err: filters.ErrInvalidToBlock}
		}
		if n, ok := raw.ToBlock.IsNumber(); ok && n == 0 {
			return &filters.ValidationError{Err: filters.ErrInvalidToBlock}
		}
	}

	return nil
}

// Normalize converts a wire filter into registered criteria. Topic positions past
// the fourth are dropped.
func Normalize(raw filters.RawFilter) filters.LogCriteria {
	criteria := filters.LogCriteria{
		FromBlock: copySelector(raw.FromBlock),
		ToBlock:   copySelector(raw.ToBlock),
	}

	if len(raw.Addresses) > 0 {
		criteria.Addresses = make(map[common.Address]struct{}, len(raw.Addresses))
		for _, addr := range raw.Addresses {
			criteria.Addresses[addr] = struct{}{}
		}
	}

	positions := raw.Topics
	if len(positions) > filters.MaxTopics {
		positions = positions[:filters.MaxTopics]
	}

	if len(positions) > 0 {
		criteria.Topics = make([]filters.TopicSet, len(positions))
		for i, position := range positions {
			criteria.Topics[i] = topicSet(position)
		}
	}

	return criteria
}

// topicSet returns nil for positions that accept any topic.
func topicSet(position []*common.Hash) filters.TopicSet {
	if len(position) == 0 {
		return nil
	}

	set := make(filters.TopicSet, len(position))
	for _, topic := range position {
		if topic == nil {
			return nil
		}
		set[*topic] = struct{}{}
	}

	return set
}

func copySelector(s *filters.BlockSelector) *filters.BlockSelector {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Matches reports whether the log satisfies the address set and every constrained topic position.
func Matches(criteria *filters.LogCriteria, log *types.Log) bool {
	if criteria.Addresses != nil {
		if _, ok := criteria.Addresses[log.Address]; !ok {
			return false
		}
	}

	for i, set := range criteria.Topics {
		if set == nil {
			continue
		}
		if i >= len(log.Topics) {
			return false
		}
		if _, ok := set[log.Topics[i]]; !ok {
			return false
		}
	}

	return true
}
