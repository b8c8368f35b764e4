package filters

import (
	"errors"
	"fmt"
)

// JSON-RPC error codes reported by the filter API.
const (
	CodeInvalidParams = -32602
	CodeInternal      = -32603
	CodeServer        = -32000
	CodeLimitExceeded = -32005
	// CodeInvalidInput is the EIP-1474 "invalid input" code.
	CodeInvalidInput = -32000
)

var (
	// ErrInvalidBlockRange is returned when a log filter starts at the pending block.
	ErrInvalidBlockRange = errors.New("invalid from and to block combination")
	// ErrInvalidToBlock is returned when a log filter ends at the earliest block.
	ErrInvalidToBlock = errors.New("invalid to_block")
	// ErrFilterNotFound matches every FilterNotFoundError.
	ErrFilterNotFound = errors.New("filter not found")
	// ErrHubStopped is returned once the filter hub no longer accepts commands.
	ErrHubStopped = errors.New("filter hub stopped")
)

// ValidationError rejects filter criteria before anything is registered.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) ErrorCode() int { return CodeInvalidParams }

// InvalidRangeError rejects a log filter whose from and to blocks cannot form a range.
type InvalidRangeError struct {
	From BlockSelector
	To   *BlockSelector
}

func (e *InvalidRangeError) Error() string {
	to := Latest()
	if e.To != nil {
		to = *e.To
	}
	return fmt.Sprintf("%v: from=%s to=%s", ErrInvalidBlockRange, e.From, to)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidBlockRange }

func (e *InvalidRangeError) ErrorCode() int { return CodeInvalidInput }

// FilterNotFoundError is returned for unknown, uninstalled or evicted filters.
type FilterNotFoundError struct {
	ID ID
}

func (e *FilterNotFoundError) Error() string {
	return fmt.Sprintf("filter %s not found", e.ID)
}

func (e *FilterNotFoundError) Is(target error) bool { return target == ErrFilterNotFound }

func (e *FilterNotFoundError) ErrorCode() int { return CodeServer }

// RangeTooLargeError is returned when a log filter poll would scan more blocks than allowed.
// The filter is uninstalled when this happens.
type RangeTooLargeError struct {
	Start uint64
	End   uint64
	Max   uint64
}

func (e *RangeTooLargeError) Error() string {
	return fmt.Sprintf("block range %d..%d exceeds the maximum of %d blocks", e.Start, e.End, e.Max)
}

func (e *RangeTooLargeError) ErrorCode() int { return CodeLimitExceeded }

// BackendError wraps a chain reader failure.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("chain backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) ErrorCode() int { return CodeServer }

// TransportError is returned when a request could not be delivered to the hub or its answer was lost.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) ErrorCode() int { return CodeInternal }

// NewBackendError creates a new BackendError.
func NewBackendError(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}
