package filters

import "context"

// Service is the client-facing filter API.
type Service interface {
	// NewLogFilter registers a log filter and returns its ID.
	NewLogFilter(ctx context.Context, filter RawFilter) (ID, error)

	// NewBlockFilter registers a filter reporting new block hashes.
	NewBlockFilter(ctx context.Context) (ID, error)

	// Poll returns everything the filter matched since the previous poll.
	Poll(ctx context.Context, id ID) (*FilterResult, error)

	// Uninstall removes the filter and reports whether it existed.
	Uninstall(ctx context.Context, id ID) (bool, error)
}
