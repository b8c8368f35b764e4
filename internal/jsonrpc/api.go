package jsonrpc

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
)

// FilterAPI is the eth namespace service exposing the filter hub.
type FilterAPI struct {
	service filters.Service
	reader  chain.Reader
	log     *logger.Logger
}

// NewFilterAPI creates the eth namespace service.
func NewFilterAPI(service filters.Service, reader chain.Reader, log *logger.Logger) *FilterAPI {
	return &FilterAPI{
		service: service,
		reader:  reader,
		log:     log,
	}
}

// NewFilter installs a log filter (eth_newFilter).
func (api *FilterAPI) NewFilter(ctx context.Context, criteria filters.RawFilter) (filters.ID, error) {
	defer api.observe("eth_newFilter", time.Now())

	id, err := api.service.NewLogFilter(ctx, criteria)
	return id, api.fail("eth_newFilter", err)
}

// NewBlockFilter installs a block filter (eth_newBlockFilter).
func (api *FilterAPI) NewBlockFilter(ctx context.Context) (filters.ID, error) {
	defer api.observe("eth_newBlockFilter", time.Now())

	id, err := api.service.NewBlockFilter(ctx)
	return id, api.fail("eth_newBlockFilter", err)
}

// GetFilterChanges returns what the filter matched since the previous poll (eth_getFilterChanges).
func (api *FilterAPI) GetFilterChanges(ctx context.Context, id filters.ID) (*filters.FilterResult, error) {
	defer api.observe("eth_getFilterChanges", time.Now())

	result, err := api.service.Poll(ctx, id)
	return result, api.fail("eth_getFilterChanges", err)
}

// GetFilterLogs is served like GetFilterChanges: it advances the filter cursor too.
func (api *FilterAPI) GetFilterLogs(ctx context.Context, id filters.ID) (*filters.FilterResult, error) {
	defer api.observe("eth_getFilterLogs", time.Now())

	result, err := api.service.Poll(ctx, id)
	return result, api.fail("eth_getFilterLogs", err)
}

// UninstallFilter removes a filter and reports whether it existed (eth_uninstallFilter).
func (api *FilterAPI) UninstallFilter(ctx context.Context, id filters.ID) (bool, error) {
	defer api.observe("eth_uninstallFilter", time.Now())

	removed, err := api.service.Uninstall(ctx, id)
	return removed, api.fail("eth_uninstallFilter", err)
}

// BlockNumber returns the head of the chain backend (eth_blockNumber).
func (api *FilterAPI) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	defer api.observe("eth_blockNumber", time.Now())

	header, err := api.reader.HeadHeader(ctx)
	if err != nil {
		return 0, api.fail("eth_blockNumber", filters.NewBackendError("head header", err))
	}

	return hexutil.Uint64(header.Number.Uint64()), nil
}

func (api *FilterAPI) observe(method string, start time.Time) {
	APIRequestLog(method, time.Since(start))
}

// fail records err and returns it unchanged.
func (api *FilterAPI) fail(method string, err error) error {
	if err == nil {
		return nil
	}

	code := filters.CodeInternal
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		code = rpcErr.ErrorCode()
	}

	APIErrorInc(method, strconv.Itoa(code))

	if code == filters.CodeInternal || code == filters.CodeServer {
		api.log.Debugf("%s failed: %v", method, err)
	}

	return err
}
