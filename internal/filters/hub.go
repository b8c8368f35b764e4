package filters

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/chain"
	"github.com/goran-ethernal/FilterHub/pkg/config"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
)

// Compile-time check to ensure Hub implements filters.Service interface.
var _ filters.Service = (*Hub)(nil)

type commandKind uint8

const (
	cmdNewLogFilter commandKind = iota
	cmdNewBlockFilter
	cmdPoll
	cmdUninstall
)

type command struct {
	kind     commandKind
	id       filters.ID
	criteria filters.LogCriteria
	// reply has room for exactly one answer so the loop never blocks on a caller that gave up.
	reply chan reply
}

type reply struct {
	id      filters.ID
	result  *filters.FilterResult
	removed bool
	err     error
}

// Hub owns the filter registry. A single goroutine serves all commands and the
// idle sweep, callers talk to it through the filters.Service methods.
type Hub struct {
	reader   chain.Reader
	cfg      config.FiltersConfig
	log      *logger.Logger
	clock    mclock.Clock
	registry *registry

	commands chan command
	quit     chan struct{}
	done     chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewHub creates a filter hub reading chain data from reader. Call Start to begin serving.
func NewHub(reader chain.Reader, cfg config.FiltersConfig, log *logger.Logger) *Hub {
	cfg.ApplyDefaults()

	return &Hub{
		reader:   reader,
		cfg:      cfg,
		log:      log,
		clock:    mclock.System{},
		registry: newRegistry(),
		commands: make(chan command, cfg.QueueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the hub loop. The loop stops when ctx is cancelled or Stop is called.
// Backend calls made by the hub derive from ctx, never from a caller's context.
func (h *Hub) Start(ctx context.Context) {
	h.startOnce.Do(func() {
		h.log.Infof("Filter hub started - max log range: %d, sweep: %v, idle timeout: %v",
			h.cfg.LogMaxBlockRange, h.cfg.SweepInterval.Duration, h.cfg.IdleTimeout.Duration)

		go h.loop(ctx)
	})
}

// Stop terminates the hub loop and waits for it to exit. Pending and future calls fail
// with a TransportError.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	// never started: nothing will close done
	h.startOnce.Do(func() { close(h.done) })
	<-h.done
}

// Done is closed once the hub loop has exited.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) loop(ctx context.Context) {
	defer close(h.done)

	sweep := h.clock.NewTimer(h.cfg.SweepInterval.Duration)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Filter hub stopped: context cancelled")
			return

		case <-h.quit:
			h.log.Info("Filter hub stopped")
			return

		case cmd := <-h.commands:
			HubQueueDepthSet(len(h.commands))
			h.handle(ctx, cmd)

		case <-sweep.C():
			h.sweep()
			sweep.Reset(h.cfg.SweepInterval.Duration)
		}
	}
}

func (h *Hub) handle(ctx context.Context, cmd command) {
	var r reply

	switch cmd.kind {
	case cmdNewLogFilter:
		r.id, r.err = h.installLogFilter(ctx, cmd.criteria)
	case cmdNewBlockFilter:
		r.id, r.err = h.installBlockFilter(ctx)
	case cmdPoll:
		r.result, r.err = h.poll(ctx, cmd.id)
	case cmdUninstall:
		r.removed = h.registry.remove(cmd.id)
		if r.removed {
			h.log.Debugf("Filter %s uninstalled", cmd.id)
		}
	}

	FiltersInstalledSet(h.registry.size())

	// buffered with capacity one, the caller may have gone away
	cmd.reply <- r
}

func (h *Hub) sweep() {
	blocks, logs := h.registry.sweep(h.clock.Now(), h.cfg.IdleTimeout.Duration)
	if blocks+logs > 0 {
		h.log.Debugf("Evicted idle filters - block: %d, log: %d", blocks, logs)
		FiltersEvictedAdd(kindBlock, blocks)
		FiltersEvictedAdd(kindLog, logs)
	}

	FiltersInstalledSet(h.registry.size())
}

func (h *Hub) installLogFilter(ctx context.Context, criteria filters.LogCriteria) (filters.ID, error) {
	id, err := filters.NewID()
	if err != nil {
		return filters.ID{}, &filters.TransportError{Err: err}
	}

	head, err := h.headNumber(ctx)
	if err != nil {
		return filters.ID{}, err
	}

	// only an explicit past height lets the first poll catch up, anything else starts after the head
	from := filters.Number(head + 1)
	if criteria.FromBlock != nil {
		if n, ok := criteria.FromBlock.IsNumber(); ok && n < head {
			from = filters.Number(n)
		}
	}
	criteria.FromBlock = &from

	h.registry.addLogWatch(id, criteria, h.clock.Now())
	h.log.Debugf("Log filter %s installed - head: %d, from: %s", id, head, from)

	return id, nil
}

func (h *Hub) installBlockFilter(ctx context.Context) (filters.ID, error) {
	id, err := filters.NewID()
	if err != nil {
		return filters.ID{}, &filters.TransportError{Err: err}
	}

	head, err := h.headNumber(ctx)
	if err != nil {
		return filters.ID{}, err
	}

	h.registry.addBlockWatch(id, head, h.clock.Now())
	h.log.Debugf("Block filter %s installed - head: %d", id, head)

	return id, nil
}

func (h *Hub) poll(ctx context.Context, id filters.ID) (*filters.FilterResult, error) {
	start := time.Now()

	if w, ok := h.registry.blocks[id]; ok {
		result, err := h.pollBlocks(ctx, w)
		FilterPollLog(kindBlock, time.Since(start), resultLen(result), err)
		if err != nil {
			h.log.Warnf("Block filter %s poll failed: %v", id, err)
		}
		return result, err
	}

	if w, ok := h.registry.logs[id]; ok {
		result, err := h.pollLogs(ctx, w)
		FilterPollLog(kindLog, time.Since(start), resultLen(result), err)
		if err != nil {
			h.registry.remove(id)
			FilterInvalidatedInc(invalidationReason(err))
			h.log.Warnf("Log filter %s removed: %v", id, err)
		}
		return result, err
	}

	return nil, &filters.FilterNotFoundError{ID: id}
}

func resultLen(r *filters.FilterResult) int {
	if r == nil {
		return 0
	}
	return r.Len()
}

func invalidationReason(err error) string {
	var rangeErr *filters.RangeTooLargeError
	if errors.As(err, &rangeErr) {
		return "range_too_large"
	}
	return "backend_error"
}

// NewLogFilter validates the filter and registers it with the hub.
func (h *Hub) NewLogFilter(ctx context.Context, raw filters.RawFilter) (filters.ID, error) {
	if err := Validate(raw); err != nil {
		return filters.ID{}, err
	}

	r, err := h.do(ctx, command{kind: cmdNewLogFilter, criteria: Normalize(raw)})
	if err != nil {
		return filters.ID{}, err
	}

	return r.id, r.err
}

// NewBlockFilter registers a block filter with the hub.
func (h *Hub) NewBlockFilter(ctx context.Context) (filters.ID, error) {
	r, err := h.do(ctx, command{kind: cmdNewBlockFilter})
	if err != nil {
		return filters.ID{}, err
	}

	return r.id, r.err
}

// Poll returns the changes of the filter since its previous poll.
func (h *Hub) Poll(ctx context.Context, id filters.ID) (*filters.FilterResult, error) {
	r, err := h.do(ctx, command{kind: cmdPoll, id: id})
	if err != nil {
		return nil, err
	}

	return r.result, r.err
}

// Uninstall removes the filter.
func (h *Hub) Uninstall(ctx context.Context, id filters.ID) (bool, error) {
	r, err := h.do(ctx, command{kind: cmdUninstall, id: id})
	if err != nil {
		return false, err
	}

	return r.removed, r.err
}

// do enqueues cmd and waits for its reply. Sending blocks while the queue is full.
func (h *Hub) do(ctx context.Context, cmd command) (reply, error) {
	cmd.reply = make(chan reply, 1)

	select {
	case h.commands <- cmd:
	case <-ctx.Done():
		return reply{}, &filters.TransportError{Err: ctx.Err()}
	case <-h.done:
		return reply{}, &filters.TransportError{Err: filters.ErrHubStopped}
	}

	select {
	case r := <-cmd.reply:
		return r, nil
	case <-ctx.Done():
		return reply{}, &filters.TransportError{Err: ctx.Err()}
	case <-h.done:
		select {
		case r := <-cmd.reply:
			return r, nil
		default:
			return reply{}, &filters.TransportError{Err: filters.ErrHubStopped}
		}
	}
}
