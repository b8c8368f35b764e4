package filters

import (
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/goran-ethernal/FilterHub/pkg/filters"
)

type blockWatch struct {
	lastSeen   uint64
	lastAccess mclock.AbsTime
}

type logWatch struct {
	criteria   filters.LogCriteria
	lastAccess mclock.AbsTime
}

// registry maps filter IDs to their state. It is owned by the hub loop and is not
// safe for concurrent use.
type registry struct {
	blocks map[filters.ID]*blockWatch
	logs   map[filters.ID]*logWatch
}

func newRegistry() *registry {
	return &registry{
		blocks: make(map[filters.ID]*blockWatch),
		logs:   make(map[filters.ID]*logWatch),
	}
}

func (r *registry) addBlockWatch(id filters.ID, head uint64, now mclock.AbsTime) {
	r.blocks[id] = &blockWatch{lastSeen: head, lastAccess: now}
}

func (r *registry) addLogWatch(id filters.ID, criteria filters.LogCriteria, now mclock.AbsTime) {
	r.logs[id] = &logWatch{criteria: criteria, lastAccess: now}
}

// remove deletes the filter from whichever map holds it.
func (r *registry) remove(id filters.ID) bool {
	_, isBlock := r.blocks[id]
	_, isLog := r.logs[id]
	delete(r.blocks, id)
	delete(r.logs, id)

	return isBlock || isLog
}

// sweep drops every filter idle for at least idle and returns how many of each kind went.
func (r *registry) sweep(now mclock.AbsTime, idle time.Duration) (blocks, logs int) {
	for id, w := range r.blocks {
		if now.Sub(w.lastAccess) >= idle {
			delete(r.blocks, id)
			blocks++
		}
	}
	for id, w := range r.logs {
		if now.Sub(w.lastAccess) >= idle {
			delete(r.logs, id)
			logs++
		}
	}

	return blocks, logs
}

func (r *registry) size() (blocks, logs int) {
	return len(r.blocks), len(r.logs)
}
