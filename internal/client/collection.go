package client

import (
	"slices"
	"sync"

	"github.com/example/fitness-manager/internal/gym"
)

// FetchToken identifies one in-flight refresh of a Collection.
type FetchToken struct {
	seq   uint64
	epoch uint64
}

// Collection caches rows of one resource by key.
//
// Every refresh and every applied mutation takes a number from one sequence.
// A refresh result is only applied when nothing numbered after the refresh
// started has been applied yet, so a slow response can never overwrite newer
// state.
type Collection[T any, PT gym.Record[T]] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	loaded bool

	seq          uint64
	appliedFetch uint64
	lastMutation uint64
	// epoch advances on Clear so refreshes begun earlier are never retried.
	epoch uint64
}

func NewCollection[T any, PT gym.Record[T]]() *Collection[T, PT] {
	return &Collection[T, PT]{rows: make(map[int64]T)}
}

// BeginFetch registers a refresh and returns the token Replace expects.
func (c *Collection[T, PT]) BeginFetch() FetchToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return FetchToken{seq: c.seq, epoch: c.epoch}
}

// Replace swaps the cached rows for the result of the refresh identified by
// token. It reports false, leaving the cache untouched, when a newer refresh
// or a mutation was applied since the refresh began.
func (c *Collection[T, PT]) Replace(token FetchToken, rows []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token.seq < c.appliedFetch || token.seq < c.lastMutation {
		return false
	}

	next := make(map[int64]T, len(rows))
	for _, row := range rows {
		next[PT(&row).Key()] = row
	}
	c.rows = next
	c.loaded = true
	c.appliedFetch = token.seq
	return true
}

// Retry reports whether a refresh discarded by Replace should be issued
// again: nothing has been loaded yet and the cache was not cleared since the
// refresh began. A first load that loses to a mutation would otherwise leave
// the collection holding only the mutated rows.
func (c *Collection[T, PT]) Retry(token FetchToken) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loaded && token.epoch == c.epoch
}

// Upsert patches a single row, typically from a mutation response.
func (c *Collection[T, PT]) Upsert(row T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.lastMutation = c.seq
	c.rows[PT(&row).Key()] = row
}

func (c *Collection[T, PT]) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.lastMutation = c.seq
	delete(c.rows, id)
}

// Clear empties the cache and marks it as never loaded. Refreshes started
// before Clear are discarded.
func (c *Collection[T, PT]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.lastMutation = c.seq
	c.rows = make(map[int64]T)
	c.loaded = false
	c.epoch++
}

func (c *Collection[T, PT]) Get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, ok := c.rows[id]
	return row, ok
}

// Loaded reports whether a refresh has been applied.
func (c *Collection[T, PT]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Collection[T, PT]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// All returns every row ordered by key.
func (c *Collection[T, PT]) All() []T {
	return c.Filter(nil)
}

// Filter returns the rows keep accepts, ordered by key. A nil keep accepts
// every row.
func (c *Collection[T, PT]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	out := make([]T, 0, len(c.rows))
	for _, row := range c.rows {
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b T) int {
		ka, kb := PT(&a).Key(), PT(&b).Key()
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return out
}
