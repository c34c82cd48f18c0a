// Package asynchook decouples hook callbacks from the cache's hot paths:
// events are queued and delivered by worker goroutines, dropping under
// backpressure instead of blocking a cache call.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{ContendedEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := nebulex.New[User](nebulex.Options[User]{
//	    Levels: levels,
//	    Codec:  codec.JSON[User]{},
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/rich/nebulex"
)

type Hooks struct {
	inner nebulex.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ nebulex.Hooks = (*Hooks)(nil)

func New(inner nebulex.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHeal(k string, lvl int, r string) {
	h.try(func() { h.inner.SelfHeal(k, lvl, r) })
}
func (h *Hooks) LockContended(k string, attempt int) {
	h.try(func() { h.inner.LockContended(k, attempt) })
}
func (h *Hooks) TransactionAborted(keys []string, retries int) {
	h.try(func() { h.inner.TransactionAborted(keys, retries) })
}
func (h *Hooks) FallbackComputed(k string, wb bool) {
	h.try(func() { h.inner.FallbackComputed(k, wb) })
}
func (h *Hooks) PartialWrite(k string, lvl int, err error) {
	h.try(func() { h.inner.PartialWrite(k, lvl, err) })
}
