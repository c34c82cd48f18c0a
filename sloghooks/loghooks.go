// Package sloghooks logs nebulex hook events through log/slog, with
// sampling for the events that can flood under contention.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/rich/nebulex"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ContendedEvery uint64
	SelfHealEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	contendedCtr atomic.Uint64
	selfHealCtr  atomic.Uint64
}

var _ nebulex.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey string, level int, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Warn("cache self-heal",
		slog.String("key", h.redact(storageKey)),
		slog.Int("level", level),
		slog.String("reason", reason))
}

func (h *Hooks) LockContended(key string, attempt int) {
	if h.l == nil || !sample(h.opts.ContendedEvery, &h.contendedCtr) {
		return
	}
	h.l.Debug("lock contended",
		slog.String("key", h.redact(key)),
		slog.Int("attempt", attempt))
}

func (h *Hooks) TransactionAborted(keys []string, retries int) {
	if h.l == nil {
		return
	}
	redacted := make([]string, len(keys))
	for i, k := range keys {
		redacted[i] = h.redact(k)
	}
	h.l.Warn("transaction aborted",
		slog.Any("keys", redacted),
		slog.Int("retries", retries))
}

func (h *Hooks) FallbackComputed(key string, writeback bool) {
	if h.l == nil {
		return
	}
	h.l.Debug("fallback computed",
		slog.String("key", h.redact(key)),
		slog.Bool("writeback", writeback))
}

func (h *Hooks) PartialWrite(key string, level int, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("partial multi-level write",
		slog.String("key", h.redact(key)),
		slog.Int("level", level),
		slog.Any("err", err))
}
