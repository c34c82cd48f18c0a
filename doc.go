// Package nebulex composes an ordered stack of independent cache levels
// into one logical cache, with key-scoped transactions on top.
//
// Components:
//   - store.Store: one backing level (local skip list, BigCache, Ristretto,
//     Redis).
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//   - Multilevel[V]: the logical cache. Reads scan levels ascending and
//     return the first hit; writes target level 1 unless AllLevels or
//     WithLevel says otherwise; the consistency model (inclusive or
//     exclusive) decides whether fallback-computed values propagate to
//     every level or stay unpersisted.
//   - Transaction: per-key mutual exclusion with reentrant nesting, a
//     bounded retry budget, and a terminal abort when contention outlasts
//     it. Transactions are the only cross-operation atomicity mechanism;
//     levels are never assumed to lock anything themselves.
//
// Entries are framed with an engine-assigned version token (internal/wire)
// used for optimistic checks via WithVersion. Corrupt entries found in a
// level are deleted on read and treated as a miss.
package nebulex
