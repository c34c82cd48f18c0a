package nebulex

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// An entry with an undecodable frame or payload was dropped on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(storageKey string, level int, reason string)

	// A transaction attempt found key locked by another context.
	// attempt counts from 0.
	LockContended(key string, attempt int)

	// A transaction gave up after exhausting its retry budget.
	TransactionAborted(keys []string, retries int)

	// A global miss was served by the caller's fallback.
	// writeback is true under the inclusive model.
	FallbackComputed(key string, writeback bool)

	// An all-levels write or delete failed at level after at least one
	// earlier level already succeeded (multi-level operations are not
	// atomic across levels).
	PartialWrite(key string, level int, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, int, string)     {}
func (NopHooks) LockContended(string, int)        {}
func (NopHooks) TransactionAborted([]string, int) {}
func (NopHooks) FallbackComputed(string, bool)    {}
func (NopHooks) PartialWrite(string, int, error)  {}
