package nebulex

import "time"

// Option adjusts a single cache call. Unrecognized options for an operation
// are ignored (e.g. WithRetries on Get).
type Option func(*callOpts)

type callOpts struct {
	level      int // 1-based
	hasLevel   bool
	all        bool
	version    uint64
	hasVersion bool
	retries    int
	hasRetries bool
	delay      time.Duration
	hasDelay   bool
}

func applyOptions(opts []Option) callOpts {
	var o callOpts
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithLevel targets a single level by its 1-based position. Positions
// outside the configured range fail the call with InvalidLevelError.
func WithLevel(n int) Option {
	return func(o *callOpts) { o.level = n; o.hasLevel = true; o.all = false }
}

// AllLevels targets every configured level, applied in ascending order.
func AllLevels() Option {
	return func(o *callOpts) { o.all = true; o.hasLevel = false }
}

// WithVersion makes Delete, Take, and GetAndUpdate conditional on the
// entry's current version token; a mismatch surfaces as VersionConflictError
// and leaves the entry untouched.
func WithVersion(v uint64) Option {
	return func(o *callOpts) { o.version = v; o.hasVersion = true }
}

// WithRetries bounds how many times Transaction re-attempts lock acquisition
// after the initial try. Zero means a single attempt.
func WithRetries(n int) Option {
	return func(o *callOpts) { o.retries = n; o.hasRetries = true }
}

// WithRetryDelay sets the pause between Transaction lock attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(o *callOpts) { o.delay = d; o.hasDelay = true }
}
