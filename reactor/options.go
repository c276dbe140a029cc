package reactor

// Option configures a Reactor at construction time, in the functional
// options style of eventloop/options.go's LoopOption.
type Option func(*Reactor)

// WithHeartbeatMillis overrides the default 50ms heartbeat period used to
// preempt long-running scripted jobs (spec.md §4.1 step 2).
func WithHeartbeatMillis(ms int64) Option {
	return func(r *Reactor) {
		if ms > 0 {
			r.heartbeatMillis = ms
		}
	}
}

// NewWithOptions is [New] plus functional options, kept as a separate
// constructor (rather than variadic on New) so New's signature stays
// stable for the is_main parameter spec.md §4.1 documents explicitly.
func NewWithOptions(isMain bool, opts ...Option) (*Reactor, error) {
	r, err := New(isMain)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}
