package busan

// Option configures a Pool or a Service.
type Option func(*config)

type config struct {
	maxWorkers   int
	nonblocking  bool
	panicToError bool
}

func defaultConfig() config {
	return config{
		panicToError: true,
	}
}

// WithMaxWorkers limits how many tasks a Pool runs at the same time.
// 0 means unlimited. At the limit, Execute blocks until a worker frees up
// unless WithNonblocking is set.
func WithMaxWorkers(limit int) Option {
	if limit < 0 {
		panic("busan: max workers cannot be negative")
	}

	return func(c *config) {
		c.maxWorkers = limit
	}
}

// WithNonblocking makes a Pool at its worker limit reject with ErrRejected
// instead of blocking the submitter.
func WithNonblocking(enabled bool) Option {
	return func(c *config) {
		c.nonblocking = enabled
	}
}

// WithPanicToError converts task panics to task errors. It applies to
// handles built by a Service's default factory.
func WithPanicToError(enabled bool) Option {
	return func(c *config) {
		c.panicToError = enabled
	}
}
