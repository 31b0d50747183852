package busan

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Executor runs submitted work asynchronously.
//
// Execute schedules r and returns nil, or returns an error synchronously
// when the executor cannot accept work. It never runs r on a failed return.
type Executor interface {
	Execute(r Runner) error
}

// Pool is the default Executor, backed by an errgroup.
//
// With WithMaxWorkers the pool runs at most that many tasks at once and
// Execute blocks while the limit is reached; WithNonblocking turns that
// blocking into an ErrRejected return.
type Pool struct {
	eg          *errgroup.Group
	ctx         context.Context
	nonblocking bool

	mu     sync.Mutex
	closed bool
}

// NewPool creates a Pool. ctx cancellation stops nothing by itself; tasks
// observe it through the context their handles run under.
func NewPool(ctx context.Context, opts ...Option) *Pool {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	eg, runCtx := errgroup.WithContext(ctx)
	if cfg.maxWorkers > 0 {
		eg.SetLimit(cfg.maxWorkers)
	}

	return &Pool{
		eg:          eg,
		ctx:         runCtx,
		nonblocking: cfg.nonblocking,
	}
}

// Context returns the pool context. It ends when the context passed to
// NewPool ends.
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Execute schedules r on a pool worker.
func (p *Pool) Execute(r Runner) error {
	if r == nil {
		return ErrNilTask
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	run := func() error {
		r.Run()
		return nil
	}

	if p.nonblocking {
		if !p.eg.TryGo(run) {
			return ErrRejected
		}
		return nil
	}

	p.eg.Go(run)
	return nil
}

// Close seals the pool; later Execute calls return ErrPoolClosed.
// Tasks already scheduled keep running.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Wait blocks until every scheduled task returned. Call after Close to
// drain the pool.
func (p *Pool) Wait() error {
	return p.eg.Wait()
}
