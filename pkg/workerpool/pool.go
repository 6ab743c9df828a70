// Package workerpool runs background work, such as order emails, on a
// fixed set of goroutines behind a bounded queue.
//
// Submit never blocks: when every worker is busy and the queue is full it
// returns ErrPoolFull and the caller drops the task.
//
//	pool := workerpool.New(4, workerpool.WithQueue(256))
//	defer pool.Shutdown()
//
//	if err := pool.Submit(func() { mailer.Deliver(to, subject, body) }); err != nil {
//	    metrics.Notifications.WithLabelValues("dropped").Inc()
//	}
package workerpool

import (
	"errors"
	"sync"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Option configures a Pool.
type Option func(*Pool)

// WithQueue sets the task buffer size (default 2× the worker count).
func WithQueue(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.queue = n
		}
	}
}

// WithPanicHandler is called with the recovered value when a task panics.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(p *Pool) { p.onPanic = fn }
}

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	queue   int
	onPanic func(any)

	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards sends against close(tasks)
	closeCh chan struct{}
}

// New creates a Pool with the given number of workers.
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{queue: size * 2, closeCh: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	p.tasks = make(chan func(), p.queue)

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task for execution without blocking.
//   - Returns ErrPoolFull if the task queue is at capacity.
//   - Returns ErrPoolClosed if Shutdown has been called.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting new tasks, waits for queued and in-flight tasks
// to complete, and releases all worker goroutines. Safe to call repeatedly.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		p.mu.Lock()
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.safeRun(task)
	}
}

func (p *Pool) safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil && p.onPanic != nil {
			p.onPanic(r)
		}
	}()
	task()
}
