// Package sequencer runs submitted work on a single goroutine in FIFO order.
//
// The embedded database engine and the snapshot part it serializes into are
// singly owned, so every operation that rewrites the snapshot must be
// serialized rather than pooled. Callers either wait on a Future or submit
// detached work whose failure is routed to an error sink.
package sequencer

import (
	"context"
	"fmt"
	"sync"
)

// Work is a unit of sequenced work.
type Work[T any] func(ctx context.Context) (T, error)

// Result carries the outcome of a completed Work.
type Result[T any] struct {
	Data T
	Err  error
}

// Future resolves with the result of an enqueued Work.
type Future[T any] struct {
	input  chan T
	cancel context.CancelFunc
}

func NewFuture[T any](input chan T, cancel context.CancelFunc) *Future[T] {
	return &Future[T]{
		input:  input,
		cancel: cancel,
	}
}

func (f *Future[T]) C() chan T {
	return f.input
}

func (f *Future[T]) Stop() {
	f.cancel()
}

type request struct {
	fn  Work[any]
	c   chan Result[any] // nil for detached work
	ctx context.Context
}

// ErrorSink receives failures of detached work.
type ErrorSink func(error)

// Sequencer executes work strictly one at a time, in submission order.
type Sequencer struct {
	work       chan request
	close      chan any
	done       chan any
	sink       ErrorSink
	mainCtx    context.Context
	mainCancel context.CancelFunc
	once       sync.Once
}

// New creates a running Sequencer. The sink observes failures (and recovered
// panics) of detached work; it must not be nil.
func New(sink ErrorSink) *Sequencer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sequencer{
		work:       make(chan request, 64),
		close:      make(chan any),
		done:       make(chan any),
		sink:       sink,
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	go s.run()
	return s
}

// Enqueue submits work and returns a Future resolving with its result.
func (s *Sequencer) Enqueue(w Work[any]) *Future[Result[any]] {
	c := make(chan Result[any], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)

	if s.mainCtx.Err() != nil {
		// we're closing here so send a result with an error
		c <- Result[any]{Err: context.Canceled}
		return NewFuture(c, cancel)
	}

	select {
	case <-s.mainCtx.Done():
		c <- Result[any]{Err: context.Canceled}
	case s.work <- request{fn: w, c: c, ctx: ctx}:
	}

	return NewFuture(c, cancel)
}

// EnqueueDetached submits work whose result nobody waits for. A failure is
// reported through the error sink instead of being dropped.
func (s *Sequencer) EnqueueDetached(w Work[any]) {
	if s.mainCtx.Err() != nil {
		s.sink(context.Canceled)
		return
	}

	select {
	case <-s.mainCtx.Done():
		s.sink(context.Canceled)
	case s.work <- request{fn: w, ctx: s.mainCtx}:
	}
}

// Drain blocks until every previously submitted unit has executed.
func (s *Sequencer) Drain() {
	barrier := s.Enqueue(func(ctx context.Context) (any, error) {
		return nil, nil
	})
	<-barrier.C()
}

// Close stops accepting work, executes what is already queued, and waits for
// the run loop to exit.
func (s *Sequencer) Close() {
	s.once.Do(func() {
		s.mainCancel()
		s.close <- struct{}{}
		<-s.done
	})
}

func (s *Sequencer) run() {
	defer close(s.done)
	for {
		select {
		case r := <-s.work:
			s.execute(r)
		case <-s.close:
			// flush the queue so pending snapshot writes are not lost
			for {
				select {
				case r := <-s.work:
					s.execute(r)
				default:
					return
				}
			}
		}
	}
}

func (s *Sequencer) execute(r request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.deliver(r, Result[any]{Err: fmt.Errorf("sequenced work panicked: %v", rec)})
		}
	}()

	v, err := r.fn(r.ctx)
	s.deliver(r, Result[any]{Data: v, Err: err})
}

func (s *Sequencer) deliver(r request, res Result[any]) {
	if r.c != nil {
		r.c <- res
		return
	}
	if res.Err != nil {
		s.sink(res.Err)
	}
}
