package paging

import (
	"sync"
	"sync/atomic"
)

// Stream holds the latest value and broadcasts every update to subscribers.
//
// Each subscriber owns a single-slot mailbox: a new value overwrites one the
// subscriber has not consumed yet, so the producer never blocks and a slow
// subscriber always ends up with the latest value.
type Stream[T any] struct {
	value atomic.Pointer[T]

	mu   sync.Mutex
	subs map[*subscriber[T]]struct{}
}

type subscriber[T any] struct {
	ch   chan T
	once sync.Once
}

// NewStream returns a Stream holding initial.
func NewStream[T any](initial T) *Stream[T] {
	s := &Stream[T]{subs: make(map[*subscriber[T]]struct{})}
	s.value.Store(&initial)
	return s
}

// Value returns the latest value without locking.
func (s *Stream[T]) Value() T {
	return *s.value.Load()
}

// Update replaces the value with fn(current) and delivers it. Updates are
// serialized; fn must not call back into s.
func (s *Stream[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(*s.value.Load())
	s.value.Store(&next)
	for sub := range s.subs {
		sub.offer(next)
	}
	return next
}

// Subscribe returns a channel that immediately holds the current value and
// then receives every later update, latest wins. The returned func
// unsubscribes and closes the channel; it is safe to call more than once.
func (s *Stream[T]) Subscribe() (<-chan T, func()) {
	sub := &subscriber[T]{ch: make(chan T, 1)}

	s.mu.Lock()
	sub.ch <- *s.value.Load()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub.ch, func() {
		sub.once.Do(func() {
			s.mu.Lock()
			delete(s.subs, sub)
			close(sub.ch)
			s.mu.Unlock()
		})
	}
}

// offer runs under the stream lock, so it is the only sender on ch.
func (sub *subscriber[T]) offer(v T) {
	select {
	case sub.ch <- v:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- v
}
