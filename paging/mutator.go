package paging

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Mutator serializes mutations. Starting a mutation cancels the one that is
// registered, then waits for the exclusive gate, so at most one block runs
// at a time and the newest caller wins.
type Mutator struct {
	gate *semaphore.Weighted

	mu      sync.Mutex
	current *mutation
}

type mutation struct {
	tag    string
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// NewMutator returns an idle Mutator.
func NewMutator() *Mutator {
	return &Mutator{gate: semaphore.NewWeighted(1)}
}

// Mutate cancels the registered mutation with ErrInterrupted, without waiting
// for it, then runs block once the gate is free. If the mutation is itself
// cancelled while waiting, block never runs and the cause is returned.
//
// A mutation counts as done only once the one it preempted has returned too,
// so Cancel joins the whole chain.
func (m *Mutator) Mutate(ctx context.Context, tag string, block func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	mut := &mutation{tag: tag, cancel: cancel, done: make(chan struct{})}
	defer close(mut.done)

	m.mu.Lock()
	prev := m.current
	if prev != nil {
		prev.cancel(ErrInterrupted)
	}
	m.current = mut
	m.mu.Unlock()
	if prev != nil {
		defer func() { <-prev.done }()
	}
	defer m.unregister(mut)

	if err := m.gate.Acquire(ctx, 1); err != nil {
		return context.Cause(ctx)
	}
	defer m.gate.Release(1)

	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return block(ctx)
}

// TryMutate runs block only when no mutation is registered and the gate is
// free. Otherwise it returns ErrLoadInFlight and has no effect.
func (m *Mutator) TryMutate(ctx context.Context, tag string, block func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	mut := &mutation{tag: tag, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if m.current != nil || !m.gate.TryAcquire(1) {
		m.mu.Unlock()
		return ErrLoadInFlight
	}
	m.current = mut
	m.mu.Unlock()

	defer close(mut.done)
	defer m.unregister(mut)
	defer m.gate.Release(1)

	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return block(ctx)
}

// WithLock runs fn while holding the gate. It neither registers nor cancels a
// mutation, so it waits for a running mutation and cannot be preempted.
func (m *Mutator) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.gate.Acquire(ctx, 1); err != nil {
		return context.Cause(ctx)
	}
	defer m.gate.Release(1)
	return fn(ctx)
}

// Cancel cancels the registered mutation with ErrCanceled and waits until it
// has returned. With tags, only a mutation carrying one of them is cancelled.
func (m *Mutator) Cancel(tags ...string) {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()

	if cur == nil || (len(tags) > 0 && !slices.Contains(tags, cur.tag)) {
		return
	}
	cur.cancel(ErrCanceled)
	<-cur.done
}

// Active returns the tag of the registered mutation.
func (m *Mutator) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", false
	}
	return m.current.tag, true
}

func (m *Mutator) unregister(mut *mutation) {
	m.mu.Lock()
	if m.current == mut {
		m.current = nil
	}
	m.mu.Unlock()
}
