package paging

import (
	"context"
	"fmt"
	"slices"
)

// Modifiable is implemented by Controller.
type Modifiable[T any] interface {
	Modify(ctx context.Context, transform func(ctx context.Context, items []T) (Update[T], error)) error
}

// Modifier offers list edits on top of Modify. Every edit is serialized with
// loads through the controller, and the transforms run on a Dispatcher.
type Modifier[T any] struct {
	target     Modifiable[T]
	equal      func(a, b T) bool
	dispatcher Dispatcher
}

// NewModifier returns a Modifier comparing items with ==.
func NewModifier[T comparable](target Modifiable[T]) *Modifier[T] {
	return NewModifierFunc(target, func(a, b T) bool { return a == b })
}

// NewModifierFunc returns a Modifier comparing items with equal.
func NewModifierFunc[T any](target Modifiable[T], equal func(a, b T) bool) *Modifier[T] {
	return &Modifier[T]{target: target, equal: equal, dispatcher: Background}
}

// WithDispatcher returns a copy of m running transforms on d.
func (m *Modifier[T]) WithDispatcher(d Dispatcher) *Modifier[T] {
	cp := *m
	cp.dispatcher = d
	return &cp
}

// Modify runs fn on the dispatcher inside the controller's modify block.
func (m *Modifier[T]) Modify(ctx context.Context, fn func(items []T) (Update[T], error)) error {
	return m.target.Modify(ctx, func(ctx context.Context, items []T) (Update[T], error) {
		var (
			out Update[T]
			err error
		)
		if derr := m.dispatcher.Dispatch(ctx, func() { out, err = fn(items) }); derr != nil {
			return Update[T]{}, derr
		}
		return out, err
	})
}

// ReplaceFirst replaces the first item that fn changes.
func (m *Modifier[T]) ReplaceFirst(ctx context.Context, fn func(T) T) error {
	return m.Modify(ctx, func(items []T) (Update[T], error) {
		for i, item := range items {
			if next := fn(item); !m.equal(next, item) {
				return Replace(replaceAt(items, i, next)), nil
			}
		}
		return Unchanged[T](), nil
	})
}

// ReplaceLast replaces the last item that fn changes.
func (m *Modifier[T]) ReplaceLast(ctx context.Context, fn func(T) T) error {
	return m.Modify(ctx, func(items []T) (Update[T], error) {
		for i := len(items) - 1; i >= 0; i-- {
			if next := fn(items[i]); !m.equal(next, items[i]) {
				return Replace(replaceAt(items, i, next)), nil
			}
		}
		return Unchanged[T](), nil
	})
}

// ReplaceAll replaces every item that fn changes.
func (m *Modifier[T]) ReplaceAll(ctx context.Context, fn func(T) T) error {
	return m.Modify(ctx, func(items []T) (Update[T], error) {
		var out []T
		for i, item := range items {
			next := fn(item)
			if m.equal(next, item) {
				continue
			}
			if out == nil {
				out = slices.Clone(items)
			}
			out[i] = next
		}
		if out == nil {
			return Unchanged[T](), nil
		}
		return Replace(out), nil
	})
}

// ReplaceFirstValue replaces the first item equal to oldItem with newItem.
func (m *Modifier[T]) ReplaceFirstValue(ctx context.Context, oldItem, newItem T) error {
	return m.ReplaceFirst(ctx, m.swap(oldItem, newItem))
}

// ReplaceLastValue replaces the last item equal to oldItem with newItem.
func (m *Modifier[T]) ReplaceLastValue(ctx context.Context, oldItem, newItem T) error {
	return m.ReplaceLast(ctx, m.swap(oldItem, newItem))
}

// ReplaceAllValue replaces every item equal to oldItem with newItem.
func (m *Modifier[T]) ReplaceAllValue(ctx context.Context, oldItem, newItem T) error {
	return m.ReplaceAll(ctx, m.swap(oldItem, newItem))
}

// RemoveFirst removes the first item matching pred.
func (m *Modifier[T]) RemoveFirst(ctx context.Context, pred func(T) bool) error {
	return m.Modify(ctx, func(items []T) (Update[T], error) {
		i := slices.IndexFunc(items, pred)
		if i < 0 {
			return Unchanged[T](), nil
		}
		return Replace(removeAt(items, i)), nil
	})
}

// RemoveLast removes the last item matching pred.
func (m *Modifier[T]) RemoveLast(ctx context.Context, pred func(T) bool) error {
	return m.Modify(ctx, func(items []T) (Update[T], error) {
		for i := len(items) - 1; i >= 0; i-- {
			if pred(items[i]) {
				return Replace(removeAt(items, i)), nil
			}
		}
		return Unchanged[T](), nil
	})
}

// RemoveAll removes every item matching pred.
func (m *Modifier[T]) RemoveAll(ctx context.Context, pred func(T) bool) error {
	return m.Modify(ctx, func(items []T) (Update[T], error) {
		if !slices.ContainsFunc(items, pred) {
			return Unchanged[T](), nil
		}
		return Replace(slices.DeleteFunc(slices.Clone(items), pred)), nil
	})
}

// Insert inserts item at index.
func (m *Modifier[T]) Insert(ctx context.Context, index int, item T) error {
	return m.InsertAll(ctx, index, item)
}

// InsertAll inserts items at index, keeping their order.
func (m *Modifier[T]) InsertAll(ctx context.Context, index int, items ...T) error {
	return m.Modify(ctx, func(current []T) (Update[T], error) {
		if index < 0 || index > len(current) {
			return Update[T]{}, fmt.Errorf("paging: insert index %d out of range [0,%d]", index, len(current))
		}
		out := make([]T, 0, len(current)+len(items))
		out = append(out, current[:index]...)
		out = append(out, items...)
		out = append(out, current[index:]...)
		return Replace(out), nil
	})
}

func (m *Modifier[T]) swap(oldItem, newItem T) func(T) T {
	return func(item T) T {
		if m.equal(item, oldItem) {
			return newItem
		}
		return item
	}
}

func replaceAt[T any](items []T, i int, item T) []T {
	out := slices.Clone(items)
	out[i] = item
	return out
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
