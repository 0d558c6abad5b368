package paging

import (
	"context"
	"slices"
)

// Update is the result of a transform over the item list: either a
// replacement list or Unchanged.
type Update[T any] struct {
	items   []T
	changed bool
}

// Replace returns an Update that replaces the list with items.
func Replace[T any](items []T) Update[T] {
	return Update[T]{items: items, changed: true}
}

// Unchanged returns an Update that keeps the current list.
func Unchanged[T any]() Update[T] {
	return Update[T]{}
}

// Changed reports whether u replaces the list.
func (u Update[T]) Changed() bool { return u.changed }

// Items returns the replacement list. It is nil for Unchanged.
func (u Update[T]) Items() []T { return u.items }

// Apply returns the list that results from applying u to current.
func (u Update[T]) Apply(current []T) []T {
	if !u.changed {
		return current
	}
	return u.items
}

// DataHandler merges a loaded page into the total list. It must not modify
// total or page; both may be shared with published snapshots.
type DataHandler[K, V any] interface {
	Handle(ctx context.Context, total []V, params LoadParams[K], page []V) (Update[V], error)
}

// DataHandlerFunc adapts a function to DataHandler.
type DataHandlerFunc[K, V any] func(ctx context.Context, total []V, params LoadParams[K], page []V) (Update[V], error)

// Handle calls f.
func (f DataHandlerFunc[K, V]) Handle(ctx context.Context, total []V, params LoadParams[K], page []V) (Update[V], error) {
	return f(ctx, total, params, page)
}

// MergeFunc is a pure merge step used by DefaultDataHandler.
type MergeFunc[K, V any] func(total []V, params LoadParams[K], page []V) Update[V]

// DefaultDataHandler replaces the list on refresh and concatenates on append.
// Either step can be overridden and moved to a Dispatcher.
type DefaultDataHandler[K, V any] struct {
	// RefreshMerge overrides the refresh step. Nil replaces the list with the page.
	RefreshMerge MergeFunc[K, V]
	// AppendMerge overrides the append step. Nil concatenates non-empty pages.
	AppendMerge MergeFunc[K, V]

	// RefreshDispatcher runs the refresh step. Nil runs it inline.
	RefreshDispatcher Dispatcher
	// AppendDispatcher runs the append step. Nil runs it inline.
	AppendDispatcher Dispatcher
}

// NewDefaultDataHandler returns the default handler with appends merged on
// the Background pool.
func NewDefaultDataHandler[K, V any]() *DefaultDataHandler[K, V] {
	return &DefaultDataHandler[K, V]{AppendDispatcher: Background}
}

// Handle runs the refresh or append merge step.
func (h *DefaultDataHandler[K, V]) Handle(ctx context.Context, total []V, params LoadParams[K], page []V) (Update[V], error) {
	merge, dispatcher := h.RefreshMerge, h.RefreshDispatcher
	if merge == nil {
		merge = RefreshData[K, V]
	}
	if params.Kind == LoadAppend {
		merge, dispatcher = h.AppendMerge, h.AppendDispatcher
		if merge == nil {
			merge = AppendData[K, V]
		}
	}
	if dispatcher == nil {
		dispatcher = Inline()
	}

	var out Update[V]
	if err := dispatcher.Dispatch(ctx, func() { out = merge(total, params, page) }); err != nil {
		return Update[V]{}, err
	}
	return out, nil
}

// RefreshData is the default refresh merge: the page replaces the list.
func RefreshData[K, V any](_ []V, _ LoadParams[K], page []V) Update[V] {
	return Replace(slices.Clone(page))
}

// AppendData is the default append merge: a non-empty page is appended into a
// fresh backing array.
func AppendData[K, V any](total []V, _ LoadParams[K], page []V) Update[V] {
	if len(page) == 0 {
		return Unchanged[V]()
	}
	return Replace(slices.Concat(total, page))
}
