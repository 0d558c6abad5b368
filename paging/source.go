package paging

import (
	"context"
	"fmt"
)

// LoadKind tells a Source why a page is requested.
type LoadKind int

const (
	// LoadRefresh reloads from the refresh key and discards accumulated items.
	LoadRefresh LoadKind = iota
	// LoadAppend loads the page after the accumulated items.
	LoadAppend
)

func (k LoadKind) String() string {
	switch k {
	case LoadRefresh:
		return "refresh"
	case LoadAppend:
		return "append"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// LoadParams identifies the intent and cursor of a load.
type LoadParams[K any] struct {
	Kind LoadKind
	Key  K
}

// Refresh builds refresh parameters for key.
func Refresh[K any](key K) LoadParams[K] {
	return LoadParams[K]{Kind: LoadRefresh, Key: key}
}

// Append builds append parameters for key.
func Append[K any](key K) LoadParams[K] {
	return LoadParams[K]{Kind: LoadAppend, Key: key}
}

// LoadResult is either a page of data or None.
//
// A page with no data and no NextKey is the end of data. None voids the
// attempt: the controller treats it as a cancellation of the calling operation.
type LoadResult[K, V any] struct {
	Data []V
	// NextKey is the cursor of the following page; nil means there is none.
	NextKey *K

	none bool
}

// Page returns a page result.
func Page[K, V any](data []V, nextKey *K) LoadResult[K, V] {
	return LoadResult[K, V]{Data: data, NextKey: nextKey}
}

// None returns the void result.
func None[K, V any]() LoadResult[K, V] {
	return LoadResult[K, V]{none: true}
}

// NextKey returns a pointer to a copy of key, for use with Page.
func NextKey[K any](key K) *K {
	return &key
}

// IsNone reports whether r voids the load.
func (r LoadResult[K, V]) IsNone() bool { return r.none }

// Source loads pages. Implementations must behave idempotently when the same
// key is requested again.
type Source[K, V any] interface {
	Load(ctx context.Context, params LoadParams[K]) (LoadResult[K, V], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[K, V any] func(ctx context.Context, params LoadParams[K]) (LoadResult[K, V], error)

// Load calls f.
func (f SourceFunc[K, V]) Load(ctx context.Context, params LoadParams[K]) (LoadResult[K, V], error) {
	return f(ctx, params)
}

// IntSource is a Source keyed by page number. The function returns the page
// data; valid=false voids the load. The next key is derived as key+1, except
// after an empty page, which ends the data.
type IntSource[V any] func(ctx context.Context, params LoadParams[int]) (data []V, valid bool, err error)

// Load calls f and derives the next key.
func (f IntSource[V]) Load(ctx context.Context, params LoadParams[int]) (LoadResult[int, V], error) {
	data, valid, err := f(ctx, params)
	if err != nil {
		return LoadResult[int, V]{}, err
	}
	if !valid {
		return None[int, V](), nil
	}
	if len(data) == 0 {
		return Page[int, V](data, nil), nil
	}
	return Page(data, NextKey(params.Key+1)), nil
}
