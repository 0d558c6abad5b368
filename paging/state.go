package paging

// State is an immutable snapshot of a Controller. Every transition publishes a
// new value; the Items slice of a published State is never written again.
type State[T any] struct {
	Items []T

	RefreshLoadState LoadState
	AppendLoadState  LoadState

	// LastLoad is the last load that finished without being cancelled.
	LastLoad *LoadOutcome
	// LastSuccess is the last load that finished successfully.
	LastSuccess *SuccessPage
}

// LoadOutcome records a finished load attempt. Page counts pages from the
// refresh page, which is page 0.
type LoadOutcome struct {
	Kind LoadKind
	Page int
	Err  error
}

// Succeeded reports whether the attempt finished without error.
func (o LoadOutcome) Succeeded() bool { return o.Err == nil }

// SuccessPage identifies the last successfully loaded page and its item count.
type SuccessPage struct {
	Page int
	Size int
}

// IsRefreshing reports whether a refresh is in flight.
func (s State[T]) IsRefreshing() bool { return s.RefreshLoadState.IsLoading() }

// IsAppending reports whether an append is in flight.
func (s State[T]) IsAppending() bool { return s.AppendLoadState.IsLoading() }

// IsEmpty reports whether there are no items.
func (s State[T]) IsEmpty() bool { return len(s.Items) == 0 }

// ShowLoadEmpty reports that the last load succeeded but there is nothing to show.
func (s State[T]) ShowLoadEmpty() bool {
	return len(s.Items) == 0 && s.LastLoad != nil && s.LastLoad.Succeeded()
}

// ShowLoadFailure reports that the last load failed and there is nothing to show.
func (s State[T]) ShowLoadFailure() bool {
	return len(s.Items) == 0 && s.LastLoad != nil && !s.LastLoad.Succeeded()
}

// ShowAppendNoMoreData reports that items are shown and no further page exists.
func (s State[T]) ShowAppendNoMoreData() bool {
	if len(s.Items) == 0 {
		return false
	}
	return s.AppendLoadState.EndReached() || (s.LastSuccess != nil && s.LastSuccess.Size == 0)
}

// ShowAppendFailure reports a failure after items were appended past the
// refresh page.
func (s State[T]) ShowAppendFailure() bool {
	return len(s.Items) > 0 &&
		s.LastLoad != nil && !s.LastLoad.Succeeded() &&
		s.LastSuccess != nil && s.LastSuccess.Page > 0
}

func (s State[T]) loadState(kind LoadKind) LoadState {
	if kind == LoadRefresh {
		return s.RefreshLoadState
	}
	return s.AppendLoadState
}

func (s State[T]) withLoadState(kind LoadKind, ls LoadState) State[T] {
	if kind == LoadRefresh {
		s.RefreshLoadState = ls
	} else {
		s.AppendLoadState = ls
	}
	return s
}
