package paging

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []LoadParams[int]
	load  func(ctx context.Context, p LoadParams[int]) (LoadResult[int, string], error)
}

func (s *fakeSource) Load(ctx context.Context, p LoadParams[int]) (LoadResult[int, string], error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	s.mu.Unlock()
	return s.load(ctx, p)
}

func (s *fakeSource) Calls() []LoadParams[int] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// pages serves fixed pages keyed by page number through IntSource.
func pages(m map[int][]string) *fakeSource {
	src := IntSource[string](func(_ context.Context, p LoadParams[int]) ([]string, bool, error) {
		return m[p.Key], true, nil
	})
	return &fakeSource{load: src.Load}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) LoadStarted(name string, kind LoadKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("%s started %s", name, kind))
}

func (o *recordingObserver) LoadFinished(name string, kind LoadKind, outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("%s %s %s", name, kind, outcome))
}

func (o *recordingObserver) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.events)
}

func TestControllerInitialState(t *testing.T) {
	c := New[int, string](1, pages(nil))
	s := c.State()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, Incomplete, s.RefreshLoadState)
	assert.Equal(t, Incomplete, s.AppendLoadState)
	assert.Nil(t, s.LastLoad)
	assert.False(t, s.ShowLoadEmpty())
	assert.Equal(t, "paging", c.Name())
}

func TestControllerRefreshThenEmptyAppend(t *testing.T) {
	ctx := context.Background()
	src := pages(map[int][]string{1: {"1", "2"}})
	c := New[int, string](1, src)

	require.NoError(t, c.Refresh(ctx))
	s := c.State()
	assert.Equal(t, []string{"1", "2"}, s.Items)
	assert.Equal(t, Incomplete, s.RefreshLoadState)
	assert.Equal(t, Incomplete, s.AppendLoadState)

	require.NoError(t, c.Append(ctx))
	s = c.State()
	assert.Equal(t, []string{"1", "2"}, s.Items)
	assert.Equal(t, Complete, s.AppendLoadState)
	assert.True(t, s.ShowAppendNoMoreData())
	assert.Equal(t, &SuccessPage{Page: 1, Size: 0}, s.LastSuccess)

	// An empty page does not move the cursor.
	require.NoError(t, c.Append(ctx))
	assert.Equal(t, []LoadParams[int]{Refresh(1), Append(2), Append(2)}, src.Calls())
}

func TestControllerAppendAdvances(t *testing.T) {
	ctx := context.Background()
	src := pages(map[int][]string{1: {"a"}, 2: {"b"}, 3: {"c"}})
	c := New[int, string](1, src)

	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.Append(ctx))
	require.NoError(t, c.Append(ctx))

	s := c.State()
	assert.Equal(t, []string{"a", "b", "c"}, s.Items)
	assert.Equal(t, &SuccessPage{Page: 2, Size: 1}, s.LastSuccess)
	assert.Equal(t, []LoadParams[int]{Refresh(1), Append(2), Append(3)}, src.Calls())
}

func TestControllerAppendStopsAtEnd(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{load: func(_ context.Context, p LoadParams[int]) (LoadResult[int, string], error) {
		return Page[int]([]string{"only"}, nil), nil
	}}
	c := New[int, string](1, src)

	require.NoError(t, c.Refresh(ctx))
	s := c.State()
	assert.Equal(t, Complete, s.RefreshLoadState)
	assert.Equal(t, Complete, s.AppendLoadState)
	assert.True(t, s.ShowAppendNoMoreData())

	require.NoError(t, c.Append(ctx))
	assert.Len(t, src.Calls(), 1)
}

func TestControllerAppendOnEmptyRefreshes(t *testing.T) {
	src := pages(map[int][]string{1: {"a"}})
	c := New[int, string](1, src)

	require.NoError(t, c.Append(context.Background()))
	assert.Equal(t, []LoadParams[int]{Refresh(1)}, src.Calls())
	assert.Equal(t, []string{"a"}, c.State().Items)
}

func TestControllerEmptyRefresh(t *testing.T) {
	c := New[int, string](1, pages(nil))

	require.NoError(t, c.Refresh(context.Background()))
	s := c.State()
	assert.True(t, s.ShowLoadEmpty())
	assert.Equal(t, Complete, s.RefreshLoadState)
	assert.False(t, s.ShowAppendNoMoreData())
}

func TestControllerRefreshFailure(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{load: func(context.Context, LoadParams[int]) (LoadResult[int, string], error) {
		return LoadResult[int, string]{}, boom
	}}
	c := New[int, string](1, src)

	err := c.Refresh(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, LoadRefresh, loadErr.Kind)
	assert.Equal(t, 1, loadErr.Key)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsCanceled(err))

	s := c.State()
	assert.True(t, s.RefreshLoadState.IsFailed())
	assert.ErrorIs(t, s.RefreshLoadState.Err(), boom)
	assert.Equal(t, Incomplete, s.AppendLoadState)
	assert.True(t, s.ShowLoadFailure())
	assert.Nil(t, s.LastSuccess)
}

func TestControllerAppendFailureKeepsItems(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	src := &fakeSource{load: func(_ context.Context, p LoadParams[int]) (LoadResult[int, string], error) {
		switch p.Key {
		case 1:
			return Page([]string{"a"}, NextKey(2)), nil
		case 2:
			return Page([]string{"b"}, NextKey(3)), nil
		default:
			return LoadResult[int, string]{}, boom
		}
	}}
	c := New[int, string](1, src)

	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.Append(ctx))

	err := c.Append(ctx)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, LoadAppend, loadErr.Kind)

	s := c.State()
	assert.Equal(t, []string{"a", "b"}, s.Items)
	assert.True(t, s.AppendLoadState.IsFailed())
	assert.Equal(t, Incomplete, s.RefreshLoadState)
	assert.True(t, s.ShowAppendFailure())
	assert.Equal(t, 2, s.LastLoad.Page)

	// The failed key is requested again.
	_ = c.Append(ctx)
	calls := src.Calls()
	assert.Equal(t, Append(3), calls[len(calls)-1])
	assert.Equal(t, Append(3), calls[len(calls)-2])
}

func TestControllerPublishesLoading(t *testing.T) {
	var c *Controller[int, string]
	var seen State[string]
	src := &fakeSource{load: func(context.Context, LoadParams[int]) (LoadResult[int, string], error) {
		seen = c.State()
		return Page([]string{"a"}, NextKey(2)), nil
	}}
	c = New[int, string](1, src)

	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, seen.IsRefreshing())
	assert.False(t, seen.IsAppending())
	assert.False(t, c.State().IsRefreshing())
}

func TestControllerSubscribe(t *testing.T) {
	c := New[int, string](1, pages(map[int][]string{1: {"a"}}))
	states, stop := c.Subscribe()
	defer stop()

	assert.True(t, (<-states).IsEmpty())

	require.NoError(t, c.Refresh(context.Background()))
	s := <-states
	assert.Equal(t, []string{"a"}, s.Items)
	assert.Equal(t, Incomplete, s.RefreshLoadState)
}

func TestControllerAppendRejectedWhileLoading(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{load: func(context.Context, LoadParams[int]) (LoadResult[int, string], error) {
		close(entered)
		<-release
		return Page([]string{"a"}, NextKey(2)), nil
	}}
	c := New[int, string](1, src)

	errc := make(chan error, 1)
	go func() { errc <- c.Refresh(ctx) }()
	<-entered

	assert.ErrorIs(t, c.Append(ctx), ErrLoadInFlight)
	close(release)
	require.NoError(t, <-errc)

	assert.Len(t, src.Calls(), 1)
	assert.Equal(t, []string{"a"}, c.State().Items)
}

func TestControllerRefreshInterruptsAppend(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	src := &fakeSource{load: func(ctx context.Context, p LoadParams[int]) (LoadResult[int, string], error) {
		if p.Kind == LoadAppend {
			close(entered)
			<-ctx.Done()
			return LoadResult[int, string]{}, ctx.Err()
		}
		return Page([]string{"1", "2"}, NextKey(2)), nil
	}}
	c := New[int, string](1, src)
	require.NoError(t, c.Refresh(ctx))

	errc := make(chan error, 1)
	go func() { errc <- c.Append(ctx) }()
	<-entered

	require.NoError(t, c.Refresh(ctx))
	err := <-errc
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.True(t, IsCanceled(err))

	s := c.State()
	assert.Equal(t, []string{"1", "2"}, s.Items)
	assert.Equal(t, Incomplete, s.AppendLoadState)
	assert.True(t, s.LastLoad.Succeeded())
	assert.Equal(t, LoadRefresh, s.LastLoad.Kind)
}

func TestControllerRefreshInterruptsRefresh(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	var once sync.Once
	src := &fakeSource{}
	src.load = func(ctx context.Context, p LoadParams[int]) (LoadResult[int, string], error) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(entered)
			<-ctx.Done()
			return Page([]string{"stale"}, NextKey(2)), nil
		}
		return Page([]string{"fresh"}, NextKey(2)), nil
	}
	c := New[int, string](1, src)

	errc := make(chan error, 1)
	go func() { errc <- c.Refresh(ctx) }()
	<-entered

	require.NoError(t, c.Refresh(ctx))
	assert.ErrorIs(t, <-errc, ErrInterrupted)
	assert.Equal(t, []string{"fresh"}, c.State().Items)
}

func TestControllerCancelRefresh(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	src := &fakeSource{load: func(ctx context.Context, _ LoadParams[int]) (LoadResult[int, string], error) {
		close(entered)
		<-ctx.Done()
		return LoadResult[int, string]{}, ctx.Err()
	}}
	obs := &recordingObserver{}
	c := New[int, string](1, src, WithName("feed"), WithObserver(obs))

	errc := make(chan error, 1)
	go func() { errc <- c.Refresh(ctx) }()
	<-entered

	c.CancelAppend()
	assert.True(t, c.State().IsRefreshing())

	c.CancelRefresh()
	s := c.State()
	assert.Equal(t, Incomplete, s.RefreshLoadState)
	assert.Nil(t, s.LastLoad)
	assert.ErrorIs(t, <-errc, ErrCanceled)
	assert.Equal(t, []string{"feed started refresh", "feed refresh canceled"}, obs.Events())
}

func TestControllerCancelLoadJoinsPreemptedRefresh(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	interrupted := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	src := &fakeSource{}
	src.load = func(ctx context.Context, _ LoadParams[int]) (LoadResult[int, string], error) {
		first := false
		once.Do(func() { first = true })
		if !first {
			return Page([]string{"fresh"}, NextKey(2)), nil
		}
		close(entered)
		<-ctx.Done()
		close(interrupted)
		// Keeps loading after the interrupt.
		<-release
		return Page([]string{"stale"}, NextKey(2)), nil
	}
	obs := &recordingObserver{}
	c := New[int, string](1, src, WithName("feed"), WithObserver(obs))

	first := make(chan error, 1)
	go func() { first <- c.Refresh(ctx) }()
	<-entered

	second := make(chan error, 1)
	go func() { second <- c.Refresh(ctx) }()
	<-interrupted

	canceled := make(chan struct{})
	go func() {
		c.CancelLoad()
		close(canceled)
	}()
	select {
	case <-canceled:
		t.Fatal("CancelLoad returned while the interrupted refresh was still loading")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("CancelLoad did not return")
	}

	states, stop := c.Subscribe()
	defer stop()
	<-states
	select {
	case s := <-states:
		t.Fatalf("publish after CancelLoad returned: %+v", s)
	case <-time.After(20 * time.Millisecond):
	}

	assert.ErrorIs(t, <-first, ErrInterrupted)
	assert.ErrorIs(t, <-second, ErrCanceled)
	assert.Len(t, src.Calls(), 1)
	assert.True(t, c.State().IsEmpty())
	assert.Equal(t, Incomplete, c.State().RefreshLoadState)
	assert.Equal(t, []string{"feed started refresh", "feed refresh canceled"}, obs.Events())
}

func TestControllerVoidLoad(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{load: func(_ context.Context, p LoadParams[int]) (LoadResult[int, string], error) {
		if p.Kind == LoadRefresh {
			return Page([]string{"a"}, NextKey(2)), nil
		}
		return None[int, string](), nil
	}}
	c := New[int, string](1, src)
	require.NoError(t, c.Refresh(ctx))
	before := c.State()

	err := c.Append(ctx)
	assert.ErrorIs(t, err, ErrLoadVoid)
	assert.True(t, IsCanceled(err))

	after := c.State()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.AppendLoadState, after.AppendLoadState)
	assert.Equal(t, before.LastLoad, after.LastLoad)
}

func TestControllerObserver(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	src := &fakeSource{load: func(_ context.Context, p LoadParams[int]) (LoadResult[int, string], error) {
		if p.Kind == LoadAppend {
			return LoadResult[int, string]{}, boom
		}
		return Page([]string{"a"}, NextKey(2)), nil
	}}
	obs := &recordingObserver{}
	c := New[int, string](1, src, WithName("logs"), WithObserver(obs))

	require.NoError(t, c.Refresh(ctx))
	require.Error(t, c.Append(ctx))

	assert.Equal(t, []string{
		"logs started refresh",
		"logs refresh success",
		"logs started append",
		"logs append failure",
	}, obs.Events())
}

func TestControllerModify(t *testing.T) {
	ctx := context.Background()
	c := New[int, string](1, pages(map[int][]string{1: {"a", "b"}}))
	require.NoError(t, c.Refresh(ctx))
	published := c.State()

	err := c.Modify(ctx, func(_ context.Context, items []string) (Update[string], error) {
		return Replace(append(slices.Clone(items), "c")), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, c.State().Items)
	assert.Equal(t, []string{"a", "b"}, published.Items)
	assert.Equal(t, published.RefreshLoadState, c.State().RefreshLoadState)
}

func TestControllerModifyUnchangedSkipsPublish(t *testing.T) {
	c := New[int, string](1, pages(nil))
	states, stop := c.Subscribe()
	defer stop()
	<-states

	err := c.Modify(context.Background(), func(context.Context, []string) (Update[string], error) {
		return Unchanged[string](), nil
	})
	require.NoError(t, err)

	select {
	case s := <-states:
		t.Fatalf("unexpected publish: %+v", s)
	default:
	}
}

func TestControllerModifyError(t *testing.T) {
	boom := errors.New("boom")
	c := New[int, string](1, pages(nil))

	err := c.Modify(context.Background(), func(context.Context, []string) (Update[string], error) {
		return Replace([]string{"x"}), boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, c.State().IsEmpty())
}

func TestControllerModifyRejectsReentrantCalls(t *testing.T) {
	c := New[int, string](1, pages(map[int][]string{1: {"a"}}))

	var refreshErr, appendErr, modifyErr error
	err := c.Modify(context.Background(), func(ctx context.Context, _ []string) (Update[string], error) {
		refreshErr = c.Refresh(ctx)
		appendErr = c.Append(ctx)
		modifyErr = c.Modify(ctx, func(context.Context, []string) (Update[string], error) {
			return Unchanged[string](), nil
		})
		return Unchanged[string](), nil
	})
	require.NoError(t, err)

	for op, err := range map[string]error{"refresh": refreshErr, "append": appendErr, "modify": modifyErr} {
		var re *ReentrancyError
		require.ErrorAs(t, err, &re, op)
		assert.Equal(t, op, re.Op)
		assert.ErrorIs(t, err, ErrReentrant)
	}
}

func TestControllerModifyAllowsOtherControllers(t *testing.T) {
	ctx := context.Background()
	a := New[int, string](1, pages(nil))
	b := New[int, string](1, pages(map[int][]string{1: {"b"}}))

	err := a.Modify(ctx, func(ctx context.Context, _ []string) (Update[string], error) {
		return Unchanged[string](), b.Refresh(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, b.State().Items)
}

func TestControllerModifyWaitsForLoad(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{load: func(context.Context, LoadParams[int]) (LoadResult[int, string], error) {
		close(entered)
		<-release
		return Page([]string{"a"}, NextKey(2)), nil
	}}
	c := New[int, string](1, src)

	refreshErr := make(chan error, 1)
	go func() { refreshErr <- c.Refresh(ctx) }()
	<-entered

	var seen []string
	modified := make(chan error, 1)
	go func() {
		modified <- c.Modify(ctx, func(_ context.Context, items []string) (Update[string], error) {
			seen = items
			return Replace(append(slices.Clone(items), "m")), nil
		})
	}()

	select {
	case <-modified:
		t.Fatal("modify ran while a load held the gate")
	case <-time.After(20 * time.Millisecond):
	}

	// Append is rejected while the refresh is registered.
	assert.ErrorIs(t, c.Append(ctx), ErrLoadInFlight)

	close(release)
	require.NoError(t, <-refreshErr)
	require.NoError(t, <-modified)
	assert.Equal(t, []string{"a"}, seen)
	assert.Equal(t, []string{"a", "m"}, c.State().Items)
}

func TestControllerAppendRejectedDuringModify(t *testing.T) {
	ctx := context.Background()
	c := New[int, string](1, pages(map[int][]string{1: {"a"}, 2: {"b"}}))
	require.NoError(t, c.Refresh(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	modified := make(chan error, 1)
	go func() {
		modified <- c.Modify(ctx, func(context.Context, []string) (Update[string], error) {
			close(entered)
			<-release
			return Unchanged[string](), nil
		})
	}()
	<-entered

	assert.ErrorIs(t, c.Append(ctx), ErrLoadInFlight)
	close(release)
	require.NoError(t, <-modified)

	require.NoError(t, c.Append(ctx))
	assert.Equal(t, []string{"a", "b"}, c.State().Items)
}

func TestControllerModifyRejectsDerivedContext(t *testing.T) {
	c := New[int, string](1, pages(map[int][]string{1: {"a"}}))

	err := c.Modify(context.Background(), func(ctx context.Context, _ []string) (Update[string], error) {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		return Unchanged[string](), c.Refresh(ctx)
	})
	var re *ReentrancyError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "refresh", re.Op)
}

func TestControllerModifyUnrelatedContextWaitsForGate(t *testing.T) {
	c := New[int, string](1, pages(map[int][]string{1: {"a"}}))

	var refreshErr, modifyErr error
	err := c.Modify(context.Background(), func(context.Context, []string) (Update[string], error) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		refreshErr = c.Refresh(ctx)
		modifyErr = c.Modify(ctx, func(context.Context, []string) (Update[string], error) {
			return Replace([]string{"x"}), nil
		})
		return Unchanged[string](), nil
	})
	require.NoError(t, err)

	for op, err := range map[string]error{"refresh": refreshErr, "modify": modifyErr} {
		assert.ErrorIs(t, err, context.DeadlineExceeded, op)
		assert.True(t, IsCanceled(err), op)
		assert.NotErrorIs(t, err, ErrReentrant, op)
	}
	assert.True(t, c.State().IsEmpty())
}
