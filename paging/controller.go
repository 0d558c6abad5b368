package paging

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	tagRefresh = "refresh"
	tagAppend  = "append"
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	name     string
	log      logrus.FieldLogger
	observer Observer
}

// WithName labels the controller in logs and observer calls.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithObserver sets the load observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// Controller drives refresh, append and modify against a Source and
// publishes the resulting State.
//
// Refresh and append share one Mutator: a refresh cancels any load in flight
// and takes over, while an append is rejected with ErrLoadInFlight when any
// load is registered. Modify waits for the same gate and is never cancelled
// by a load.
type Controller[K, V any] struct {
	refreshKey K
	source     Source[K, V]
	handler    DataHandler[K, V]

	name     string
	log      logrus.FieldLogger
	observer Observer

	mutator *Mutator
	stream  *Stream[State[V]]

	// Guarded by the mutator gate.
	appendKey *K
	page      int
}

// New returns a Controller using the default data handler.
func New[K, V any](refreshKey K, source Source[K, V], opts ...Option) *Controller[K, V] {
	return NewWithHandler(refreshKey, source, NewDefaultDataHandler[K, V](), opts...)
}

// NewWithHandler returns a Controller merging pages with handler.
func NewWithHandler[K, V any](refreshKey K, source Source[K, V], handler DataHandler[K, V], opts ...Option) *Controller[K, V] {
	o := options{name: "paging", observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.log = discard
	}
	return &Controller[K, V]{
		refreshKey: refreshKey,
		source:     source,
		handler:    handler,
		name:       o.name,
		log:        o.log.WithField("feed", o.name),
		observer:   o.observer,
		mutator:    NewMutator(),
		stream:     NewStream(State[V]{}),
	}
}

// Name returns the controller label.
func (c *Controller[K, V]) Name() string { return c.name }

// State returns the latest snapshot.
func (c *Controller[K, V]) State() State[V] { return c.stream.Value() }

// Subscribe returns a channel replaying the latest snapshot followed by
// every later one, latest wins. Call the returned func to stop.
func (c *Controller[K, V]) Subscribe() (<-chan State[V], func()) {
	return c.stream.Subscribe()
}

// Refresh reloads from the refresh key, replacing all items. A load already
// in flight is cancelled first. Cancellation is returned as an error matching
// IsCanceled and leaves the refresh state as it was; a failed load is
// recorded in RefreshLoadState and returned as a *LoadError.
func (c *Controller[K, V]) Refresh(ctx context.Context) error {
	if c.inModify(ctx) {
		return &ReentrancyError{Op: "refresh"}
	}
	return c.mutator.Mutate(ctx, tagRefresh, func(ctx context.Context) error {
		return c.load(ctx, Refresh(c.refreshKey), 0)
	})
}

// Append loads the next page. It returns ErrLoadInFlight without loading
// when any load is in flight, forwards to Refresh while there are no items,
// and does nothing once the end of pagination was reached.
func (c *Controller[K, V]) Append(ctx context.Context) error {
	if c.inModify(ctx) {
		return &ReentrancyError{Op: "append"}
	}
	if _, busy := c.mutator.Active(); busy {
		return ErrLoadInFlight
	}
	if c.State().IsEmpty() {
		return c.Refresh(ctx)
	}
	return c.mutator.TryMutate(ctx, tagAppend, func(ctx context.Context) error {
		if c.appendKey == nil {
			c.log.Debug("append skipped: end of pagination")
			return nil
		}
		return c.load(ctx, Append(*c.appendKey), c.page+1)
	})
}

// Modify replaces the items with the result of transform. The context passed
// to transform, or one derived from it, must be used for any call back into
// the controller; such calls fail with a *ReentrancyError instead of
// deadlocking. A call made with an unrelated context is indistinguishable
// from another caller, so it waits for the gate and only returns once that
// context is done.
func (c *Controller[K, V]) Modify(ctx context.Context, transform func(ctx context.Context, items []V) (Update[V], error)) error {
	if c.inModify(ctx) {
		return &ReentrancyError{Op: "modify"}
	}
	return c.mutator.WithLock(ctx, func(ctx context.Context) error {
		scoped := context.WithValue(ctx, modifyScope{owner: c}, true)
		update, err := transform(scoped, c.State().Items)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if !update.Changed() {
			return nil
		}
		c.stream.Update(func(s State[V]) State[V] {
			s.Items = update.Items()
			return s
		})
		return nil
	})
}

// CancelRefresh cancels an in-flight refresh and waits for it to unwind.
func (c *Controller[K, V]) CancelRefresh() { c.mutator.Cancel(tagRefresh) }

// CancelAppend cancels an in-flight append and waits for it to unwind.
func (c *Controller[K, V]) CancelAppend() { c.mutator.Cancel(tagAppend) }

// CancelLoad cancels whichever load is in flight and waits for it to unwind.
func (c *Controller[K, V]) CancelLoad() { c.mutator.Cancel() }

type modifyScope struct {
	owner any
}

func (c *Controller[K, V]) inModify(ctx context.Context) bool {
	return ctx.Value(modifyScope{owner: c}) != nil
}

// load runs under the mutator gate.
func (c *Controller[K, V]) load(ctx context.Context, params LoadParams[K], page int) error {
	kind := params.Kind
	log := c.log.WithFields(logrus.Fields{
		"op":      kind.String(),
		"key":     params.Key,
		"load_id": uuid.NewString(),
	})

	prev := c.State().loadState(kind)
	c.stream.Update(func(s State[V]) State[V] {
		return s.withLoadState(kind, Loading)
	})
	c.observer.LoadStarted(c.name, kind)
	log.Debug("load started")
	started := time.Now()

	result, update, err := c.fetch(ctx, params)
	elapsed := time.Since(started)

	if err != nil && canceled(ctx, err) {
		err = cancelCause(ctx, err)
		c.stream.Update(func(s State[V]) State[V] {
			return s.withLoadState(kind, prev)
		})
		c.observer.LoadFinished(c.name, kind, OutcomeCanceled, elapsed)
		log.WithError(err).Debug("load canceled")
		return err
	}

	if err != nil {
		c.stream.Update(func(s State[V]) State[V] {
			s = s.withLoadState(kind, Failed(err))
			s.LastLoad = &LoadOutcome{Kind: kind, Page: page, Err: err}
			return s
		})
		c.observer.LoadFinished(c.name, kind, OutcomeFailure, elapsed)
		log.WithError(err).Warn("load failed")
		return &LoadError{Kind: kind, Key: params.Key, Err: err}
	}

	end := result.NextKey == nil
	size := len(result.Data)
	c.advance(kind, result.NextKey, size, page)
	c.stream.Update(func(s State[V]) State[V] {
		s.Items = update.Apply(s.Items)
		if kind == LoadRefresh {
			s.RefreshLoadState = NotLoading(end)
		}
		s.AppendLoadState = NotLoading(end)
		s.LastLoad = &LoadOutcome{Kind: kind, Page: page}
		s.LastSuccess = &SuccessPage{Page: page, Size: size}
		return s
	})
	c.observer.LoadFinished(c.name, kind, OutcomeSuccess, elapsed)
	log.WithFields(logrus.Fields{
		"size":    size,
		"end":     end,
		"elapsed": elapsed,
	}).Debug("load finished")
	return nil
}

// fetch loads a page and merges it, checking for cancellation after each
// step that may suspend.
func (c *Controller[K, V]) fetch(ctx context.Context, params LoadParams[K]) (LoadResult[K, V], Update[V], error) {
	result, err := c.source.Load(ctx, params)
	if err != nil {
		return result, Update[V]{}, err
	}
	if ctx.Err() != nil {
		return result, Update[V]{}, context.Cause(ctx)
	}
	if result.IsNone() {
		return result, Update[V]{}, ErrLoadVoid
	}

	update, err := c.handler.Handle(ctx, c.State().Items, params, result.Data)
	if err != nil {
		return result, Update[V]{}, err
	}
	if ctx.Err() != nil {
		return result, Update[V]{}, context.Cause(ctx)
	}
	return result, update, nil
}

// advance moves the append cursor after a successful load. After a refresh
// the cursor is the returned next key. After an append an empty page keeps
// the same key so the page is requested again, and a non-empty page moves to
// the next key, or ends pagination when there is none.
func (c *Controller[K, V]) advance(kind LoadKind, next *K, size, page int) {
	if kind == LoadRefresh {
		c.appendKey = next
		c.page = 0
		return
	}
	if size == 0 {
		return
	}
	c.appendKey = next
	c.page = page
}
