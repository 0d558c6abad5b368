// Package paging loads cursor-keyed pages into one observable list.
//
// # Overview
//
// A Controller owns the accumulated items of a paged feed and two load axes:
// refresh (reload from the first key, replacing the items) and append (load
// the page after the items). Every transition publishes a new immutable
// State, which observers read lock-free or receive through Subscribe.
//
//	Caller                 Controller                       Source
//	┌──────────┐          ┌──────────────────────┐         ┌──────────┐
//	│ Refresh  │─────────→│ Mutator (one gate)   │────────→│ Load     │
//	│ Append   │          │   ↓                  │←────────│ Page/None│
//	│ Modify   │          │ DataHandler merge    │         └──────────┘
//	└──────────┘          │   ↓                  │
//	                      │ Stream.Update(State) │───→ subscribers
//	                      └──────────────────────┘
//
// # Load States
//
// Each axis holds exactly one LoadState:
//
//	NotLoading(endReached)  Incomplete / Complete
//	Loading
//	Failed(err)
//
// Both start Incomplete. A load sets Loading, then a rest or Failed state.
// A cancelled load restores whatever the axis held before it started.
//
// # Concurrency
//
// Refresh and append share one Mutator:
//
//   - Refresh cancels the load in flight (with ErrInterrupted) and waits for
//     the gate, so the newest refresh always wins.
//   - Append never waits: while any load is registered it fails with
//     ErrLoadInFlight and the in-flight load completes normally.
//   - Modify waits for the gate and is never cancelled by a load.
//   - CancelRefresh, CancelAppend and CancelLoad cancel and then join, so no
//     State is published by the cancelled load after they return.
//
// # Errors
//
// Three classes of error come back from the operations:
//
//   - cancellation: ErrInterrupted, ErrLoadInFlight, ErrLoadVoid, ErrCanceled
//     or the caller's context error. IsCanceled reports all of them. They are
//     never stored in State.
//   - load failure: *LoadError. The cause is also stored as Failed(err) on
//     the axis and the items are left untouched.
//   - contract violation: *ReentrancyError, returned when a modify block
//     calls Refresh, Append or Modify on its own controller.
//
// # Usage Example
//
//	source := paging.IntSource[string](func(ctx context.Context, p paging.LoadParams[int]) ([]string, bool, error) {
//		items, err := api.List(ctx, p.Key)
//		return items, true, err
//	})
//	c := paging.New(1, source, paging.WithName("items"))
//
//	states, stop := c.Subscribe()
//	defer stop()
//	go func() {
//		for s := range states {
//			render(s.Items, s.RefreshLoadState, s.AppendLoadState)
//		}
//	}()
//
//	if err := c.Refresh(ctx); err != nil && !paging.IsCanceled(err) {
//		log.Printf("refresh: %v", err)
//	}
//
//	m := paging.NewModifier[string](c)
//	_ = m.ReplaceFirstValue(ctx, "draft", "published")
package paging
