package spindle

import (
	"cmp"
	"context"
	"slices"

	"github.com/five82/pager/paging"
)

// LogSource pages /api/logs by sequence cursor. The refresh key is 0, which
// starts at the oldest retained event.
type LogSource struct {
	Fetcher   Fetcher
	Limit     int
	Component string
	Level     string
}

// Load fetches the events after params.Key. An empty batch, or one that does
// not move the cursor, ends the data. A cursor that moved backwards means the
// daemon restarted; the load is voided so the caller refreshes instead of
// appending events from a different sequence.
func (s LogSource) Load(ctx context.Context, params paging.LoadParams[uint64]) (paging.LoadResult[uint64, LogEvent], error) {
	batch, err := s.Fetcher.FetchLogs(ctx, LogQuery{
		Since:     params.Key,
		Limit:     s.Limit,
		Component: s.Component,
		Level:     s.Level,
	})
	if err != nil {
		return paging.LoadResult[uint64, LogEvent]{}, err
	}
	if params.Kind == paging.LoadAppend && batch.Next < params.Key {
		return paging.None[uint64, LogEvent](), nil
	}
	if len(batch.Events) == 0 || batch.Next <= params.Key {
		return paging.Page[uint64](batch.Events, nil), nil
	}
	return paging.Page(batch.Events, paging.NextKey(batch.Next)), nil
}

// QueueSource pages the queue snapshot by page number, pageSize items per
// page in ID order. The refresh key is 0.
func QueueSource(f Fetcher, pageSize int) paging.IntSource[QueueItem] {
	if pageSize < 1 {
		pageSize = 1
	}
	return func(ctx context.Context, params paging.LoadParams[int]) ([]QueueItem, bool, error) {
		items, err := f.FetchQueue(ctx)
		if err != nil {
			return nil, false, err
		}
		slices.SortFunc(items, func(a, b QueueItem) int { return cmp.Compare(a.ID, b.ID) })
		start := params.Key * pageSize
		if params.Key < 0 || start >= len(items) {
			return nil, true, nil
		}
		return items[start:min(start+pageSize, len(items))], true, nil
	}
}

// SameQueueItem matches queue items by ID.
func SameQueueItem(a, b QueueItem) bool { return a.ID == b.ID }

// SameLogEvent matches log events by sequence.
func SameLogEvent(a, b LogEvent) bool { return a.Sequence == b.Sequence }
