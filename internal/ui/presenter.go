package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/pager/internal/spindle"
	"github.com/five82/pager/paging"
)

// row is one rendered line of a feed. Badge picks the style of the third
// cell (queue status or log level).
type row struct {
	Cells []string
	Badge string
}

// feedView is the non-generic projection of a paging.State the renderer
// works from.
type feedView struct {
	Rows []row

	Refresh paging.LoadState
	Append  paging.LoadState

	Refreshing    bool
	Appending     bool
	LoadEmpty     bool
	LoadFailure   bool
	NoMoreData    bool
	AppendFailure bool

	// Err is the cause of the last failed load, if any.
	Err error
}

func present[V any](s paging.State[V], render func(V) row) feedView {
	v := feedView{
		Rows:          make([]row, len(s.Items)),
		Refresh:       s.RefreshLoadState,
		Append:        s.AppendLoadState,
		Refreshing:    s.IsRefreshing(),
		Appending:     s.IsAppending(),
		LoadEmpty:     s.ShowLoadEmpty(),
		LoadFailure:   s.ShowLoadFailure(),
		NoMoreData:    s.ShowAppendNoMoreData(),
		AppendFailure: s.ShowAppendFailure(),
	}
	for i, item := range s.Items {
		v.Rows[i] = render(item)
	}
	if s.LastLoad != nil {
		v.Err = s.LastLoad.Err
	}
	return v
}

// shouldAppend reports whether the selection is close enough to the end to
// load the next page. Failed or finished axes are left to the user.
func shouldAppend(v feedView, selected, distance int) bool {
	if len(v.Rows) == 0 || distance < 0 {
		return false
	}
	if selected < len(v.Rows)-1-distance {
		return false
	}
	return v.Refresh.IsIdle() && v.Append.Equal(paging.Incomplete)
}

// footer summarizes the load states for the status line.
func (v feedView) footer() string {
	switch {
	case v.Refreshing:
		return "refreshing…"
	case v.Appending:
		return fmt.Sprintf("%d rows · loading more…", len(v.Rows))
	case v.LoadFailure:
		return "load failed: " + errText(v.Err) + " · r to retry"
	case v.LoadEmpty:
		return "nothing here yet · r to refresh"
	case v.AppendFailure:
		return fmt.Sprintf("%d rows · load more failed: %s · a to retry", len(v.Rows), errText(v.Err))
	case v.NoMoreData:
		return fmt.Sprintf("%d rows · end of data", len(v.Rows))
	case len(v.Rows) == 0:
		return "press r to load"
	default:
		return fmt.Sprintf("%d rows", len(v.Rows))
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	var statusErr *spindle.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("HTTP %d", statusErr.Code)
	}
	return err.Error()
}

var (
	queueColumns = []column{{"ID", 5}, {"TITLE", 28}, {"STATUS", 12}, {"PROGRESS", 9}, {"DETAIL", 0}}
	logColumns   = []column{{"SEQ", 7}, {"TIME", 8}, {"LEVEL", 6}, {"COMPONENT", 10}, {"MESSAGE", 0}}
)

type column struct {
	Title string
	// Width is the fixed cell width; 0 takes the rest of the line.
	Width int
}

func queueRow(item spindle.QueueItem) row {
	detail := item.Progress.Message
	switch {
	case item.ErrorMessage != "":
		detail = item.ErrorMessage
	case item.NeedsReview:
		detail = "review: " + item.ReviewReason
	}
	badge := item.Status
	if item.NeedsReview && !item.Failed() {
		badge = "review"
	}
	return row{
		Cells: []string{
			fmt.Sprintf("%d", item.ID),
			item.Title(),
			item.Status,
			fmt.Sprintf("%.0f%%", item.Progress.Percent),
			strings.TrimSpace(detail),
		},
		Badge: badge,
	}
}

func logRow(ev spindle.LogEvent) row {
	ts := ev.Timestamp
	if t := ev.ParsedTime(); !t.IsZero() {
		ts = t.Local().Format("15:04:05")
	}
	return row{
		Cells: []string{
			fmt.Sprintf("%d", ev.Sequence),
			ts,
			strings.ToUpper(ev.Level),
			ev.Component,
			ev.Message,
		},
		Badge: ev.Level,
	}
}
