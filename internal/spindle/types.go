package spindle

import (
	"strings"
	"time"
)

const spindleTimestampLayout = "2006-01-02 15:04:05"

// QueueListResponse mirrors /api/queue.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItem describes a queue entry in transport-friendly form.
type QueueItem struct {
	ID             int64         `json:"id"`
	DiscTitle      string        `json:"discTitle"`
	SourcePath     string        `json:"sourcePath"`
	Status         string        `json:"status"`
	ProcessingLane string        `json:"processingLane"`
	Progress       QueueProgress `json:"progress"`
	ErrorMessage   string        `json:"errorMessage"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
	NeedsReview    bool          `json:"needsReview"`
	ReviewReason   string        `json:"reviewReason"`
}

// QueueProgress tracks stage progress for an item.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// Title returns the disc title, falling back to the source path.
func (q QueueItem) Title() string {
	if title := strings.TrimSpace(q.DiscTitle); title != "" {
		return title
	}
	if path := strings.TrimSpace(q.SourcePath); path != "" {
		return path
	}
	return "(untitled)"
}

// Failed reports whether the item stopped with an error.
func (q QueueItem) Failed() bool {
	return strings.EqualFold(q.Status, "failed") || q.ErrorMessage != ""
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (q QueueItem) ParsedCreatedAt() time.Time {
	return parseTime(q.CreatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (q QueueItem) ParsedUpdatedAt() time.Time {
	return parseTime(q.UpdatedAt)
}

// LogEvent represents a single log entry from /api/logs.
type LogEvent struct {
	Sequence  uint64            `json:"seq"`
	Timestamp string            `json:"ts"`
	Level     string            `json:"level"`
	Message   string            `json:"msg"`
	Component string            `json:"component"`
	Stage     string            `json:"stage"`
	ItemID    int64             `json:"item_id"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// ParsedTime returns the timestamp as time.Time when possible.
func (e LogEvent) ParsedTime() time.Time {
	return parseTime(e.Timestamp)
}

// LogBatch aggregates a slice of log events with the next sequence cursor.
type LogBatch struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(spindleTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
