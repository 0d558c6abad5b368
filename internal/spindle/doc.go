// Package spindle is the HTTP client for the Spindle daemon API and the
// paging sources built on it.
//
// Only two endpoints are read:
//
//	GET /api/queue                                → {"items": [...]}
//	GET /api/logs?since=&limit=&component=&level= → {"events": [...], "next": N}
//
// LogSource follows the log sequence cursor returned in "next". QueueSource
// slices the queue snapshot into fixed-size pages since /api/queue has no
// cursor of its own.
package spindle
