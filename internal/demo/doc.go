// Package demo serves a synthetic Spindle API so the pager can be exercised
// without a running daemon. Latency and periodic failures can be injected to
// watch the load states change.
package demo
