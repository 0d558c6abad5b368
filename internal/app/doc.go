// Package app wires configuration, logging, metrics, the spindle client and
// the paging controllers together and hands them to the UI.
//
// # Startup
//
//	Run()
//	  ├─> config.Load()        ~/.config/pager/config.toml
//	  ├─> prefs.Load()         theme and startup view
//	  ├─> logging.Setup()      file logger; the TUI owns the terminal
//	  ├─> metrics.Recorder     observer on both controllers, /metrics if configured
//	  ├─> newFeeds()           queue and log controllers over spindle.Client
//	  ├─> StartFollower()      polls the log feed for new events
//	  └─> ui.Run()             blocks until the user quits
//
// RunDemo serves the synthetic API from package demo on the configured
// listen address, logging to stderr.
//
// # Following
//
// The follower appends to the log feed every [logs] follow interval. An
// empty feed that has loaded before is refreshed instead. Consecutive
// failures double the interval up to 30 seconds; a success or a cancelled
// load resets it.
package app
