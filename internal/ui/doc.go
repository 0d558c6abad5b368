// Package ui provides the Bubble Tea terminal interface for pager.
//
// # Architecture Overview
//
// Each feed on screen is a paging.Controller bound to the model through a
// pane. The model never calls the controller from Update: refresh, append,
// cancel and remove run as tea.Cmds, and every published paging.State comes
// back as a feedMsg carrying a non-generic projection (feedView) that the
// renderer works from.
//
// # Package Structure
//
//   - app.go: Model, Options, key handling and the Run function
//   - feed.go: generic controller binding and the messages it produces
//   - presenter.go: State projection, row rendering and the auto-append rule
//   - render.go: header tabs, visible row window, footer and help overlay
//   - theme.go, keys.go: palettes and key bindings
//
// # Paging Behaviour
//
// Both feeds refresh on start. Moving the selection to within
// PrefetchDistance rows of the end requests the next page, but only while
// the refresh axis is idle and the append axis is incomplete; failed and
// finished feeds wait for the user (a to retry, r to refresh). Cancelled,
// preempted and rejected loads are not reported; real failures show in the
// footer.
//
// # Key Bindings
//
//   - j/k, g/G: Move selection, jump to top/bottom
//   - r: Refresh the active feed
//   - a: Load the next page
//   - c: Cancel the running load
//   - x: Hide the selected row until the next refresh
//   - Tab: Switch between queue and logs
//   - T: Cycle theme
//   - ?: Toggle help
//   - q or Ctrl+C: Exit
package ui
