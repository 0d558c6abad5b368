package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pager/paging"
)

// pane is a paged feed as seen by the model. Commands never block the
// update loop; results come back as messages.
type pane interface {
	Title() string
	Columns() []column
	Badge(s Styles, value string) lipgloss.Style
	Watch() tea.Cmd
	Refresh() tea.Cmd
	Append() tea.Cmd
	Cancel() tea.Cmd
	Remove(index int) tea.Cmd
	Close()
}

// feedMsg carries a new projection of feed id.
type feedMsg struct {
	id   int
	view feedView
}

// loadDoneMsg reports the outcome of a refresh or append command.
type loadDoneMsg struct {
	id  int
	op  string
	err error
}

// feed binds a paging.Controller to the model.
type feed[K, V any] struct {
	id      int
	title   string
	columns []column
	ctx     context.Context

	ctrl   *paging.Controller[K, V]
	mod    *paging.Modifier[V]
	equal  func(a, b V) bool
	render func(V) row
	badge  func(s Styles, value string) lipgloss.Style

	states <-chan paging.State[V]
	stop   func()
}

func newFeed[K, V any](ctx context.Context, id int, title string, columns []column, ctrl *paging.Controller[K, V], equal func(a, b V) bool, render func(V) row) *feed[K, V] {
	states, stop := ctrl.Subscribe()
	return &feed[K, V]{
		id:      id,
		title:   title,
		columns: columns,
		ctx:     ctx,
		ctrl:    ctrl,
		mod:     paging.NewModifierFunc(ctrl, equal),
		equal:   equal,
		render:  render,
		badge:   Styles.StatusStyle,
		states:  states,
		stop:    stop,
	}
}

func (f *feed[K, V]) Title() string     { return f.title }
func (f *feed[K, V]) Columns() []column { return f.columns }

func (f *feed[K, V]) Badge(s Styles, value string) lipgloss.Style { return f.badge(s, value) }

// Watch waits for the next snapshot. The model re-issues it after every
// feedMsg; it yields nil once the feed is closed.
func (f *feed[K, V]) Watch() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-f.states
		if !ok {
			return nil
		}
		return feedMsg{id: f.id, view: present(s, f.render)}
	}
}

func (f *feed[K, V]) Refresh() tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{id: f.id, op: "refresh", err: f.ctrl.Refresh(f.ctx)}
	}
}

func (f *feed[K, V]) Append() tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{id: f.id, op: "append", err: f.ctrl.Append(f.ctx)}
	}
}

func (f *feed[K, V]) Cancel() tea.Cmd {
	return func() tea.Msg {
		f.ctrl.CancelLoad()
		return nil
	}
}

// Remove hides the row at index from the local list. The next refresh brings
// it back if the server still has it.
func (f *feed[K, V]) Remove(index int) tea.Cmd {
	items := f.ctrl.State().Items
	if index < 0 || index >= len(items) {
		return nil
	}
	target := items[index]
	return func() tea.Msg {
		err := f.mod.RemoveFirst(f.ctx, func(v V) bool { return f.equal(v, target) })
		return loadDoneMsg{id: f.id, op: "remove", err: err}
	}
}

func (f *feed[K, V]) Close() { f.stop() }
