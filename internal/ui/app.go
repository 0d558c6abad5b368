package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/pager/internal/prefs"
	"github.com/five82/pager/internal/spindle"
	"github.com/five82/pager/paging"
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Queue   *paging.Controller[int, spindle.QueueItem]
	Logs    *paging.Controller[uint64, spindle.LogEvent]

	// PrefetchDistance is how many rows before the end of a feed the
	// selection may get before the next page is requested.
	PrefetchDistance int

	ThemeName string
	View      string
	PrefsPath string
	APIBind   string
	Logger    logrus.FieldLogger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	log       logrus.FieldLogger
	prefsPath string
	apiBind   string
	prefetch  int

	// Feeds, indexed by pane id
	panes    []pane
	views    []feedView
	selected []int
	active   int

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	showHelp bool
	status   string
	width    int
	height   int
	ready    bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	m := Model{
		ctx:       ctx,
		log:       log,
		prefsPath: opts.PrefsPath,
		apiBind:   opts.APIBind,
		prefetch:  opts.PrefetchDistance,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	if opts.Queue != nil {
		m.addPane(newFeed(ctx, len(m.panes), "Queue", queueColumns, opts.Queue, spindle.SameQueueItem, queueRow))
	}
	if opts.Logs != nil {
		logs := newFeed(ctx, len(m.panes), "Logs", logColumns, opts.Logs, spindle.SameLogEvent, logRow)
		logs.badge = Styles.LevelStyle
		m.addPane(logs)
	}
	if opts.View == "logs" {
		m.active = len(m.panes) - 1
	}
	m.applyTheme()
	return m
}

func (m *Model) addPane(p pane) {
	m.panes = append(m.panes, p)
	m.views = append(m.views, feedView{})
	m.selected = append(m.selected, 0)
}

// Close releases the feed subscriptions.
func (m Model) Close() {
	for _, p := range m.panes {
		p.Close()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, p := range m.panes {
		cmds = append(cmds, p.Watch(), p.Refresh())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case feedMsg:
		return m.handleFeed(msg)

	case loadDoneMsg:
		m.handleLoadDone(msg)
		return m, nil
	}

	return m, nil
}

// handleFeed stores a new projection and keeps watching. A page that grew
// the list re-checks the prefetch distance; an unchanged one does not, so a
// drained log tail is not polled in a loop.
func (m Model) handleFeed(msg feedMsg) (tea.Model, tea.Cmd) {
	if msg.id < 0 || msg.id >= len(m.panes) {
		return m, nil
	}
	grew := len(msg.view.Rows) != len(m.views[msg.id].Rows)
	m.views[msg.id] = msg.view
	m.clampSelection(msg.id)

	cmds := []tea.Cmd{m.panes[msg.id].Watch()}
	if grew {
		cmds = append(cmds, m.maybeAppend(msg.id))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleLoadDone(msg loadDoneMsg) {
	if msg.id < 0 || msg.id >= len(m.panes) {
		return
	}
	title := m.panes[msg.id].Title()
	switch {
	case msg.err == nil:
		if msg.op == "remove" {
			m.status = title + ": row hidden until next refresh"
		}
	case paging.IsCanceled(msg.err):
		// Preempted, rejected or voided loads leave the state as it was.
		m.log.WithFields(logrus.Fields{"feed": title, "op": msg.op}).WithError(msg.err).Debug("load not applied")
	default:
		m.status = fmt.Sprintf("%s %s: %s", title, msg.op, loadErrText(msg.err))
	}
}

func loadErrText(err error) string {
	var loadErr *paging.LoadError
	if errors.As(err, &loadErr) {
		return errText(loadErr.Err)
	}
	return errText(err)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.savePrefs()
		return m, nil
	}

	if len(m.panes) == 0 {
		return m, nil
	}
	p := m.panes[m.active]

	switch {
	case key.Matches(msg, m.keys.Tab):
		if msg.String() == "shift+tab" {
			m.active = (m.active + len(m.panes) - 1) % len(m.panes)
		} else {
			m.active = (m.active + 1) % len(m.panes)
		}
		m.status = ""
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, p.Refresh()

	case key.Matches(msg, m.keys.Append):
		m.status = ""
		return m, p.Append()

	case key.Matches(msg, m.keys.Cancel):
		return m, p.Cancel()

	case key.Matches(msg, m.keys.Remove):
		return m, p.Remove(m.selected[m.active])

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, m.maybeAppend(m.active)

	case key.Matches(msg, m.keys.Top):
		m.selected[m.active] = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.selected[m.active] = len(m.views[m.active].Rows) - 1
		m.clampSelection(m.active)
		return m, m.maybeAppend(m.active)
	}

	return m, nil
}

func (m *Model) moveSelection(delta int) {
	m.selected[m.active] += delta
	m.clampSelection(m.active)
}

func (m *Model) clampSelection(id int) {
	n := len(m.views[id].Rows)
	switch {
	case n == 0 || m.selected[id] < 0:
		m.selected[id] = 0
	case m.selected[id] >= n:
		m.selected[id] = n - 1
	}
}

// maybeAppend requests the next page once the selection of pane id is
// within the prefetch distance of the end.
func (m Model) maybeAppend(id int) tea.Cmd {
	if !shouldAppend(m.views[id], m.selected[id], m.prefetch) {
		return nil
	}
	return m.panes[id].Append()
}

func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	m.spinner.Style = styles.Accent
	m.help.Styles.ShortKey = styles.Warning
	m.help.Styles.ShortDesc = styles.Muted
	m.help.Styles.ShortSeparator = styles.Faint
	m.help.Styles.FullKey = styles.Warning
	m.help.Styles.FullDesc = styles.Text
	m.help.Styles.FullSeparator = styles.Faint
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	view := "queue"
	if len(m.panes) > 0 {
		view = strings.ToLower(m.panes[m.active].Title())
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, View: view}); err != nil {
		m.log.WithError(err).Warn("save preferences")
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
