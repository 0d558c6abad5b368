package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	helpLine := m.help.ShortHelpView(m.keys.ShortHelp())

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - lipgloss.Height(helpLine)
	body := m.renderTable(max(bodyHeight, 1))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer, helpLine)
}

// renderHeader renders the feed tabs with a spinner while the active feed loads.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Accent.Bold(true).Render("pager")}
	for i, p := range m.panes {
		label := p.Title()
		if v := m.views[i]; v.Refreshing || v.Appending {
			label += " " + m.spinner.View()
		}
		if i == m.active {
			parts = append(parts, styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, styles.Tab.Render(label))
		}
	}
	if m.apiBind != "" {
		parts = append(parts, styles.Muted.Render(m.apiBind))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, " "))
}

// renderTable renders the visible window of the active feed, keeping the
// selection in view.
func (m Model) renderTable(height int) string {
	if len(m.panes) == 0 {
		return lipgloss.NewStyle().Height(height).Render("no feeds configured")
	}
	styles := m.theme.Styles()
	p := m.panes[m.active]
	view := m.views[m.active]
	columns := p.Columns()

	lines := []string{styles.Column.Render(m.formatCells(columnTitles(columns), columns))}
	visible := height - 1
	start := windowStart(m.selected[m.active], len(view.Rows), visible)
	for i := start; i < len(view.Rows) && i < start+visible; i++ {
		lines = append(lines, m.renderRow(view.Rows[i], columns, i == m.selected[m.active]))
	}

	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(r row, columns []column, selected bool) string {
	styles := m.theme.Styles()
	if selected {
		return styles.Selected.Width(m.width).Render(m.formatCells(r.Cells, columns))
	}

	cells := make([]string, len(r.Cells))
	for i, cell := range r.Cells {
		text := fit(cell, m.cellWidth(columns, i))
		if i == 2 {
			text = m.panes[m.active].Badge(styles, r.Badge).Render(text)
		} else {
			text = styles.Text.Render(text)
		}
		cells[i] = text
	}
	return strings.Join(cells, " ")
}

func (m Model) formatCells(cells []string, columns []column) string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = fit(cell, m.cellWidth(columns, i))
	}
	return strings.Join(out, " ")
}

// cellWidth returns the width of column i; a zero width column takes what
// the fixed ones leave over.
func (m Model) cellWidth(columns []column, i int) int {
	if i >= len(columns) {
		return 0
	}
	if columns[i].Width > 0 {
		return columns[i].Width
	}
	used := 0
	for _, c := range columns {
		used += c.Width + 1
	}
	return max(m.width-used, 8)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if len(m.panes) == 0 {
		return styles.Footer.Width(m.width).Render("")
	}
	view := m.views[m.active]

	text := view.footer()
	switch {
	case m.status != "":
		text = styles.Danger.Render(m.status) + "  " + text
	case view.LoadFailure || view.AppendFailure:
		text = styles.Danger.Render(text)
	case view.NoMoreData:
		text = styles.Success.Render(text)
	}
	return styles.Footer.Width(m.width).Render(text)
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.Faint.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	full := m.help
	full.ShowAll = true
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("Press any key to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func columnTitles(columns []column) []string {
	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = c.Title
	}
	return titles
}

// windowStart returns the first visible row so that selected stays within a
// window of size rows.
func windowStart(selected, total, size int) int {
	if size <= 0 || total <= size {
		return 0
	}
	start := selected - size + 1
	if start < 0 {
		start = 0
	}
	if start > total-size {
		start = total - size
	}
	return start
}
