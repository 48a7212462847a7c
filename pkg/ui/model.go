package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/config"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/debug"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/hdf"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/state"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/tree"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// Detail pane appears only above this terminal width.
const splitViewThreshold = 90

// FileChangedMsg reports that the opened file changed on disk. The session
// keeps its cache (files are treated as static); only a notice is shown.
type FileChangedMsg struct{}

// Model is the bubbletea model for the browser session.
type Model struct {
	browser *tree.Browser
	reader  hdf.Reader
	theme   Theme
	keys    KeyMap
	cfg     config.Config
	store   *state.Store // nil when persistence is unavailable

	width  int
	height int
	ready  bool

	showDetail bool
	detail     viewport.Model
	mdRenderer *glamour.TermRenderer

	searching bool
	search    textinput.Model
	matches   []model.NodeID

	status      string
	fileChanged bool
}

// NewModel builds the session model and restores any persisted view state
// for this file.
func NewModel(reader hdf.Reader, cfg config.Config, store *state.Store) Model {
	browser := tree.NewBrowser(reader)

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search loaded nodes"
	search.CharLimit = 128

	m := Model{
		browser:    browser,
		reader:     reader,
		theme:      DefaultTheme(lipgloss.DefaultRenderer()),
		keys:       DefaultKeyMap(cfg),
		cfg:        cfg,
		store:      store,
		search:     search,
		showDetail: cfg.UI.ShowDetail == nil || *cfg.UI.ShowDetail,
	}

	if store != nil {
		if vs, ok := store.Load(reader.Info().Path); ok {
			browser.State().RestoreExpanded(vs.Expanded)
			if vs.Selected != "" {
				browser.SelectID(vs.Selected)
			} else {
				browser.JumpTop()
			}
			debug.Log("restored view state: %d expanded, selected=%s", len(vs.Expanded), vs.Selected)
		}
	}
	return m
}

// Browser exposes the navigation state machine, for tests.
func (m Model) Browser() *tree.Browser {
	return m.browser
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refreshDetail()
		return m, nil

	case FileChangedMsg:
		m.fileChanged = true
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// updateNormal dispatches a key event in navigation mode. Wrong-kind key
// presses (expanding a dataset, collapsing a leaf) are deliberate no-ops.
func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	b := m.browser

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveViewState()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		b.MoveUp()
	case key.Matches(msg, m.keys.Down):
		b.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		b.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		b.PageDown()
	case key.Matches(msg, m.keys.Top):
		b.JumpTop()
	case key.Matches(msg, m.keys.Bottom):
		b.JumpBottom()
	case key.Matches(msg, m.keys.Expand):
		m.reportReadError(b.ExpandRight())
		m.saveViewState()
	case key.Matches(msg, m.keys.Collapse):
		b.CollapseLeft()
		m.saveViewState()
	case key.Matches(msg, m.keys.Toggle):
		m.reportReadError(b.Toggle())
		m.saveViewState()
	case key.Matches(msg, m.keys.ExpandAll):
		m.reportReadError(b.ExpandAll())
		m.saveViewState()
	case key.Matches(msg, m.keys.CollapseAll):
		b.CollapseAll()
		m.saveViewState()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue("")
		m.matches = nil
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.CopyPath):
		id := b.SelectedID()
		if err := clipboard.WriteAll(string(id)); err != nil {
			m.status = "clipboard unavailable"
		} else {
			m.status = fmt.Sprintf("copied %s", id)
		}
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.layout()
	}

	m.refreshDetail()
	return m, nil
}

// updateSearch handles key events while the search prompt is active.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.matches = nil
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		if len(m.matches) > 0 {
			// The jump may expand collapsed ancestors, so it persists like
			// any other structural change.
			m.browser.SelectID(m.matches[0])
			m.saveViewState()
			m.refreshDetail()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.matches = m.findMatches(m.search.Value())
	return m, cmd
}

// findMatches fuzzy-ranks discovered node ids against the query. Search only
// sees nodes that have already been loaded; it never triggers I/O.
func (m Model) findMatches(query string) []model.NodeID {
	if query == "" {
		return nil
	}
	ids := m.browser.State().DiscoveredIDs()
	corpus := make([]string, len(ids))
	for i, id := range ids {
		corpus[i] = string(id)
	}
	ranked := fuzzy.Find(query, corpus)
	out := make([]model.NodeID, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, ids[r.Index])
	}
	return out
}

// reportReadError surfaces a fetch failure in the status bar; the benign
// wrong-kind errors stay silent.
func (m *Model) reportReadError(err error) {
	if err == nil || errors.Is(err, tree.ErrNotExpandable) || errors.Is(err, tree.ErrUnknownNode) {
		return
	}
	m.status = err.Error()
}

// saveViewState persists expansion and selection, best-effort.
func (m *Model) saveViewState() {
	if m.store == nil {
		return
	}
	vs := state.ViewState{
		Expanded: m.browser.State().ExpandedIDs(),
		Selected: m.browser.SelectedID(),
	}
	if err := m.store.Save(m.reader.Info().Path, vs); err != nil {
		debug.Log("saving view state: %v", err)
	}
}

// layout recomputes pane sizes after a resize or detail toggle.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	// One header line, one status line.
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.browser.SetHeight(bodyHeight)

	if m.splitView() {
		detailWidth := m.width - m.treeWidth() - 2 // border
		if detailWidth < 10 {
			detailWidth = 10
		}
		detailHeight := bodyHeight - 2 // border
		if detailHeight < 1 {
			detailHeight = 1
		}
		m.detail = viewport.New(detailWidth, detailHeight)
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(detailWidth-2),
		)
		if err == nil {
			m.mdRenderer = renderer
		}
	}
}

// splitView reports whether the detail pane is shown alongside the tree.
func (m Model) splitView() bool {
	return m.showDetail && m.width >= splitViewThreshold
}

// treeWidth returns the width of the tree pane.
func (m Model) treeWidth() int {
	if !m.splitView() {
		return m.width
	}
	return int(float64(m.width) * m.cfg.UI.SplitRatio)
}

// refreshDetail re-renders the detail pane for the current selection.
func (m *Model) refreshDetail() {
	if !m.ready || !m.splitView() || m.mdRenderer == nil {
		return
	}
	md := detailMarkdown(m.browser.Cache(), m.browser.State(), m.browser.SelectedID())
	rendered, err := m.mdRenderer.Render(md)
	if err != nil {
		m.detail.SetContent(fmt.Sprintf("error rendering metadata: %v", err))
		return
	}
	m.detail.SetContent(rendered)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerLine(m.theme, m.reader.Info(), m.width)
	treePane := m.renderTree()

	var body string
	if m.splitView() {
		detailPane := m.theme.PanelBorder.Width(m.detail.Width).Height(m.detail.Height).Render(m.detail.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, treePane, detailPane)
	} else {
		body = treePane
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatus())
}

// renderTree renders the viewport slice of the flattened tree.
func (m Model) renderTree() string {
	rows, selected := m.browser.VisibleRows()
	width := m.treeWidth()
	st := m.browser.State()

	var sb strings.Builder
	for i, row := range rows {
		line := m.renderRow(st, row, width)
		if i == selected {
			line = m.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// renderRow renders one tree row: indentation, expand indicator, name, and
// a muted metadata annotation or inline error.
func (m Model) renderRow(st *tree.TreeState, row tree.Row, width int) string {
	indent := strings.Repeat("  ", row.Depth)
	icon := m.theme.KindIcon(row.Kind, row.Expanded, row.Leaf)

	summary := ""
	if row.Err != nil {
		summary = "✗ " + row.Err.Error()
	} else {
		summary = rowSummary(st, row)
	}

	// Truncate the plain text, not the styled string: ANSI escapes would
	// throw the width math off.
	maxName := width - len(indent) - 2 - runewidth.StringWidth(summary) - 1
	if maxName < 8 {
		maxName = 8
	}
	name := truncate(row.ID.Name(), maxName)

	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString(m.theme.Indicator.Render(icon))
	sb.WriteString(" ")
	if row.Kind == model.KindGroup {
		sb.WriteString(m.theme.GroupName.Render(name))
	} else {
		sb.WriteString(name)
	}
	if summary != "" {
		sb.WriteString(" ")
		if row.Err != nil {
			sb.WriteString(m.theme.ErrorText.Render(summary))
		} else {
			sb.WriteString(m.theme.MutedText.Render(summary))
		}
	}
	return sb.String()
}

// renderStatus renders the bottom line: the search prompt while searching,
// otherwise change notice, status message, position, and key hints.
func (m Model) renderStatus() string {
	if m.searching {
		hits := ""
		if m.search.Value() != "" {
			hits = m.theme.MutedText.Render(fmt.Sprintf(" %d matches", len(m.matches)))
		}
		return m.search.View() + hits
	}

	parts := make([]string, 0, 4)
	if m.fileChanged {
		parts = append(parts, m.theme.Notice.Render("file changed on disk, restart to reload"))
	}
	if m.status != "" {
		parts = append(parts, m.theme.ErrorText.Render(m.status))
	}
	parts = append(parts, m.theme.StatusBar.Render(fmt.Sprintf("%d/%d", m.browser.Cursor()+1, len(m.browser.Rows()))))
	parts = append(parts, m.theme.StatusBar.Render("j/k: move • l: expand • h: collapse • /: search • q: quit"))
	return strings.Join(parts, m.theme.MutedText.Render(" │ "))
}
