package ui

import (
	"strings"
	"testing"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/config"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/hdf"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/state"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestFile() *hdf.MemFile {
	f := hdf.NewMemFile("test.h5")
	f.SetSize(2048)
	f.AddGroup("/entry")
	f.AddDataset("/entry/data", model.Metadata{DType: "float", Shape: []uint64{16}})
	f.AddDataset("/raw", model.Metadata{DType: "integer"})
	return f
}

// newTestModel builds a model sized to a plain 80x24 terminal, narrow enough
// that the detail pane stays off and rendering needs no glamour.
func newTestModel(t *testing.T, f *hdf.MemFile) Model {
	t.Helper()
	m := NewModel(f, config.DefaultConfig(), nil)
	return resize(m, 80, 24)
}

func resize(m Model, w, h int) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestKeysDriveNavigation(t *testing.T) {
	m := newTestModel(t, newTestFile())
	b := m.Browser()

	m = press(m, "l") // expand root, descend
	if b.SelectedID() != "/entry" {
		t.Fatalf("after l: selection = %s, want /entry", b.SelectedID())
	}
	m = press(m, "j")
	if b.SelectedID() != "/raw" {
		t.Errorf("after j: selection = %s, want /raw", b.SelectedID())
	}
	m = press(m, "k")
	if b.SelectedID() != "/entry" {
		t.Errorf("after k: selection = %s, want /entry", b.SelectedID())
	}
	m = press(m, "h") // collapsed group: jump to parent
	if b.SelectedID() != model.RootID {
		t.Errorf("after h: selection = %s, want /", b.SelectedID())
	}
	m = press(m, "G")
	if b.SelectedID() != "/raw" {
		t.Errorf("after G: selection = %s, want /raw", b.SelectedID())
	}
	m = press(m, "g")
	if b.SelectedID() != model.RootID {
		t.Errorf("after g: selection = %s, want /", b.SelectedID())
	}
}

func TestEnterTogglesGroups(t *testing.T) {
	m := newTestModel(t, newTestFile())
	b := m.Browser()

	m = press(m, "enter")
	if !b.State().IsExpanded(model.RootID) {
		t.Fatal("enter on a collapsed group expands it")
	}
	m = press(m, "enter")
	if b.State().IsExpanded(model.RootID) {
		t.Error("enter on an expanded group collapses it")
	}
}

func TestExpandAllAndCollapseAllKeys(t *testing.T) {
	m := newTestModel(t, newTestFile())
	b := m.Browser()

	m = press(m, "l", "l") // load and expand /entry
	m = press(m, "H")
	if len(b.Rows()) != 1 {
		t.Fatalf("after H: %d rows, want just the root", len(b.Rows()))
	}
	m = press(m, "L")
	if len(b.Rows()) != 4 {
		t.Errorf("after L: %d rows, want all 4 loaded rows", len(b.Rows()))
	}
}

func TestWrongKindKeysAreSilentNoops(t *testing.T) {
	m := newTestModel(t, newTestFile())
	b := m.Browser()

	m = press(m, "l", "j") // cursor on the /raw dataset
	if b.SelectedID() != "/raw" {
		t.Fatalf("setup: selection = %s", b.SelectedID())
	}
	m = press(m, "l")
	if b.SelectedID() != "/raw" {
		t.Error("expand on a dataset must not move")
	}
	if m.status != "" {
		t.Errorf("benign key produced status %q", m.status)
	}
	m = press(m, "enter")
	if m.status != "" {
		t.Errorf("toggle on a dataset produced status %q", m.status)
	}
}

func TestReadErrorReachesStatusBar(t *testing.T) {
	f := newTestFile()
	f.FailChildren["/entry"] = hdf.ErrNotFound
	m := newTestModel(t, f)

	m = press(m, "l") // expand root, cursor lands on /entry
	m = press(m, "l") // the failing expand
	if m.status == "" {
		t.Error("a real fetch failure must surface in the status bar")
	}
	if m.Browser().State().IsExpanded("/entry") {
		t.Error("failed group must stay collapsed")
	}
}

func TestSearchJumpsToBestMatch(t *testing.T) {
	m := newTestModel(t, newTestFile())

	m = press(m, "l") // discover /entry and /raw
	m = press(m, "/")
	if !m.searching {
		t.Fatal("/ enters search mode")
	}
	m = press(m, "r", "a", "w")
	if len(m.matches) == 0 {
		t.Fatal("typing raw should match /raw")
	}
	m = press(m, "enter")
	if m.searching {
		t.Error("enter leaves search mode")
	}
	if m.Browser().SelectedID() != "/raw" {
		t.Errorf("selection = %s, want /raw", m.Browser().SelectedID())
	}
}

func TestSearchEscCancels(t *testing.T) {
	m := newTestModel(t, newTestFile())
	m = press(m, "l", "j") // select /raw
	before := m.Browser().SelectedID()

	m = press(m, "/", "e", "n", "t", "esc")
	if m.searching {
		t.Error("esc leaves search mode")
	}
	if m.Browser().SelectedID() != before {
		t.Error("cancelled search must not move the selection")
	}
}

func TestFileChangedNotice(t *testing.T) {
	m := newTestModel(t, newTestFile())
	next, _ := m.Update(FileChangedMsg{})
	m = next.(Model)
	if !m.fileChanged {
		t.Fatal("FileChangedMsg sets the notice flag")
	}
	if !strings.Contains(m.View(), "file changed") {
		t.Error("change notice missing from the rendered view")
	}
}

func TestViewShowsHeaderTreeAndStatus(t *testing.T) {
	m := newTestModel(t, newTestFile())
	m = press(m, "l")
	view := m.View()

	if !strings.Contains(view, "test.h5") {
		t.Error("header must show the file name")
	}
	if !strings.Contains(view, "2.0 KiB") {
		t.Error("header must show the humanized file size")
	}
	if !strings.Contains(view, "entry") || !strings.Contains(view, "raw") {
		t.Error("tree pane must list the visible rows")
	}
	if !strings.Contains(view, "2/3") {
		t.Errorf("status must show cursor position, got:\n%s", view)
	}
}

func TestViewBeforeFirstResize(t *testing.T) {
	m := NewModel(newTestFile(), config.DefaultConfig(), nil)
	if m.View() == "" {
		t.Error("pre-resize view must render a placeholder, not panic or blank")
	}
}

func TestQuitSavesViewState(t *testing.T) {
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	f := newTestFile()
	m := NewModel(f, config.DefaultConfig(), store)
	m = resize(m, 80, 24)
	m = press(m, "l") // expand root, select /entry

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("q must return the quit command")
	}
	vs, ok := store.Load(f.Info().Path)
	if !ok {
		t.Fatal("quit did not persist view state")
	}
	if len(vs.Expanded) != 1 || vs.Expanded[0] != model.RootID {
		t.Errorf("persisted expanded = %v, want [/]", vs.Expanded)
	}
	if vs.Selected != "/entry" {
		t.Errorf("persisted selection = %s, want /entry", vs.Selected)
	}
}

func TestRestoredStateOnStartup(t *testing.T) {
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	f := newTestFile()
	if err := store.Save(f.Info().Path, state.ViewState{
		Expanded: []model.NodeID{model.RootID},
		Selected: "/raw",
	}); err != nil {
		t.Fatal(err)
	}

	m := NewModel(f, config.DefaultConfig(), store)
	if m.Browser().SelectedID() != "/raw" {
		t.Errorf("restored selection = %s, want /raw", m.Browser().SelectedID())
	}
	if !m.Browser().State().IsExpanded(model.RootID) {
		t.Error("restored expansion missing")
	}
}

func TestSearchJumpPersistsExpansion(t *testing.T) {
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	f := newTestFile()
	m := NewModel(f, config.DefaultConfig(), store)
	m = resize(m, 80, 24)
	m = press(m, "l", "l") // discover /entry/data
	m = press(m, "H")      // collapse everything

	m = press(m, "/", "d", "a", "t", "a", "enter")
	if m.Browser().SelectedID() != "/entry/data" {
		t.Fatalf("selection = %s, want /entry/data", m.Browser().SelectedID())
	}

	// The jump re-expanded / and /entry; that must be on disk immediately,
	// not only at quit.
	vs, ok := store.Load(f.Info().Path)
	if !ok {
		t.Fatal("search jump did not persist view state")
	}
	if len(vs.Expanded) != 2 || vs.Expanded[0] != model.RootID || vs.Expanded[1] != "/entry" {
		t.Errorf("persisted expanded = %v, want [/ /entry]", vs.Expanded)
	}
	if vs.Selected != "/entry/data" {
		t.Errorf("persisted selection = %s, want /entry/data", vs.Selected)
	}
}

func TestSplitViewOnShortTerminal(t *testing.T) {
	m := NewModel(newTestFile(), config.DefaultConfig(), nil)
	m = resize(m, 120, 3) // wide enough to split, too short for a full pane
	if !m.splitView() {
		t.Fatal("setup: 120 columns should enable the split view")
	}
	if m.detail.Height < 1 {
		t.Errorf("detail height = %d, want >= 1", m.detail.Height)
	}
	m = press(m, "l")
	if m.View() == "" {
		t.Error("short split view must still render")
	}
}

func TestConfiguredKeyOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keys["down"] = []string{"n"}

	m := NewModel(newTestFile(), cfg, nil)
	m = resize(m, 80, 24)
	m = press(m, "l") // selection on /entry

	m = press(m, "n")
	if m.Browser().SelectedID() != "/raw" {
		t.Errorf("custom binding n should move down, selection = %s", m.Browser().SelectedID())
	}
	m = press(m, "j") // the default was replaced, j no longer moves
	if m.Browser().SelectedID() != "/raw" {
		t.Error("overridden action must drop its default keys")
	}
}
