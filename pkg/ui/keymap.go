package ui

import (
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/config"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every navigation binding. Each binding can be overridden in
// config.yaml under `keys:` using the action names given in the struct tags
// below (see DefaultKeyMap for the names).
type KeyMap struct {
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Collapse    key.Binding
	Expand      key.Binding
	Toggle      key.Binding
	CollapseAll key.Binding
	ExpandAll   key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Search      key.Binding
	CopyPath    key.Binding
	Detail      key.Binding
}

// DefaultKeyMap builds the keymap, applying any overrides from cfg. Action
// names: quit, up, down, page_up, page_down, collapse, expand, toggle,
// collapse_all, expand_all, top, bottom, search, copy_path, detail.
func DefaultKeyMap(cfg config.Config) KeyMap {
	bind := func(action string, help string, defaults ...string) key.Binding {
		keys := cfg.KeysFor(action, defaults...)
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
	}
	return KeyMap{
		Quit:        bind("quit", "quit", "q", "esc", "ctrl+c"),
		Up:          bind("up", "up", "up", "k"),
		Down:        bind("down", "down", "down", "j"),
		PageUp:      bind("page_up", "page up", "pgup", "ctrl+u"),
		PageDown:    bind("page_down", "page down", "pgdown", "ctrl+d"),
		Collapse:    bind("collapse", "collapse", "left", "h"),
		Expand:      bind("expand", "expand", "right", "l"),
		Toggle:      bind("toggle", "toggle", "enter", " "),
		CollapseAll: bind("collapse_all", "collapse all", "H"),
		ExpandAll:   bind("expand_all", "expand all", "L"),
		Top:         bind("top", "top", "g", "home"),
		Bottom:      bind("bottom", "bottom", "G", "end"),
		Search:      bind("search", "search", "/"),
		CopyPath:    bind("copy_path", "copy path", "y"),
		Detail:      bind("detail", "detail pane", "i"),
	}
}
