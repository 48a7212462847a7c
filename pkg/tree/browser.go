package tree

import (
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/hdf"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
)

// Browser composes the tree state with a cursor and viewport: the complete
// navigation state machine, independent of any terminal. The cursor always
// denotes a single row index in the current projection, clamped to
// [0, len(rows)-1]; the viewport keeps that index inside
// [top, top+height-1] with minimal scroll movement.
type Browser struct {
	state  *TreeState
	cache  *NodeCache
	rows   []Row
	cursor int
	top    int
	height int
}

// NewBrowser creates a browser over a reader with only the root row visible.
func NewBrowser(reader hdf.Reader) *Browser {
	cache := NewNodeCache(reader)
	b := &Browser{
		state:  NewTreeState(cache),
		cache:  cache,
		height: 1,
	}
	b.refresh()
	return b
}

// State exposes the underlying tree state.
func (b *Browser) State() *TreeState {
	return b.state
}

// Cache exposes the node cache, for metadata resolution by the detail pane.
func (b *Browser) Cache() *NodeCache {
	return b.cache
}

// Rows returns the current flattened view.
func (b *Browser) Rows() []Row {
	return b.rows
}

// Cursor returns the selected row index.
func (b *Browser) Cursor() int {
	return b.cursor
}

// Top returns the viewport's first visible row index.
func (b *Browser) Top() int {
	return b.top
}

// Height returns the viewport height in rows.
func (b *Browser) Height() int {
	return b.height
}

// SetHeight updates the viewport height (from the renderer's terminal size)
// and re-clamps the scroll window.
func (b *Browser) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	b.height = h
	b.ensureVisible()
}

// Selected returns the currently selected row.
func (b *Browser) Selected() Row {
	return b.rows[b.cursor]
}

// SelectedID returns the id of the selected row.
func (b *Browser) SelectedID() model.NodeID {
	return b.Selected().ID
}

// VisibleRows returns the viewport slice of the projection, plus the index
// of the selected row within that slice.
func (b *Browser) VisibleRows() ([]Row, int) {
	end := b.top + b.height
	if end > len(b.rows) {
		end = len(b.rows)
	}
	return b.rows[b.top:end], b.cursor - b.top
}

// MoveUp moves the cursor one row up, clamped. No wraparound.
func (b *Browser) MoveUp() {
	b.moveTo(b.cursor - 1)
}

// MoveDown moves the cursor one row down, clamped.
func (b *Browser) MoveDown() {
	b.moveTo(b.cursor + 1)
}

// PageUp moves the cursor up by one viewport height, clamped.
func (b *Browser) PageUp() {
	b.moveTo(b.cursor - b.height)
}

// PageDown moves the cursor down by one viewport height, clamped.
func (b *Browser) PageDown() {
	b.moveTo(b.cursor + b.height)
}

// JumpTop moves the cursor to the first row.
func (b *Browser) JumpTop() {
	b.moveTo(0)
}

// JumpBottom moves the cursor to the last row.
func (b *Browser) JumpBottom() {
	b.moveTo(len(b.rows) - 1)
}

// ExpandRight handles the right-arrow action:
//   - collapsed group: expand it, then descend to its first child row
//   - expanded group with children: move to its first child row
//   - dataset or empty group: nothing
//
// A fetch failure is returned for the status bar; the node keeps its inline
// error marker and the next ExpandRight retries.
func (b *Browser) ExpandRight() error {
	row := b.Selected()
	if row.Kind != model.KindGroup {
		return nil
	}
	if !row.Expanded {
		if err := b.state.Expand(row.ID); err != nil {
			b.refresh()
			return err
		}
		b.refresh()
	}
	// First child, if any, sits directly below the group's own row.
	if b.cursor+1 < len(b.rows) && b.rows[b.cursor+1].Depth == row.Depth+1 {
		b.moveTo(b.cursor + 1)
	}
	return nil
}

// CollapseLeft handles the left-arrow action:
//   - expanded group: collapse it (selection stays on it)
//   - collapsed group or dataset: move to the parent row
func (b *Browser) CollapseLeft() {
	row := b.Selected()
	if row.Kind == model.KindGroup && row.Expanded {
		b.state.Collapse(row.ID)
		b.refresh()
		return
	}
	if row.ID.IsRoot() {
		return
	}
	b.SelectID(row.ID.Parent())
}

// Toggle expands or collapses the selected group; no-op on datasets.
func (b *Browser) Toggle() error {
	row := b.Selected()
	if row.Kind != model.KindGroup {
		return nil
	}
	err := b.state.Toggle(row.ID)
	b.refresh()
	return err
}

// ExpandAll expands every loaded group; CollapseAll collapses everything.
func (b *Browser) ExpandAll() error {
	err := b.state.ExpandAll()
	b.refresh()
	return err
}

// CollapseAll collapses every group. The selection survives as the nearest
// still-visible ancestor, which after a full collapse is the root.
func (b *Browser) CollapseAll() {
	b.state.CollapseAll()
	b.refresh()
}

// SelectID moves the cursor to the given node, expanding its ancestors so
// the row is visible. Returns false for undiscovered ids.
func (b *Browser) SelectID(id model.NodeID) bool {
	if b.state.Node(id) == nil {
		return false
	}
	// Expand ancestors root-down. They are all already loaded: a node can
	// only be discovered through its parent's child listing.
	var lineage []model.NodeID
	for cur := id; !cur.IsRoot(); cur = cur.Parent() {
		lineage = append(lineage, cur.Parent())
	}
	for i := len(lineage) - 1; i >= 0; i-- {
		if err := b.state.Expand(lineage[i]); err != nil {
			return false
		}
	}
	b.refresh()
	for i, row := range b.rows {
		if row.ID == id {
			b.moveTo(i)
			return true
		}
	}
	return false
}

// moveTo sets the cursor with clamping and re-clamps the viewport.
func (b *Browser) moveTo(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(b.rows)-1 {
		i = len(b.rows) - 1
	}
	b.cursor = i
	b.ensureVisible()
}

// refresh recomputes the projection after a structural change and re-anchors
// the cursor: same node if still visible, else its nearest visible ancestor.
func (b *Browser) refresh() {
	var selected model.NodeID = model.RootID
	if len(b.rows) > 0 {
		selected = b.rows[b.cursor].ID
	}

	b.rows = b.state.Rows()

	// Walk up until a visible ancestor is found. The root is always
	// visible, so this terminates.
	for !b.state.IsVisible(selected) {
		selected = selected.Parent()
	}
	for i, row := range b.rows {
		if row.ID == selected {
			b.cursor = i
			break
		}
	}
	if b.cursor > len(b.rows)-1 {
		b.cursor = len(b.rows) - 1
	}
	b.ensureVisible()
}

// ensureVisible re-clamps the viewport so the cursor stays inside it,
// scrolling by the smallest amount that restores visibility rather than
// re-centering.
func (b *Browser) ensureVisible() {
	if b.cursor < b.top {
		b.top = b.cursor
	}
	if b.cursor > b.top+b.height-1 {
		b.top = b.cursor - b.height + 1
	}
	maxTop := len(b.rows) - b.height
	if maxTop < 0 {
		maxTop = 0
	}
	if b.top > maxTop {
		b.top = maxTop
	}
	if b.top < 0 {
		b.top = 0
	}
}
