package tree

import "github.com/Dicklesworthstone/hdf5_viewer/pkg/model"

// Row is one visible line of the flattened view.
type Row struct {
	ID       model.NodeID
	Kind     model.NodeKind
	Depth    int
	Expanded bool
	// Loaded is true once the node's children have been fetched. A loaded
	// collapsed group and an unloaded one render the same indicator, but
	// the distinction matters for expand-all and the detail pane.
	Loaded bool
	// Leaf is true when the row can never have children (datasets) or is a
	// loaded group with none.
	Leaf bool
	// Err carries the node's current fetch error for inline display.
	Err error
}

// Rows flattens the tree into the ordered sequence of visible rows: a
// depth-first pre-order walk from the root, recursing only into expanded
// groups. The slice is rebuilt from scratch on every call; trees small
// enough to browse by hand are small enough to re-flatten per keystroke.
func (s *TreeState) Rows() []Row {
	rows := make([]Row, 0, len(s.expanded)*4+1)
	s.appendVisible(model.RootID, &rows)
	return rows
}

// appendVisible adds a node's row and, if it is expanded, its visible
// descendants in stored child order.
func (s *TreeState) appendVisible(id model.NodeID, rows *[]Row) {
	node, ok := s.nodes[id]
	if !ok {
		return
	}
	expanded := s.expanded[id]
	*rows = append(*rows, Row{
		ID:       id,
		Kind:     node.Kind,
		Depth:    node.Depth(),
		Expanded: expanded,
		Loaded:   node.State == model.ChildrenLoaded,
		Leaf:     !node.Kind.CanHaveChildren() || (node.State == model.ChildrenLoaded && len(node.Children) == 0),
		Err:      node.Err,
	})
	if expanded {
		for _, child := range node.Children {
			s.appendVisible(child, rows)
		}
	}
}
