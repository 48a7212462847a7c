package tree

import (
	"errors"
	"sort"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
)

// Navigation errors. ErrNotExpandable and ErrUnknownNode arise from harmless
// key presses on the wrong row kind; dispatchers treat them as no-ops.
var (
	ErrNotExpandable = errors.New("node is not expandable")
	ErrUnknownNode   = errors.New("unknown node id")
)

// TreeState is the logical tree view: every node discovered so far, keyed by
// id, plus the set of currently expanded ids. Nodes form an arena keyed by
// path-derived ids, never by pointers, so the structure cannot dangle or
// cycle as it grows.
//
// Invariants:
//   - the root node always exists
//   - every expanded id names a group whose children are loaded
//   - a node's children transition Unloaded -> Loaded at most once
type TreeState struct {
	cache    *NodeCache
	nodes    map[model.NodeID]*model.Node
	expanded map[model.NodeID]bool
}

// NewTreeState creates a state containing only the (collapsed) root group.
func NewTreeState(cache *NodeCache) *TreeState {
	s := &TreeState{
		cache:    cache,
		nodes:    make(map[model.NodeID]*model.Node),
		expanded: make(map[model.NodeID]bool),
	}
	s.nodes[model.RootID] = &model.Node{ID: model.RootID, Kind: model.KindGroup}
	return s
}

// Node returns the node for id, or nil if it has not been discovered.
func (s *TreeState) Node(id model.NodeID) *model.Node {
	return s.nodes[id]
}

// Root returns the root node.
func (s *TreeState) Root() *model.Node {
	return s.nodes[model.RootID]
}

// IsExpanded reports whether id is currently expanded.
func (s *TreeState) IsExpanded(id model.NodeID) bool {
	return s.expanded[id]
}

// IsVisible reports whether id would appear in the flattened view: true iff
// every strict ancestor is expanded. The root is always visible.
func (s *TreeState) IsVisible(id model.NodeID) bool {
	if _, ok := s.nodes[id]; !ok {
		return false
	}
	for cur := id; !cur.IsRoot(); {
		cur = cur.Parent()
		if !s.expanded[cur] {
			return false
		}
	}
	return true
}

// Expand marks a group id as expanded, loading its children on first use.
// Idempotent for already-expanded groups. Returns ErrNotExpandable for
// datasets and a *hdf.ReadError when the fetch fails; on failure the node
// keeps its error marker, stays collapsed, and the next Expand retries.
func (s *TreeState) Expand(id model.NodeID) error {
	node, ok := s.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if !node.Kind.CanHaveChildren() {
		return ErrNotExpandable
	}
	if s.expanded[id] {
		return nil
	}

	if node.State != model.ChildrenLoaded {
		node.State = model.ChildrenLoading
		kids, err := s.cache.ResolveChildren(id)
		if err != nil {
			node.State = model.ChildrenUnloaded
			node.Err = err
			return err
		}
		node.Err = nil
		node.Children = make([]model.NodeID, 0, len(kids))
		for _, c := range kids {
			childID := id.Child(c.Name)
			node.Children = append(node.Children, childID)
			if _, exists := s.nodes[childID]; !exists {
				s.nodes[childID] = &model.Node{ID: childID, Kind: c.Kind}
			}
		}
		node.State = model.ChildrenLoaded
	}

	s.expanded[id] = true
	return nil
}

// Collapse removes id from the expanded set. Idempotent; cached children are
// kept, so re-expanding is instant.
func (s *TreeState) Collapse(id model.NodeID) {
	delete(s.expanded, id)
}

// Toggle expands a collapsed group and collapses an expanded one. This is
// the single operation bound to the toggle key: the same key serves both
// directions.
func (s *TreeState) Toggle(id model.NodeID) error {
	if s.expanded[id] {
		s.Collapse(id)
		return nil
	}
	return s.Expand(id)
}

// ExpandAll expands the root and then every already-loaded group. It never
// forces a load of an unloaded subtree: a full-file scan should only ever
// happen one explicit expand at a time.
func (s *TreeState) ExpandAll() error {
	if err := s.Expand(model.RootID); err != nil {
		return err
	}
	for id, node := range s.nodes {
		if node.Kind.CanHaveChildren() && node.State == model.ChildrenLoaded {
			s.expanded[id] = true
		}
	}
	return nil
}

// CollapseAll collapses every node. The root row itself stays visible: only
// its descendants disappear.
func (s *TreeState) CollapseAll() {
	s.expanded = make(map[model.NodeID]bool)
}

// ExpandedIDs returns the expanded set in sorted order, for persistence.
func (s *TreeState) ExpandedIDs() []model.NodeID {
	ids := make([]model.NodeID, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RestoreExpanded re-expands a persisted set of ids, shortest-first so
// parents load before children. Ids that no longer exist or fail to load are
// skipped silently: restoring stale state must never break startup.
func (s *TreeState) RestoreExpanded(ids []model.NodeID) {
	sorted := make([]model.NodeID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) < len(sorted[j]) })
	for _, id := range sorted {
		if _, ok := s.nodes[id]; !ok {
			continue
		}
		_ = s.Expand(id)
	}
}

// DiscoveredIDs returns every discovered node id in sorted order. This is
// the search corpus: search only sees what has been loaded.
func (s *TreeState) DiscoveredIDs() []model.NodeID {
	ids := make([]model.NodeID, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NodeCount returns the number of discovered nodes.
func (s *TreeState) NodeCount() int {
	return len(s.nodes)
}
