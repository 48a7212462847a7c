package model

import (
	"fmt"
	"strings"
)

// NodeID is the stable identifier of a tree entry: its full slash-separated
// path from the root. The root is "/". IDs never carry a trailing slash
// (except the root itself), so ancestry checks are plain prefix checks.
type NodeID string

// RootID is the id of the file's root group.
const RootID NodeID = "/"

// IsRoot returns true if the id names the root group.
func (id NodeID) IsRoot() bool {
	return id == RootID
}

// Name returns the last path component, or "/" for the root.
func (id NodeID) Name() string {
	if id.IsRoot() {
		return "/"
	}
	s := string(id)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Parent returns the id of the parent node. The root is its own parent.
func (id NodeID) Parent() NodeID {
	if id.IsRoot() {
		return RootID
	}
	s := string(id)
	i := strings.LastIndexByte(s, '/')
	if i <= 0 {
		return RootID
	}
	return NodeID(s[:i])
}

// Child returns the id of a direct child with the given name.
func (id NodeID) Child(name string) NodeID {
	if id.IsRoot() {
		return NodeID("/" + name)
	}
	return NodeID(string(id) + "/" + name)
}

// Depth returns the nesting level: 0 for the root, 1 for its children, etc.
func (id NodeID) Depth() int {
	if id.IsRoot() {
		return 0
	}
	return strings.Count(string(id), "/")
}

// IsAncestorOf returns true if id is a strict ancestor of other.
func (id NodeID) IsAncestorOf(other NodeID) bool {
	if id == other {
		return false
	}
	if id.IsRoot() {
		return strings.HasPrefix(string(other), "/")
	}
	return strings.HasPrefix(string(other), string(id)+"/")
}

// Validate checks that the id is a well-formed absolute path.
func (id NodeID) Validate() error {
	s := string(id)
	if s == "" {
		return fmt.Errorf("node id cannot be empty")
	}
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("node id must be an absolute path: %q", s)
	}
	if s != "/" && strings.HasSuffix(s, "/") {
		return fmt.Errorf("node id cannot have a trailing slash: %q", s)
	}
	return nil
}

// NodeKind distinguishes container nodes from leaf nodes. This is a closed
// set: every behavior difference (expandable or not, metadata shape) is an
// exhaustive switch over these two values.
type NodeKind string

const (
	KindGroup   NodeKind = "group"
	KindDataset NodeKind = "dataset"
)

// IsValid returns true if the kind is a recognized value.
func (k NodeKind) IsValid() bool {
	switch k {
	case KindGroup, KindDataset:
		return true
	}
	return false
}

// CanHaveChildren returns true for kinds that may contain child nodes.
// Datasets are always leaves in this model.
func (k NodeKind) CanHaveChildren() bool {
	return k == KindGroup
}

// ChildState tracks the lazy-loading lifecycle of a group's child list.
// It transitions Unloaded -> Loaded at most once per session; Loading is
// only observable for the duration of a single synchronous fetch.
type ChildState int

const (
	ChildrenUnloaded ChildState = iota
	ChildrenLoading
	ChildrenLoaded
)

// String implements fmt.Stringer for debug output.
func (s ChildState) String() string {
	switch s {
	case ChildrenUnloaded:
		return "unloaded"
	case ChildrenLoading:
		return "loading"
	case ChildrenLoaded:
		return "loaded"
	}
	return fmt.Sprintf("ChildState(%d)", int(s))
}

// Attr is a single named attribute on a group or dataset. Values are kept as
// display strings: the browser only shows metadata summaries, never typed
// attribute data.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Metadata is the lazily-populated summary of a node. For datasets it carries
// the datatype, shape and byte size; for groups only the attribute summary is
// meaningful.
type Metadata struct {
	ByteSize  uint64   `json:"byte_size,omitempty"`
	DType     string   `json:"dtype,omitempty"`
	Shape     []uint64 `json:"shape,omitempty"`
	AttrCount int      `json:"attr_count"`
	Attrs     []Attr   `json:"attrs,omitempty"`
}

// ShapeString renders the dataset shape as "[d0 x d1 x ...]", or "scalar"
// for a zero-dimensional dataset.
func (m Metadata) ShapeString() string {
	if len(m.Shape) == 0 {
		return "scalar"
	}
	parts := make([]string, len(m.Shape))
	for i, d := range m.Shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(parts, " x ") + "]"
}

// Node is one discovered entry in the hierarchy. Nodes are owned exclusively
// by the tree state; everything here is plain data with no back-references,
// so the arena can grow without ever forming cycles.
type Node struct {
	ID    NodeID
	Kind  NodeKind
	State ChildState
	// Children holds the ordered child ids once State is ChildrenLoaded.
	// The order is exactly the order the reader returned.
	Children []NodeID
	// Meta is nil until first resolved.
	Meta *Metadata
	// Err holds the most recent fetch failure for this node, cleared on a
	// successful retry. Displayed inline; never fatal to the session.
	Err error
}

// Name returns the display name of the node.
func (n *Node) Name() string {
	return n.ID.Name()
}

// Depth returns the node's nesting level.
func (n *Node) Depth() int {
	return n.ID.Depth()
}
