package tree

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/hdf"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
)

// newScanFile builds the fixture used throughout the navigation tests:
//
//	/
//	├── entry/          (group)
//	│   ├── data/       (group)
//	│   │   └── counts  (dataset)
//	│   └── title       (dataset)
//	└── notes           (dataset)
func newScanFile() *hdf.MemFile {
	f := hdf.NewMemFile("scan_0001.nxs")
	f.SetSize(4 << 20)
	f.AddGroup("/entry")
	f.AddGroup("/entry/data")
	f.AddDataset("/entry/data/counts", model.Metadata{
		ByteSize: 1 << 20, DType: "integer", Shape: []uint64{1024, 256},
	})
	f.AddDataset("/entry/title", model.Metadata{DType: "string"})
	f.AddDataset("/notes", model.Metadata{DType: "string"})
	return f
}

func newTestState(f *hdf.MemFile) *TreeState {
	return NewTreeState(NewNodeCache(f))
}

func TestNewTreeStateHasRoot(t *testing.T) {
	s := newTestState(newScanFile())
	root := s.Root()
	if root == nil {
		t.Fatal("root node must always exist")
	}
	if root.Kind != model.KindGroup {
		t.Errorf("root kind = %s, want group", root.Kind)
	}
	if s.IsExpanded(model.RootID) {
		t.Error("root starts collapsed")
	}
	if !s.IsVisible(model.RootID) {
		t.Error("root is always visible")
	}
}

func TestExpandLoadsChildrenOnce(t *testing.T) {
	f := newScanFile()
	s := newTestState(f)

	if err := s.Expand(model.RootID); err != nil {
		t.Fatalf("Expand(root): %v", err)
	}
	root := s.Root()
	if root.State != model.ChildrenLoaded {
		t.Fatalf("root children state = %s, want loaded", root.State)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %v, want [/entry /notes]", root.Children)
	}
	if root.Children[0] != "/entry" || root.Children[1] != "/notes" {
		t.Errorf("child order not preserved: %v", root.Children)
	}

	// Collapse and re-expand: no refetch.
	s.Collapse(model.RootID)
	if err := s.Expand(model.RootID); err != nil {
		t.Fatalf("re-Expand(root): %v", err)
	}
	if got := f.ChildrenCalls[model.RootID]; got != 1 {
		t.Errorf("children fetched %d times, want 1", got)
	}
}

func TestExpandIdempotent(t *testing.T) {
	f := newScanFile()
	s := newTestState(f)
	if err := s.Expand(model.RootID); err != nil {
		t.Fatal(err)
	}
	if err := s.Expand(model.RootID); err != nil {
		t.Fatalf("second Expand must be a no-op, got %v", err)
	}
	if f.ChildrenCalls[model.RootID] != 1 {
		t.Errorf("idempotent expand refetched children")
	}
}

func TestExpandDatasetFails(t *testing.T) {
	s := newTestState(newScanFile())
	if err := s.Expand(model.RootID); err != nil {
		t.Fatal(err)
	}
	err := s.Expand("/notes")
	if !errors.Is(err, ErrNotExpandable) {
		t.Errorf("Expand(dataset) = %v, want ErrNotExpandable", err)
	}
}

func TestExpandUnknownNode(t *testing.T) {
	s := newTestState(newScanFile())
	if err := s.Expand("/nope"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Expand(unknown) = %v, want ErrUnknownNode", err)
	}
}

func TestCollapseIdempotentAndKeepsCache(t *testing.T) {
	f := newScanFile()
	s := newTestState(f)
	if err := s.Expand(model.RootID); err != nil {
		t.Fatal(err)
	}
	s.Collapse(model.RootID)
	s.Collapse(model.RootID) // second collapse is a no-op

	if s.IsExpanded(model.RootID) {
		t.Error("root should be collapsed")
	}
	if s.Root().State != model.ChildrenLoaded {
		t.Error("collapse must not discard cached children")
	}
}

func TestIsVisibleRequiresAllAncestorsExpanded(t *testing.T) {
	s := newTestState(newScanFile())
	mustExpand(t, s, model.RootID)
	mustExpand(t, s, "/entry")

	if !s.IsVisible("/entry/data") {
		t.Error("/entry/data should be visible with root and /entry expanded")
	}
	mustExpand(t, s, "/entry/data")
	if !s.IsVisible("/entry/data/counts") {
		t.Error("counts should be visible with full lineage expanded")
	}

	// Collapsing a mid ancestor hides the whole subtree, even though the
	// deeper node's own parent is still in the expanded set.
	s.Collapse("/entry")
	if s.IsVisible("/entry/data/counts") {
		t.Error("counts must be hidden behind collapsed /entry")
	}
	if s.IsVisible("/entry/data") {
		t.Error("/entry/data must be hidden behind collapsed /entry")
	}
	if !s.IsVisible("/entry") {
		t.Error("/entry itself stays visible; only descendants hide")
	}
}

func TestToggle(t *testing.T) {
	s := newTestState(newScanFile())
	if err := s.Toggle(model.RootID); err != nil {
		t.Fatal(err)
	}
	if !s.IsExpanded(model.RootID) {
		t.Error("toggle on collapsed group expands")
	}
	if err := s.Toggle(model.RootID); err != nil {
		t.Fatal(err)
	}
	if s.IsExpanded(model.RootID) {
		t.Error("toggle on expanded group collapses")
	}
}

func TestExpandReadErrorRecovery(t *testing.T) {
	f := newScanFile()
	f.FailOnce = true
	f.FailChildren["/entry"] = fmt.Errorf("checksum mismatch")
	s := newTestState(f)
	mustExpand(t, s, model.RootID)

	err := s.Expand("/entry")
	if err == nil {
		t.Fatal("expected a read error")
	}
	var readErr *hdf.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error %v is not a *hdf.ReadError", err)
	}

	node := s.Node("/entry")
	if s.IsExpanded("/entry") {
		t.Error("failed expand must leave the node collapsed")
	}
	if node.Err == nil {
		t.Error("failed expand must mark the node with its error")
	}
	if node.State == model.ChildrenLoaded {
		t.Error("failed expand must not mark children loaded")
	}

	// The failure was transient; the next expand retries and succeeds.
	if err := s.Expand("/entry"); err != nil {
		t.Fatalf("retry after transient failure: %v", err)
	}
	if s.Node("/entry").Err != nil {
		t.Error("successful retry must clear the error marker")
	}
	if got := f.ChildrenCalls["/entry"]; got != 2 {
		t.Errorf("children fetched %d times, want 2 (fail + retry)", got)
	}
}

func TestExpandAllOnlyLoadedGroups(t *testing.T) {
	f := newScanFile()
	s := newTestState(f)
	mustExpand(t, s, model.RootID)

	if err := s.ExpandAll(); err != nil {
		t.Fatal(err)
	}
	if !s.IsExpanded(model.RootID) {
		t.Error("expand-all expands the root")
	}
	// /entry was discovered but never loaded; expand-all must not force
	// a fetch of its subtree.
	if f.ChildrenCalls["/entry"] != 0 {
		t.Error("expand-all must not fetch unloaded subtrees")
	}
	if s.IsExpanded("/entry") {
		t.Error("unloaded group must stay collapsed after expand-all")
	}

	mustExpand(t, s, "/entry")
	s.Collapse("/entry")
	if err := s.ExpandAll(); err != nil {
		t.Fatal(err)
	}
	if !s.IsExpanded("/entry") {
		t.Error("loaded group should be expanded by expand-all")
	}
}

func TestCollapseAll(t *testing.T) {
	s := newTestState(newScanFile())
	mustExpand(t, s, model.RootID)
	mustExpand(t, s, "/entry")
	s.CollapseAll()
	if len(s.ExpandedIDs()) != 0 {
		t.Errorf("expanded set not empty after collapse-all: %v", s.ExpandedIDs())
	}
	if !s.IsVisible(model.RootID) {
		t.Error("root row survives collapse-all")
	}
}

func TestRestoreExpandedSkipsStaleIDs(t *testing.T) {
	s := newTestState(newScanFile())
	s.RestoreExpanded([]model.NodeID{"/entry/data", "/entry", "/", "/gone"})
	if !s.IsExpanded(model.RootID) || !s.IsExpanded("/entry") || !s.IsExpanded("/entry/data") {
		t.Error("restore should re-expand the surviving lineage")
	}
	if s.IsExpanded("/gone") {
		t.Error("stale ids must be skipped")
	}
}

func mustExpand(t *testing.T, s *TreeState, id model.NodeID) {
	t.Helper()
	if err := s.Expand(id); err != nil {
		t.Fatalf("Expand(%s): %v", id, err)
	}
}
