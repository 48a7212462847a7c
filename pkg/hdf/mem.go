package hdf

import (
	"sort"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
)

// MemFile is an in-memory Reader. It backs the test suites and the robot
// output path, and doubles as a reference implementation of the Reader
// contract: stable child order, ErrNotFound/ErrNotAGroup distinctions, and
// injectable per-node failures.
type MemFile struct {
	info     FileInfo
	children map[model.NodeID][]ChildInfo
	meta     map[model.NodeID]model.Metadata

	// FailChildren and FailMeta inject a fetch error for a node. When
	// FailOnce is set the injected error fires a single time and then
	// clears, which is how the retry-after-error tests drive recovery.
	FailChildren map[model.NodeID]error
	FailMeta     map[model.NodeID]error
	FailOnce     bool

	// ChildrenCalls counts fetches per id, for no-refetch assertions.
	ChildrenCalls map[model.NodeID]int
	MetaCalls     map[model.NodeID]int
}

// NewMemFile creates an empty in-memory file containing only the root group.
func NewMemFile(name string) *MemFile {
	m := &MemFile{
		info:          FileInfo{Name: name, Path: name},
		children:      make(map[model.NodeID][]ChildInfo),
		meta:          make(map[model.NodeID]model.Metadata),
		FailChildren:  make(map[model.NodeID]error),
		FailMeta:      make(map[model.NodeID]error),
		ChildrenCalls: make(map[model.NodeID]int),
		MetaCalls:     make(map[model.NodeID]int),
	}
	m.children[model.RootID] = nil
	return m
}

// SetSize sets the reported file size.
func (m *MemFile) SetSize(n uint64) {
	m.info.ByteSize = n
}

// AddGroup registers a group at the given path, creating it under its
// parent. The parent must already exist as a group.
func (m *MemFile) AddGroup(id model.NodeID) {
	m.addChild(id, model.KindGroup)
	if _, ok := m.children[id]; !ok {
		m.children[id] = nil
	}
}

// AddDataset registers a dataset at the given path with its metadata.
func (m *MemFile) AddDataset(id model.NodeID, meta model.Metadata) {
	m.addChild(id, model.KindDataset)
	m.meta[id] = meta
}

// SetMeta sets the metadata summary for an existing node.
func (m *MemFile) SetMeta(id model.NodeID, meta model.Metadata) {
	m.meta[id] = meta
}

func (m *MemFile) addChild(id model.NodeID, kind model.NodeKind) {
	parent := id.Parent()
	for _, c := range m.children[parent] {
		if c.Name == id.Name() {
			return
		}
	}
	m.children[parent] = append(m.children[parent], ChildInfo{Name: id.Name(), Kind: kind})
}

// Info returns the file summary.
func (m *MemFile) Info() FileInfo {
	return m.info
}

// Children returns the ordered child listing, honoring injected failures.
func (m *MemFile) Children(id model.NodeID) ([]ChildInfo, error) {
	m.ChildrenCalls[id]++
	if err, ok := m.FailChildren[id]; ok && err != nil {
		if m.FailOnce {
			delete(m.FailChildren, id)
		}
		return nil, &ReadError{ID: id, Err: err}
	}
	kids, ok := m.children[id]
	if !ok {
		if _, isDataset := m.meta[id]; isDataset {
			return nil, &ReadError{ID: id, Err: ErrNotAGroup}
		}
		return nil, &ReadError{ID: id, Err: ErrNotFound}
	}
	out := make([]ChildInfo, len(kids))
	copy(out, kids)
	return out, nil
}

// Metadata returns the node's metadata summary, honoring injected failures.
func (m *MemFile) Metadata(id model.NodeID) (model.Metadata, error) {
	m.MetaCalls[id]++
	if err, ok := m.FailMeta[id]; ok && err != nil {
		if m.FailOnce {
			delete(m.FailMeta, id)
		}
		return model.Metadata{}, &ReadError{ID: id, Err: err}
	}
	if meta, ok := m.meta[id]; ok {
		return meta, nil
	}
	if _, ok := m.children[id]; ok {
		return model.Metadata{}, nil
	}
	return model.Metadata{}, &ReadError{ID: id, Err: ErrNotFound}
}

// Close implements Reader.
func (m *MemFile) Close() error {
	return nil
}

// IDs returns every registered node id in sorted order, handy for building
// deterministic fixtures.
func (m *MemFile) IDs() []model.NodeID {
	seen := map[model.NodeID]bool{model.RootID: true}
	for parent, kids := range m.children {
		seen[parent] = true
		for _, c := range kids {
			seen[parent.Child(c.Name)] = true
		}
	}
	ids := make([]model.NodeID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
