//go:build cgo

package hdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"gonum.org/v1/hdf5"
)

// File is the real Reader over an HDF5/NeXus file, backed by the libhdf5
// bindings. All calls are synchronous; the event loop invokes them one at a
// time, so no locking is needed here.
type File struct {
	file *hdf5.File
	info FileInfo
}

// Open opens an HDF5 file read-only. Any failure (missing file, permissions,
// wrong format) is returned as an *OpenError.
func Open(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	if st.IsDir() {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("not a valid HDF5 file: %w", err)}
	}

	// Info().Path keys the persisted view state, so it must be the same
	// regardless of the working directory the file was opened from.
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &File{
		file: f,
		info: FileInfo{
			Name:     filepath.Base(abs),
			Path:     abs,
			ByteSize: uint64(st.Size()),
		},
	}, nil
}

// Info returns the file summary captured at open time.
func (f *File) Info() FileInfo {
	return f.info
}

// Close releases the underlying HDF5 handle.
func (f *File) Close() error {
	return f.file.Close()
}

// Children lists the ordered members of a group. The order is whatever
// libhdf5 yields for index iteration, which is stable for a static file.
func (f *File) Children(id model.NodeID) ([]ChildInfo, error) {
	g, err := f.file.OpenGroup(string(id))
	if err != nil {
		// Distinguish "is a dataset" from "does not exist": datasets open
		// fine as datasets but not as groups.
		if d, derr := f.file.OpenDataset(string(id)); derr == nil {
			d.Close()
			return nil, &ReadError{ID: id, Err: ErrNotAGroup}
		}
		return nil, &ReadError{ID: id, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
	}
	defer g.Close()

	n, err := g.NumObjects()
	if err != nil {
		return nil, &ReadError{ID: id, Err: err}
	}

	children := make([]ChildInfo, 0, n)
	for i := uint(0); i < n; i++ {
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			return nil, &ReadError{ID: id, Err: err}
		}
		children = append(children, ChildInfo{Name: name, Kind: f.kindOf(g, name)})
	}
	return children, nil
}

// kindOf probes a group member's kind. The binding has no direct object-type
// query, so probe as group first; anything that opens as a dataset is a
// dataset; other link types (named datatypes, dangling links) are shown as
// datasets so they stay visible as leaves.
func (f *File) kindOf(g *hdf5.Group, name string) model.NodeKind {
	if sub, err := g.OpenGroup(name); err == nil {
		sub.Close()
		return model.KindGroup
	}
	return model.KindDataset
}

// Metadata resolves the metadata summary for a node. Attribute iteration is
// not exposed by the binding, so attribute fields stay zero here; dataset
// shape, dtype and byte size are fully populated.
func (f *File) Metadata(id model.NodeID) (model.Metadata, error) {
	if g, err := f.file.OpenGroup(string(id)); err == nil {
		// Groups carry no dataset-shaped metadata; the detail pane shows
		// their member count from the loaded children list instead.
		g.Close()
		return model.Metadata{}, nil
	}

	d, err := f.file.OpenDataset(string(id))
	if err != nil {
		return model.Metadata{}, &ReadError{ID: id, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
	}
	defer d.Close()

	space := d.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return model.Metadata{}, &ReadError{ID: id, Err: err}
	}

	dt, err := d.Datatype()
	if err != nil {
		return model.Metadata{}, &ReadError{ID: id, Err: err}
	}
	defer dt.Close()

	shape := make([]uint64, len(dims))
	elems := uint64(1)
	for i, dim := range dims {
		shape[i] = uint64(dim)
		elems *= uint64(dim)
	}

	return model.Metadata{
		ByteSize: elems * uint64(dt.Size()),
		DType:    typeClassName(dt.Class()),
		Shape:    shape,
	}, nil
}

// typeClassName maps an HDF5 type class to a short display name.
func typeClassName(c hdf5.TypeClass) string {
	switch c {
	case hdf5.T_INTEGER:
		return "integer"
	case hdf5.T_FLOAT:
		return "float"
	case hdf5.T_STRING:
		return "string"
	case hdf5.T_BITFIELD:
		return "bitfield"
	case hdf5.T_OPAQUE:
		return "opaque"
	case hdf5.T_COMPOUND:
		return "compound"
	case hdf5.T_REFERENCE:
		return "reference"
	case hdf5.T_ENUM:
		return "enum"
	case hdf5.T_VLEN:
		return "vlen"
	case hdf5.T_ARRAY:
		return "array"
	default:
		return "unknown"
	}
}
