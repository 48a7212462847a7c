//go:build !cgo

package hdf

import (
	"fmt"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
)

// File is a placeholder so the package API is identical with and without
// cgo. Open always fails in a no-cgo build, so none of its methods are ever
// reached.
type File struct{}

// Open is a stub for builds without cgo. Reading real HDF5 files needs the
// libhdf5 bindings, which require cgo.
func Open(path string) (*File, error) {
	return nil, &OpenError{Path: path, Err: fmt.Errorf("this build has no HDF5 support (compiled with CGO_ENABLED=0)")}
}

func (f *File) Info() FileInfo { return FileInfo{} }

func (f *File) Children(id model.NodeID) ([]ChildInfo, error) {
	return nil, &ReadError{ID: id, Err: fmt.Errorf("no HDF5 support")}
}

func (f *File) Metadata(id model.NodeID) (model.Metadata, error) {
	return model.Metadata{}, &ReadError{ID: id, Err: fmt.Errorf("no HDF5 support")}
}

func (f *File) Close() error { return nil }
