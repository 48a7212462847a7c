// Package hdf abstracts the hierarchical-file reader the browser navigates.
//
// The Reader interface is the sole source of truth for tree contents. It is
// assumed correct and possibly slow: calls may block for the duration of a
// disk read. Failures on a specific node are reported as errors distinct
// from an empty result, so an empty group never looks like a broken one.
package hdf

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
)

// Common errors.
var (
	// ErrNotFound reports that a node id does not exist in the file.
	ErrNotFound = errors.New("node not found")
	// ErrNotAGroup reports a children listing on a dataset.
	ErrNotAGroup = errors.New("node is not a group")
)

// OpenError is the fatal error class: the file itself cannot be opened or is
// not a valid hierarchical-data file. It is reported once, before the
// navigation session starts.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError is the recoverable error class: a specific node's children or
// metadata could not be fetched after the session started. The node is
// marked and remains navigable; a later expand retries the fetch.
type ReadError struct {
	ID  model.NodeID
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.ID, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ChildInfo is one entry of a group's ordered child listing.
type ChildInfo struct {
	Name string
	Kind model.NodeKind
}

// FileInfo summarizes the opened file for the header panes.
type FileInfo struct {
	Name     string
	Path     string
	ByteSize uint64
}

// Reader lists children and resolves metadata summaries for node ids.
// Implementations must return children in a stable order; the browser
// preserves whatever order the reader chose.
type Reader interface {
	Info() FileInfo
	Children(id model.NodeID) ([]ChildInfo, error)
	Metadata(id model.NodeID) (model.Metadata, error)
	Close() error
}
