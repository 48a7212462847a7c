// Package tree implements the navigation state machine of the browser: the
// lazily-materialized node cache, the expand/collapse tree state, the
// pre-order row projection, and the cursor/viewport over it.
package tree

import (
	"fmt"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/hdf"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"golang.org/x/sync/singleflight"
)

// NodeCache memoizes reader lookups. Each id's children and metadata are
// fetched from the reader at most once per session; after that every call is
// a pure map lookup. Failed fetches are deliberately NOT memoized, so a
// later expand retries instead of staying poisoned.
//
// The cache is the sole owner of fetched tree data. TreeState delegates
// every fetch here and never talks to the reader directly.
type NodeCache struct {
	reader   hdf.Reader
	children map[model.NodeID][]hdf.ChildInfo
	meta     map[model.NodeID]model.Metadata

	// group collapses duplicate in-flight fetches for the same id. The
	// event loop is single-threaded, so this is belt-and-braces for any
	// future background fetch path rather than a live race today.
	group singleflight.Group
}

// NewNodeCache creates a cache over the given reader.
func NewNodeCache(reader hdf.Reader) *NodeCache {
	return &NodeCache{
		reader:   reader,
		children: make(map[model.NodeID][]hdf.ChildInfo),
		meta:     make(map[model.NodeID]model.Metadata),
	}
}

// Reader exposes the underlying reader for file-level info.
func (c *NodeCache) Reader() hdf.Reader {
	return c.reader
}

// ResolveChildren returns the ordered child listing for a group id, fetching
// from the reader on first call and from memory afterwards. May block for
// the duration of a disk read.
func (c *NodeCache) ResolveChildren(id model.NodeID) ([]hdf.ChildInfo, error) {
	if kids, ok := c.children[id]; ok {
		return kids, nil
	}
	v, err, _ := c.group.Do("children:"+string(id), func() (any, error) {
		return c.reader.Children(id)
	})
	if err != nil {
		return nil, wrapRead(id, err)
	}
	kids := v.([]hdf.ChildInfo)
	c.children[id] = kids
	return kids, nil
}

// ResolveMetadata returns the metadata summary for an id, fetching once and
// memoizing on success.
func (c *NodeCache) ResolveMetadata(id model.NodeID) (model.Metadata, error) {
	if meta, ok := c.meta[id]; ok {
		return meta, nil
	}
	v, err, _ := c.group.Do("meta:"+string(id), func() (any, error) {
		return c.reader.Metadata(id)
	})
	if err != nil {
		return model.Metadata{}, wrapRead(id, err)
	}
	meta := v.(model.Metadata)
	c.meta[id] = meta
	return meta, nil
}

// HasChildren reports whether the children of id are already cached.
func (c *NodeCache) HasChildren(id model.NodeID) bool {
	_, ok := c.children[id]
	return ok
}

// wrapRead ensures every error leaving the cache is a *hdf.ReadError so
// callers have one error class to mark nodes with.
func wrapRead(id model.NodeID, err error) error {
	if _, ok := err.(*hdf.ReadError); ok {
		return err
	}
	return &hdf.ReadError{ID: id, Err: fmt.Errorf("fetch failed: %w", err)}
}
