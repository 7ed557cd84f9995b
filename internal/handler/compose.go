package handler

import (
	"context"
	"fmt"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// FirstMatch dispatches every operation to the first child handler
// whose capability set contains the media type. Children are consulted
// in construction order. A type no child accepts is unsupported.
type FirstMatch struct {
	children []Handler
	readable mediatype.Set
	writable mediatype.Set
}

// NewFirstMatch composes children into a first-match handler.
func NewFirstMatch(children ...Handler) *FirstMatch {
	f := &FirstMatch{children: children}
	for _, c := range children {
		f.readable = mediatype.Union(f.readable, c.ReadableTypes())
		f.writable = mediatype.Union(f.writable, c.WritableTypes())
	}
	return f
}

func (f *FirstMatch) ReadableTypes() mediatype.Set { return f.readable }
func (f *FirstMatch) WritableTypes() mediatype.Set { return f.writable }

func (f *FirstMatch) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	for _, c := range f.children {
		if c.ReadableTypes().Contains(mt) {
			return c.ReadMetadata(ctx, mt, path)
		}
	}
	return nil, nil
}

func (f *FirstMatch) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	for _, c := range f.children {
		if c.WritableTypes().Contains(mt) {
			return c.RemoveMetadata(ctx, mt, in, out)
		}
	}
	return false, nil
}

// MergeAll dispatches reads to every child whose readable set contains
// the media type and folds the results: the first non-empty title and
// thumbnail win, attribute sets are unioned. Strips go to the single
// child claiming the type; the children's writable sets must therefore
// be pairwise disjoint, which NewMergeAll enforces.
type MergeAll struct {
	children []Handler
	readable mediatype.Set
	writable mediatype.Set
}

// NewMergeAll composes children into a merging handler. It returns an
// error when two children claim overlapping writable types, since a
// strip dispatched to "all matching writers" has no well-defined owner.
func NewMergeAll(children ...Handler) (*MergeAll, error) {
	m := &MergeAll{children: children}
	for i, c := range children {
		for _, prev := range children[:i] {
			if mediatype.Intersects(prev.WritableTypes(), c.WritableTypes()) {
				return nil, fmt.Errorf("merge: handlers %T and %T claim overlapping writable types", prev, c)
			}
		}
		m.readable = mediatype.Union(m.readable, c.ReadableTypes())
		m.writable = mediatype.Union(m.writable, c.WritableTypes())
	}
	return m, nil
}

func (m *MergeAll) ReadableTypes() mediatype.Set { return m.readable }
func (m *MergeAll) WritableTypes() mediatype.Set { return m.writable }

func (m *MergeAll) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	var merged *types.Metadata
	var firstErr error
	for _, c := range m.children {
		if !c.ReadableTypes().Contains(mt) {
			continue
		}
		meta, err := c.ReadMetadata(ctx, mt, path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if meta == nil {
			continue
		}
		if merged == nil {
			merged = &types.Metadata{}
		}
		merged.Merge(meta)
	}
	if merged == nil && firstErr != nil {
		return nil, firstErr
	}
	return merged, nil
}

func (m *MergeAll) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	for _, c := range m.children {
		if c.WritableTypes().Contains(mt) {
			return c.RemoveMetadata(ctx, mt, in, out)
		}
	}
	return false, nil
}
