// Package handler defines the metadata handler contract and the
// combinators used to compose format-specific handlers into one engine.
package handler

import (
	"context"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// Handler reads and removes embedded metadata for a fixed set of media
// types. Implementations are safe for concurrent use and hold no
// per-call state.
//
// Both operations signal "type not supported" without an error:
// ReadMetadata returns (nil, nil) and RemoveMetadata returns
// (false, nil). Errors are reserved for malformed or unreadable input
// of a supported type.
type Handler interface {
	// ReadableTypes is the fixed set of media types ReadMetadata accepts.
	ReadableTypes() mediatype.Set
	// WritableTypes is the fixed set of media types RemoveMetadata accepts.
	WritableTypes() mediatype.Set
	// ReadMetadata extracts the metadata of the file at path.
	ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error)
	// RemoveMetadata writes a metadata-free copy of in to out. It
	// reports whether the strip was performed. No file is left at out
	// when it returns false or an error.
	RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error)
}
