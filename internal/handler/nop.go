package handler

import (
	"context"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// Nop accepts every media type for reading and none for writing. It
// reports empty metadata so that unknown formats still produce a
// uniform result instead of an error. Used as the tail of the
// production handler chain.
type Nop struct{}

func (Nop) ReadableTypes() mediatype.Set { return mediatype.Set{mediatype.Any} }
func (Nop) WritableTypes() mediatype.Set { return nil }

func (Nop) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	return &types.Metadata{}, nil
}

func (Nop) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	return false, nil
}
