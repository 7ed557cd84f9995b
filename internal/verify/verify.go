package verify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/metascrub/metascrub/internal/handler"
	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// sensitiveIcons marks attribute categories that identify a person,
// a device, or a place. Intrinsic attributes like image dimensions or
// duration survive scrubbing and are fine to keep.
var sensitiveIcons = map[string]bool{
	types.IconLocation:  true,
	types.IconPerson:    true,
	types.IconCamera:    true,
	types.IconLens:      true,
	types.IconCopyright: true,
}

type Verifier struct {
	reader handler.Handler
}

func New(reader handler.Handler) *Verifier {
	return &Verifier{reader: reader}
}

// Verify re-reads a cleaned output file and fails if any sensitive
// attribute survived the scrub.
func (v *Verifier) Verify(ctx context.Context, mt mediatype.MediaType, destPath string) error {
	destInfo, err := os.Stat(destPath)
	if err != nil {
		return fmt.Errorf("output file not found: %w", err)
	}

	if destInfo.Size() == 0 {
		return fmt.Errorf("output file is empty: %s", destPath)
	}

	meta, err := v.reader.ReadMetadata(ctx, mt, destPath)
	if err != nil {
		return fmt.Errorf("failed to re-read output: %w", err)
	}
	if meta == nil {
		return nil
	}

	var leftover []string
	for _, attr := range meta.Attributes.List() {
		if sensitiveIcons[attr.Icon] {
			leftover = append(leftover, attr.Label)
		}
	}

	if len(leftover) > 0 {
		return fmt.Errorf("sensitive attributes survived scrub: %s", strings.Join(leftover, ", "))
	}

	return nil
}
