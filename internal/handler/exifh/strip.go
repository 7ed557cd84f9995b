package exifh

import (
	"bytes"
	"context"
	"fmt"
	"os"

	exifb "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"

	"github.com/metascrub/metascrub/internal/mediatype"
)

// identity used to resolve tag names for each cleared IFD path. IFD1
// shares the root catalog.
var clearIdentities = map[string]*exifcommon.IfdIdentity{
	"IFD":          exifcommon.IfdStandardIfdIdentity,
	"IFD1":         exifcommon.IfdStandardIfdIdentity,
	"IFD/Exif":     exifcommon.IfdExifStandardIfdIdentity,
	"IFD/GPSInfo":  exifcommon.IfdGpsInfoStandardIfdIdentity,
	"IFD/Exif/Iop": exifcommon.IfdExifIopStandardIfdIdentity,
}

func (h *Handler) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	if !h.writable.Contains(mt) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return false, err
	}

	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseBytes(data)
	if err != nil {
		return false, fmt.Errorf("parse jpeg: %w", err)
	}
	segments, ok := intfc.(*jpegstructure.SegmentList)
	if !ok {
		return false, fmt.Errorf("parse jpeg: unexpected segment container %T", intfc)
	}

	if _, _, err := segments.Exif(); err != nil {
		// No EXIF block: the copy is already clean.
		return true, writeOutput(out, data)
	}

	rootIb, err := segments.ConstructExifBuilder()
	if err != nil {
		return false, fmt.Errorf("read exif segment: %w", err)
	}
	ti := exifb.NewTagIndex()
	for ifdPath, names := range clearTags {
		ib, err := exifb.GetOrCreateIbFromRootIb(rootIb, ifdPath)
		if err != nil {
			continue
		}
		ii := clearIdentities[ifdPath]
		for _, name := range names {
			it, err := ti.GetWithName(ii, name)
			if err != nil {
				continue
			}
			if _, err := ib.DeleteAll(it.Id); err != nil {
				return false, fmt.Errorf("clear %s/%s: %w", ifdPath, name, err)
			}
		}
	}

	if err := segments.SetExif(rootIb); err != nil {
		return false, fmt.Errorf("rewrite exif segment: %w", err)
	}

	var buf bytes.Buffer
	if err := segments.Write(&buf); err != nil {
		return false, fmt.Errorf("write jpeg: %w", err)
	}
	return true, writeOutput(out, buf.Bytes())
}

func writeOutput(out string, data []byte) error {
	if err := os.WriteFile(out, data, 0644); err != nil {
		os.Remove(out)
		return err
	}
	return nil
}
