// Package office handles document metadata: OOXML (docx, xlsx), legacy
// binary Word/Excel compound files, OpenDocument (odt, ods) and PDF.
package office

import (
	"context"
	"os"
	"time"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// Cleared date fields are reset to this sentinel instead of being
// dropped, so consumers that require a date still find one.
var startOfTime = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

const dateDisplayFormat = "02 Jan 2006, 15:04:05"

// Handler implements metadata reading and removal for office documents.
// Each sub-format is resolved explicitly before dispatch: an OOXML file
// hiding behind a legacy .doc/.xls extension is detected by its zip
// magic and routed to the OOXML path.
type Handler struct {
	docTypes mediatype.Set
}

func New() *Handler {
	return &Handler{
		docTypes: mediatype.Union(
			mediatype.Alternatives(mediatype.MicrosoftWord),
			mediatype.Alternatives(mediatype.OOXMLDocument),
			mediatype.Alternatives(mediatype.MicrosoftExcel),
			mediatype.Alternatives(mediatype.OOXMLSheet),
			mediatype.Alternatives(mediatype.OpenDocumentText),
			mediatype.Alternatives(mediatype.OpenDocumentSpreadsheet),
			mediatype.Alternatives(mediatype.PDF),
		),
	}
}

func (h *Handler) ReadableTypes() mediatype.Set { return h.docTypes }
func (h *Handler) WritableTypes() mediatype.Set { return h.docTypes }

type subFormat int

const (
	formatUnknown subFormat = iota
	formatOOXML
	formatLegacy
	formatODF
	formatPDF
)

// resolve maps the media type to a concrete sub-format, consulting the
// container magic for the ambiguous legacy types.
func resolve(mt mediatype.MediaType, path string) subFormat {
	switch canon := mediatype.Canonical(mt); {
	case canon.Equal(mediatype.OOXMLDocument), canon.Equal(mediatype.OOXMLSheet):
		return formatOOXML
	case canon.Equal(mediatype.MicrosoftWord), canon.Equal(mediatype.MicrosoftExcel):
		if isZipContainer(path) {
			return formatOOXML
		}
		return formatLegacy
	case canon.Equal(mediatype.OpenDocumentText), canon.Equal(mediatype.OpenDocumentSpreadsheet):
		return formatODF
	case canon.Equal(mediatype.PDF):
		return formatPDF
	}
	return formatUnknown
}

func isZipContainer(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 4)
	if n, err := f.Read(head); err != nil || n < 4 {
		return false
	}
	return head[0] == 'P' && head[1] == 'K' && head[2] == 0x03 && head[3] == 0x04
}

func (h *Handler) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	if !h.docTypes.Contains(mt) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta := &types.Metadata{}
	var err error
	switch resolve(mt, path) {
	case formatOOXML:
		err = readOOXML(path, meta)
	case formatLegacy:
		err = readLegacy(path, meta)
	case formatODF:
		err = readODF(path, meta)
	case formatPDF:
		err = readPDF(path, meta)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (h *Handler) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	if !h.docTypes.Contains(mt) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var err error
	switch resolve(mt, in) {
	case formatOOXML:
		err = stripOOXML(in, out)
	case formatLegacy:
		err = stripLegacy(in, out)
	case formatODF:
		err = stripODF(in, out)
	case formatPDF:
		err = stripPDF(in, out)
	default:
		return false, nil
	}
	if err != nil {
		os.Remove(out)
		return false, err
	}
	return true, nil
}

// formatW3CDate renders an xsd:dateTime value for display. Values that
// fail to parse are shown as-is.
func formatW3CDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateDisplayFormat)
		}
	}
	return s
}

func addAttr(meta *types.Metadata, label, icon, value string) {
	if value == "" {
		return
	}
	meta.Attributes.Add(types.Attribute{Label: label, Icon: icon, Primary: value})
}
