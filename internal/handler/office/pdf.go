package office

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/metascrub/metascrub/pkg/types"
)

func readPDF(path string, meta *types.Metadata) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := api.PDFInfo(f, path, nil, nil)
	if err != nil {
		return fmt.Errorf("read pdf info: %w", err)
	}

	meta.Title = info.Title
	addAttr(meta, "Author", types.IconPerson, info.Author)
	addAttr(meta, "Subject", types.IconDescription, info.Subject)
	addAttr(meta, "Keywords", types.IconTag, strings.Join(info.Keywords, ", "))
	addAttr(meta, "Creator", types.IconSoftware, info.Creator)
	addAttr(meta, "Producer", types.IconSoftware, info.Producer)
	return nil
}

// Info dictionary entries replaced when stripping. Dates get the
// start-of-time sentinel in PDF date syntax.
var pdfInfoStrings = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer"}

const pdfEpochDate = "D:19700101000000Z"

// stripPDF clears the document information dictionary and writes the
// result next to out before renaming it into place.
func stripPDF(in, out string) error {
	ctx, err := api.ReadContextFile(in)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	if ctx.Info != nil {
		d, err := ctx.DereferenceDict(*ctx.Info)
		if err != nil {
			return fmt.Errorf("dereference pdf info: %w", err)
		}
		for _, key := range pdfInfoStrings {
			if _, found := d.Find(key); found {
				d[key] = pdftypes.StringLiteral("")
			}
		}
		for _, key := range []string{"CreationDate", "ModDate"} {
			if _, found := d.Find(key); found {
				d[key] = pdftypes.StringLiteral(pdfEpochDate)
			}
		}
	}

	tmp := out + ".tmp"
	if err := api.WriteContextFile(ctx, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write pdf: %w", err)
	}
	return os.Rename(tmp, out)
}
