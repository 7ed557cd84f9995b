package office

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/metascrub/metascrub/pkg/types"
)

const odfMetaPath = "meta.xml"

// odfMeta mirrors the office:meta block of meta.xml. Elements are
// matched by local name across the meta and dc namespaces.
type odfMeta struct {
	InitialCreator string   `xml:"meta>initial-creator"`
	Creator        string   `xml:"meta>creator"`
	EditingCycles  string   `xml:"meta>editing-cycles"`
	PrintedBy      string   `xml:"meta>printed-by"`
	PrintDate      string   `xml:"meta>print-date"`
	DCDate         string   `xml:"meta>date"`
	CreationDate   string   `xml:"meta>creation-date"`
	Language       string   `xml:"meta>language"`
	Keywords       []string `xml:"meta>keyword"`
	Subject        string   `xml:"meta>subject"`
	Description    string   `xml:"meta>description"`
	Title          string   `xml:"meta>title"`
	Generator      string   `xml:"meta>generator"`
}

func readODF(path string, meta *types.Metadata) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open odf container: %w", err)
	}
	defer r.Close()

	var m odfMeta
	for _, f := range r.File {
		if f.Name != odfMetaPath {
			continue
		}
		if err := decodeEntry(f, &m); err != nil {
			return err
		}
		break
	}

	meta.Title = m.Title
	addAttr(meta, "Initial creator", types.IconPerson, m.InitialCreator)
	addAttr(meta, "Creator", types.IconPerson, m.Creator)
	addAttr(meta, "Editing cycles", types.IconHistory, m.EditingCycles)
	addAttr(meta, "Printed by", types.IconPerson, m.PrintedBy)
	addAttr(meta, "Print date", types.IconCalendar, formatW3CDate(m.PrintDate))
	addAttr(meta, "Date", types.IconCalendar, formatW3CDate(m.DCDate))
	addAttr(meta, "Created", types.IconCalendar, formatW3CDate(m.CreationDate))
	addAttr(meta, "Language", types.IconDescription, m.Language)
	addAttr(meta, "Keywords", types.IconTag, strings.Join(m.Keywords, ", "))
	addAttr(meta, "Subject", types.IconDescription, m.Subject)
	addAttr(meta, "Description", types.IconDescription, m.Description)
	addAttr(meta, "Generator", types.IconSoftware, m.Generator)
	return nil
}

// Replacement meta.xml with every field present and neutral.
const cleanMetaXML = xml.Header + `<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0" xmlns:dc="http://purl.org/dc/elements/1.1/" office:version="1.2"><office:meta><meta:generator></meta:generator><dc:title></dc:title><dc:description></dc:description><dc:subject></dc:subject><meta:initial-creator></meta:initial-creator><dc:creator></dc:creator><meta:printed-by></meta:printed-by><meta:creation-date>1970-01-01T00:00:00</meta:creation-date><dc:date>1970-01-01T00:00:00</dc:date><meta:print-date>1970-01-01T00:00:00</meta:print-date><dc:language></dc:language><meta:editing-cycles>0</meta:editing-cycles></office:meta></office:document-meta>`

// stripODF rewrites meta.xml and copies everything else raw. The
// mimetype entry keeps its position and stored compression through the
// raw copy.
func stripODF(in, out string) error {
	r, err := zip.OpenReader(in)
	if err != nil {
		return fmt.Errorf("open odf container: %w", err)
	}
	defer r.Close()

	of, err := os.Create(out)
	if err != nil {
		return err
	}
	w := zip.NewWriter(of)

	seenMeta := false
	for _, f := range r.File {
		if f.Name == odfMetaPath {
			seenMeta = true
			err = writeEntry(w, f.Name, cleanMetaXML)
		} else {
			err = copyRawEntry(w, f)
		}
		if err != nil {
			w.Close()
			of.Close()
			return err
		}
	}
	if !seenMeta {
		if err := writeEntry(w, odfMetaPath, cleanMetaXML); err != nil {
			w.Close()
			of.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		of.Close()
		return err
	}
	return of.Close()
}
