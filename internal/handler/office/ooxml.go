package office

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/metascrub/metascrub/pkg/types"
)

const (
	corePropsPath = "docProps/core.xml"
	appPropsPath  = "docProps/app.xml"
)

// coreProperties mirrors docProps/core.xml. Element names are matched
// by local name; the cp/dc/dcterms namespace prefixes vary by producer.
type coreProperties struct {
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Creator        string `xml:"creator"`
	Keywords       string `xml:"keywords"`
	Description    string `xml:"description"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Revision       string `xml:"revision"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
	LastPrinted    string `xml:"lastPrinted"`
	Category       string `xml:"category"`
	ContentStatus  string `xml:"contentStatus"`
	ContentType    string `xml:"contentType"`
}

// appProperties mirrors the fields of docProps/app.xml we surface.
type appProperties struct {
	Application string `xml:"Application"`
	Company     string `xml:"Company"`
	Manager     string `xml:"Manager"`
}

func readOOXML(path string, meta *types.Metadata) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open ooxml container: %w", err)
	}
	defer r.Close()

	var core coreProperties
	var app appProperties
	for _, f := range r.File {
		switch f.Name {
		case corePropsPath:
			if err := decodeEntry(f, &core); err != nil {
				return err
			}
		case appPropsPath:
			// app.xml is optional and sometimes malformed; skip quietly.
			_ = decodeEntry(f, &app)
		}
	}

	meta.Title = core.Title
	addAttr(meta, "Author", types.IconPerson, core.Creator)
	addAttr(meta, "Last modified by", types.IconPerson, core.LastModifiedBy)
	addAttr(meta, "Description", types.IconDescription, core.Description)
	addAttr(meta, "Subject", types.IconDescription, core.Subject)
	addAttr(meta, "Created", types.IconCalendar, formatW3CDate(core.Created))
	addAttr(meta, "Modified", types.IconCalendar, formatW3CDate(core.Modified))
	addAttr(meta, "Last printed", types.IconCalendar, formatW3CDate(core.LastPrinted))
	addAttr(meta, "Revision", types.IconHistory, core.Revision)
	addAttr(meta, "Keywords", types.IconTag, core.Keywords)
	addAttr(meta, "Category", types.IconTag, core.Category)
	addAttr(meta, "Content status", types.IconDocument, core.ContentStatus)
	addAttr(meta, "Content type", types.IconDocument, core.ContentType)
	addAttr(meta, "Company", types.IconCompany, app.Company)
	addAttr(meta, "Manager", types.IconPerson, app.Manager)
	return nil
}

func decodeEntry(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", f.Name, err)
	}
	return nil
}

// Replacement property parts. Every field the format defines is present
// and empty; dates carry the start-of-time sentinel.
const (
	cleanCoreXML = xml.Header + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><dc:title></dc:title><dc:subject></dc:subject><dc:creator></dc:creator><cp:keywords></cp:keywords><dc:description></dc:description><cp:lastModifiedBy></cp:lastModifiedBy><cp:revision>0</cp:revision><dcterms:created xsi:type="dcterms:W3CDTF">1970-01-01T00:00:00Z</dcterms:created><dcterms:modified xsi:type="dcterms:W3CDTF">1970-01-01T00:00:00Z</dcterms:modified><cp:lastPrinted>1970-01-01T00:00:00Z</cp:lastPrinted><cp:category></cp:category><cp:contentStatus></cp:contentStatus></cp:coreProperties>`

	cleanAppXML = xml.Header + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"><Application></Application><Company></Company><Manager></Manager><TotalTime>0</TotalTime></Properties>`
)

// stripOOXML rewrites the two property parts and copies every other zip
// entry raw, so the document body bytes are untouched.
func stripOOXML(in, out string) error {
	r, err := zip.OpenReader(in)
	if err != nil {
		return fmt.Errorf("open ooxml container: %w", err)
	}
	defer r.Close()

	of, err := os.Create(out)
	if err != nil {
		return err
	}
	w := zip.NewWriter(of)

	for _, f := range r.File {
		switch f.Name {
		case corePropsPath:
			err = writeEntry(w, f.Name, cleanCoreXML)
		case appPropsPath:
			err = writeEntry(w, f.Name, cleanAppXML)
		default:
			err = copyRawEntry(w, f)
		}
		if err != nil {
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

func writeEntry(w *zip.Writer, name, content string) error {
	ew, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(ew, content)
	return err
}

func copyRawEntry(w *zip.Writer, f *zip.File) error {
	rc, err := f.OpenRaw()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	header := f.FileHeader
	ew, err := w.CreateRaw(&header)
	if err != nil {
		return err
	}
	_, err = io.Copy(ew, rc)
	return err
}
