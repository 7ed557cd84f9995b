package office

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/richardlehane/mscfb"

	"github.com/metascrub/metascrub/pkg/types"
)

// Stream names inside the compound file. The leading byte marks them
// as control streams.
const (
	summaryStream    = "\x05SummaryInformation"
	docSummaryStream = "\x05DocumentSummaryInformation"
)

func readLegacy(path string, meta *types.Metadata) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return fmt.Errorf("open compound file: %w", err)
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case summaryStream:
			data, err := readStream(entry)
			if err != nil {
				return err
			}
			readSummaryInfo(data, meta)
		case docSummaryStream:
			data, err := readStream(entry)
			if err != nil {
				return err
			}
			readDocSummaryInfo(data, meta)
		}
	}
	return nil
}

func readStream(entry *mscfb.File) ([]byte, error) {
	data := make([]byte, entry.Size)
	if _, err := io.ReadFull(entry, data); err != nil {
		return nil, fmt.Errorf("read stream %q: %w", entry.Name, err)
	}
	return data, nil
}

func readSummaryInfo(data []byte, meta *types.Metadata) {
	sections, err := parsePropertyStream(data)
	if err != nil {
		return
	}
	for i := range sections {
		sec := &sections[i]
		if !bytes.Equal(sec.FMTID, fmtidSummaryInfo) {
			continue
		}
		if p, ok := sec.find(pidTitle); ok {
			meta.Title = stringValue(data, p)
		}
		addSectionString(data, sec, pidAuthor, meta, "Author", types.IconPerson)
		addSectionString(data, sec, pidLastAuthor, meta, "Last author", types.IconPerson)
		addSectionString(data, sec, pidSubject, meta, "Subject", types.IconDescription)
		addSectionString(data, sec, pidKeywords, meta, "Keywords", types.IconTag)
		addSectionString(data, sec, pidComments, meta, "Comments", types.IconDescription)
		addSectionString(data, sec, pidTemplate, meta, "Template", types.IconDocument)
		addSectionString(data, sec, pidRevNumber, meta, "Revision number", types.IconHistory)
		addSectionString(data, sec, pidAppName, meta, "Application name", types.IconSoftware)
		addSectionTime(data, sec, pidCreateTime, meta, "Created")
		addSectionTime(data, sec, pidSaveTime, meta, "Last saved")
		addSectionTime(data, sec, pidLastPrinted, meta, "Last printed")
	}
}

func readDocSummaryInfo(data []byte, meta *types.Metadata) {
	sections, err := parsePropertyStream(data)
	if err != nil {
		return
	}
	for i := range sections {
		sec := &sections[i]
		if !bytes.Equal(sec.FMTID, fmtidDocSummaryInfo) {
			continue
		}
		addSectionString(data, sec, pidCategory, meta, "Category", types.IconTag)
		addSectionString(data, sec, pidCompany, meta, "Company", types.IconCompany)
		addSectionString(data, sec, pidManager, meta, "Manager", types.IconPerson)
	}
}

func addSectionString(data []byte, sec *propSection, id uint32, meta *types.Metadata, label, icon string) {
	p, ok := sec.find(id)
	if !ok {
		return
	}
	addAttr(meta, label, icon, stringValue(data, p))
}

func addSectionTime(data []byte, sec *propSection, id uint32, meta *types.Metadata, label string) {
	p, ok := sec.find(id)
	if !ok {
		return
	}
	if t, valid := timeValue(data, p); valid {
		addAttr(meta, label, types.IconCalendar, t.Format(dateDisplayFormat))
	}
}

// stripLegacy copies the compound file and blanks the two property set
// streams in place. The streams keep their size, so the sector chains
// and directory need no rewriting.
func stripLegacy(in, out string) error {
	if err := copyFile(in, out); err != nil {
		return err
	}

	f, err := os.OpenFile(out, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return fmt.Errorf("open compound file: %w", err)
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != summaryStream && entry.Name != docSummaryStream {
			continue
		}
		data, err := readStream(entry)
		if err != nil {
			return err
		}
		if err := clearPropertyStream(data); err != nil {
			return fmt.Errorf("clear stream %q: %w", entry.Name, err)
		}
		if _, err := entry.WriteAt(data, 0); err != nil {
			return fmt.Errorf("rewrite stream %q: %w", entry.Name, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	outFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, in); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
