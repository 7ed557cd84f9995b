// Package pngh handles PNG images at the chunk level. Reads map the
// tIME chunk and the standard text keywords to attributes; strips copy
// every pixel-bearing chunk verbatim and neutralize the rest.
package pngh

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	pngstructure "github.com/dsoprea/go-png-image-structure/v2"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// Standard tEXt keywords, in the order they are written back.
const (
	keyTitle        = "Title"
	keyAuthor       = "Author"
	keyDescription  = "Description"
	keyCopyright    = "Copyright"
	keyCreationTime = "Creation Time"
	keySoftware     = "Software"
	keyDisclaimer   = "Disclaimer"
	keyWarning      = "Warning"
	keySource       = "Source"
	keyComment      = "Comment"
)

var textKeys = []string{
	keyTitle, keyAuthor, keyDescription, keyCopyright, keyCreationTime,
	keySoftware, keyDisclaimer, keyWarning, keySource, keyComment,
}

// Handler implements metadata reading and removal for PNG files.
type Handler struct {
	types mediatype.Set
}

func New() *Handler {
	return &Handler{types: mediatype.Alternatives(mediatype.PNG)}
}

func (h *Handler) ReadableTypes() mediatype.Set { return h.types }
func (h *Handler) WritableTypes() mediatype.Set { return h.types }

func (h *Handler) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	if !h.types.Contains(mt) {
		return nil, nil
	}
	chunks, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	text := map[string]string{}
	var modTime *time.Time
	for _, c := range chunks.Chunks() {
		switch c.Type {
		case "tEXt", "zTXt", "iTXt":
			if k, v, ok := decodeText(c.Type, c.Data); ok && v != "" {
				if _, seen := text[k]; !seen {
					text[k] = v
				}
			}
		case "tIME":
			if t, ok := decodeTime(c.Data); ok {
				modTime = &t
			}
		}
	}

	meta := &types.Metadata{
		Title:     text[keyTitle],
		Thumbnail: types.Thumbnail{Path: path},
	}
	if t, ok := parseCreationTime(text[keyCreationTime]); ok {
		meta.Attributes.Add(types.Attribute{
			Label:     "Created",
			Icon:      types.IconCalendar,
			Primary:   t.Format("2 Jan 2006"),
			Secondary: t.Format("15:04:05"),
		})
	}
	if modTime != nil {
		meta.Attributes.Add(types.Attribute{
			Label:     "Last modified",
			Icon:      types.IconCalendar,
			Primary:   modTime.Format("2 Jan 2006"),
			Secondary: modTime.Format("15:04:05"),
		})
	}
	addPaired(meta, "Author", types.IconPerson, text[keyAuthor], text[keyCopyright])
	addPaired(meta, "Source", types.IconSoftware, text[keySource], text[keySoftware])
	addPaired(meta, "Comment", types.IconDescription, text[keyDescription], text[keyComment])
	addPaired(meta, "Warning", types.IconDescription, text[keyDisclaimer], text[keyWarning])
	return meta, nil
}

// addPaired adds an attribute whose primary value falls back to the
// secondary source; the secondary is shown only when both are present.
func addPaired(meta *types.Metadata, label, icon, primary, secondary string) {
	if primary == "" && secondary == "" {
		return
	}
	attr := types.Attribute{Label: label, Icon: icon, Primary: primary}
	if primary == "" {
		attr.Primary = secondary
	} else if secondary != "" {
		attr.Secondary = secondary
	}
	meta.Attributes.Add(attr)
}

func (h *Handler) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	if !h.types.Contains(mt) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	chunks, err := parseFile(in)
	if err != nil {
		return false, err
	}

	var kept []*pngstructure.Chunk
	for _, c := range chunks.Chunks() {
		switch c.Type {
		case "tEXt", "zTXt", "iTXt", "tIME", "eXIf":
			continue
		case "IEND":
			// Neutralized metadata goes in front of the trailer.
			kept = append(kept, timeChunk(time.Unix(0, 0).UTC()))
			for _, key := range textKeys {
				kept = append(kept, textChunk(key, ""))
			}
			kept = append(kept, c)
		default:
			kept = append(kept, c)
		}
	}

	var buf bytes.Buffer
	if err := pngstructure.NewChunkSlice(kept).WriteTo(&buf); err != nil {
		return false, fmt.Errorf("write png: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		os.Remove(out)
		return false, err
	}
	return true, nil
}

func parseFile(path string) (*pngstructure.ChunkSlice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pmp := pngstructure.NewPngMediaParser()
	intfc, err := pmp.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse png: %w", err)
	}
	chunks, ok := intfc.(*pngstructure.ChunkSlice)
	if !ok {
		return nil, fmt.Errorf("parse png: unexpected chunk container %T", intfc)
	}
	return chunks, nil
}

// decodeText extracts the keyword and value of a text chunk. zTXt and
// compressed iTXt payloads are inflated.
func decodeText(chunkType string, data []byte) (key, value string, ok bool) {
	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return "", "", false
	}
	key = string(data[:nul])
	rest := data[nul+1:]

	switch chunkType {
	case "tEXt":
		return key, string(rest), true
	case "zTXt":
		if len(rest) < 1 || rest[0] != 0 {
			return "", "", false
		}
		v, err := inflate(rest[1:])
		if err != nil {
			return "", "", false
		}
		return key, v, true
	case "iTXt":
		if len(rest) < 2 {
			return "", "", false
		}
		compressed := rest[0] == 1
		rest = rest[2:]
		// Skip language tag and translated keyword.
		for i := 0; i < 2; i++ {
			nul = bytes.IndexByte(rest, 0)
			if nul < 0 {
				return "", "", false
			}
			rest = rest[nul+1:]
		}
		if compressed {
			v, err := inflate(rest)
			if err != nil {
				return "", "", false
			}
			return key, v, true
		}
		return key, string(rest), true
	}
	return "", "", false
}

func inflate(data []byte) (string, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeTime(data []byte) (time.Time, bool) {
	if len(data) != 7 {
		return time.Time{}, false
	}
	year := int(binary.BigEndian.Uint16(data[:2]))
	t := time.Date(year, time.Month(data[2]), int(data[3]),
		int(data[4]), int(data[5]), int(data[6]), 0, time.UTC)
	return t, true
}

// creationTimeFormats are tried in order against the Creation Time
// keyword, which the PNG spec only recommends to be RFC 1123.
var creationTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

func parseCreationTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range creationTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func textChunk(key, value string) *pngstructure.Chunk {
	data := append([]byte(key), 0)
	data = append(data, []byte(value)...)
	return newChunk("tEXt", data)
}

func timeChunk(t time.Time) *pngstructure.Chunk {
	data := make([]byte, 7)
	binary.BigEndian.PutUint16(data[:2], uint16(t.Year()))
	data[2] = byte(t.Month())
	data[3] = byte(t.Day())
	data[4] = byte(t.Hour())
	data[5] = byte(t.Minute())
	data[6] = byte(t.Second())
	return newChunk("tIME", data)
}

func newChunk(chunkType string, data []byte) *pngstructure.Chunk {
	c := &pngstructure.Chunk{
		Type:   chunkType,
		Data:   data,
		Length: uint32(len(data)),
	}
	c.UpdateCrc32()
	return c
}
