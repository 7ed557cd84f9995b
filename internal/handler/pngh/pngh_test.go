package pngh

import (
	"bytes"
	"compress/zlib"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	pngstructure "github.com/dsoprea/go-png-image-structure/v2"

	"github.com/metascrub/metascrub/internal/mediatype"
)

// writePNG encodes a small image and splices the given chunks in front
// of the IEND trailer.
func writePNG(t *testing.T, path string, extra ...*pngstructure.Chunk) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	pmp := pngstructure.NewPngMediaParser()
	intfc, err := pmp.ParseBytes(encoded.Bytes())
	if err != nil {
		t.Fatalf("failed to parse encoded png: %v", err)
	}
	chunks := intfc.(*pngstructure.ChunkSlice)

	var rebuilt []*pngstructure.Chunk
	for _, c := range chunks.Chunks() {
		if c.Type == "IEND" {
			rebuilt = append(rebuilt, extra...)
		}
		rebuilt = append(rebuilt, c)
	}

	var out bytes.Buffer
	if err := pngstructure.NewChunkSlice(rebuilt).WriteTo(&out); err != nil {
		t.Fatalf("failed to write png fixture: %v", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("failed to save png fixture: %v", err)
	}
}

func TestReadMetadata_ExtractsTextAndTimeChunks(t *testing.T) {
	src := filepath.Join(t.TempDir(), "tagged.png")
	writePNG(t, src,
		textChunk("Title", "Holiday"),
		textChunk("Author", "A. Writer"),
		textChunk("Creation Time", "2 Jan 2006 15:04:05"),
		timeChunk(time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)),
	)

	h := New()
	meta, err := h.ReadMetadata(context.Background(), mediatype.PNG, src)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if meta.Title != "Holiday" {
		t.Fatalf("expected title from the Title keyword, got %q", meta.Title)
	}
	if meta.Thumbnail.Path != src {
		t.Fatalf("expected thumbnail to reference the source file, got %q", meta.Thumbnail.Path)
	}

	labels := map[string]string{}
	for _, a := range meta.Attributes.List() {
		labels[a.Label] = a.Primary
	}
	if labels["Created"] != "2 Jan 2006" {
		t.Fatalf("unexpected Created attribute: %q", labels["Created"])
	}
	if labels["Last modified"] != "1 Jun 2024" {
		t.Fatalf("unexpected Last modified attribute: %q", labels["Last modified"])
	}
	if labels["Author"] != "A. Writer" {
		t.Fatalf("unexpected Author attribute: %q", labels["Author"])
	}
}

func TestReadMetadata_FirstValueWinsForRepeatedKeyword(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dup.png")
	writePNG(t, src,
		textChunk("Comment", "first"),
		textChunk("Comment", "second"),
	)

	meta, err := New().ReadMetadata(context.Background(), mediatype.PNG, src)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	for _, a := range meta.Attributes.List() {
		if a.Label == "Comment" && a.Primary != "first" {
			t.Fatalf("expected the first Comment value, got %q", a.Primary)
		}
	}
}

func TestReadMetadata_UnsupportedTypeReportsNil(t *testing.T) {
	meta, err := New().ReadMetadata(context.Background(), mediatype.JPEG, "/never-read.jpg")
	if err != nil || meta != nil {
		t.Fatalf("expected nil, nil for a non-png type, got %v, %v", meta, err)
	}
}

func TestReadMetadata_ReturnsErrorForMalformedFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(src, []byte("not a png"), 0644); err != nil {
		t.Fatalf("failed to create broken fixture: %v", err)
	}
	if _, err := New().ReadMetadata(context.Background(), mediatype.PNG, src); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRemoveMetadata_StripsChunksAndKeepsPixels(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "tagged.png")
	out := filepath.Join(tmpDir, "clean.png")
	writePNG(t, src,
		textChunk("Title", "Secret"),
		textChunk("Author", "Somebody"),
		timeChunk(time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)),
	)

	h := New()
	ok, err := h.RemoveMetadata(context.Background(), mediatype.PNG, src, out)
	if err != nil {
		t.Fatalf("unexpected strip error: %v", err)
	}
	if !ok {
		t.Fatal("expected the strip to be performed")
	}

	// The output must still decode as an image.
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open stripped output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("stripped output is not a valid png: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected image bounds after strip: %v", img.Bounds())
	}

	// Re-reading finds no text values and the neutralized epoch timestamp.
	meta, err := h.ReadMetadata(context.Background(), mediatype.PNG, out)
	if err != nil {
		t.Fatalf("failed to re-read stripped output: %v", err)
	}
	if meta.Title != "" {
		t.Fatalf("expected no title after strip, got %q", meta.Title)
	}
	for _, a := range meta.Attributes.List() {
		if a.Label != "Last modified" {
			t.Fatalf("unexpected surviving attribute: %+v", a)
		}
		if a.Primary != "1 Jan 1970" {
			t.Fatalf("expected the epoch timestamp, got %q", a.Primary)
		}
	}
}

func TestRemoveMetadata_StrippingTwiceIsStable(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "tagged.png")
	once := filepath.Join(tmpDir, "once.png")
	twice := filepath.Join(tmpDir, "twice.png")
	writePNG(t, src,
		textChunk("Title", "Secret"),
		timeChunk(time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)),
	)

	h := New()
	if ok, err := h.RemoveMetadata(context.Background(), mediatype.PNG, src, once); err != nil || !ok {
		t.Fatalf("unexpected first strip result: %v, %v", ok, err)
	}
	if ok, err := h.RemoveMetadata(context.Background(), mediatype.PNG, once, twice); err != nil || !ok {
		t.Fatalf("unexpected second strip result: %v, %v", ok, err)
	}

	// A clean file strips to the same bytes again.
	first, err := os.ReadFile(once)
	if err != nil {
		t.Fatalf("failed to read first output: %v", err)
	}
	second, err := os.ReadFile(twice)
	if err != nil {
		t.Fatalf("failed to read second output: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected the second strip to reproduce the first output")
	}

	meta, err := h.ReadMetadata(context.Background(), mediatype.PNG, twice)
	if err != nil {
		t.Fatalf("failed to re-read second output: %v", err)
	}
	if meta.Title != "" {
		t.Fatalf("expected no title after repeated strips, got %q", meta.Title)
	}
	for _, a := range meta.Attributes.List() {
		if a.Label != "Last modified" || a.Primary != "1 Jan 1970" {
			t.Fatalf("unexpected attribute after repeated strips: %+v", a)
		}
	}
}

func TestRemoveMetadata_RefusesNonPNGType(t *testing.T) {
	ok, err := New().RemoveMetadata(context.Background(), mediatype.JPEG, "/in.jpg", "/out.jpg")
	if err != nil || ok {
		t.Fatalf("expected false, nil for a non-png type, got %v, %v", ok, err)
	}
}

func TestRemoveMetadata_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := New().RemoveMetadata(ctx, mediatype.PNG, "/in.png", "/out.png")
	if err == nil || ok {
		t.Fatalf("expected context error, got %v, %v", ok, err)
	}
}

func TestDecodeText_HandlesCompressedVariants(t *testing.T) {
	deflate := func(s string) []byte {
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write([]byte(s)); err != nil {
			t.Fatalf("failed to compress payload: %v", err)
		}
		w.Close()
		return buf.Bytes()
	}

	cases := []struct {
		name      string
		chunkType string
		data      []byte
		key       string
		value     string
		ok        bool
	}{
		{
			name:      "tEXt",
			chunkType: "tEXt",
			data:      []byte("Comment\x00plain value"),
			key:       "Comment", value: "plain value", ok: true,
		},
		{
			name:      "zTXt",
			chunkType: "zTXt",
			data:      append([]byte("Comment\x00\x00"), deflate("compressed value")...),
			key:       "Comment", value: "compressed value", ok: true,
		},
		{
			name:      "iTXt_uncompressed",
			chunkType: "iTXt",
			data:      []byte("Comment\x00\x00\x00en\x00\x00international"),
			key:       "Comment", value: "international", ok: true,
		},
		{
			name:      "iTXt_compressed",
			chunkType: "iTXt",
			data:      append([]byte("Comment\x00\x01\x00en\x00\x00"), deflate("packed")...),
			key:       "Comment", value: "packed", ok: true,
		},
		{
			name:      "missing_separator",
			chunkType: "tEXt",
			data:      []byte("no-nul-byte"),
			ok:        false,
		},
		{
			name:      "zTXt_bad_method",
			chunkType: "zTXt",
			data:      []byte("Comment\x00\x07garbage"),
			ok:        false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, value, ok := decodeText(tc.chunkType, tc.data)
			if ok != tc.ok {
				t.Fatalf("decodeText ok = %v, expected %v", ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			if key != tc.key || value != tc.value {
				t.Fatalf("decodeText = %q/%q, expected %q/%q", key, value, tc.key, tc.value)
			}
		})
	}
}

func TestDecodeTime_RejectsWrongLength(t *testing.T) {
	if _, ok := decodeTime([]byte{1, 2, 3}); ok {
		t.Fatal("expected short payload to be rejected")
	}

	data := make([]byte, 7)
	data[0], data[1] = 0x07, 0xE8 // 2024
	data[2], data[3] = 6, 1
	data[4], data[5], data[6] = 10, 30, 0
	parsed, ok := decodeTime(data)
	if !ok {
		t.Fatal("expected 7-byte payload to decode")
	}
	expected := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Fatalf("decodeTime = %v, expected %v", parsed, expected)
	}
}

func TestParseCreationTime_TriesMultipleLayouts(t *testing.T) {
	cases := []string{
		"Mon, 02 Jan 2006 15:04:05 -0700",
		"2 Jan 2006 15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, s := range cases {
		if _, ok := parseCreationTime(s); !ok {
			t.Fatalf("expected %q to parse", s)
		}
	}
	if _, ok := parseCreationTime("not a date"); ok {
		t.Fatal("expected garbage to be rejected")
	}
	if _, ok := parseCreationTime(""); ok {
		t.Fatal("expected empty string to be rejected")
	}
}
