package handler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// stubHandler is a scriptable child for composition tests.
type stubHandler struct {
	readable mediatype.Set
	writable mediatype.Set
	meta     *types.Metadata
	readErr  error
	removed  bool
	reads    int
	removes  int
}

func (h *stubHandler) ReadableTypes() mediatype.Set { return h.readable }
func (h *stubHandler) WritableTypes() mediatype.Set { return h.writable }

func (h *stubHandler) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	h.reads++
	return h.meta, h.readErr
}

func (h *stubHandler) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	h.removes++
	return h.removed, nil
}

func metaWithAttr(title, label string) *types.Metadata {
	m := &types.Metadata{Title: title}
	m.Attributes.Add(types.Attribute{Label: label, Primary: label + "-value"})
	return m
}

func TestFirstMatch_DispatchesToFirstCapableChild(t *testing.T) {
	jpegChild := &stubHandler{
		readable: mediatype.Set{mediatype.JPEG},
		writable: mediatype.Set{mediatype.JPEG},
		meta:     metaWithAttr("from-jpeg", "Camera"),
		removed:  true,
	}
	catchAll := &stubHandler{
		readable: mediatype.Set{mediatype.Any},
		meta:     metaWithAttr("from-catch-all", "Fallback"),
	}

	f := NewFirstMatch(jpegChild, catchAll)

	meta, err := f.ReadMetadata(context.Background(), mediatype.JPEG, "/a.jpg")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if meta.Title != "from-jpeg" {
		t.Fatalf("expected the jpeg child to answer, got title %q", meta.Title)
	}
	if catchAll.reads != 0 {
		t.Fatal("expected later children to be skipped once one matches")
	}

	// A type only the tail accepts falls through to it.
	meta, err = f.ReadMetadata(context.Background(), mediatype.PNG, "/b.png")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if meta.Title != "from-catch-all" {
		t.Fatalf("expected the catch-all child to answer, got title %q", meta.Title)
	}
}

func TestFirstMatch_UnclaimedTypeIsUnsupported(t *testing.T) {
	f := NewFirstMatch(&stubHandler{readable: mediatype.Set{mediatype.JPEG}})

	meta, err := f.ReadMetadata(context.Background(), mediatype.MP4Video, "/c.mp4")
	if err != nil || meta != nil {
		t.Fatalf("expected nil, nil for unclaimed read, got %v, %v", meta, err)
	}

	ok, err := f.RemoveMetadata(context.Background(), mediatype.MP4Video, "/c.mp4", "/out.mp4")
	if err != nil || ok {
		t.Fatalf("expected false, nil for unclaimed strip, got %v, %v", ok, err)
	}
}

func TestFirstMatch_UnionsChildCapabilitySets(t *testing.T) {
	f := NewFirstMatch(
		&stubHandler{readable: mediatype.Set{mediatype.JPEG}, writable: mediatype.Set{mediatype.JPEG}},
		&stubHandler{readable: mediatype.Set{mediatype.PNG}},
	)

	if !f.ReadableTypes().Contains(mediatype.JPEG) || !f.ReadableTypes().Contains(mediatype.PNG) {
		t.Fatalf("expected readable union to cover both children, got %v", f.ReadableTypes())
	}
	if f.WritableTypes().Contains(mediatype.PNG) {
		t.Fatal("expected writable set to exclude read-only children")
	}
}

func TestNewMergeAll_RejectsOverlappingWritableSets(t *testing.T) {
	_, err := NewMergeAll(
		&stubHandler{writable: mediatype.Set{mediatype.JPEG, mediatype.TIFF}},
		&stubHandler{writable: mediatype.Set{mediatype.PNG}},
		&stubHandler{writable: mediatype.Set{mediatype.TIFF}},
	)
	if err == nil {
		t.Fatal("expected overlap error")
	}
	if !strings.Contains(err.Error(), "overlapping writable types") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestNewMergeAll_RejectsWildcardOverlap(t *testing.T) {
	// A wildcard writer overlaps every concrete writer.
	_, err := NewMergeAll(
		&stubHandler{writable: mediatype.Set{mediatype.AnyImage}},
		&stubHandler{writable: mediatype.Set{mediatype.JPEG}},
	)
	if err == nil {
		t.Fatal("expected overlap error for wildcard writer")
	}
}

func TestMergeAll_FoldsReadsFromAllMatchingChildren(t *testing.T) {
	first := &stubHandler{
		readable: mediatype.Set{mediatype.JPEG},
		meta:     metaWithAttr("first-title", "Camera"),
	}
	second := &stubHandler{
		readable: mediatype.Set{mediatype.AnyImage},
		meta:     metaWithAttr("second-title", "Location"),
	}
	nonMatching := &stubHandler{
		readable: mediatype.Set{mediatype.MPEGAudio},
		meta:     metaWithAttr("audio-title", "Bitrate"),
	}

	m, err := NewMergeAll(first, second, nonMatching)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	meta, err := m.ReadMetadata(context.Background(), mediatype.JPEG, "/a.jpg")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if meta.Title != "first-title" {
		t.Fatalf("expected the first non-empty title to win, got %q", meta.Title)
	}
	if meta.Attributes.Len() != 2 {
		t.Fatalf("expected attributes from both matching children, got %d", meta.Attributes.Len())
	}
	if nonMatching.reads != 0 {
		t.Fatal("expected children without the type to be skipped")
	}
}

func TestMergeAll_ReadErrorIsMaskedByAnotherChildsResult(t *testing.T) {
	failing := &stubHandler{
		readable: mediatype.Set{mediatype.JPEG},
		readErr:  errors.New("corrupt segment"),
	}
	healthy := &stubHandler{
		readable: mediatype.Set{mediatype.JPEG},
		meta:     metaWithAttr("recovered", "Image"),
	}

	m, err := NewMergeAll(failing, healthy)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	meta, err := m.ReadMetadata(context.Background(), mediatype.JPEG, "/a.jpg")
	if err != nil {
		t.Fatalf("expected another child's result to mask the error, got %v", err)
	}
	if meta.Title != "recovered" {
		t.Fatalf("unexpected merged title: %q", meta.Title)
	}
}

func TestMergeAll_ReturnsFirstErrorWhenNoChildSucceeds(t *testing.T) {
	first := &stubHandler{
		readable: mediatype.Set{mediatype.JPEG},
		readErr:  errors.New("first failure"),
	}
	second := &stubHandler{
		readable: mediatype.Set{mediatype.JPEG},
		readErr:  errors.New("second failure"),
	}

	m, err := NewMergeAll(first, second)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	_, err = m.ReadMetadata(context.Background(), mediatype.JPEG, "/a.jpg")
	if err == nil || err.Error() != "first failure" {
		t.Fatalf("expected the first error to propagate, got %v", err)
	}
}

func TestMergeAll_StripGoesToTheSingleOwningChild(t *testing.T) {
	jpegWriter := &stubHandler{writable: mediatype.Set{mediatype.JPEG}, removed: true}
	pngWriter := &stubHandler{writable: mediatype.Set{mediatype.PNG}, removed: true}

	m, err := NewMergeAll(jpegWriter, pngWriter)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	ok, err := m.RemoveMetadata(context.Background(), mediatype.PNG, "/a.png", "/out.png")
	if err != nil || !ok {
		t.Fatalf("expected the png writer to strip, got %v, %v", ok, err)
	}
	if jpegWriter.removes != 0 || pngWriter.removes != 1 {
		t.Fatalf("unexpected dispatch counts: jpeg=%d png=%d", jpegWriter.removes, pngWriter.removes)
	}

	ok, err = m.RemoveMetadata(context.Background(), mediatype.MP4Video, "/c.mp4", "/out.mp4")
	if err != nil || ok {
		t.Fatalf("expected unclaimed strip to report false, nil, got %v, %v", ok, err)
	}
}

func TestNop_ReadsAnythingAsEmptyMetadataAndWritesNothing(t *testing.T) {
	var n Nop

	if !n.ReadableTypes().Contains(mediatype.MustParse("application/x-whatever")) {
		t.Fatal("expected the readable set to cover any type")
	}
	if len(n.WritableTypes()) != 0 {
		t.Fatalf("expected an empty writable set, got %v", n.WritableTypes())
	}

	meta, err := n.ReadMetadata(context.Background(), mediatype.Any, "/does/not/matter")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if meta == nil || meta.Attributes.Len() != 0 {
		t.Fatalf("expected empty metadata, got %+v", meta)
	}

	ok, err := n.RemoveMetadata(context.Background(), mediatype.JPEG, "/in.jpg", "/out.jpg")
	if err != nil || ok {
		t.Fatalf("expected false, nil from Nop strip, got %v, %v", ok, err)
	}
}
