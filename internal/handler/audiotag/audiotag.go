// Package audiotag reads tag-level audio metadata and rewrites MP3
// files with their ID3 frames removed. Container-level concerns stay
// with the av handler; only MP3 is writable here.
package audiotag

import (
	"context"
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// Handler reads tags with dhowden/tag and strips MP3 with bogem/id3v2.
type Handler struct {
	readable mediatype.Set
	writable mediatype.Set
}

func New() *Handler {
	return &Handler{
		readable: mediatype.Union(
			mediatype.Alternatives(mediatype.MPEGAudio),
			mediatype.Alternatives(mediatype.MP4Audio),
			mediatype.Alternatives(mediatype.FLACAudio),
			mediatype.Alternatives(mediatype.OggAudio),
		),
		writable: mediatype.Alternatives(mediatype.MPEGAudio),
	}
}

func (h *Handler) ReadableTypes() mediatype.Set { return h.readable }
func (h *Handler) WritableTypes() mediatype.Set { return h.writable }

func (h *Handler) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	if !h.readable.Contains(mt) {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			return &types.Metadata{}, nil
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}

	meta := &types.Metadata{Title: t.Title()}
	add := func(label, icon, value string) {
		if value != "" {
			meta.Attributes.Add(types.Attribute{Label: label, Icon: icon, Primary: value})
		}
	}
	add("Artist", types.IconPerson, t.Artist())
	add("Album", types.IconAudio, t.Album())
	add("Album artist", types.IconPerson, t.AlbumArtist())
	add("Composer", types.IconPerson, t.Composer())
	add("Genre", types.IconTag, t.Genre())
	add("Comment", types.IconDescription, t.Comment())
	if t.Year() != 0 {
		add("Year", types.IconCalendar, fmt.Sprintf("%d", t.Year()))
	}
	if track, total := t.Track(); track != 0 {
		v := fmt.Sprintf("%d", track)
		if total != 0 {
			v = fmt.Sprintf("%d/%d", track, total)
		}
		add("Track number", types.IconAudio, v)
	}
	if disc, total := t.Disc(); disc != 0 {
		v := fmt.Sprintf("%d", disc)
		if total != 0 {
			v = fmt.Sprintf("%d/%d", disc, total)
		}
		add("Disc number", types.IconAudio, v)
	}
	return meta, nil
}

// RemoveMetadata copies the file and deletes every ID3 frame from the
// copy. The audio frames themselves are not touched.
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
	if err := os.WriteFile(out, data, 0644); err != nil {
		os.Remove(out)
		return false, err
	}

	t, err := id3v2.Open(out, id3v2.Options{Parse: true})
	if err != nil {
		os.Remove(out)
		return false, fmt.Errorf("open id3 tags: %w", err)
	}
	t.DeleteAllFrames()
	if err := t.Save(); err != nil {
		t.Close()
		os.Remove(out)
		return false, fmt.Errorf("save stripped file: %w", err)
	}
	if err := t.Close(); err != nil {
		os.Remove(out)
		return false, err
	}
	return true, nil
}
