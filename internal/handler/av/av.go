// Package av handles audio and video containers through the ffprobe
// and ffmpeg command line tools. Reading maps the probe output onto
// attributes; stripping remuxes the streams with the metadata table
// dropped, never transcoding.
package av

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// Handler shells out to ffprobe/ffmpeg. MP3 is readable here but not
// writable: its tag rewrite belongs to the audiotag handler.
type Handler struct {
	ffprobe  string
	ffmpeg   string
	readable mediatype.Set
	writable mediatype.Set
}

func New() *Handler {
	video := mediatype.Union(
		mediatype.Alternatives(mediatype.AVIVideo),
		mediatype.Alternatives(mediatype.MatroskaVideo),
		mediatype.Alternatives(mediatype.MP4Video),
		mediatype.Alternatives(mediatype.MPEGVideo),
		mediatype.Alternatives(mediatype.OggVideo),
		mediatype.Alternatives(mediatype.QuickTime),
		mediatype.Alternatives(mediatype.ThreeGPPVideo),
		mediatype.Alternatives(mediatype.WebmVideo),
		mediatype.Alternatives(mediatype.WMV),
	)
	audio := mediatype.Union(
		mediatype.Alternatives(mediatype.AACAudio),
		mediatype.Alternatives(mediatype.FLACAudio),
		mediatype.Alternatives(mediatype.MP4Audio),
		mediatype.Alternatives(mediatype.OggAudio),
		mediatype.Alternatives(mediatype.WAVAudio),
		mediatype.Alternatives(mediatype.WebmAudio),
	)
	return &Handler{
		ffprobe:  "ffprobe",
		ffmpeg:   "ffmpeg",
		readable: mediatype.Union(video, audio, mediatype.Alternatives(mediatype.MPEGAudio)),
		writable: mediatype.Union(video, audio),
	}
}

func (h *Handler) ReadableTypes() mediatype.Set { return h.readable }
func (h *Handler) WritableTypes() mediatype.Set { return h.writable }

// probeResult mirrors the parts of `ffprobe -print_format json` output
// the handler consumes.
type probeResult struct {
	Format struct {
		Duration string            `json:"duration"`
		BitRate  string            `json:"bit_rate"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType    string            `json:"codec_type"`
		Width        int               `json:"width"`
		Height       int               `json:"height"`
		AvgFrameRate string            `json:"avg_frame_rate"`
		Tags         map[string]string `json:"tags"`
		SideDataList []struct {
			Rotation int `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
}

// Container tag keys surfaced as attributes, with their labels.
var formatTagAttrs = []struct {
	key   string
	label string
	icon  string
}{
	{"album", "Album", types.IconAudio},
	{"album_artist", "Album artist", types.IconPerson},
	{"artist", "Artist", types.IconPerson},
	{"author", "Author", types.IconPerson},
	{"composer", "Composer", types.IconPerson},
	{"date", "Date", types.IconCalendar},
	{"genre", "Genre", types.IconTag},
	{"track", "Track number", types.IconAudio},
	{"disc", "Disc number", types.IconAudio},
	{"compilation", "Compilation", types.IconAudio},
	{"writer", "Writer", types.IconPerson},
	{"year", "Year", types.IconCalendar},
	{"comment", "Comment", types.IconDescription},
}

func (h *Handler) ReadMetadata(ctx context.Context, mt mediatype.MediaType, path string) (*types.Metadata, error) {
	if !h.readable.Contains(mt) {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, h.ffprobe,
		"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	var probe probeResult
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	meta := &types.Metadata{Title: probe.Format.Tags["title"]}
	if secs, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		meta.Attributes.Add(types.Attribute{
			Label:   "Duration",
			Icon:    types.IconDuration,
			Primary: fmt.Sprintf("%d seconds", int64(secs)),
		})
	}
	if probe.Format.BitRate != "" {
		meta.Attributes.Add(types.Attribute{
			Label:   "Bitrate",
			Icon:    types.IconAudio,
			Primary: probe.Format.BitRate + " bps",
		})
	}
	for _, t := range formatTagAttrs {
		if v := tagValue(probe.Format.Tags, t.key); v != "" {
			meta.Attributes.Add(types.Attribute{Label: t.label, Icon: t.icon, Primary: v})
		}
	}

	hasAudio, hasVideo := false, false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "audio":
			hasAudio = true
		case "video":
			hasVideo = true
			if s.Width > 0 && s.Height > 0 {
				meta.Attributes.Add(types.Attribute{
					Label:   "Video size",
					Icon:    types.IconVideo,
					Primary: fmt.Sprintf("%d x %d", s.Width, s.Height),
				})
			}
			if r, ok := streamRotation(s.Tags, s.SideDataList); ok {
				meta.Attributes.Add(types.Attribute{
					Label:   "Video rotation",
					Icon:    types.IconVideo,
					Primary: fmt.Sprintf("%d°", r),
				})
			}
			if fps := frameRate(s.AvgFrameRate); fps != "" {
				meta.Attributes.Add(types.Attribute{
					Label:   "Frame rate",
					Icon:    types.IconVideo,
					Primary: fps,
				})
			}
		}
	}
	meta.Attributes.Add(types.Attribute{Label: "Has audio", Icon: types.IconAudio, Primary: yesNo(hasAudio)})
	meta.Attributes.Add(types.Attribute{Label: "Has video", Icon: types.IconVideo, Primary: yesNo(hasVideo)})
	return meta, nil
}

// RemoveMetadata remuxes the container with an empty metadata table.
// The stream packets are copied untouched.
func (h *Handler) RemoveMetadata(ctx context.Context, mt mediatype.MediaType, in, out string) (bool, error) {
	if !h.writable.Contains(mt) {
		return false, nil
	}

	cmd := exec.CommandContext(ctx, h.ffmpeg,
		"-y", "-i", in, "-map", "0", "-map_metadata", "-1", "-c", "copy", out)
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return false, fmt.Errorf("ffmpeg: %w", err)
	}
	return true, nil
}

// tagValue looks a key up case-insensitively; muxers disagree on the
// casing of tag names.
func tagValue(tags map[string]string, key string) string {
	if v, ok := tags[key]; ok {
		return v
	}
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func streamRotation(tags map[string]string, sideData []struct {
	Rotation int `json:"rotation"`
}) (int, bool) {
	if v := tagValue(tags, "rotate"); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			return r, true
		}
	}
	for _, sd := range sideData {
		if sd.Rotation != 0 {
			return sd.Rotation, true
		}
	}
	return 0, false
}

func frameRate(avg string) string {
	parts := strings.SplitN(avg, "/", 2)
	if len(parts) != 2 {
		return ""
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 || num == 0 {
		return ""
	}
	return fmt.Sprintf("%.3g fps", num/den)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
