// Package exifh handles EXIF-bearing raster images: JPEG for reading
// and writing, the common camera raw formats for reading only.
package exifh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"github.com/metascrub/metascrub/internal/coords"
	"github.com/metascrub/metascrub/internal/geocode"
	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// Embedded thumbnails below this pixel count are ignored in favor of
// the full image, which decodes fast enough at that size anyway.
const minThumbnailPixels = 1_000_000

// Handler reads EXIF metadata from JPEG and raw images and strips it
// from JPEGs. An optional geocoder turns GPS positions into place
// names; without one the formatted coordinates are shown.
type Handler struct {
	geocoder geocode.Geocoder
	readable mediatype.Set
	writable mediatype.Set
}

// New returns an EXIF handler. geocoder may be nil.
func New(geocoder geocode.Geocoder) *Handler {
	readable := mediatype.Union(
		mediatype.Alternatives(mediatype.JPEG),
		mediatype.Alternatives(mediatype.ARW),
		mediatype.Alternatives(mediatype.CR2),
		mediatype.Alternatives(mediatype.DNG),
		mediatype.Alternatives(mediatype.NEF),
		mediatype.Alternatives(mediatype.NRW),
		mediatype.Alternatives(mediatype.ORF),
		mediatype.Alternatives(mediatype.PEF),
		mediatype.Alternatives(mediatype.RAF),
		mediatype.Alternatives(mediatype.RW2),
		mediatype.Alternatives(mediatype.SRW),
	)
	return &Handler{
		geocoder: geocoder,
		readable: readable,
		writable: mediatype.Alternatives(mediatype.JPEG),
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

	x, err := exif.Decode(f)
	if err != nil {
		// An image without an APP1 block carries no metadata to report.
		// The decoder signals the missing block either with EOF after
		// scanning all segments or with its marker-not-found message.
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "failed to find exif intro marker") {
			return &types.Metadata{Thumbnail: types.Thumbnail{Path: path}}, nil
		}
		if exif.IsCriticalError(err) {
			return nil, fmt.Errorf("decode exif: %w", err)
		}
	}
	if x == nil {
		return &types.Metadata{}, nil
	}

	meta := &types.Metadata{}
	h.addTimestamp(x, meta)
	h.addCamera(x, meta)
	h.addLens(x, meta)
	h.addExposure(x, meta)
	h.addFlash(x, meta)
	h.addOwner(x, meta)
	h.addLocation(ctx, x, meta)
	h.addThumbnail(x, path, meta)
	return meta, nil
}

func (h *Handler) addTimestamp(x *exif.Exif, meta *types.Metadata) {
	t, ok := captureTime(x)
	if !ok {
		return
	}
	meta.Attributes.Add(types.Attribute{
		Label:     "Date & time",
		Icon:      types.IconCalendar,
		Primary:   t.Format("2 Jan 2006"),
		Secondary: t.Format("15:04:05"),
	})
}

func captureTime(x *exif.Exif) (time.Time, bool) {
	if t, err := x.DateTime(); err == nil {
		return t, true
	}
	for _, field := range []exif.FieldName{exif.DateTimeDigitized, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, err := time.Parse("2006:01:02 15:04:05", s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (h *Handler) addCamera(x *exif.Exif, meta *types.Metadata) {
	make := stringField(x, exif.Make)
	model := stringField(x, exif.Model)
	if make == "" && model == "" {
		return
	}
	// Some vendors repeat the make inside the model string.
	if make != "" && strings.HasPrefix(strings.ToLower(model), strings.ToLower(make)) {
		model = strings.TrimSpace(model[len(make):])
	}
	meta.Attributes.Add(types.Attribute{
		Label:     "Camera",
		Icon:      types.IconCamera,
		Primary:   strings.TrimSpace(make + " " + model),
		Secondary: stringField(x, "BodySerialNumber"),
	})
}

func (h *Handler) addLens(x *exif.Exif, meta *types.Metadata) {
	make := stringField(x, exif.LensMake)
	model := stringField(x, exif.LensModel)
	if make == "" && model == "" {
		return
	}
	meta.Attributes.Add(types.Attribute{
		Label:     "Lens",
		Icon:      types.IconLens,
		Primary:   strings.TrimSpace(make + " " + model),
		Secondary: stringField(x, "LensSerialNumber"),
	})
}

func (h *Handler) addExposure(x *exif.Exif, meta *types.Metadata) {
	var parts []string
	if num, den, ok := ratioField(x, exif.FNumber); ok && den != 0 {
		parts = append(parts, fmt.Sprintf("f/%.1f", float64(num)/float64(den)))
	}
	if num, den, ok := ratioField(x, exif.ExposureTime); ok && num != 0 && den != 0 {
		if num < den {
			parts = append(parts, fmt.Sprintf("1/%d s", den/num))
		} else {
			parts = append(parts, fmt.Sprintf("%.1f s", float64(num)/float64(den)))
		}
	}
	if num, den, ok := ratioField(x, exif.FocalLength); ok && den != 0 {
		parts = append(parts, fmt.Sprintf("%.0f mm", float64(num)/float64(den)))
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			parts = append(parts, fmt.Sprintf("ISO %d", iso))
		}
	}
	if len(parts) == 0 {
		return
	}
	meta.Attributes.Add(types.Attribute{
		Label:   "Exposure",
		Icon:    types.IconExposure,
		Primary: strings.Join(parts, ", "),
	})
}

// lightSources maps the EXIF LightSource code to a display name.
var lightSources = map[int64]string{
	1:  "Daylight",
	2:  "Fluorescent",
	3:  "Tungsten",
	4:  "Flash",
	9:  "Fine weather",
	10: "Cloudy weather",
	11: "Shade",
	17: "Standard light A",
	18: "Standard light B",
	19: "Standard light C",
}

func (h *Handler) addFlash(x *exif.Exif, meta *types.Metadata) {
	tag, err := x.Get(exif.Flash)
	if err != nil {
		return
	}
	v, err := tag.Int(0)
	if err != nil {
		return
	}
	primary := "Flash did not fire"
	if v&1 != 0 {
		primary = "Flash fired"
	}
	var secondary string
	if lt, err := x.Get(exif.LightSource); err == nil {
		if code, err := lt.Int(0); err == nil {
			secondary = lightSources[int64(code)]
		}
	}
	meta.Attributes.Add(types.Attribute{
		Label:     "Flash",
		Icon:      types.IconFlash,
		Primary:   primary,
		Secondary: secondary,
	})
}

func (h *Handler) addOwner(x *exif.Exif, meta *types.Metadata) {
	owner := stringField(x, "CameraOwnerName")
	if owner == "" {
		owner = stringField(x, exif.Artist)
	}
	if owner == "" {
		return
	}
	meta.Attributes.Add(types.Attribute{
		Label:   "Owner",
		Icon:    types.IconPerson,
		Primary: owner,
	})
}

func (h *Handler) addLocation(ctx context.Context, x *exif.Exif, meta *types.Metadata) {
	lat, lon, err := x.LatLong()
	if err != nil {
		return
	}
	dms := coords.Latitude(lat).String() + ", " + coords.Longitude(lon).String()
	attr := types.Attribute{
		Label:   "Location",
		Icon:    types.IconLocation,
		Primary: dms,
	}
	if h.geocoder != nil {
		if name, err := h.geocoder.ReverseGeocode(ctx, lat, lon); err == nil && name != "" {
			attr.Primary = name
			attr.Secondary = dms
		}
	}
	meta.Attributes.Add(attr)
}

func (h *Handler) addThumbnail(x *exif.Exif, path string, meta *types.Metadata) {
	data, err := x.JpegThumbnail()
	if err != nil || len(data) == 0 {
		meta.Thumbnail = types.Thumbnail{Path: path}
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width*cfg.Height <= minThumbnailPixels {
		meta.Thumbnail = types.Thumbnail{Path: path}
		return
	}
	meta.Thumbnail = types.Thumbnail{Data: data, Width: cfg.Width, Height: cfg.Height}
}

func stringField(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

func ratioField(x *exif.Exif, name exif.FieldName) (num, den int64, ok bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, 0, false
	}
	num, den, err = tag.Rat2(0)
	if err != nil {
		return 0, 0, false
	}
	return num, den, true
}
