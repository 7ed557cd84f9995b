package mediatype

import "sort"

// Canonical media types for the formats the engine knows about.
// Grouped by type, ordered alphabetically by identifier within the group.
var (
	Any      = MediaType{Type: Wildcard, Subtype: Wildcard}
	AnyImage = MediaType{Type: "image", Subtype: Wildcard}
	AnyAudio = MediaType{Type: "audio", Subtype: Wildcard}
	AnyVideo = MediaType{Type: "video", Subtype: Wildcard}

	// Image types.
	ARW  = MustParse("image/arw")
	BMP  = MustParse("image/bmp")
	CR2  = MustParse("image/cr2")
	DNG  = MustParse("image/dng")
	GIF  = MustParse("image/gif")
	ICO  = MustParse("image/vnd.microsoft.icon")
	JPEG = MustParse("image/jpeg")
	NEF  = MustParse("image/nef")
	NRW  = MustParse("image/nrw")
	ORF  = MustParse("image/orf")
	PCX  = MustParse("image/pcx")
	PEF  = MustParse("image/pef")
	PNG  = MustParse("image/png")
	PSD  = MustParse("image/vnd.adobe.photoshop")
	RAF  = MustParse("image/raf")
	RW2  = MustParse("image/rw2")
	SRW  = MustParse("image/srw")
	TIFF = MustParse("image/tiff")
	WEBP = MustParse("image/webp")

	// Audio types.
	AACAudio  = MustParse("audio/aac")
	FLACAudio = MustParse("audio/flac")
	MP4Audio  = MustParse("audio/mp4")
	MPEGAudio = MustParse("audio/mpeg")
	OggAudio  = MustParse("audio/ogg")
	WAVAudio  = MustParse("audio/x-wav")
	WebmAudio = MustParse("audio/webm")

	// Video types.
	AVIVideo      = MustParse("video/x-msvideo")
	MatroskaVideo = MustParse("video/x-matroska")
	MP4Video      = MustParse("video/mp4")
	MPEGVideo     = MustParse("video/mpeg")
	OggVideo      = MustParse("video/ogg")
	QuickTime     = MustParse("video/quicktime")
	ThreeGPPVideo = MustParse("video/3gpp")
	WebmVideo     = MustParse("video/webm")
	WMV           = MustParse("video/x-ms-wmv")

	// Document types.
	MicrosoftExcel          = MustParse("application/vnd.ms-excel")
	MicrosoftWord           = MustParse("application/msword")
	OOXMLDocument           = MustParse("application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	OOXMLSheet              = MustParse("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	OpenDocumentSpreadsheet = MustParse("application/vnd.oasis.opendocument.spreadsheet")
	OpenDocumentText        = MustParse("application/vnd.oasis.opendocument.text")
	PDF                     = MustParse("application/pdf")
)

// aliases maps each canonical type to the alternative spellings seen in
// the wild. The canonical type itself is not listed; Alternatives adds it.
var aliases = map[string][]string{
	JPEG.String(): {
		"image/jpg",
		"application/jpg",
		"application/x-jpg",
		"image/pjpeg",
		"image/pipeg",
		"image/vnd.swiftview-jpeg",
	},
	PNG.String(): {
		"application/png",
		"application/x-png",
	},
	BMP.String(): {
		"image/x-bmp",
		"image/x-bitmap",
		"image/x-xbitmap",
		"image/x-win-bitmap",
		"image/x-windows-bmp",
		"image/ms-bmp",
		"image/x-ms-bmp",
		"application/bmp",
		"application/x-bmp",
		"application/x-win-bitmap",
	},
	ICO.String(): {
		"image/ico",
		"image/x-icon",
		"application/ico",
		"application/x-icon",
	},
	PCX.String(): {
		"image/x-pcx",
		"image/x-pc-paintbrush",
		"image/vnd.swiftview-pcx",
		"application/pcx",
		"application/x-pcx",
		"zz-application/zz-winassoc-pcx",
	},
	PSD.String(): {
		"image/photoshop",
		"image/x-photoshop",
		"image/psd",
		"application/photoshop",
		"application/psd",
		"zz-application/zz-winassoc-psd",
	},
	ARW.String():  {"image/x-sony-arw"},
	CR2.String():  {"image/x-canon-cr2", "image/x-dcraw"},
	DNG.String():  {"image/x-adobe-dng"},
	NEF.String():  {"image/x-nikon-nef"},
	NRW.String():  {"image/x-nikon-nrw", "image/nef", "image/x-nikon-nef"},
	ORF.String():  {"image/x-olympus-orf"},
	PEF.String():  {"image/x-pentax-pef"},
	RAF.String():  {"image/x-fuji-raf"},
	RW2.String():  {"image/x-panasonic-rw2", "image/x-panasonic-raw"},
	SRW.String():  {"image/x-samsung-srw", "application/octet-stream"},
	TIFF.String(): {"image/x-tiff"},

	MPEGAudio.String(): {"audio/mp3"},
	WAVAudio.String():  {"audio/wav", "audio/vnd.wave"},

	PDF.String(): {"application/x-pdf"},
}

// Alternatives returns the set of media types naming the same format as
// t: the canonical type plus all registered aliases. For a type without
// registered aliases the set holds only t itself.
func Alternatives(t MediaType) Set {
	bare := t.WithoutParams()
	canonical, ok := canonicalFor[bare.String()]
	if !ok {
		return Set{bare}
	}
	out := Set{canonical}
	for _, a := range aliases[canonical.String()] {
		out = append(out, MustParse(a))
	}
	return out
}

// Canonical resolves an alias to its canonical type. Unknown types map
// to themselves.
func Canonical(t MediaType) MediaType {
	bare := t.WithoutParams()
	if c, ok := canonicalFor[bare.String()]; ok {
		return c
	}
	return bare
}

var canonicalFor = map[string]MediaType{}

func init() {
	// Canonical names claim themselves first so that an alias list
	// naming another canonical type (NRW lists NEF's spellings) or a
	// generic type (SRW lists octet-stream) cannot hijack it.
	canons := make([]string, 0, len(aliases))
	for canon := range aliases {
		canonicalFor[canon] = MustParse(canon)
		canons = append(canons, canon)
	}
	sort.Strings(canons)
	for _, canon := range canons {
		c := MustParse(canon)
		for _, a := range aliases[canon] {
			if a == "application/octet-stream" {
				continue
			}
			if _, taken := canonicalFor[a]; !taken {
				canonicalFor[a] = c
			}
		}
	}
}
