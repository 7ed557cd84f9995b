package mediatype

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// byExtension maps lowercase file extensions (without dot) to canonical
// media types.
var byExtension = map[string]MediaType{
	"jpg":  JPEG,
	"jpeg": JPEG,
	"jpe":  JPEG,
	"png":  PNG,
	"tif":  TIFF,
	"tiff": TIFF,
	"bmp":  BMP,
	"gif":  GIF,
	"ico":  ICO,
	"pcx":  PCX,
	"psd":  PSD,
	"webp": WEBP,

	"arw": ARW,
	"cr2": CR2,
	"dng": DNG,
	"nef": NEF,
	"nrw": NRW,
	"orf": ORF,
	"pef": PEF,
	"raf": RAF,
	"rw2": RW2,
	"srw": SRW,

	"doc":  MicrosoftWord,
	"docx": OOXMLDocument,
	"xls":  MicrosoftExcel,
	"xlsx": OOXMLSheet,
	"odt":  OpenDocumentText,
	"ods":  OpenDocumentSpreadsheet,
	"pdf":  PDF,

	"mp3":  MPEGAudio,
	"m4a":  MP4Audio,
	"aac":  AACAudio,
	"flac": FLACAudio,
	"oga":  OggAudio,
	"wav":  WAVAudio,

	"avi":  AVIVideo,
	"mkv":  MatroskaVideo,
	"mov":  QuickTime,
	"mp4":  MP4Video,
	"m4v":  MP4Video,
	"mpg":  MPEGVideo,
	"mpeg": MPEGVideo,
	"ogg":  OggVideo,
	"ogv":  OggVideo,
	"webm": WebmVideo,
	"wmv":  WMV,
	"3gp":  ThreeGPPVideo,
}

// Container magics used to disambiguate office formats.
var (
	magicZip = []byte{'P', 'K', 0x03, 0x04}
	magicCFB = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ByExtension returns the media type registered for the file extension
// of path (with or without leading dot).
func ByExtension(path string) (MediaType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	t, ok := byExtension[ext]
	return t, ok
}

// DetectFile resolves the media type of the file at path. The extension
// decides; for office documents the container magic is checked so that
// an OOXML file with a legacy .doc/.xls extension (or the reverse) is
// routed to the right handler instead of failing inside the wrong one.
func DetectFile(path string) (MediaType, bool) {
	t, ok := ByExtension(path)
	if !ok {
		return MediaType{}, false
	}
	switch {
	case t.Equal(MicrosoftWord), t.Equal(OOXMLDocument):
		if sniffed, ok := sniffOffice(path, MicrosoftWord, OOXMLDocument); ok {
			return sniffed, true
		}
	case t.Equal(MicrosoftExcel), t.Equal(OOXMLSheet):
		if sniffed, ok := sniffOffice(path, MicrosoftExcel, OOXMLSheet); ok {
			return sniffed, true
		}
	}
	return t, true
}

// sniffOffice reads the leading magic and picks between the legacy CFB
// type and the OOXML zip type. Unreadable or unrecognized files report
// ok=false so the caller keeps the extension-derived type.
func sniffOffice(path string, legacy, ooxml MediaType) (MediaType, bool) {
	f, err := os.Open(path)
	if err != nil {
		return MediaType{}, false
	}
	defer f.Close()

	head := make([]byte, 8)
	n, err := f.Read(head)
	if err != nil || n < 4 {
		return MediaType{}, false
	}
	head = head[:n]
	if bytes.HasPrefix(head, magicZip) {
		return ooxml, true
	}
	if bytes.HasPrefix(head, magicCFB) {
		return legacy, true
	}
	return MediaType{}, false
}
