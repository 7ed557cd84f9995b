package office

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf16"
)

// OLE property set streams as found in SummaryInformation and
// DocumentSummaryInformation. Only the value types those two sets use
// are handled: 16/32-bit integers, code page and Unicode strings, and
// FILETIME.

const (
	vtI2       = 2
	vtI4       = 3
	vtLPSTR    = 30
	vtLPWSTR   = 31
	vtFiletime = 64
)

// Windows FILETIME for 1970-01-01T00:00:00Z, in 100ns ticks since 1601.
const filetimeEpoch1970 = 116444736000000000

// FMTID bytes in stream order (GUID fields little-endian).
var (
	fmtidSummaryInfo    = []byte{0xE0, 0x85, 0x9F, 0xF2, 0xF9, 0x4F, 0x68, 0x10, 0xAB, 0x91, 0x08, 0x00, 0x2B, 0x27, 0xB3, 0xD9}
	fmtidDocSummaryInfo = []byte{0x02, 0xD5, 0xCD, 0xD5, 0x9C, 0x2E, 0x1B, 0x10, 0x93, 0x97, 0x08, 0x00, 0x2B, 0x2C, 0xF9, 0xAE}
)

// SummaryInformation property ids.
const (
	pidTitle       = 2
	pidSubject     = 3
	pidAuthor      = 4
	pidKeywords    = 5
	pidComments    = 6
	pidTemplate    = 7
	pidLastAuthor  = 8
	pidRevNumber   = 9
	pidLastPrinted = 11
	pidCreateTime  = 12
	pidSaveTime    = 13
	pidAppName     = 18
)

// DocumentSummaryInformation property ids.
const (
	pidCategory = 2
	pidManager  = 14
	pidCompany  = 15
)

type propValue struct {
	ID     uint32
	Type   uint32
	Offset int // absolute offset of the typed value within the stream
}

type propSection struct {
	FMTID []byte
	Start int
	Props []propValue
}

// parsePropertyStream walks the property set stream and returns its
// sections with absolute value offsets.
func parsePropertyStream(data []byte) ([]propSection, error) {
	if len(data) < 28 {
		return nil, errors.New("property stream too short")
	}
	if binary.LittleEndian.Uint16(data[0:2]) != 0xFFFE {
		return nil, errors.New("property stream has unexpected byte order mark")
	}
	numSets := int(binary.LittleEndian.Uint32(data[24:28]))
	if numSets < 1 || numSets > 4 {
		return nil, fmt.Errorf("property stream declares %d sections", numSets)
	}
	if len(data) < 28+numSets*20 {
		return nil, errors.New("property stream truncated in section table")
	}

	var sections []propSection
	for i := 0; i < numSets; i++ {
		entry := 28 + i*20
		fmtid := data[entry : entry+16]
		start := int(binary.LittleEndian.Uint32(data[entry+16 : entry+20]))
		if start+8 > len(data) {
			return nil, errors.New("section offset out of bounds")
		}
		numProps := int(binary.LittleEndian.Uint32(data[start+4 : start+8]))
		if numProps < 0 || start+8+numProps*8 > len(data) {
			return nil, errors.New("section truncated in property table")
		}
		sec := propSection{FMTID: append([]byte(nil), fmtid...), Start: start}
		for p := 0; p < numProps; p++ {
			at := start + 8 + p*8
			id := binary.LittleEndian.Uint32(data[at : at+4])
			rel := int(binary.LittleEndian.Uint32(data[at+4 : at+8]))
			valAt := start + rel
			if valAt+4 > len(data) {
				continue
			}
			sec.Props = append(sec.Props, propValue{
				ID:     id,
				Type:   binary.LittleEndian.Uint32(data[valAt : valAt+4]),
				Offset: valAt,
			})
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

func (s *propSection) find(id uint32) (propValue, bool) {
	for _, p := range s.Props {
		if p.ID == id {
			return p, true
		}
	}
	return propValue{}, false
}

// stringValue decodes a VT_LPSTR or VT_LPWSTR value.
func stringValue(data []byte, p propValue) string {
	at := p.Offset + 4
	if at+4 > len(data) {
		return ""
	}
	n := int(binary.LittleEndian.Uint32(data[at : at+4]))
	switch p.Type {
	case vtLPSTR:
		if n <= 0 || at+4+n > len(data) {
			return ""
		}
		return string(bytes.TrimRight(data[at+4:at+4+n], "\x00"))
	case vtLPWSTR:
		if n <= 0 || at+4+n*2 > len(data) {
			return ""
		}
		u := make([]uint16, 0, n)
		for i := 0; i < n; i++ {
			u = append(u, binary.LittleEndian.Uint16(data[at+4+i*2:at+6+i*2]))
		}
		return string(bytes.TrimRight([]byte(string(utf16.Decode(u))), "\x00"))
	}
	return ""
}

// timeValue decodes a VT_FILETIME value. The zero FILETIME and the
// start-of-time sentinel both report ok=false.
func timeValue(data []byte, p propValue) (time.Time, bool) {
	if p.Type != vtFiletime {
		return time.Time{}, false
	}
	at := p.Offset + 4
	if at+8 > len(data) {
		return time.Time{}, false
	}
	ticks := binary.LittleEndian.Uint64(data[at : at+8])
	if ticks == 0 || ticks == filetimeEpoch1970 {
		return time.Time{}, false
	}
	return time.Unix(int64((ticks-filetimeEpoch1970)/10_000_000), 0).UTC(), true
}

// clearString blanks a string value in place: the length shrinks to a
// single terminator and the old payload is zeroed. Offsets of the
// surrounding properties do not move, so the stream stays valid at its
// original size.
func clearString(data []byte, p propValue) {
	at := p.Offset + 4
	if at+4 > len(data) {
		return
	}
	n := int(binary.LittleEndian.Uint32(data[at : at+4]))
	width := 1
	if p.Type == vtLPWSTR {
		width = 2
	}
	if n <= 0 || at+4+n*width > len(data) {
		return
	}
	binary.LittleEndian.PutUint32(data[at:at+4], 1)
	for i := at + 4; i < at+4+n*width; i++ {
		data[i] = 0
	}
}

// clearTime resets a FILETIME value to the start-of-time sentinel.
func clearTime(data []byte, p propValue) {
	at := p.Offset + 4
	if p.Type != vtFiletime || at+8 > len(data) {
		return
	}
	binary.LittleEndian.PutUint64(data[at:at+8], filetimeEpoch1970)
}

// clearPropertyStream neutralizes every known metadata property in the
// stream, in place.
func clearPropertyStream(data []byte) error {
	sections, err := parsePropertyStream(data)
	if err != nil {
		return err
	}
	for i := range sections {
		sec := &sections[i]
		var stringIDs, timeIDs []uint32
		switch {
		case bytes.Equal(sec.FMTID, fmtidSummaryInfo):
			stringIDs = []uint32{pidTitle, pidSubject, pidAuthor, pidKeywords,
				pidComments, pidTemplate, pidLastAuthor, pidRevNumber, pidAppName}
			timeIDs = []uint32{pidLastPrinted, pidCreateTime, pidSaveTime}
		case bytes.Equal(sec.FMTID, fmtidDocSummaryInfo):
			stringIDs = []uint32{pidCategory, pidManager, pidCompany}
		default:
			continue
		}
		for _, id := range stringIDs {
			if p, ok := sec.find(id); ok {
				clearString(data, p)
			}
		}
		for _, id := range timeIDs {
			if p, ok := sec.find(id); ok {
				clearTime(data, p)
			}
		}
	}
	return nil
}
