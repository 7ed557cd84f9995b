package office

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
	"unicode/utf16"
)

// streamProp is one property to place into a synthetic stream.
type streamProp struct {
	id    uint32
	typ   uint32
	value interface{} // string for the string types, time.Time for FILETIME
}

// buildPropertyStream assembles a single-section property set stream
// with the given FMTID and properties.
func buildPropertyStream(t *testing.T, fmtid []byte, props []streamProp) []byte {
	t.Helper()

	var values bytes.Buffer
	rels := make([]uint32, len(props))
	// The property table starts 8 bytes into the section.
	valueBase := uint32(8 + len(props)*8)
	for i, p := range props {
		rels[i] = valueBase + uint32(values.Len())
		binary.Write(&values, binary.LittleEndian, p.typ)
		switch v := p.value.(type) {
		case string:
			switch p.typ {
			case vtLPSTR:
				payload := append([]byte(v), 0)
				binary.Write(&values, binary.LittleEndian, uint32(len(payload)))
				values.Write(payload)
			case vtLPWSTR:
				units := append(utf16.Encode([]rune(v)), 0)
				binary.Write(&values, binary.LittleEndian, uint32(len(units)))
				for _, u := range units {
					binary.Write(&values, binary.LittleEndian, u)
				}
			default:
				t.Fatalf("unsupported string type %d", p.typ)
			}
		case time.Time:
			ticks := uint64(filetimeEpoch1970) + uint64(v.Unix())*10_000_000
			binary.Write(&values, binary.LittleEndian, ticks)
		case uint64:
			binary.Write(&values, binary.LittleEndian, v)
		default:
			t.Fatalf("unsupported value %T", p.value)
		}
	}

	var stream bytes.Buffer
	binary.Write(&stream, binary.LittleEndian, uint16(0xFFFE)) // byte order mark
	stream.Write(make([]byte, 22))                             // version, system id, clsid
	binary.Write(&stream, binary.LittleEndian, uint32(1))      // one section

	sectionStart := uint32(28 + 20)
	stream.Write(fmtid)
	binary.Write(&stream, binary.LittleEndian, sectionStart)

	sectionSize := uint32(8) + uint32(len(props)*8) + uint32(values.Len())
	binary.Write(&stream, binary.LittleEndian, sectionSize)
	binary.Write(&stream, binary.LittleEndian, uint32(len(props)))
	for i, p := range props {
		binary.Write(&stream, binary.LittleEndian, p.id)
		binary.Write(&stream, binary.LittleEndian, rels[i])
	}
	stream.Write(values.Bytes())
	return stream.Bytes()
}

func TestParsePropertyStream_ReadsSummaryInformationValues(t *testing.T) {
	created := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	data := buildPropertyStream(t, fmtidSummaryInfo, []streamProp{
		{id: pidTitle, typ: vtLPSTR, value: "Quarterly Report"},
		{id: pidAuthor, typ: vtLPWSTR, value: "Ana"},
		{id: pidCreateTime, typ: vtFiletime, value: created},
	})

	sections, err := parsePropertyStream(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected one section, got %d", len(sections))
	}
	sec := &sections[0]
	if !bytes.Equal(sec.FMTID, fmtidSummaryInfo) {
		t.Fatalf("unexpected FMTID: %x", sec.FMTID)
	}

	title, ok := sec.find(pidTitle)
	if !ok {
		t.Fatal("title property not found")
	}
	if got := stringValue(data, title); got != "Quarterly Report" {
		t.Fatalf("unexpected title value: %q", got)
	}

	author, ok := sec.find(pidAuthor)
	if !ok {
		t.Fatal("author property not found")
	}
	if got := stringValue(data, author); got != "Ana" {
		t.Fatalf("unexpected author value: %q", got)
	}

	ctProp, ok := sec.find(pidCreateTime)
	if !ok {
		t.Fatal("create time property not found")
	}
	parsed, valid := timeValue(data, ctProp)
	if !valid {
		t.Fatal("expected the creation time to decode")
	}
	if !parsed.Equal(created) {
		t.Fatalf("timeValue = %v, expected %v", parsed, created)
	}

	if _, found := sec.find(pidCompany); found {
		t.Fatal("unexpected company property")
	}
}

func TestParsePropertyStream_RejectsMalformedStreams(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{name: "too_short", data: []byte{0xFE, 0xFF}},
		{name: "bad_byte_order_mark", data: make([]byte, 48)},
		{name: "zero_sections", data: func() []byte {
			d := make([]byte, 48)
			binary.LittleEndian.PutUint16(d[0:2], 0xFFFE)
			return d
		}()},
		{name: "section_offset_out_of_bounds", data: func() []byte {
			d := make([]byte, 48)
			binary.LittleEndian.PutUint16(d[0:2], 0xFFFE)
			binary.LittleEndian.PutUint32(d[24:28], 1)
			binary.LittleEndian.PutUint32(d[44:48], 4096)
			return d
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parsePropertyStream(tc.data); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestTimeValue_TreatsZeroAndSentinelAsUnset(t *testing.T) {
	data := buildPropertyStream(t, fmtidSummaryInfo, []streamProp{
		{id: pidCreateTime, typ: vtFiletime, value: uint64(0)},
		{id: pidSaveTime, typ: vtFiletime, value: uint64(filetimeEpoch1970)},
	})

	sections, err := parsePropertyStream(data)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	sec := &sections[0]

	for _, id := range []uint32{pidCreateTime, pidSaveTime} {
		p, ok := sec.find(id)
		if !ok {
			t.Fatalf("property %d not found", id)
		}
		if _, valid := timeValue(data, p); valid {
			t.Fatalf("expected property %d to read as unset", id)
		}
	}
}

func TestClearPropertyStream_BlanksKnownPropertiesInPlace(t *testing.T) {
	created := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	data := buildPropertyStream(t, fmtidSummaryInfo, []streamProp{
		{id: pidTitle, typ: vtLPSTR, value: "Quarterly Report"},
		{id: pidAuthor, typ: vtLPWSTR, value: "Ana"},
		{id: pidCreateTime, typ: vtFiletime, value: created},
	})
	originalLen := len(data)

	if err := clearPropertyStream(data); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if len(data) != originalLen {
		t.Fatalf("stream size changed: %d -> %d", originalLen, len(data))
	}

	// The cleared stream still parses and reads back empty.
	sections, err := parsePropertyStream(data)
	if err != nil {
		t.Fatalf("cleared stream no longer parses: %v", err)
	}
	sec := &sections[0]

	title, _ := sec.find(pidTitle)
	if got := stringValue(data, title); got != "" {
		t.Fatalf("expected the title to be blanked, got %q", got)
	}
	author, _ := sec.find(pidAuthor)
	if got := stringValue(data, author); got != "" {
		t.Fatalf("expected the author to be blanked, got %q", got)
	}
	ctProp, _ := sec.find(pidCreateTime)
	if _, valid := timeValue(data, ctProp); valid {
		t.Fatal("expected the creation time to read as unset")
	}

	if !bytes.Contains(data[:2], []byte{0xFE}) {
		t.Fatal("byte order mark corrupted")
	}
	if bytes.Contains(data, []byte("Quarterly")) {
		t.Fatal("original title bytes survived in the stream")
	}
}

func TestClearPropertyStream_LeavesUnknownSectionsAlone(t *testing.T) {
	unknownFMTID := bytes.Repeat([]byte{0xAB}, 16)
	data := buildPropertyStream(t, unknownFMTID, []streamProp{
		{id: pidTitle, typ: vtLPSTR, value: "untouched"},
	})

	if err := clearPropertyStream(data); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if !bytes.Contains(data, []byte("untouched")) {
		t.Fatal("expected values in unknown sections to survive")
	}
}
