package types

import "encoding/json"

// Attribute is a single displayable metadata fact extracted from a file.
// Two attributes are the same fact iff all four fields are equal.
type Attribute struct {
	// Label is the short name of the attribute (e.g., "Location", "Camera").
	Label string `json:"label"`
	// Icon is the symbolic icon name for UI rendering (e.g., "camera", "location").
	Icon string `json:"icon,omitempty"`
	// Primary is the main display value.
	Primary string `json:"primary"`
	// Secondary is an optional supporting value shown under Primary.
	Secondary string `json:"secondary,omitempty"`
}

// AttributeSet is an insertion-ordered set of attributes.
// Adding a structurally equal attribute twice keeps only the first.
type AttributeSet struct {
	attrs []Attribute
}

// Add appends a to the set unless an equal attribute is already present.
func (s *AttributeSet) Add(a Attribute) {
	for _, x := range s.attrs {
		if x == a {
			return
		}
	}
	s.attrs = append(s.attrs, a)
}

// Merge adds every attribute of other into s, preserving order.
func (s *AttributeSet) Merge(other AttributeSet) {
	for _, a := range other.attrs {
		s.Add(a)
	}
}

// List returns the attributes in insertion order. The returned slice
// must not be modified.
func (s *AttributeSet) List() []Attribute {
	return s.attrs
}

// Len returns the number of attributes in the set.
func (s *AttributeSet) Len() int {
	return len(s.attrs)
}

// Contains reports whether an equal attribute is present.
func (s *AttributeSet) Contains(a Attribute) bool {
	for _, x := range s.attrs {
		if x == a {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the set as a JSON array.
func (s AttributeSet) MarshalJSON() ([]byte, error) {
	if s.attrs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.attrs)
}

// UnmarshalJSON decodes a JSON array into the set, deduplicating.
func (s *AttributeSet) UnmarshalJSON(data []byte) error {
	var attrs []Attribute
	if err := json.Unmarshal(data, &attrs); err != nil {
		return err
	}
	s.attrs = nil
	for _, a := range attrs {
		s.Add(a)
	}
	return nil
}

// Thumbnail references preview pixels for a file. At most one of Path
// and Data is set; a zero Thumbnail means no preview is available.
type Thumbnail struct {
	// Path points at an image file to use as the preview.
	Path string `json:"path,omitempty"`
	// Data holds embedded preview bytes (e.g., an EXIF thumbnail).
	Data []byte `json:"-"`
	// Width and Height are the preview dimensions in pixels, zero if unknown.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// IsZero reports whether no preview is available.
func (t Thumbnail) IsZero() bool {
	return t.Path == "" && len(t.Data) == 0
}

// Pixels returns Width*Height, zero if dimensions are unknown.
func (t Thumbnail) Pixels() int {
	return t.Width * t.Height
}

// Metadata is the uniform result of reading a file's embedded metadata.
type Metadata struct {
	// Title is the display title for the file, empty if none was embedded.
	Title string `json:"title,omitempty"`
	// Thumbnail is the preview reference, zero if none.
	Thumbnail Thumbnail `json:"thumbnail,omitempty"`
	// Attributes is the ordered set of extracted attributes.
	Attributes AttributeSet `json:"attributes"`
}

// Merge folds other into m: the title and thumbnail keep the first
// non-empty value seen, attributes are unioned.
func (m *Metadata) Merge(other *Metadata) {
	if other == nil {
		return
	}
	if m.Title == "" {
		m.Title = other.Title
	}
	if m.Thumbnail.IsZero() {
		m.Thumbnail = other.Thumbnail
	}
	m.Attributes.Merge(other.Attributes)
}

// Icon names used by handlers. The web UI maps these to glyphs.
const (
	IconImage       = "image"
	IconCamera      = "camera"
	IconLens        = "lens"
	IconExposure    = "exposure"
	IconFlash       = "flash"
	IconLocation    = "location"
	IconCalendar    = "calendar"
	IconPerson      = "person"
	IconDescription = "description"
	IconCopyright   = "copyright"
	IconSoftware    = "software"
	IconAudio       = "audio"
	IconVideo       = "video"
	IconDocument    = "document"
	IconDuration    = "duration"
	IconHistory     = "history"
	IconCompany     = "company"
	IconTag         = "tag"
)
