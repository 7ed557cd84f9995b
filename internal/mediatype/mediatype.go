// Package mediatype models MIME media types with wildcard matching and
// an alias registry, and detects the media type of files on disk.
package mediatype

import (
	"strings"
)

// Wildcard is the token matching any type or subtype.
const Wildcard = "*"

// Param is a single media type parameter.
type Param struct {
	Key   string
	Value string
}

// MediaType is a parsed MIME media type. Type and Subtype are lowercase;
// parameters keep their declaration order.
type MediaType struct {
	Type    string
	Subtype string
	Params  []Param
}

// Parse parses s as a media type. It returns ok=false for malformed
// input: missing slash, empty tokens, a parameter without '=', or a
// wildcard type with a concrete subtype.
func Parse(s string) (MediaType, bool) {
	parts := strings.Split(s, ";")
	base := strings.TrimSpace(parts[0])
	slash := strings.IndexByte(base, '/')
	if slash <= 0 || slash == len(base)-1 {
		return MediaType{}, false
	}
	t := MediaType{
		Type:    strings.ToLower(strings.TrimSpace(base[:slash])),
		Subtype: strings.ToLower(strings.TrimSpace(base[slash+1:])),
	}
	if t.Type == "" || t.Subtype == "" {
		return MediaType{}, false
	}
	if strings.ContainsAny(t.Type, " /") || strings.ContainsAny(t.Subtype, " /") {
		return MediaType{}, false
	}
	if t.Type == Wildcard && t.Subtype != Wildcard {
		return MediaType{}, false
	}
	for _, raw := range parts[1:] {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		eq := strings.IndexByte(raw, '=')
		if eq <= 0 {
			return MediaType{}, false
		}
		key := strings.ToLower(strings.TrimSpace(raw[:eq]))
		val := strings.TrimSpace(raw[eq+1:])
		val = strings.Trim(val, `"`)
		if key == "" {
			return MediaType{}, false
		}
		t.Params = append(t.Params, Param{Key: key, Value: val})
	}
	return t, true
}

// MustParse parses s and panics on malformed input. For package-level
// constants only.
func MustParse(s string) MediaType {
	t, ok := Parse(s)
	if !ok {
		panic("mediatype: malformed media type " + s)
	}
	return t
}

// String renders the media type in type/subtype;key=value form.
func (t MediaType) String() string {
	var b strings.Builder
	b.WriteString(t.Type)
	b.WriteByte('/')
	b.WriteString(t.Subtype)
	for _, p := range t.Params {
		b.WriteString("; ")
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Param returns the value of the named parameter.
func (t MediaType) Param(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, p := range t.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// IsWildcardType reports whether the type component is the wildcard.
func (t MediaType) IsWildcardType() bool {
	return t.Type == Wildcard
}

// IsWildcardSubtype reports whether the subtype component is the wildcard.
func (t MediaType) IsWildcardSubtype() bool {
	return t.Subtype == Wildcard
}

// WithoutParams returns the bare type/subtype.
func (t MediaType) WithoutParams() MediaType {
	return MediaType{Type: t.Type, Subtype: t.Subtype}
}

// Contains reports whether t includes other: the type and subtype each
// match exactly or via a wildcard on t's side, and every parameter of t
// is present in other with an equal value.
func (t MediaType) Contains(other MediaType) bool {
	if t.Type != Wildcard && t.Type != other.Type {
		return false
	}
	if t.Subtype != Wildcard && t.Subtype != other.Subtype {
		return false
	}
	for _, p := range t.Params {
		v, ok := other.Param(p.Key)
		if !ok || v != p.Value {
			return false
		}
	}
	return true
}

// Equal reports structural equality ignoring parameter order.
func (t MediaType) Equal(other MediaType) bool {
	if t.Type != other.Type || t.Subtype != other.Subtype || len(t.Params) != len(other.Params) {
		return false
	}
	for _, p := range t.Params {
		v, ok := other.Param(p.Key)
		if !ok || v != p.Value {
			return false
		}
	}
	return true
}

// Set is an ordered collection of media types used as a handler's
// capability set. Members may contain wildcards.
type Set []MediaType

// Contains reports whether any member of the set includes t.
func (s Set) Contains(t MediaType) bool {
	for _, m := range s {
		if m.Contains(t) {
			return true
		}
	}
	return false
}

// ContainsEqual reports whether a structurally equal member is present.
func (s Set) ContainsEqual(t MediaType) bool {
	return s.indexEqual(t) >= 0
}

func (s Set) indexEqual(t MediaType) int {
	for i, m := range s {
		if m.Equal(t) {
			return i
		}
	}
	return -1
}

// Union returns a new set holding the members of s and all others,
// without structural duplicates.
func Union(sets ...Set) Set {
	var out Set
	for _, s := range sets {
		for _, t := range s {
			if out.indexEqual(t) < 0 {
				out = append(out, t)
			}
		}
	}
	return out
}

// Intersects reports whether any member of a structurally equals a
// member of b, or one side's wildcard covers the other's member.
func Intersects(a, b Set) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Contains(y) || y.Contains(x) {
				return true
			}
		}
	}
	return false
}
