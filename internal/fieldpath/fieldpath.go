// Package fieldpath provides dotted-path access into nested document values.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

type segmentKind int

const (
	segField segmentKind = iota // named field in a mapping
	segIndex                    // fixed position in a sequence, "[3]"
	segEach                     // every element of a sequence, "[]"
)

type segment struct {
	kind  segmentKind
	field string
	index int
}

// Path is a parsed field path ("a.b", "items[2].ref", "rows[].ownerId").
type Path struct {
	raw      string
	segments []segment
}

// Parse parses dot/bracket notation into a Path.
// Supported forms: "field", "a.b.c", "a[0].b", "a[].b".
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("fieldpath: empty path")
	}

	var segments []segment
	for _, part := range strings.Split(raw, ".") {
		field, brackets, err := splitBrackets(raw, part)
		if err != nil {
			return Path{}, err
		}
		if field != "" {
			segments = append(segments, segment{kind: segField, field: field})
		} else if len(brackets) == 0 {
			return Path{}, fmt.Errorf("fieldpath: empty segment in %q", raw)
		}
		segments = append(segments, brackets...)
	}

	return Path{raw: raw, segments: segments}, nil
}

// MustParse is like Parse but panics on a malformed path.
// Intended for statically declared paths.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original path notation.
func (p Path) String() string {
	return p.raw
}

// splitBrackets splits one dot-separated part into its leading field name and
// any trailing bracket segments.
func splitBrackets(raw, part string) (string, []segment, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.IndexByte(part, ']') >= 0 {
			return "", nil, fmt.Errorf("fieldpath: unmatched ']' in %q", raw)
		}
		return part, nil, nil
	}

	field := part[:open]
	var segments []segment
	rest := part[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("fieldpath: malformed brackets in %q", raw)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, fmt.Errorf("fieldpath: unmatched '[' in %q", raw)
		}
		inner := rest[1:end]
		if inner == "" {
			segments = append(segments, segment{kind: segEach})
		} else {
			i, err := strconv.Atoi(inner)
			if err != nil || i < 0 {
				return "", nil, fmt.Errorf("fieldpath: bad index %q in %q", inner, raw)
			}
			segments = append(segments, segment{kind: segIndex, index: i})
		}
		rest = rest[end+1:]
	}

	return field, segments, nil
}

// Get reads the value at p within root. The second result is false when any
// segment of the path is absent, or when the path contains an "[]" segment
// (which addresses many locations, not one).
func Get(root any, p Path) (any, bool) {
	current := root
	for _, seg := range p.segments {
		switch seg.kind {
		case segField:
			m, ok := asMap(current)
			if !ok {
				return nil, false
			}
			v, ok := m[seg.field]
			if !ok {
				return nil, false
			}
			current = v
		case segIndex:
			s, ok := asSlice(current)
			if !ok || seg.index >= len(s) {
				return nil, false
			}
			current = s[seg.index]
		case segEach:
			return nil, false
		}
	}
	return current, true
}

// Set writes v at p within root, walking only structure that already exists.
// It returns false without modifying root when any intermediate segment is
// absent or the final container is not a mapping or sequence.
func Set(root any, p Path, v any) bool {
	if len(p.segments) == 0 {
		return false
	}

	parent := root
	for _, seg := range p.segments[:len(p.segments)-1] {
		var ok bool
		parent, ok = step(parent, seg)
		if !ok {
			return false
		}
	}

	last := p.segments[len(p.segments)-1]
	switch last.kind {
	case segField:
		m, ok := asMap(parent)
		if !ok {
			return false
		}
		m[last.field] = v
	case segIndex:
		s, ok := asSlice(parent)
		if !ok || last.index >= len(s) {
			return false
		}
		s[last.index] = v
	case segEach:
		return false
	}
	return true
}

// Apply transforms the value at p within root in place using fn. "[]" segments
// and sequences met mid-path fan the remaining path out over every element.
// Absent locations are skipped without error; fn errors abort the walk.
func Apply(root any, p Path, fn func(any) (any, error)) error {
	return apply(root, p.segments, fn)
}

func apply(current any, segments []segment, fn func(any) (any, error)) error {
	if len(segments) == 0 {
		return nil
	}
	seg := segments[0]
	rest := segments[1:]

	// A sequence met where a field is expected fans out over its elements.
	if seg.kind == segField {
		if s, ok := asSlice(current); ok {
			return eachElement(s, segments, fn)
		}
	}

	switch seg.kind {
	case segField:
		m, ok := asMap(current)
		if !ok {
			return nil
		}
		v, ok := m[seg.field]
		if !ok {
			return nil
		}
		if len(rest) > 0 {
			return apply(v, rest, fn)
		}
		out, err := fn(v)
		if err != nil {
			return err
		}
		m[seg.field] = out
		return nil

	case segIndex:
		s, ok := asSlice(current)
		if !ok || seg.index >= len(s) {
			return nil
		}
		if len(rest) > 0 {
			return apply(s[seg.index], rest, fn)
		}
		out, err := fn(s[seg.index])
		if err != nil {
			return err
		}
		s[seg.index] = out
		return nil

	case segEach:
		s, ok := asSlice(current)
		if !ok {
			return nil
		}
		if len(rest) == 0 {
			for i := range s {
				out, err := fn(s[i])
				if err != nil {
					return err
				}
				s[i] = out
			}
			return nil
		}
		for i := range s {
			if err := apply(s[i], rest, fn); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func eachElement(s []any, segments []segment, fn func(any) (any, error)) error {
	for i := range s {
		if err := apply(s[i], segments, fn); err != nil {
			return err
		}
	}
	return nil
}

func step(current any, seg segment) (any, bool) {
	switch seg.kind {
	case segField:
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		v, ok := m[seg.field]
		return v, ok
	case segIndex:
		s, ok := asSlice(current)
		if !ok || seg.index >= len(s) {
			return nil, false
		}
		return s[seg.index], true
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case bson.A:
		return s, true
	case []any:
		return s, true
	}
	return nil, false
}
