package fieldpath

import (
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// --- Parse Tests ---

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		raw      string
		segments int
	}{
		{"a", 1},
		{"a.b", 2},
		{"a.b.c", 3},
		{"a[0]", 2},
		{"a[0].b", 3},
		{"a[].b", 3},
		{"a[0][1]", 3},
		{"rows[].cells[].ref", 5},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.raw, err)
			}
			if len(p.segments) != tt.segments {
				t.Errorf("expected %d segments, got %d", tt.segments, len(p.segments))
			}
			if p.String() != tt.raw {
				t.Errorf("expected String() %q, got %q", tt.raw, p.String())
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		".",
		"a.",
		".a",
		"a..b",
		"a[",
		"a]",
		"a[x]",
		"a[-1]",
		"a[1",
	}

	for _, raw := range tests {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			if _, err := Parse(raw); err == nil {
				t.Errorf("Parse(%q) expected error, got nil", raw)
			}
		})
	}
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid path")
		}
	}()
	MustParse("a[")
}

// --- Get Tests ---

func TestGet(t *testing.T) {
	doc := bson.M{
		"name": "alpha",
		"nested": bson.M{
			"ownerId": "abc",
		},
		"items": bson.A{
			bson.M{"ref": "r0"},
			bson.M{"ref": "r1"},
		},
	}

	tests := []struct {
		path     string
		expected any
		found    bool
	}{
		{"name", "alpha", true},
		{"nested.ownerId", "abc", true},
		{"items[0].ref", "r0", true},
		{"items[1].ref", "r1", true},
		{"items[2].ref", nil, false},
		{"missing", nil, false},
		{"nested.missing", nil, false},
		{"name.sub", nil, false},
		{"items[].ref", nil, false}, // "[]" addresses many locations
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, ok := Get(doc, MustParse(tt.path))
			if ok != tt.found {
				t.Fatalf("expected found=%v, got %v", tt.found, ok)
			}
			if tt.found && v != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, v)
			}
		})
	}
}

// --- Set Tests ---

func TestSet_Field(t *testing.T) {
	doc := bson.M{"nested": bson.M{"a": 1}}

	if !Set(doc, MustParse("nested.a"), 2) {
		t.Fatal("expected Set to succeed")
	}
	if doc["nested"].(bson.M)["a"] != 2 {
		t.Errorf("expected nested.a = 2, got %v", doc["nested"].(bson.M)["a"])
	}
}

func TestSet_NewField(t *testing.T) {
	doc := bson.M{"nested": bson.M{}}

	if !Set(doc, MustParse("nested.b"), "x") {
		t.Fatal("expected Set to succeed")
	}
	if doc["nested"].(bson.M)["b"] != "x" {
		t.Errorf("expected nested.b = x, got %v", doc["nested"].(bson.M)["b"])
	}
}

func TestSet_Index(t *testing.T) {
	doc := bson.M{"items": bson.A{"a", "b"}}

	if !Set(doc, MustParse("items[1]"), "c") {
		t.Fatal("expected Set to succeed")
	}
	if doc["items"].(bson.A)[1] != "c" {
		t.Errorf("expected items[1] = c, got %v", doc["items"].(bson.A)[1])
	}
}

func TestSet_MissingIntermediate(t *testing.T) {
	doc := bson.M{"a": 1}

	if Set(doc, MustParse("missing.b"), 2) {
		t.Error("expected Set to fail on missing intermediate")
	}
	if len(doc) != 1 {
		t.Errorf("expected doc unchanged, got %v", doc)
	}
}

func TestSet_IndexOutOfRange(t *testing.T) {
	doc := bson.M{"items": bson.A{"a"}}

	if Set(doc, MustParse("items[5]"), "x") {
		t.Error("expected Set to fail on out-of-range index")
	}
}

// --- Apply Tests ---

func upper(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("not a string: %v", v)
	}
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out), nil
}

func TestApply_Scalar(t *testing.T) {
	doc := bson.M{"nested": bson.M{"ref": "abc"}}

	if err := Apply(doc, MustParse("nested.ref"), upper); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if doc["nested"].(bson.M)["ref"] != "ABC" {
		t.Errorf("expected ABC, got %v", doc["nested"].(bson.M)["ref"])
	}
}

func TestApply_AbsentIsNoop(t *testing.T) {
	doc := bson.M{"a": 1}

	if err := Apply(doc, MustParse("missing.ref"), upper); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(doc) != 1 {
		t.Errorf("expected doc unchanged, got %v", doc)
	}
}

func TestApply_EachSegment(t *testing.T) {
	doc := bson.M{"items": bson.A{
		bson.M{"ref": "a"},
		bson.M{"ref": "b"},
	}}

	if err := Apply(doc, MustParse("items[].ref"), upper); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	items := doc["items"].(bson.A)
	if items[0].(bson.M)["ref"] != "A" || items[1].(bson.M)["ref"] != "B" {
		t.Errorf("expected refs A, B, got %v", items)
	}
}

func TestApply_ImplicitFanOut(t *testing.T) {
	// A sequence met mid-path fans out without an explicit "[]".
	doc := bson.M{"items": bson.A{
		bson.M{"ref": "a"},
		bson.M{"ref": "b"},
	}}

	if err := Apply(doc, MustParse("items.ref"), upper); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	items := doc["items"].(bson.A)
	if items[0].(bson.M)["ref"] != "A" || items[1].(bson.M)["ref"] != "B" {
		t.Errorf("expected refs A, B, got %v", items)
	}
}

func TestApply_WholeValue(t *testing.T) {
	doc := bson.M{"ref": "abc"}

	if err := Apply(doc, MustParse("ref"), upper); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if doc["ref"] != "ABC" {
		t.Errorf("expected ABC, got %v", doc["ref"])
	}
}

func TestApply_ErrorAborts(t *testing.T) {
	doc := bson.M{"items": bson.A{
		bson.M{"ref": "a"},
		bson.M{"ref": 42},
	}}

	if err := Apply(doc, MustParse("items[].ref"), upper); err == nil {
		t.Error("expected error from fn to propagate")
	}
}

func TestApply_MixedElements(t *testing.T) {
	// Elements missing the field are skipped without error.
	doc := bson.M{"items": bson.A{
		bson.M{"ref": "a"},
		bson.M{"other": 1},
	}}

	if err := Apply(doc, MustParse("items[].ref"), upper); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	items := doc["items"].(bson.A)
	if items[0].(bson.M)["ref"] != "A" {
		t.Errorf("expected A, got %v", items[0])
	}
	if items[1].(bson.M)["other"] != 1 {
		t.Errorf("expected element without field untouched, got %v", items[1])
	}
}
