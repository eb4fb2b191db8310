package entity

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Record is an application-level entity: a field-to-value mapping carrying a
// portable string identifier under "id". The "id" field is absent until the
// record has been persisted, and a non-empty 24-hex string afterwards. Values
// may be scalars, nested bson.M mappings, or bson.A sequences of either.
type Record bson.M

// Type is the capability bundle describing one entity type. Implementations
// are supplied by the schema/validation subsystem.
type Type interface {
	// Clean returns a normalized copy of props with unknown or disallowed
	// fields stripped.
	Clean(props Record) Record

	// AssertValid returns an error if props is not a valid complete record.
	AssertValid(props Record) error

	// AssertValidPartial returns an error if props is not a valid partial
	// record (a subset of fields to update).
	AssertValidPartial(props Record) error
}

// SingularNamer is implemented by entity types that provide a human-readable
// singular name, used in diagnostics. Types without it are called "entity".
type SingularNamer interface {
	// SingularName returns the display name (e.g., "account").
	SingularName() string
}

// IDPather is implemented by entity types whose records hold identifiers
// beyond the primary key, at nested paths requiring codec conversion.
type IDPather interface {
	// IDPaths returns the declared identifier paths in dot/bracket notation
	// (e.g., "ownerId", "memberIds", "rows[].accountId").
	IDPaths() []string
}

// copyValue deep-copies a document value. Mappings and sequences are copied
// recursively; scalars are returned as-is.
func copyValue(v any) any {
	switch x := v.(type) {
	case bson.M:
		return copyMap(x)
	case map[string]any:
		return copyMap(x)
	case bson.A:
		return copySlice(x)
	case []any:
		return copySlice(x)
	case []string:
		out := make(bson.A, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	}
	return v
}

func copyMap(m map[string]any) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copySlice(s []any) bson.A {
	out := make(bson.A, len(s))
	for i, v := range s {
		out[i] = copyValue(v)
	}
	return out
}
