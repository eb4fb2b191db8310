package entity

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jacentio/strata/internal/fieldpath"
)

// placeholderHex is the synthetic identifier substituted during full
// validation of not-yet-persisted records, so identifier-required rules pass
// before the store has assigned a real one.
const placeholderHex = "aaaaaaaaaaaaaaaaaaaaaaaa"

// toDocID converts a record to store form: the "id" field becomes the native
// "_id" primary key, and values at the declared identifier paths are converted
// from hex strings to ObjectIDs (element-wise for sequences). Absent paths are
// left untouched. Nil-valued top-level fields are pruned, since the store
// distinguishes an absent field from a null one and this layer always chooses
// absent. The input is not modified.
func toDocID(rec bson.M, paths []fieldpath.Path) (bson.M, error) {
	doc := copyMap(rec)

	if v, ok := doc["id"]; ok {
		oid, err := encodeID(v)
		if err != nil {
			return nil, fmt.Errorf("id: %w", err)
		}
		doc["_id"] = oid
		delete(doc, "id")
	}

	for _, p := range paths {
		if err := fieldpath.Apply(doc, p, encodeIDValue); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	for k, v := range doc {
		if v == nil {
			delete(doc, k)
		}
	}

	return doc, nil
}

// fromDocID is the inverse of toDocID: the native "_id" key becomes the
// record's "id" string, and ObjectIDs at the declared paths become hex strings
// (element-wise for sequences). Declared paths with no value are silently left
// absent. The input is not modified.
func fromDocID(doc bson.M, paths []fieldpath.Path) (bson.M, error) {
	rec := copyMap(doc)

	if v, ok := rec["_id"]; ok {
		s, err := decodeID(v)
		if err != nil {
			return nil, fmt.Errorf("_id: %w", err)
		}
		rec["id"] = s
		delete(rec, "_id")
	}

	for _, p := range paths {
		if err := fieldpath.Apply(rec, p, decodeIDValue); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	return rec, nil
}

// encodeIDValue converts one path value to native identifier form, handling
// sequences element-wise.
func encodeIDValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bson.A:
		out := make(bson.A, len(x))
		for i, el := range x {
			oid, err := encodeID(el)
			if err != nil {
				return nil, err
			}
			out[i] = oid
		}
		return out, nil
	case []any:
		return encodeIDValue(bson.A(x))
	case []string:
		out := make(bson.A, len(x))
		for i, s := range x {
			oid, err := encodeID(s)
			if err != nil {
				return nil, err
			}
			out[i] = oid
		}
		return out, nil
	}
	return encodeID(v)
}

func encodeID(v any) (primitive.ObjectID, error) {
	switch x := v.(type) {
	case string:
		oid, err := primitive.ObjectIDFromHex(x)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("invalid identifier %q: %w", x, err)
		}
		return oid, nil
	case primitive.ObjectID:
		return x, nil
	}
	return primitive.NilObjectID, fmt.Errorf("invalid identifier value of type %T", v)
}

// decodeIDValue converts one path value back to portable string form,
// handling sequences element-wise.
func decodeIDValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bson.A:
		out := make(bson.A, len(x))
		for i, el := range x {
			s, err := decodeID(el)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case []any:
		return decodeIDValue(bson.A(x))
	}
	return decodeID(v)
}

func decodeID(v any) (string, error) {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex(), nil
	case string:
		return x, nil
	}
	return "", fmt.Errorf("invalid identifier value of type %T", v)
}
