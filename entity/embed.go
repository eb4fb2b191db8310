package entity

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/jacentio/strata/internal/fieldpath"
)

// EmbedAsReference resolves identifiers of this entity type found on target
// and attaches the resolved records under the embed field. The original
// reference field is never overwritten.
//
// referencePath locates the reference inside each record in scope: a scalar
// identifier resolves via a single lookup, a sequence via one bulk lookup.
// A record without a value at referencePath is left unchanged. embedName is
// the key under the embed field; empty means referencePath is used.
//
// objectPath optionally locates the records to process inside target. When
// target has no value at objectPath, target is returned unchanged and no
// lookup is issued. The scope is treated as a single record unless it is a
// sequence, in which case every element is resolved concurrently and the
// first failed lookup fails the whole call.
//
// Records are modified in place; resolved sequences keep the store's result
// order. Pre-existing content under the embed field is merged with, not
// replaced.
func (o *Ops) EmbedAsReference(ctx context.Context, target any, referencePath, embedName, objectPath string) (any, error) {
	refPath, err := fieldpath.Parse(referencePath)
	if err != nil {
		return nil, err
	}
	if embedName == "" {
		embedName = referencePath
	}

	// Named record types are traversed through their underlying map.
	var root any = target
	if r, ok := target.(Record); ok {
		root = bson.M(r)
	}

	scope := root
	if objectPath != "" {
		objPath, err := fieldpath.Parse(objectPath)
		if err != nil {
			return nil, err
		}
		v, ok := fieldpath.Get(root, objPath)
		if !ok || v == nil {
			return target, nil
		}
		scope = v
	}

	if s, ok := asSequence(scope); ok {
		g, ctx := errgroup.WithContext(ctx)
		for _, el := range s {
			rec, ok := asRecord(el)
			if !ok {
				continue
			}
			g.Go(func() error {
				return o.embedOne(ctx, rec, refPath, embedName)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return target, nil
	}

	rec, ok := asRecord(scope)
	if !ok {
		return nil, fmt.Errorf("strata: embed target at %q is not a record", objectPath)
	}
	if err := o.embedOne(ctx, rec, refPath, embedName); err != nil {
		return nil, err
	}
	return target, nil
}

// embedOne resolves one record's reference and attaches the result.
func (o *Ops) embedOne(ctx context.Context, rec bson.M, refPath fieldpath.Path, embedName string) error {
	v, ok := fieldpath.Get(rec, refPath)
	if !ok || v == nil {
		return nil
	}

	var resolution any
	switch ref := v.(type) {
	case string:
		found, err := o.FindByID(ctx, ref, nil)
		if err != nil {
			return err
		}
		if found == nil {
			return nil
		}
		resolution = found
	default:
		ids, err := referenceIDs(v)
		if err != nil {
			return fmt.Errorf("%s: %w", refPath, err)
		}
		found, err := o.FindByIDs(ctx, ids, nil)
		if err != nil {
			return err
		}
		resolution = found
	}

	o.attach(rec, embedName, resolution)
	return nil
}

// attach merges one resolution into the record's embed field.
func (o *Ops) attach(rec bson.M, embedName string, resolution any) {
	embedded, _ := asRecord(rec[o.config.EmbedField])
	if embedded == nil {
		embedded = bson.M{}
		rec[o.config.EmbedField] = embedded
	}
	embedded[embedName] = resolution
}

// referenceIDs extracts portable identifiers from a sequence-valued reference.
func referenceIDs(v any) ([]string, error) {
	if ids, ok := v.([]string); ok {
		return ids, nil
	}
	s, ok := asSequence(v)
	if !ok {
		return nil, fmt.Errorf("reference is neither an identifier nor a sequence of them (%T)", v)
	}
	ids := make([]string, len(s))
	for i, el := range s {
		id, ok := el.(string)
		if !ok {
			return nil, fmt.Errorf("reference element %d is not an identifier (%T)", i, el)
		}
		ids[i] = id
	}
	return ids, nil
}

func asRecord(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case Record:
		return bson.M(m), true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case bson.A:
		return s, true
	case []any:
		return s, true
	case []Record:
		out := make([]any, len(s))
		for i, r := range s {
			out[i] = r
		}
		return out, true
	}
	return nil, false
}
