package entity

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jacentio/strata/internal/fieldpath"
)

// Ops provides document-store operations bound to one entity type.
type Ops struct {
	coll     Collection
	typ      Type
	config   Config
	registry *Registry

	name    string
	idPaths []fieldpath.Path
}

// New binds a store collection and an entity type into a ready-to-use
// operation set. Declared identifier paths are parsed once here; a malformed
// path panics, since it is a static declaration error.
func New(coll Collection, typ Type, config Config) *Ops {
	config.validate()

	name := "entity"
	if n, ok := typ.(SingularNamer); ok {
		name = n.SingularName()
	}

	var paths []fieldpath.Path
	if p, ok := typ.(IDPather); ok {
		for _, raw := range p.IDPaths() {
			paths = append(paths, fieldpath.MustParse(raw))
		}
	}

	return &Ops{
		coll:    coll,
		typ:     typ,
		config:  config,
		name:    name,
		idPaths: paths,
	}
}

// NewWithRegistry binds operations with a reference registry for EmbedAll.
func NewWithRegistry(coll Collection, typ Type, config Config, registry *Registry) *Ops {
	o := New(coll, typ, config)
	o.registry = registry
	return o
}

// SetRegistry sets the reference registry for EmbedAll operations.
func (o *Ops) SetRegistry(registry *Registry) {
	o.registry = registry
}

// Registry returns the reference registry, or nil if not set.
func (o *Ops) Registry() *Registry {
	return o.registry
}

// Name returns the entity type's display name.
func (o *Ops) Name() string {
	return o.name
}

func (o *Ops) logger() *slog.Logger {
	return o.config.Logger
}

// toDoc converts a record to its store document form.
func (o *Ops) toDoc(rec Record) (bson.M, error) {
	return toDocID(bson.M(rec), o.idPaths)
}

// fromDoc converts a store document back to a record.
func (o *Ops) fromDoc(doc bson.M) (Record, error) {
	rec, err := fromDocID(doc, o.idPaths)
	if err != nil {
		return nil, err
	}
	return Record(rec), nil
}

// Find runs filter against the store and returns the matching records.
// No match yields an empty slice, never nil.
func (o *Ops) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Record, error) {
	docs, err := o.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := o.fromDoc(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindOne returns the first record matching filter, or nil if none matches.
func (o *Ops) FindOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (Record, error) {
	doc, err := o.coll.FindOne(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return o.fromDoc(doc)
}

// FindByIDs returns the records whose primary key is in ids.
func (o *Ops) FindByIDs(ctx context.Context, ids []string, opts *options.FindOptions) ([]Record, error) {
	oids := make(bson.A, len(ids))
	for i, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("strata: invalid identifier %q: %w", id, err)
		}
		oids[i] = oid
	}
	return o.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
}

// FindByID returns the record with the given primary key, or nil if none
// matches.
func (o *Ops) FindByID(ctx context.Context, id string, opts *options.FindOneOptions) (Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("strata: invalid identifier %q: %w", id, err)
	}
	return o.FindOne(ctx, bson.M{"_id": oid}, opts)
}

// CreateOne cleans and validates props as a complete record, inserts it, and
// returns the stored record carrying its assigned identifier. Validation uses
// a synthetic placeholder identifier so identifier-required rules pass before
// the store has assigned the real one; validation failure aborts before any
// store write.
func (o *Ops) CreateOne(ctx context.Context, props Record) (Record, error) {
	cleaned := o.typ.Clean(props)

	withID := Record(copyMap(cleaned))
	withID["id"] = placeholderHex
	if err := o.typ.AssertValid(withID); err != nil {
		return nil, &ValidationError{Entity: o.name, Op: "create", Err: err}
	}

	doc, err := o.toDoc(cleaned)
	if err != nil {
		return nil, err
	}

	inserted, err := o.coll.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	o.logger().DebugContext(ctx, "created", "entity", o.name)

	return o.fromDoc(inserted)
}

// UpdateOne cleans and validates props as a partial record and applies the
// submitted fields to the document matched by props' identifier. The full
// resulting record is re-read and returned, reflecting any store-side
// defaults rather than just the submitted fields.
func (o *Ops) UpdateOne(ctx context.Context, props Record) (Record, error) {
	cleaned := o.typ.Clean(props)

	if err := requireID(cleaned, o.name, "update"); err != nil {
		return nil, err
	}
	if err := o.typ.AssertValidPartial(cleaned); err != nil {
		return nil, &ValidationError{Entity: o.name, Op: "update", Err: err}
	}

	doc, err := o.toDoc(cleaned)
	if err != nil {
		return nil, err
	}

	oid := doc["_id"]
	set := bson.M{}
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		set[k] = v
	}

	if _, err := o.coll.Update(ctx, bson.M{"_id": oid}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	o.logger().DebugContext(ctx, "updated", "entity", o.name)

	return o.FindOne(ctx, bson.M{"_id": oid}, nil)
}

// ReplaceOne cleans and validates props as a complete record and writes the
// whole mapped document in place of the existing one, preserving the primary
// key. The stored record is re-read and returned.
func (o *Ops) ReplaceOne(ctx context.Context, props Record) (Record, error) {
	cleaned := o.typ.Clean(props)

	if err := requireID(cleaned, o.name, "replace"); err != nil {
		return nil, err
	}
	if err := o.typ.AssertValid(cleaned); err != nil {
		return nil, &ValidationError{Entity: o.name, Op: "replace", Err: err}
	}

	doc, err := o.toDoc(cleaned)
	if err != nil {
		return nil, err
	}

	oid := doc["_id"]
	delete(doc, "_id")

	if _, err := o.coll.Update(ctx, bson.M{"_id": oid}, doc); err != nil {
		return nil, err
	}
	o.logger().DebugContext(ctx, "replaced", "entity", o.name)

	return o.FindOne(ctx, bson.M{"_id": oid}, nil)
}

// DeleteOne removes the document matching props' identifier and returns the
// store's removal acknowledgment.
func (o *Ops) DeleteOne(ctx context.Context, props Record) (*mongo.DeleteResult, error) {
	id, _ := props["id"].(string)
	return o.DeleteByID(ctx, id)
}

// DeleteByID removes the document with the given primary key and returns the
// store's removal acknowledgment.
func (o *Ops) DeleteByID(ctx context.Context, id string) (*mongo.DeleteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%s delete: %w", o.name, ErrMissingID)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("strata: invalid identifier %q: %w", id, err)
	}

	res, err := o.coll.Remove(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	o.logger().DebugContext(ctx, "deleted", "entity", o.name)
	return res, nil
}

// Aggregate passes pipeline through to the store. No entity mapping is
// applied; callers work in native document shape.
func (o *Ops) Aggregate(ctx context.Context, pipeline any, opts *options.AggregateOptions) ([]bson.M, error) {
	return o.coll.Aggregate(ctx, pipeline, opts)
}

// Count passes filter through to the store's count capability.
func (o *Ops) Count(ctx context.Context, filter bson.M, opts *options.CountOptions) (int64, error) {
	return o.coll.Count(ctx, filter, opts)
}

// Distinct passes through to the store's distinct capability.
func (o *Ops) Distinct(ctx context.Context, field string, filter bson.M, opts *options.DistinctOptions) ([]any, error) {
	return o.coll.Distinct(ctx, field, filter, opts)
}

// requireID checks that a record carries a non-empty string identifier.
func requireID(rec Record, name, op string) error {
	if id, ok := rec["id"].(string); !ok || id == "" {
		return fmt.Errorf("%s %s: %w", name, op, ErrMissingID)
	}
	return nil
}
