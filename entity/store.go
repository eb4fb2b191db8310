package entity

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the document-store surface this layer consumes. Filters,
// update specifications, and pipelines use the store's native grammar and are
// passed through untouched. All consistency guarantees are the store's; the
// handle must be safe for concurrent use.
type Collection interface {
	// Find returns every document matching filter.
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]bson.M, error)

	// FindOne returns the first document matching filter, or (nil, nil) when
	// none matches.
	FindOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (bson.M, error)

	// Insert stores doc and returns it with the assigned primary key.
	Insert(ctx context.Context, doc bson.M) (bson.M, error)

	// Update applies update to the single document matching filter. An update
	// containing operator keys ("$set", ...) merges fields; one without
	// replaces the whole document, preserving the primary key.
	Update(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error)

	// Remove deletes the single document matching filter.
	Remove(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error)

	// Aggregate runs pipeline and returns the resulting documents.
	Aggregate(ctx context.Context, pipeline any, opts *options.AggregateOptions) ([]bson.M, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, filter bson.M, opts *options.CountOptions) (int64, error)

	// Distinct returns the distinct values of field across documents matching
	// filter.
	Distinct(ctx context.Context, field string, filter bson.M, opts *options.DistinctOptions) ([]any, error)
}

// Wrap adapts a MongoDB collection to the Collection interface.
func Wrap(coll *mongo.Collection) Collection {
	return &mongoCollection{coll: coll}
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]bson.M, error) {
	cur, err := c.coll.Find(ctx, filter, findOpts(opts)...)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (bson.M, error) {
	var o []*options.FindOneOptions
	if opts != nil {
		o = append(o, opts)
	}
	var doc bson.M
	err := c.coll.FindOne(ctx, filter, o...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *mongoCollection) Insert(ctx context.Context, doc bson.M) (bson.M, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	out := copyMap(doc)
	out["_id"] = res.InsertedID
	return out, nil
}

func (c *mongoCollection) Update(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error) {
	if hasOperator(update) {
		return c.coll.UpdateOne(ctx, filter, update)
	}
	return c.coll.ReplaceOne(ctx, filter, update)
}

func (c *mongoCollection) Remove(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error) {
	return c.coll.DeleteOne(ctx, filter)
}

func (c *mongoCollection) Aggregate(ctx context.Context, pipeline any, opts *options.AggregateOptions) ([]bson.M, error) {
	var o []*options.AggregateOptions
	if opts != nil {
		o = append(o, opts)
	}
	cur, err := c.coll.Aggregate(ctx, pipeline, o...)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *mongoCollection) Count(ctx context.Context, filter bson.M, opts *options.CountOptions) (int64, error) {
	var o []*options.CountOptions
	if opts != nil {
		o = append(o, opts)
	}
	if filter == nil {
		filter = bson.M{}
	}
	return c.coll.CountDocuments(ctx, filter, o...)
}

func (c *mongoCollection) Distinct(ctx context.Context, field string, filter bson.M, opts *options.DistinctOptions) ([]any, error) {
	var o []*options.DistinctOptions
	if opts != nil {
		o = append(o, opts)
	}
	if filter == nil {
		filter = bson.M{}
	}
	return c.coll.Distinct(ctx, field, filter, o...)
}

func findOpts(opts *options.FindOptions) []*options.FindOptions {
	if opts == nil {
		return nil
	}
	return []*options.FindOptions{opts}
}

// hasOperator reports whether an update specification uses operator keys,
// which selects merge semantics over full-document replacement.
func hasOperator(update bson.M) bool {
	for k := range update {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}
