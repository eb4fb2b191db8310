package entity

import "context"

// UpsertOne creates or updates depending on whether existing carries an
// identifier. With an identifier and no update props it short-circuits and
// returns existing unchanged, without touching the store. With an identifier
// and update props it updates the submitted fields. Without an identifier it
// creates a record from insertProps merged with updateProps, update props
// winning on key collision.
func (o *Ops) UpsertOne(ctx context.Context, existing, updateProps, insertProps Record) (Record, error) {
	if id, ok := existing["id"].(string); ok && id != "" {
		if len(updateProps) == 0 {
			return existing, nil
		}
		merged := Record(copyMap(updateProps))
		merged["id"] = id
		return o.UpdateOne(ctx, merged)
	}

	merged := Record(copyMap(insertProps))
	for k, v := range updateProps {
		merged[k] = copyValue(v)
	}
	return o.CreateOne(ctx, merged)
}

// Upserter returns UpsertOne with the static props bound, leaving a
// single-argument function of the existing record. Intended for chaining
// after a prior lookup:
//
//	existing, err := accounts.FindOne(ctx, bson.M{"email": email}, nil)
//	if err != nil {
//		return err
//	}
//	account, err := accounts.Upserter(update, defaults)(ctx, existing)
func (o *Ops) Upserter(updateProps, insertProps Record) func(context.Context, Record) (Record, error) {
	return func(ctx context.Context, existing Record) (Record, error) {
		return o.UpsertOne(ctx, existing, updateProps, insertProps)
	}
}
