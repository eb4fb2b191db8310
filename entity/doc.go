// Package entity provides a thin mapping layer between schema-validated
// entity records and MongoDB documents.
//
// Strata sits between application code that works with portable records
// (string identifiers, plain nested values) and a document store that works
// with native documents (ObjectID primary keys under "_id"). It handles the
// identifier conversion at declared paths, CRUD and upsert orchestration, and
// recursive embedding of referenced entities. Query and update grammar is the
// store's own and passes through untouched; validation belongs to the entity
// type; consistency belongs to the store.
//
// # Key Features
//
//   - Path-based identifier conversion (hex string ↔ ObjectID), including
//     through nested sequences
//   - CRUD with full/partial validation and submitted-fields-only updates
//   - Create-or-update upsert dispatched by identifier presence
//   - Concurrent reference embedding under a reserved "_embedded" field
//   - Declarative reference registry for one-call embedding
//
// # Entity Types
//
// Every entity type implements [Type]:
//
//	type Type interface {
//	    Clean(props Record) Record
//	    AssertValid(props Record) error
//	    AssertValidPartial(props Record) error
//	}
//
// Types with a display name also implement [SingularNamer], and types whose
// records carry identifiers beyond the primary key implement [IDPather]:
//
//	type IDPather interface {
//	    IDPaths() []string
//	}
//
// # Usage
//
// Bind a collection and a type, then use the returned operations:
//
//	accounts := entity.New(entity.Wrap(db.Collection("accounts")), accountType, entity.DefaultConfig())
//
//	account, err := accounts.CreateOne(ctx, entity.Record{"name": "alpha"})
//	account, err = accounts.UpdateOne(ctx, entity.Record{"id": account["id"], "name": "beta"})
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrMissingID] - an operation requiring an identifier received none
//   - [ErrUnknownReference] - EmbedAll was asked for an unregistered reference
//   - [ValidationError] - cleaned input failed schema validation (pre-write)
//
// Store failures are propagated unmodified. A lookup that matches nothing is
// not an error: single-record lookups return nil.
package entity
