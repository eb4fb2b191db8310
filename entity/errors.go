package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingID is returned when an operation requiring an identifier
	// receives a record without one (or with an empty one).
	ErrMissingID = errors.New("strata: record has no identifier")

	// ErrUnknownReference is returned by EmbedAll when a named reference is
	// not registered.
	ErrUnknownReference = errors.New("strata: reference not registered")
)

// ValidationError reports that an operation's cleaned input failed schema
// validation. It is raised before any store interaction.
type ValidationError struct {
	// Entity is the display name of the entity type (e.g., "account").
	Entity string

	// Op is the operation whose input was rejected (e.g., "create").
	Op string

	// Err is the underlying error from the entity type's validator.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("strata: invalid %s input to %s: %v", e.Entity, e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
