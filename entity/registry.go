package entity

import (
	"context"
	"fmt"
)

// Reference declares a foreign-key reference from records of one entity type
// to another entity type, for embedding via EmbedAll.
type Reference struct {
	// Name is the embed name (e.g., "owner").
	Name string

	// Path locates the reference within the source record (e.g., "ownerId").
	Path string

	// ObjectPath optionally locates the records holding the reference inside
	// the embed target (empty for top-level records).
	ObjectPath string

	// Target is the operation set bound to the referenced entity type.
	Target *Ops
}

// Registry holds the declared references for an entity type.
type Registry struct {
	refs   []Reference
	byName map[string]Reference
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Reference),
	}
}

// Register adds a reference to the registry. This should be called once per
// reference during setup.
func (r *Registry) Register(ref Reference) {
	r.refs = append(r.refs, ref)
	r.byName[ref.Name] = ref
}

// Lookup returns the reference registered under name.
func (r *Registry) Lookup(name string) (Reference, bool) {
	ref, ok := r.byName[name]
	return ref, ok
}

// All returns every registered reference.
func (r *Registry) All() []Reference {
	return r.refs
}

// EmbedAll resolves the named registered references on target, in order.
// With no names, every registered reference is resolved. A name without a
// registration fails with ErrUnknownReference.
func (o *Ops) EmbedAll(ctx context.Context, target any, names ...string) (any, error) {
	if o.registry == nil {
		if len(names) == 0 {
			return target, nil
		}
		return nil, fmt.Errorf("%q: %w", names[0], ErrUnknownReference)
	}

	refs := o.registry.All()
	if len(names) > 0 {
		refs = make([]Reference, 0, len(names))
		for _, name := range names {
			ref, ok := o.registry.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%q: %w", name, ErrUnknownReference)
			}
			refs = append(refs, ref)
		}
	}

	var err error
	for _, ref := range refs {
		target, err = ref.Target.EmbedAsReference(ctx, target, ref.Path, ref.Name, ref.ObjectPath)
		if err != nil {
			return nil, err
		}
	}
	return target, nil
}
