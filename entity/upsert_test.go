package entity_test

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jacentio/strata/entity"
)

// --- UpsertOne Tests ---

func TestUpsertOne_NoIDInserts(t *testing.T) {
	fake := newFake()
	ops := newAccountOps(fake)

	created, err := ops.UpsertOne(context.Background(),
		entity.Record{},
		entity.Record{},
		entity.Record{"name": "alpha"},
	)
	if err != nil {
		t.Fatalf("UpsertOne returned error: %v", err)
	}

	if created["name"] != "alpha" {
		t.Errorf("expected insert with insert-only props, got %v", created)
	}
	if id, _ := created["id"].(string); !hexID.MatchString(id) {
		t.Errorf("expected assigned id, got %v", created["id"])
	}
}

func TestUpsertOne_NilExistingInserts(t *testing.T) {
	fake := newFake()
	ops := newAccountOps(fake)

	created, err := ops.UpsertOne(context.Background(),
		nil,
		entity.Record{"plan": "pro"},
		entity.Record{"name": "alpha"},
	)
	if err != nil {
		t.Fatalf("UpsertOne returned error: %v", err)
	}
	if created["name"] != "alpha" || created["plan"] != "pro" {
		t.Errorf("expected merged insert, got %v", created)
	}
}

func TestUpsertOne_UpdatePropsWinOnCollision(t *testing.T) {
	fake := newFake()
	ops := newAccountOps(fake)

	created, err := ops.UpsertOne(context.Background(),
		entity.Record{},
		entity.Record{"name": "from-update"},
		entity.Record{"name": "from-insert"},
	)
	if err != nil {
		t.Fatalf("UpsertOne returned error: %v", err)
	}
	if created["name"] != "from-update" {
		t.Errorf("expected update props to win, got %v", created["name"])
	}
}

func TestUpsertOne_EmptyUpdateShortCircuits(t *testing.T) {
	fake := newFake()
	ops := newAccountOps(fake)
	existing := entity.Record{"id": "5ca4bbc7a2dd94ee5816238c"}

	result, err := ops.UpsertOne(context.Background(),
		existing,
		entity.Record{},
		entity.Record{"name": "alpha"},
	)
	if err != nil {
		t.Fatalf("UpsertOne returned error: %v", err)
	}

	if result["id"] != "5ca4bbc7a2dd94ee5816238c" {
		t.Errorf("expected existing returned unchanged, got %v", result)
	}
	if len(fake.calls) != 0 {
		t.Errorf("expected zero store calls, got %v", fake.calls)
	}
}

func TestUpsertOne_WithIDUpdates(t *testing.T) {
	fake := newFake()
	ops := newAccountOps(fake)
	oid := fake.seed(bson.M{"name": "alpha", "plan": "free"})

	updated, err := ops.UpsertOne(context.Background(),
		entity.Record{"id": oid.Hex(), "name": "alpha"},
		entity.Record{"plan": "pro"},
		entity.Record{"name": "ignored on update"},
	)
	if err != nil {
		t.Fatalf("UpsertOne returned error: %v", err)
	}

	if updated["plan"] != "pro" {
		t.Errorf("expected plan updated, got %v", updated["plan"])
	}
	if updated["name"] != "alpha" {
		t.Errorf("expected name untouched, got %v", updated["name"])
	}
}

// --- Upserter Tests ---

func TestUpserter_BindsStaticProps(t *testing.T) {
	fake := newFake()
	ops := newAccountOps(fake)

	upsert := ops.Upserter(entity.Record{"plan": "pro"}, entity.Record{"name": "alpha"})

	// Lookup missed: insert branch.
	created, err := upsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}
	if created["name"] != "alpha" || created["plan"] != "pro" {
		t.Errorf("expected merged insert, got %v", created)
	}

	// Lookup hit: update branch with the same bound props.
	updated, err := upsert(context.Background(), created)
	if err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}
	if updated["id"] != created["id"] {
		t.Errorf("expected same record updated, got %v", updated["id"])
	}
}
