package data

import (
	"errors"
	"testing"
	"time"

	"queryforge/internal/core"
)

func TestFeedbackSingletonPerQuery(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1")
	queryRepo := NewQueryRepo(db)
	repo := NewFeedbackRepo(db)

	q := seedQuery(t, queryRepo, "u1", nil, core.StatusSuccess, time.Now().UTC())

	first := &core.Feedback{
		ID: core.NewID("fb"), QueryID: q.ID, UserID: "u1",
		Rating: 1, Comment: "great", CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &core.Feedback{
		ID: core.NewID("fb"), QueryID: q.ID, UserID: "u1",
		Rating: -1, CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(second); !errors.Is(err, core.ErrAlreadyExists) {
		t.Fatalf("second Create() error = %v, want ErrAlreadyExists", err)
	}

	// First feedback is unchanged.
	got, err := repo.GetByQueryID(q.ID)
	if err != nil {
		t.Fatalf("GetByQueryID() error = %v", err)
	}
	if got.ID != first.ID || got.Rating != 1 || got.Comment != "great" {
		t.Fatalf("surviving feedback = %+v, want the first one", got)
	}
}

func TestFeedbackGetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewFeedbackRepo(db)

	if _, err := repo.GetByQueryID("qry_missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("GetByQueryID(missing) error = %v, want ErrNotFound", err)
	}
}
