package data

import (
	"database/sql"
	"testing"
	"time"

	"queryforge/internal/core"
)

// newTestDB opens a private in-memory store with the production schema.
// A single pooled connection keeps the in-memory database alive.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := runMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, id string) *core.User {
	t.Helper()
	u := &core.User{
		ID:              id,
		Email:           id + "@example.com",
		Name:            "Test User",
		Role:            core.RoleUser,
		ThemePreference: "system",
		CreatedAt:       time.Now().UTC(),
	}
	if err := NewUserRepo(db).Create(u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedConnection(t *testing.T, db *sql.DB, userID, name string, createdAt time.Time) *core.Connection {
	t.Helper()
	conn := &core.Connection{
		ID:        core.NewID("conn"),
		UserID:    userID,
		Name:      name,
		Dialect:   core.DialectPostgres,
		Host:      "db1",
		Port:      5432,
		Database:  "app",
		Username:  "a",
		SecretEnc: "enc",
		CreatedAt: createdAt,
	}
	if err := NewConnectionRepo(db).Create(conn); err != nil {
		t.Fatalf("seed connection %s: %v", name, err)
	}
	return conn
}
