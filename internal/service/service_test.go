package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"queryforge/internal/core"
	"queryforge/internal/data"
)

// Shared fixtures for the service tests: a real metadata store on disk plus
// stub gateways, so registry/orchestrator behavior is exercised against the
// production repositories.

func newStoreDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := data.InitDB(filepath.Join(t.TempDir(), "queryforge_test.db"))
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newCrypto(t *testing.T) *EncryptionService {
	t.Helper()
	svc, err := NewEncryptionService(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("NewEncryptionService() error = %v", err)
	}
	return svc
}

func createUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	err := data.NewUserRepo(db).Create(&core.User{
		ID:              id,
		Email:           id + "@example.com",
		Role:            core.RoleUser,
		ThemePreference: "system",
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func specFixture(name string) ConnectionSpec {
	return ConnectionSpec{
		Name:     name,
		Dialect:  "postgresql",
		Host:     "db1",
		Port:     5432,
		Database: "app",
		Username: "a",
		Secret:   "s",
	}
}

// stubTranslator returns a fixed SQL string or error.
type stubTranslator struct {
	sql string
	err error
}

func (s *stubTranslator) Translate(_ context.Context, _ string, _ core.Dialect, _ string) (string, error) {
	return s.sql, s.err
}

// stubExecutor records the target it was handed and returns a fixed result.
type stubExecutor struct {
	result  *core.ExecutionResult
	err     error
	pingErr error
	gotSQL  string
	got     core.ConnectionTarget
}

func (s *stubExecutor) Execute(_ context.Context, target core.ConnectionTarget, sqlText string) (*core.ExecutionResult, error) {
	s.got = target
	s.gotSQL = sqlText
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubExecutor) Ping(_ context.Context, target core.ConnectionTarget) error {
	s.got = target
	return s.pingErr
}
