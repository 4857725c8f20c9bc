package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"queryforge/internal/core"
	"queryforge/internal/data"
	"queryforge/internal/nl2sql"
)

type orchestratorFixture struct {
	orchestrator *QueryOrchestrator
	queries      *data.QueryRepo
	executor     *stubExecutor
	connID       string
}

func newOrchestratorFixture(t *testing.T, translator core.Translator, executor *stubExecutor) *orchestratorFixture {
	t.Helper()
	db := newStoreDB(t)
	createUser(t, db, "u1")
	crypto := newCrypto(t)

	connRepo := data.NewConnectionRepo(db)
	registry := NewConnectionRegistry(connRepo, crypto, executor, time.Second)
	conn, err := registry.Create("u1", specFixture("prod"))
	if err != nil {
		t.Fatalf("create connection: %v", err)
	}

	queryRepo := data.NewQueryRepo(db)
	return &orchestratorFixture{
		orchestrator: NewQueryOrchestrator(connRepo, queryRepo, crypto, translator, executor, time.Second, time.Second),
		queries:      queryRepo,
		executor:     executor,
		connID:       conn.ID,
	}
}

func TestSubmitSuccess(t *testing.T) {
	translator := &stubTranslator{sql: "SELECT count(*) FROM users WHERE created_at > now() - interval '7 days'"}
	executor := &stubExecutor{result: &core.ExecutionResult{
		Columns: []string{"count"}, Rows: []map[string]any{{"count": int64(17)}},
		RowCount: 1, ElapsedMs: 42,
	}}
	f := newOrchestratorFixture(t, translator, executor)

	q, result, err := f.orchestrator.Submit(context.Background(), "u1", f.connID, "how many users signed up last week")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if q.Status != core.StatusSuccess {
		t.Fatalf("Status = %q, want success", q.Status)
	}
	if q.RowsReturned != 1 || q.ResponseTimeMs != 42 {
		t.Fatalf("stats = (%d rows, %d ms), want (1, 42)", q.RowsReturned, q.ResponseTimeMs)
	}
	if q.GeneratedSQL == nil || *q.GeneratedSQL != translator.sql {
		t.Fatalf("GeneratedSQL = %v", q.GeneratedSQL)
	}
	if q.QueryType != "SELECT" {
		t.Fatalf("QueryType = %q, want SELECT", q.QueryType)
	}
	if q.ErrorMessage != nil {
		t.Fatalf("ErrorMessage = %q, want nil", *q.ErrorMessage)
	}
	if result == nil || result.RowCount != 1 {
		t.Fatalf("result = %+v, want row data", result)
	}

	// The executor received the decrypted secret and the generated SQL.
	if f.executor.got.Secret != "s" {
		t.Fatalf("executor secret = %q, want decrypted plaintext", f.executor.got.Secret)
	}
	if f.executor.gotSQL != translator.sql {
		t.Fatalf("executor sql = %q", f.executor.gotSQL)
	}

	// The terminal record is persisted and readable.
	persisted, err := f.orchestrator.Get("u1", q.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if persisted.Status != core.StatusSuccess {
		t.Fatalf("persisted status = %q", persisted.Status)
	}
}

func TestSubmitTranslationFailure(t *testing.T) {
	translator := &stubTranslator{err: &nl2sql.TranslationError{Reason: "ambiguous schema"}}
	f := newOrchestratorFixture(t, translator, &stubExecutor{})

	q, result, err := f.orchestrator.Submit(context.Background(), "u1", f.connID, "which things")
	if err != nil {
		t.Fatalf("Submit() must not fail on translation errors, got %v", err)
	}
	if q.Status != core.StatusFailed {
		t.Fatalf("Status = %q, want failed", q.Status)
	}
	if q.GeneratedSQL != nil {
		t.Fatalf("GeneratedSQL = %q, want nil after translation failure", *q.GeneratedSQL)
	}
	if q.ErrorMessage == nil || *q.ErrorMessage != "ambiguous schema" {
		t.Fatalf("ErrorMessage = %v, want %q", q.ErrorMessage, "ambiguous schema")
	}
	if result != nil {
		t.Fatal("no result data on failure")
	}
	// The executor was never reached.
	if f.executor.gotSQL != "" {
		t.Fatal("execution must be skipped when translation fails")
	}

	persisted, err := f.orchestrator.Get("u1", q.ID)
	if err != nil {
		t.Fatalf("failed query must still be persisted: %v", err)
	}
	if persisted.Status != core.StatusFailed {
		t.Fatalf("persisted status = %q", persisted.Status)
	}
}

func TestSubmitExecutionFailureKeepsSQL(t *testing.T) {
	translator := &stubTranslator{sql: "SELECT * FROM missing_table"}
	executor := &stubExecutor{err: &core.ExecutionError{Reason: `relation "missing_table" does not exist`, SQLState: "42P01"}}
	f := newOrchestratorFixture(t, translator, executor)

	q, _, err := f.orchestrator.Submit(context.Background(), "u1", f.connID, "list the missing things")
	if err != nil {
		t.Fatalf("Submit() must not fail on execution errors, got %v", err)
	}
	if q.Status != core.StatusFailed {
		t.Fatalf("Status = %q, want failed", q.Status)
	}
	if q.GeneratedSQL == nil || *q.GeneratedSQL != translator.sql {
		t.Fatal("generated SQL must be retained on execution failure")
	}
	if q.ErrorMessage == nil || *q.ErrorMessage == "" {
		t.Fatal("execution error must be captured")
	}
}

func TestSubmitExecutionTimeout(t *testing.T) {
	translator := &stubTranslator{sql: "SELECT pg_sleep(3600)"}
	executor := &stubExecutor{err: &core.ExecutionError{Reason: "context deadline exceeded", Timeout: true}}
	f := newOrchestratorFixture(t, translator, executor)

	q, _, err := f.orchestrator.Submit(context.Background(), "u1", f.connID, "sleep forever")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if q.Status != core.StatusFailed {
		t.Fatalf("Status = %q, want failed", q.Status)
	}
	if q.ErrorMessage == nil || *q.ErrorMessage != "execution timed out after 1s" {
		t.Fatalf("ErrorMessage = %v", q.ErrorMessage)
	}
}

func TestSubmitWarningOnTruncation(t *testing.T) {
	translator := &stubTranslator{sql: "SELECT * FROM big_table"}
	executor := &stubExecutor{result: &core.ExecutionResult{
		RowCount: 500, ElapsedMs: 10, Warning: "result truncated to 500 rows",
	}}
	f := newOrchestratorFixture(t, translator, executor)

	q, _, err := f.orchestrator.Submit(context.Background(), "u1", f.connID, "everything")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if q.Status != core.StatusWarning {
		t.Fatalf("Status = %q, want warning", q.Status)
	}
	if q.ErrorMessage != nil {
		t.Fatal("warning is not an error")
	}
}

func TestSubmitUnknownConnection(t *testing.T) {
	f := newOrchestratorFixture(t, &stubTranslator{sql: "SELECT 1"}, &stubExecutor{})

	if _, _, err := f.orchestrator.Submit(context.Background(), "u1", "conn_missing", "anything"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Submit(missing connection) error = %v, want ErrNotFound", err)
	}
	if _, _, err := f.orchestrator.Submit(context.Background(), "u2", f.connID, "anything"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Submit(other owner) error = %v, want ErrNotFound", err)
	}
}

func TestSubmitRejectsEmptyQuestion(t *testing.T) {
	f := newOrchestratorFixture(t, &stubTranslator{sql: "SELECT 1"}, &stubExecutor{})

	if _, _, err := f.orchestrator.Submit(context.Background(), "u1", f.connID, "   "); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("Submit(empty) error = %v, want ErrInvalidArgument", err)
	}
}

func TestSubmitCreatesFreshRecordPerCall(t *testing.T) {
	translator := &stubTranslator{sql: "SELECT 1"}
	executor := &stubExecutor{result: &core.ExecutionResult{RowCount: 1, ElapsedMs: 1}}
	f := newOrchestratorFixture(t, translator, executor)

	a, _, _ := f.orchestrator.Submit(context.Background(), "u1", f.connID, "same question")
	b, _, _ := f.orchestrator.Submit(context.Background(), "u1", f.connID, "same question")
	if a.ID == b.ID {
		t.Fatal("identical input must produce independent query records")
	}

	queries, err := f.orchestrator.List("u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("len = %d, want 2", len(queries))
	}
}

func TestSQLKeyword(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT 1", "SELECT"},
		{"select * from t", "SELECT"},
		{"  WITH cte AS (SELECT 1) SELECT * FROM cte", "WITH"},
		{"(SELECT 1)", "SELECT"},
		{"insert into t values (1)", "INSERT"},
		{"", ""},
		{"42", ""},
	}
	for _, tt := range tests {
		if got := sqlKeyword(tt.sql); got != tt.want {
			t.Fatalf("sqlKeyword(%q) = %q, want %q", tt.sql, got, tt.want)
		}
	}
}
