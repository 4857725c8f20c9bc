package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"queryforge/internal/core"
	"queryforge/internal/logger"
)

// QueryOrchestrator drives a natural-language question through translation
// and execution and persists exactly one terminal Query record per attempt.
// Translation and execution failures are expected domain outcomes: Submit
// captures them into the record and returns it without error. Only repository
// and ownership failures are returned as errors.
type QueryOrchestrator struct {
	connRepo         core.ConnectionRepository
	queryRepo        core.QueryRepository
	cryptoSvc        *EncryptionService
	translator       core.Translator
	executor         core.Executor
	translateTimeout time.Duration
	executeTimeout   time.Duration
}

func NewQueryOrchestrator(connRepo core.ConnectionRepository, queryRepo core.QueryRepository, cryptoSvc *EncryptionService, translator core.Translator, executor core.Executor, translateTimeout, executeTimeout time.Duration) *QueryOrchestrator {
	return &QueryOrchestrator{
		connRepo:         connRepo,
		queryRepo:        queryRepo,
		cryptoSvc:        cryptoSvc,
		translator:       translator,
		executor:         executor,
		translateTimeout: translateTimeout,
		executeTimeout:   executeTimeout,
	}
}

// Submit answers one question against one connection. Every call creates a
// fresh Query record; identical input is not deduplicated.
//
// The returned ExecutionResult carries the row data for the caller and is
// non-nil only when the query succeeded (status success or warning).
func (o *QueryOrchestrator) Submit(ctx context.Context, userID, connectionID, question string) (*core.Query, *core.ExecutionResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, nil, fmt.Errorf("%w: question is required", core.ErrInvalidArgument)
	}

	conn, err := o.connRepo.GetByID(userID, connectionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: connection %s", core.ErrNotFound, connectionID)
		}
		return nil, nil, err
	}

	q := &core.Query{
		ID:              core.NewID("qry"),
		UserID:          userID,
		ConnectionID:    &conn.ID,
		NaturalLanguage: question,
		CreatedAt:       time.Now().UTC(),
	}

	translateCtx, cancelTranslate := context.WithTimeout(ctx, o.translateTimeout)
	sqlText, err := o.translator.Translate(translateCtx, question, conn.Dialect, "")
	cancelTranslate()
	if err != nil {
		return o.recordFailure(q, translationMessage(err))
	}
	sqlText = strings.TrimSpace(sqlText)
	q.GeneratedSQL = &sqlText
	q.QueryType = sqlKeyword(sqlText)

	secret, err := o.cryptoSvc.Decrypt(conn.SecretEnc)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypt connection secret: %w", err)
	}
	target := core.ConnectionTarget{
		Dialect:  conn.Dialect,
		Host:     conn.Host,
		Port:     conn.Port,
		Database: conn.Database,
		Username: conn.Username,
		Secret:   secret,
	}

	executeCtx, cancelExecute := context.WithTimeout(ctx, o.executeTimeout)
	result, err := o.executor.Execute(executeCtx, target, sqlText)
	cancelExecute()
	if err != nil {
		return o.recordFailure(q, executionMessage(err, o.executeTimeout))
	}

	q.Status = core.StatusSuccess
	if result.Warning != "" {
		q.Status = core.StatusWarning
	}
	q.RowsReturned = result.RowCount
	q.ResponseTimeMs = result.ElapsedMs
	if err := o.queryRepo.Create(q); err != nil {
		return nil, nil, err
	}
	return q, result, nil
}

func (o *QueryOrchestrator) Get(userID, id string) (*core.Query, error) {
	return o.queryRepo.GetByID(userID, id)
}

func (o *QueryOrchestrator) List(userID string) ([]core.Query, error) {
	return o.queryRepo.ListByUser(userID)
}

func (o *QueryOrchestrator) recordFailure(q *core.Query, message string) (*core.Query, *core.ExecutionResult, error) {
	q.Status = core.StatusFailed
	q.ErrorMessage = &message
	logger.Error.Printf("query %s failed: %s", q.ID, message)
	if err := o.queryRepo.Create(q); err != nil {
		return nil, nil, err
	}
	return q, nil, nil
}

func translationMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "translation timed out"
	}
	return err.Error()
}

func executionMessage(err error, timeout time.Duration) string {
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) && execErr.Timeout {
		return fmt.Sprintf("execution timed out after %s", timeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("execution timed out after %s", timeout)
	}
	return err.Error()
}

// sqlKeyword classifies generated SQL by its leading keyword (SELECT,
// INSERT, ...). Unknown shapes yield an empty classification.
func sqlKeyword(sqlText string) string {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return ""
	}
	word := strings.ToUpper(strings.Trim(fields[0], "(;"))
	for _, r := range word {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return word
}
