// Package execute is the per-dialect execution gateway. It delegates
// generated SQL strings to the registered database/sql driver for the
// connection's dialect and normalizes rows, timing and errors.
package execute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"queryforge/internal/core"
)

// QueryExecutor opens a short-lived connection per call. Target databases
// are external and ad-hoc; pooling them per user would hold credentials and
// sockets far longer than a single request needs.
type QueryExecutor struct {
	maxRows int
}

func NewQueryExecutor(maxRows int) *QueryExecutor {
	if maxRows <= 0 {
		maxRows = 500
	}
	return &QueryExecutor{maxRows: maxRows}
}

var _ core.Executor = (*QueryExecutor)(nil)

// Execute runs sqlText against the target database. The wait is bounded by
// ctx; an expired deadline comes back as a timeout ExecutionError and the
// attempt is abandoned, not retried.
func (e *QueryExecutor) Execute(ctx context.Context, target core.ConnectionTarget, sqlText string) (*core.ExecutionResult, error) {
	start := time.Now()

	dsn, err := DSN(target)
	if err != nil {
		return nil, wrapExecError(err)
	}

	db, err := sql.Open(target.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, wrapExecError(fmt.Errorf("open database connection (%s): %w", target.Dialect, err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, wrapExecError(fmt.Errorf("reach database: %w", err))
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrapExecError(err)
	}

	resultRows := []map[string]any{}
	truncated := false
	for rows.Next() {
		if len(resultRows) >= e.maxRows {
			truncated = true
			break
		}

		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, wrapExecError(err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				rowMap[col] = string(b)
			} else {
				rowMap[col] = val
			}
		}
		resultRows = append(resultRows, rowMap)
	}
	if !truncated {
		if err := rows.Err(); err != nil {
			return nil, wrapExecError(err)
		}
	}

	result := &core.ExecutionResult{
		Columns:   columns,
		Rows:      resultRows,
		RowCount:  len(resultRows),
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if truncated {
		result.Warning = fmt.Sprintf("result truncated to %d rows", e.maxRows)
	}
	return result, nil
}

// Ping checks reachability of the target without running any SQL.
func (e *QueryExecutor) Ping(ctx context.Context, target core.ConnectionTarget) error {
	dsn, err := DSN(target)
	if err != nil {
		return wrapExecError(err)
	}

	db, err := sql.Open(target.Dialect.DriverName(), dsn)
	if err != nil {
		return wrapExecError(fmt.Errorf("open database connection (%s): %w", target.Dialect, err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return wrapExecError(err)
	}
	return nil
}

// DSN builds the driver-specific connection string for a target. Dispatch is
// exhaustive over the closed dialect set.
func DSN(target core.ConnectionTarget) (string, error) {
	addr := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	switch target.Dialect {
	case core.DialectPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(target.Username, target.Secret),
			Host:     addr,
			Path:     "/" + target.Database,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	case core.DialectMySQL:
		cfg := mysql.NewConfig()
		cfg.User = target.Username
		cfg.Passwd = target.Secret
		cfg.Net = "tcp"
		cfg.Addr = addr
		cfg.DBName = target.Database
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case core.DialectMSSQL:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(target.Username, target.Secret),
			Host:     addr,
			RawQuery: url.Values{"database": []string{target.Database}}.Encode(),
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("unsupported dialect %q", target.Dialect)
}

func wrapExecError(err error) *core.ExecutionError {
	return &core.ExecutionError{
		Reason:   err.Error(),
		SQLState: sqlState(err),
		Timeout:  errors.Is(err, context.DeadlineExceeded),
	}
}

// sqlState pulls the vendor error code out of driver errors where one exists.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.SQLState != [5]byte{} {
			return string(myErr.SQLState[:])
		}
		return strconv.Itoa(int(myErr.Number))
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return strconv.Itoa(int(msErr.Number))
	}
	return ""
}
