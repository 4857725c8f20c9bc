package core

import "fmt"

// Dialect identifies the SQL vendor a connection targets. It is a closed set
// so gateway adapters can dispatch by exhaustive switch instead of matching
// free-form strings.
type Dialect string

const (
	DialectPostgres Dialect = "postgresql"
	DialectMySQL    Dialect = "mysql"
	DialectMSSQL    Dialect = "mssql"
)

// ParseDialect validates a wire-format dialect string.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectPostgres, DialectMySQL, DialectMSSQL:
		return Dialect(s), nil
	}
	return "", fmt.Errorf("%w: unsupported dialect %q", ErrInvalidArgument, s)
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	case DialectMSSQL:
		return "sqlserver"
	}
	return ""
}

func (d Dialect) Valid() bool {
	_, err := ParseDialect(string(d))
	return err == nil
}
