package core

import (
	"context"
)

// UserRepository defines storage operations for users
type UserRepository interface {
	Create(u *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(u *User) error
}

// ConnectionRepository defines storage operations for database connections.
// All reads are scoped by the owning user. Create and SetPrimary are
// transactional read-modify-write units: Create decides first-connection-is-
// primary inside its transaction, SetPrimary demotes and promotes in one
// commit, so two concurrent calls for the same user cannot leave zero or two
// primaries.
type ConnectionRepository interface {
	Create(conn *Connection) error
	ListByUser(userID string) ([]Connection, error)
	GetByID(userID, id string) (*Connection, error)
	Update(conn *Connection) error
	Delete(userID, id string) error
	SetPrimary(userID, id string) error
	NameInUse(userID, name, excludeID string) (bool, error)
}

// QueryRepository defines storage operations for query records. Records are
// insert-only: a Query is persisted once with its terminal status.
type QueryRepository interface {
	Create(q *Query) error
	GetByID(userID, id string) (*Query, error)
	ListByUser(userID string) ([]Query, error)
}

// FeedbackRepository defines storage operations for feedback
type FeedbackRepository interface {
	Create(f *Feedback) error
	GetByQueryID(queryID string) (*Feedback, error)
}

// Translator converts a natural-language question into a single SQL
// statement for the given dialect. Failures carry a human-readable reason.
type Translator interface {
	Translate(ctx context.Context, question string, dialect Dialect, schemaHints string) (string, error)
}

// Executor runs generated SQL against an external database. Errors are
// *ExecutionError values; the caller bounds the wait via ctx.
type Executor interface {
	Execute(ctx context.Context, target ConnectionTarget, sqlText string) (*ExecutionResult, error)
	Ping(ctx context.Context, target ConnectionTarget) error
}
