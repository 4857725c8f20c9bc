package core

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Role            UserRole   `json:"role"`
	ThemePreference string     `json:"theme_preference"` // light, dark, system
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type Connection struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"` // unique per owner
	Dialect   Dialect    `json:"dialect"`
	Host      string     `json:"host"`
	Port      int        `json:"port"`
	Database  string     `json:"database"`
	Username  string     `json:"username"`
	SecretEnc string     `json:"-"` // AES-GCM encrypted, never serialized
	IsPrimary bool       `json:"is_primary"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type QueryStatus string

const (
	StatusSuccess QueryStatus = "success"
	StatusFailed  QueryStatus = "failed"
	StatusWarning QueryStatus = "warning"
)

// Query is one recorded attempt to answer a natural-language question.
// Records are written once with their terminal status; a retried question
// creates a new Query.
type Query struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	ConnectionID    *string     `json:"connection_id"` // nulled when the connection is deleted
	NaturalLanguage string      `json:"natural_language"`
	GeneratedSQL    *string     `json:"generated_sql"` // null until translation succeeded
	QueryType       string      `json:"query_type,omitempty"`
	Status          QueryStatus `json:"status"`
	ErrorMessage    *string     `json:"error_message"`
	ResponseTimeMs  int64       `json:"response_time"`
	RowsReturned    int         `json:"rows_returned"`
	CreatedAt       time.Time   `json:"created_at"`
}

type Feedback struct {
	ID        string    `json:"id"`
	QueryID   string    `json:"query_id"` // at most one feedback per query
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"` // 1 helpful, -1 not helpful
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectionTarget is the decrypted descriptor handed to an execution driver.
// It only lives in memory for the duration of a gateway call.
type ConnectionTarget struct {
	Dialect  Dialect
	Host     string
	Port     int
	Database string
	Username string
	Secret   string
}

type ExecutionResult struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	ElapsedMs int64            `json:"elapsed_ms"`
	Warning   string           `json:"warning,omitempty"` // non-fatal, e.g. truncated result set
}
