package data

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens the SQLite metadata store and runs migrations.
// Foreign keys must be on: deleting a connection nulls the connection
// reference on its queries instead of deleting them.
func InitDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		theme_preference TEXT NOT NULL DEFAULT 'system',
		created_at DATETIME NOT NULL,
		updated_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS connections (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		dialect TEXT NOT NULL,
		host TEXT NOT NULL,
		port INTEGER NOT NULL,
		database_name TEXT NOT NULL,
		username TEXT NOT NULL,
		secret_enc TEXT NOT NULL,
		is_primary INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME,
		UNIQUE (user_id, name)
	);

	CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		connection_id TEXT REFERENCES connections(id) ON DELETE SET NULL,
		natural_language TEXT NOT NULL,
		generated_sql TEXT,
		query_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error_message TEXT,
		response_time INTEGER NOT NULL DEFAULT 0,
		rows_returned INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		query_id TEXT NOT NULL UNIQUE REFERENCES queries(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rating INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_connections_user ON connections(user_id);
	CREATE INDEX IF NOT EXISTS idx_queries_user ON queries(user_id);
	`
	_, err := db.Exec(schema)
	return err
}
