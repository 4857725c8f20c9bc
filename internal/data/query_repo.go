package data

import (
	"database/sql"
	"errors"

	"queryforge/internal/core"
)

type QueryRepo struct {
	db *sql.DB
}

func NewQueryRepo(db *sql.DB) *QueryRepo {
	return &QueryRepo{db: db}
}

const queryColumns = `id, user_id, connection_id, natural_language, generated_sql, query_type, status, error_message, response_time, rows_returned, created_at`

// Create persists a terminal query record. There is no update path: the
// record is written once, at the end of an orchestration cycle.
func (r *QueryRepo) Create(q *core.Query) error {
	_, err := r.db.Exec(`INSERT INTO queries (`+queryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.ConnectionID, q.NaturalLanguage, q.GeneratedSQL, q.QueryType,
		string(q.Status), q.ErrorMessage, q.ResponseTimeMs, q.RowsReturned, q.CreatedAt)
	return err
}

func (r *QueryRepo) GetByID(userID, id string) (*core.Query, error) {
	row := r.db.QueryRow(`SELECT `+queryColumns+` FROM queries WHERE id = ? AND user_id = ?`, id, userID)
	q, err := scanQuery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QueryRepo) ListByUser(userID string) ([]core.Query, error) {
	rows, err := r.db.Query(`SELECT `+queryColumns+` FROM queries WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []core.Query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, *q)
	}
	return queries, rows.Err()
}

func scanQuery(row rowScanner) (*core.Query, error) {
	var q core.Query
	var connectionID, generatedSQL, errorMessage sql.NullString
	var status string
	err := row.Scan(&q.ID, &q.UserID, &connectionID, &q.NaturalLanguage, &generatedSQL,
		&q.QueryType, &status, &errorMessage, &q.ResponseTimeMs, &q.RowsReturned, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	q.Status = core.QueryStatus(status)
	if connectionID.Valid {
		s := connectionID.String
		q.ConnectionID = &s
	}
	if generatedSQL.Valid {
		s := generatedSQL.String
		q.GeneratedSQL = &s
	}
	if errorMessage.Valid {
		s := errorMessage.String
		q.ErrorMessage = &s
	}
	return &q, nil
}
