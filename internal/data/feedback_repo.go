package data

import (
	"database/sql"
	"errors"

	"queryforge/internal/core"
)

type FeedbackRepo struct {
	db *sql.DB
}

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// Create inserts feedback for a query. The existence check and the insert
// share a transaction so two concurrent attaches on the same query cannot
// both succeed; the UNIQUE constraint on query_id backs this up.
func (r *FeedbackRepo) Create(f *core.Feedback) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM feedback WHERE query_id = ?`, f.QueryID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return core.ErrAlreadyExists
	}

	_, err = tx.Exec(`INSERT INTO feedback (id, query_id, user_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.QueryID, f.UserID, f.Rating, f.Comment, f.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *FeedbackRepo) GetByQueryID(queryID string) (*core.Feedback, error) {
	var f core.Feedback
	err := r.db.QueryRow(`SELECT id, query_id, user_id, rating, comment, created_at FROM feedback WHERE query_id = ?`, queryID).
		Scan(&f.ID, &f.QueryID, &f.UserID, &f.Rating, &f.Comment, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
