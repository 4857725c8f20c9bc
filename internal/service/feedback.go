package service

import (
	"fmt"
	"time"

	"queryforge/internal/core"
)

// FeedbackBinder attaches at most one rating to a completed query, scoped to
// the query's owner. Feedback is immutable once created.
type FeedbackBinder struct {
	queryRepo    core.QueryRepository
	feedbackRepo core.FeedbackRepository
}

func NewFeedbackBinder(queryRepo core.QueryRepository, feedbackRepo core.FeedbackRepository) *FeedbackBinder {
	return &FeedbackBinder{queryRepo: queryRepo, feedbackRepo: feedbackRepo}
}

func (b *FeedbackBinder) Attach(userID, queryID string, rating int, comment string) (*core.Feedback, error) {
	if rating != 1 && rating != -1 {
		return nil, fmt.Errorf("%w: rating must be 1 or -1", core.ErrInvalidArgument)
	}

	// Ownership check doubles as the existence check.
	if _, err := b.queryRepo.GetByID(userID, queryID); err != nil {
		return nil, err
	}

	f := &core.Feedback{
		ID:        core.NewID("fb"),
		QueryID:   queryID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.feedbackRepo.Create(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (b *FeedbackBinder) GetForQuery(userID, queryID string) (*core.Feedback, error) {
	if _, err := b.queryRepo.GetByID(userID, queryID); err != nil {
		return nil, err
	}
	return b.feedbackRepo.GetByQueryID(queryID)
}
