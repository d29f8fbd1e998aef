package activity

import "context"

// HistoryReader abstracts repository reads for the service.
type HistoryReader interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]Record, error)
}

// Service exposes the personal activity history.
type Service struct {
	repo HistoryReader
}

// NewService builds a Service using the provided repository.
func NewService(repo HistoryReader) *Service {
	return &Service{repo: repo}
}

// History returns the most recent entries of userID, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Record, error) {
	return s.repo.ListForUser(ctx, userID, DefaultHistoryLimit)
}
