package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"strreg/internal/analyzer"
)

// Service implements the registry operations on top of a Store.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a registry service over store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create analyzes value and stores it. A case-insensitively equal value that
// is already stored yields CONFLICT.
func (s *Service) Create(ctx context.Context, value string) (*Record, error) {
	rec := &Record{
		Value:      value,
		Properties: analyzer.Analyze(value, s.now()),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create string: %w", err)
	}

	s.logger.Debug("String created",
		"id", rec.ID,
		"length", rec.Properties.Length,
		"sha256", rec.Properties.SHA256Hash,
	)
	return rec, nil
}

// Get returns the record whose value matches case-insensitively.
func (s *Service) Get(ctx context.Context, value string) (*Record, error) {
	rec, err := s.store.Find(ctx, analyzer.Fold(value))
	if err != nil {
		return nil, fmt.Errorf("get string: %w", err)
	}
	return rec, nil
}

// List returns the records matching q.Filter, ordered by q.Sort.
func (s *Service) List(ctx context.Context, q Query) ([]*Record, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list strings: %w", err)
	}

	out := make([]*Record, 0, len(all))
	for _, rec := range all {
		if q.Filter.Matches(rec) {
			out = append(out, rec)
		}
	}
	q.Sort.Apply(out)
	return out, nil
}

// Delete removes the record whose value matches case-insensitively.
func (s *Service) Delete(ctx context.Context, value string) error {
	if err := s.store.Delete(ctx, analyzer.Fold(value)); err != nil {
		return fmt.Errorf("delete string: %w", err)
	}
	s.logger.Debug("String deleted", "length", len(value))
	return nil
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
