package service

import (
	"context"

	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"github.com/trian/landing/backend/wishes-service/internal/wish/repository"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
	"github.com/trian/landing/backend/wishes-service/pkg/metrics"
)

// Store applies the degradation policy on top of a repository: failed reads
// look like an empty collection and failed writes become a false return.
// Both are logged and counted, never returned as errors.
type Store struct {
	repo repository.Repository
}

func NewStore(repo repository.Repository) *Store {
	return &Store{repo: repo}
}

// Backend names the repository in use.
func (s *Store) Backend() string { return s.repo.Name() }

// LoadAll returns every wish in stored order (newest first), or an empty
// slice when the document cannot be read or parsed.
func (s *Store) LoadAll(ctx context.Context) []wish.Wish {
	wishes, err := s.repo.Load(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("load").Inc()
		logger.Errorf("failed to read wishes (%s backend): %v", s.repo.Name(), err)
		return []wish.Wish{}
	}
	return wishes
}

// SaveAll replaces the stored document and reports whether it succeeded.
func (s *Store) SaveAll(ctx context.Context, wishes []wish.Wish) bool {
	if err := s.repo.Save(ctx, wishes); err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		logger.Errorf("failed to write wishes (%s backend): %v", s.repo.Name(), err)
		return false
	}
	return true
}

// Check reads the document without masking errors; used for readiness and backups.
func (s *Store) Check(ctx context.Context) ([]wish.Wish, error) {
	return s.repo.Load(ctx)
}
