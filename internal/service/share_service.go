package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/repository"
)

// shareService is the concrete implementation of ShareService
type shareService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newShareService creates a new ShareService
func newShareService(repos *repository.Repositories, log zerolog.Logger) *shareService {
	return &shareService{
		repos: repos,
		log:   log.With().Str("service", "share").Logger(),
	}
}

// Record appends a share event. The platform enum is validated at the
// handler boundary; this layer only checks the article exists so a
// bogus article_id yields a 404 rather than a raw FK violation.
func (s *shareService) Record(ctx context.Context, share *models.Share) (*models.Share, error) {
	exists, err := s.repos.Article.Exists(ctx, share.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check article: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	share.ID = uuid.NewString()
	share.SharedAt = time.Now().UTC()

	if err := s.repos.Share.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to record share: %w", err)
	}

	s.log.Info().
		Str("article_id", share.ArticleID).
		Str("platform", share.Platform).
		Msg("Share recorded")

	return share, nil
}

// Stats returns the per-article share breakdown
func (s *shareService) Stats(ctx context.Context, articleID string) (*models.ShareStats, error) {
	exists, err := s.repos.Article.Exists(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check article: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	stats, err := s.repos.Share.StatsByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get share stats: %w", err)
	}
	return stats, nil
}

// TopShared returns the most-shared articles for the admin report
func (s *shareService) TopShared(ctx context.Context, limit int) ([]*models.TopSharedArticle, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	top, err := s.repos.Share.TopShared(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top shared articles: %w", err)
	}
	return top, nil
}
