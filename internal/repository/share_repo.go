package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/seoulscene/magazine-api/internal/database"
	"github.com/seoulscene/magazine-api/internal/models"
)

// shareRepo is the concrete implementation of ShareRepository
type shareRepo struct {
	db *database.DB
}

// NewShareRepo creates a new share repository
func NewShareRepo(db *database.DB) ShareRepository {
	return &shareRepo{db: db}
}

// Create appends a share event. Rows are write-once, there is no
// update or delete path.
func (r *shareRepo) Create(ctx context.Context, share *models.Share) error {
	query := `
		INSERT INTO shares (id, article_id, platform, anonymous_id, shared_at, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		share.ID, share.ArticleID, share.Platform, share.AnonymousID,
		share.SharedAt, share.UserAgent, share.Referrer,
	)
	return err
}

// StatsByArticle returns the total share count and per-platform
// breakdown for one article.
func (r *shareRepo) StatsByArticle(ctx context.Context, articleID string) (*models.ShareStats, error) {
	query, args, err := psql.Select("platform", "COUNT(*) AS count").
		From("shares").
		Where(sq.Eq{"article_id": articleID}).
		GroupBy("platform").
		OrderBy("count DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var platforms []models.PlatformCount
	if err := r.db.SelectContext(ctx, &platforms, query, args...); err != nil {
		return nil, err
	}

	stats := &models.ShareStats{
		ArticleID: articleID,
		Platforms: platforms,
	}
	for _, p := range platforms {
		stats.TotalShares += p.Count
	}
	return stats, nil
}

// TopShared returns the most-shared articles for the admin report
func (r *shareRepo) TopShared(ctx context.Context, limit int) ([]*models.TopSharedArticle, error) {
	query, args, err := psql.Select(
		"a.id AS article_id", "a.title", "a.slug", "COUNT(s.id) AS total_shares").
		From("shares s").
		Join("articles a ON a.id = s.article_id").
		GroupBy("a.id", "a.title", "a.slug").
		OrderBy("total_shares DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var top []*models.TopSharedArticle
	if err := r.db.SelectContext(ctx, &top, query, args...); err != nil {
		return nil, err
	}
	return top, nil
}
