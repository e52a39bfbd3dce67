package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/seoulscene/magazine-api/internal/database"
	"github.com/seoulscene/magazine-api/internal/models"
)

// subscriptionRepo is the concrete implementation of SubscriptionRepository
type subscriptionRepo struct {
	db *database.DB
}

// NewSubscriptionRepo creates a new subscription repository
func NewSubscriptionRepo(db *database.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

var subscriptionColumns = []string{
	"email", "is_active", "is_verified", "subscribed_categories",
	"verification_token", "subscribed_at", "unsubscribed_at", "verified_at",
	"created_at", "updated_at",
}

// GetByEmail retrieves a subscription by its natural key
func (r *subscriptionRepo) GetByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	query, args, err := psql.Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	err = r.db.GetContext(ctx, &sub, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByToken retrieves a subscription by its pending verification token
func (r *subscriptionRepo) GetByToken(ctx context.Context, token string) (*models.Subscription, error) {
	query, args, err := psql.Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"verification_token": token}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	err = r.db.GetContext(ctx, &sub, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create inserts a new subscription row
func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (email, is_active, is_verified, subscribed_categories,
			verification_token, subscribed_at, unsubscribed_at, verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		sub.Email, sub.IsActive, sub.IsVerified, sub.SubscribedCategories,
		sub.VerificationToken, sub.SubscribedAt, sub.UnsubscribedAt, sub.VerifiedAt,
		sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

// Update writes the mutable state of a subscription row
func (r *subscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET is_active = $2, is_verified = $3, subscribed_categories = $4,
			verification_token = $5, unsubscribed_at = $6, verified_at = $7, updated_at = $8
		WHERE email = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		sub.Email, sub.IsActive, sub.IsVerified, sub.SubscribedCategories,
		sub.VerificationToken, sub.UnsubscribedAt, sub.VerifiedAt, sub.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActive returns active, verified subscribers, newest first
func (r *subscriptionRepo) ListActive(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	query, args, err := psql.Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"is_active": true, "is_verified": true}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var subs []*models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, err
	}
	return subs, nil
}

// Stats returns subscriber totals for the admin panel
func (r *subscriptionRepo) Stats(ctx context.Context) (*models.SubscriptionStats, error) {
	query := `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE is_active AND is_verified) AS verified
		FROM subscriptions
	`

	var stats models.SubscriptionStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}

// StreamActive streams active, verified subscribers for export
func (r *subscriptionRepo) StreamActive(ctx context.Context, callback func(*models.Subscription) error) error {
	query, args, err := psql.Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"is_active": true, "is_verified": true}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sub models.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return err
		}
		if err := callback(&sub); err != nil {
			return err
		}
	}

	return rows.Err()
}
