package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/repository"
)

// subscriptionService is the concrete implementation of SubscriptionService
type subscriptionService struct {
	repos  *repository.Repositories
	sender EmailSender
	log    zerolog.Logger
}

// newSubscriptionService creates a new SubscriptionService
func newSubscriptionService(repos *repository.Repositories, sender EmailSender, log zerolog.Logger) *subscriptionService {
	return &subscriptionService{
		repos:  repos,
		sender: sender,
		log:    log.With().Str("service", "subscription").Logger(),
	}
}

// Subscribe creates a pending subscription, or reactivates an
// existing row for the same email. Reactivation is silent: an
// already-active email just has its category preferences updated.
// A fresh verification token is issued only while the address is
// still unverified.
func (s *subscriptionService) Subscribe(ctx context.Context, email string, categories []string) (*models.Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if categories == nil {
		categories = []string{}
	}

	existing, err := s.repos.Subscription.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}

	now := time.Now().UTC()

	if existing != nil {
		sub := *existing
		sub.IsActive = true
		sub.SubscribedCategories = pq.StringArray(categories)
		sub.UnsubscribedAt = nil
		sub.UpdatedAt = now
		if !sub.IsVerified && sub.VerificationToken == nil {
			token := uuid.NewString()
			sub.VerificationToken = &token
		}

		if err := s.repos.Subscription.Update(ctx, &sub); err != nil {
			return nil, fmt.Errorf("failed to reactivate subscription: %w", err)
		}

		if !sub.IsVerified && sub.VerificationToken != nil {
			if err := s.sender.SendVerification(ctx, sub.Email, *sub.VerificationToken); err != nil {
				s.log.Error().Err(err).Str("email", sub.Email).Msg("Failed to send verification email")
			}
		}

		s.log.Info().Str("email", sub.Email).Msg("Subscription reactivated")
		return &sub, nil
	}

	token := uuid.NewString()
	sub := &models.Subscription{
		Email:                email,
		IsActive:             true,
		IsVerified:           false,
		SubscribedCategories: pq.StringArray(categories),
		VerificationToken:    &token,
		SubscribedAt:         now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repos.Subscription.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := s.sender.SendVerification(ctx, sub.Email, token); err != nil {
		s.log.Error().Err(err).Str("email", sub.Email).Msg("Failed to send verification email")
	}

	s.log.Info().Str("email", sub.Email).Msg("Subscription created")
	return sub, nil
}

// Verify consumes a verification token. Tokens are single-use: the
// token column is cleared on success, so a second call with the same
// token fails.
func (s *subscriptionService) Verify(ctx context.Context, token string) (*models.Subscription, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	sub, err := s.repos.Subscription.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if sub == nil {
		return nil, ErrInvalidToken
	}

	now := time.Now().UTC()
	sub.IsVerified = true
	sub.VerifiedAt = &now
	sub.VerificationToken = nil
	sub.UpdatedAt = now

	if err := s.repos.Subscription.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to verify subscription: %w", err)
	}

	s.log.Info().Str("email", sub.Email).Msg("Subscription verified")
	return sub, nil
}

// Unsubscribe deactivates a subscription. The row is retained for
// history and later reactivation.
func (s *subscriptionService) Unsubscribe(ctx context.Context, email string) (*models.Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	sub, err := s.repos.Subscription.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if sub == nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	sub.IsActive = false
	sub.UnsubscribedAt = &now
	sub.UpdatedAt = now

	if err := s.repos.Subscription.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to unsubscribe: %w", err)
	}

	s.log.Info().Str("email", sub.Email).Msg("Subscription deactivated")
	return sub, nil
}

// ListActive returns active, verified subscribers for the admin panel
func (s *subscriptionService) ListActive(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	subs, err := s.repos.Subscription.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// Stats returns subscriber totals for the admin panel
func (s *subscriptionService) Stats(ctx context.Context) (*models.SubscriptionStats, error) {
	stats, err := s.repos.Subscription.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription stats: %w", err)
	}
	return stats, nil
}

// ExportActiveCSV streams active, verified subscribers as CSV
func (s *subscriptionService) ExportActiveCSV(ctx context.Context, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"email", "subscribed_categories", "subscribed_at", "verified_at"}); err != nil {
		return err
	}

	count := 0
	err := s.repos.Subscription.StreamActive(ctx, func(sub *models.Subscription) error {
		verifiedAt := ""
		if sub.VerifiedAt != nil {
			verifiedAt = sub.VerifiedAt.Format(time.RFC3339)
		}
		record := []string{
			sub.Email,
			strings.Join(sub.SubscribedCategories, ";"),
			sub.SubscribedAt.Format(time.RFC3339),
			verifiedAt,
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 {
			writer.Flush()
		}
		return writer.Write(record)
	})
	if err != nil {
		return err
	}

	writer.Flush()
	s.log.Info().Int("count", count).Msg("Subscriber export completed")
	return writer.Error()
}
