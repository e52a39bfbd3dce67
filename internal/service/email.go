package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/config"
)

// EmailSender delivers subscription verification links. There is no
// real outbound mail integration; the production sender is expected
// to be wired in behind this interface.
type EmailSender interface {
	SendVerification(ctx context.Context, email, token string) error
}

// logEmailSender writes the verification link to the log instead of
// sending mail.
type logEmailSender struct {
	baseURL string
	log     zerolog.Logger
}

func newLogEmailSender(cfg *config.Config, log zerolog.Logger) *logEmailSender {
	return &logEmailSender{
		baseURL: cfg.Server.BaseURL,
		log:     log.With().Str("component", "email").Logger(),
	}
}

func (s *logEmailSender) SendVerification(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/api/subscriptions/verify?token=%s", s.baseURL, token)
	s.log.Info().
		Str("email", email).
		Str("link", link).
		Msg("Verification email (log only)")
	return nil
}
