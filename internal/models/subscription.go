package models

import (
	"time"

	"github.com/lib/pq"
)

// Subscription is an email-keyed opt-in record. Email is the natural
// key; rows are never deleted, unsubscribing only flips is_active.
type Subscription struct {
	Email                 string         `json:"email" db:"email"`
	IsActive              bool           `json:"is_active" db:"is_active"`
	IsVerified            bool           `json:"is_verified" db:"is_verified"`
	SubscribedCategories  pq.StringArray `json:"subscribed_categories" db:"subscribed_categories"`
	VerificationToken     *string        `json:"-" db:"verification_token"`
	SubscribedAt          time.Time      `json:"subscribed_at" db:"subscribed_at"`
	UnsubscribedAt        *time.Time     `json:"unsubscribed_at,omitempty" db:"unsubscribed_at"`
	VerifiedAt            *time.Time     `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
}

// SubscriptionStats aggregates subscriber counts for the admin panel
type SubscriptionStats struct {
	Total    int `json:"total" db:"total"`
	Active   int `json:"active" db:"active"`
	Verified int `json:"verified" db:"verified"`
}
