package models

import (
	"time"
)

// Share platforms accepted by the share endpoint
const (
	PlatformClipboard = "clipboard"
	PlatformNative    = "native"
	PlatformKakao     = "kakao"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
)

// ValidPlatforms defines the fixed share platform enum
var ValidPlatforms = map[string]bool{
	PlatformClipboard: true,
	PlatformNative:    true,
	PlatformKakao:     true,
	PlatformFacebook:  true,
	PlatformTwitter:   true,
}

// Share is an append-only record of a user-initiated share action
type Share struct {
	ID          string    `json:"id" db:"id"`
	ArticleID   string    `json:"article_id" db:"article_id"`
	Platform    string    `json:"platform" db:"platform"`
	AnonymousID *string   `json:"anonymous_id,omitempty" db:"anonymous_id"`
	SharedAt    time.Time `json:"shared_at" db:"shared_at"`
	UserAgent   string    `json:"user_agent" db:"user_agent"`
	Referrer    *string   `json:"referrer,omitempty" db:"referrer"`
}

// PlatformCount is one row of the per-platform share breakdown
type PlatformCount struct {
	Platform string `json:"platform" db:"platform"`
	Count    int    `json:"count" db:"count"`
}

// ShareStats is the per-article share summary
type ShareStats struct {
	ArticleID   string          `json:"article_id"`
	TotalShares int             `json:"total_shares"`
	Platforms   []PlatformCount `json:"platforms"`
}

// TopSharedArticle is one row of the admin most-shared report
type TopSharedArticle struct {
	ArticleID   string `json:"article_id" db:"article_id"`
	Title       string `json:"title" db:"title"`
	Slug        string `json:"slug" db:"slug"`
	TotalShares int    `json:"total_shares" db:"total_shares"`
}
