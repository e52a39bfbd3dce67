package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seoulscene/magazine-api/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9가-힣]+(?:-[a-z0-9가-힣]+)*$`)
	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface for a single validation error
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateArticleInput validates an admin article create/update payload
func ValidateArticleInput(input *models.ArticleInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title is required"})
	} else if len(input.Title) > 300 {
		errs = append(errs, ValidationError{Field: "title", Message: "title must be at most 300 characters"})
	}

	if strings.TrimSpace(input.Content) == "" {
		errs = append(errs, ValidationError{Field: "content", Message: "content is required"})
	}

	if input.CategoryID == "" {
		errs = append(errs, ValidationError{Field: "category_id", Message: "category_id is required"})
	}

	if input.Status == "" {
		errs = append(errs, ValidationError{Field: "status", Message: "status is required"})
	} else if !models.ValidStatuses[input.Status] {
		errs = append(errs, ValidationError{
			Field:   "status",
			Message: "status must be one of: draft, published",
			Value:   input.Status,
		})
	}

	return errs
}

// ValidateCategoryInput validates an admin category create/update payload
func ValidateCategoryInput(input *models.CategoryInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}

	if input.Slug == "" {
		errs = append(errs, ValidationError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(input.Slug) {
		errs = append(errs, ValidationError{Field: "slug", Message: "invalid slug format", Value: input.Slug})
	}

	if input.Color != "" && !colorRegex.MatchString(input.Color) {
		errs = append(errs, ValidationError{Field: "color", Message: "color must be a hex value like #8B4513", Value: input.Color})
	}

	if input.SortOrder < 0 {
		errs = append(errs, ValidationError{Field: "sort_order", Message: "sort_order must not be negative", Value: input.SortOrder})
	}

	return errs
}

// ValidateEmail checks the subscription email format
func ValidateEmail(email string) *ValidationError {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "invalid email format", Value: email}
	}
	return nil
}

// ValidatePlatform checks a share platform against the fixed enum
func ValidatePlatform(platform string) *ValidationError {
	if platform == "" {
		return &ValidationError{Field: "platform", Message: "platform is required"}
	}
	if !models.ValidPlatforms[platform] {
		return &ValidationError{
			Field:   "platform",
			Message: "platform must be one of: clipboard, native, kakao, facebook, twitter",
			Value:   platform,
		}
	}
	return nil
}
