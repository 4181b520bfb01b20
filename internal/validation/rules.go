// Package validation holds the input rules shared by services and handlers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"agora/internal/models"
)

// Length limits, in characters.
const (
	UsernameMin       = 2
	UsernameMax       = 20
	TitleMax          = 200
	PostContentMax    = 20000
	CommentContentMax = 5000
	BioMax            = 500
	AvatarURLMax      = 500
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\p{Hangul}]+$`)

// ValidateUsername checks length and the allowed alphabet: ASCII letters,
// digits, underscore and Hangul.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMin || n > UsernameMax {
		return models.NewValidationError(fmt.Sprintf("Username must be %d-%d characters", UsernameMin, UsernameMax))
	}
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("Username may only contain letters, numbers, underscores and Hangul")
	}
	return nil
}

// ValidateTheme accepts the built-in themes.
func ValidateTheme(theme models.Theme) error {
	switch theme {
	case models.ThemeLight, models.ThemeDark, models.ThemeIng:
		return nil
	}
	return models.NewValidationError("Theme must be one of light, dark, ing")
}

// ValidateText trims s and checks it holds between 1 and max characters.
func ValidateText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "", models.NewValidationError(field + " is required")
	}
	if n > max {
		return "", models.NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return s, nil
}
