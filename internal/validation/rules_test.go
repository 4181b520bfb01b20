package validation

import (
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Minimum", "ab", false},
		{"Hangul", "한글닉네임", false},
		{"Too Short", "a", true},
		{"Too Long", strings.Repeat("x", 21), true},
		{"Illegal Chars", "user@123", true},
		{"Space", "two words", true},
		{"Dash", "user-name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	got, err := ValidateText("Title", "  hello  ", TitleMax)
	assert.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = ValidateText("Title", "   ", TitleMax)
	assert.EqualError(t, err, "Title is required")

	_, err = ValidateText("Content", strings.Repeat("가", CommentContentMax+1), CommentContentMax)
	assert.Error(t, err)
	_, err = ValidateText("Content", strings.Repeat("가", CommentContentMax), CommentContentMax)
	assert.NoError(t, err)
}

func TestValidateTheme(t *testing.T) {
	assert.NoError(t, ValidateTheme(models.ThemeIng))
	assert.Error(t, ValidateTheme("neon"))
}
