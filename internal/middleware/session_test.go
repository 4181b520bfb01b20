package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestSessions_IssueVerifyRevoke(t *testing.T) {
	_, rdb := newMiniRedis(t)
	s := NewSessions(&config.Config{JWTSecret: testSecret, SessionTTLHours: 1}, rdb)
	ctx := context.Background()

	token, issued, err := s.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	sess, err := s.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), sess.UserID)
	assert.Equal(t, issued.TokenID, sess.TokenID)

	require.NoError(t, s.Revoke(ctx, sess))
	_, err = s.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessions_VerifyRejects(t *testing.T) {
	s := NewSessions(&config.Config{JWTSecret: testSecret}, nil)
	ctx := context.Background()

	sign := func(claims jwt.Claims, secret string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	_, err := s.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(valid(), "another-secret")},
		{"expired", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return sign(c, testSecret)
		}()},
		{"wrong issuer", func() string {
			c := valid()
			c.Issuer = "someone-else"
			return sign(c, testSecret)
		}()},
		{"wrong audience", func() string {
			c := valid()
			c.Audience = jwt.ClaimStrings{"other"}
			return sign(c, testSecret)
		}()},
		{"non numeric subject", func() string {
			c := valid()
			c.Subject = "abc"
			return sign(c, testSecret)
		}()},
		{"missing jti", func() string {
			c := valid()
			c.ID = ""
			return sign(c, testSecret)
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestSessions_TokenFrom(t *testing.T) {
	s := NewSessions(&config.Config{JWTSecret: testSecret, SessionCookieName: "sid"}, nil)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(s.TokenFrom(c))
	})

	read := func(req *http.Request) string {
		resp, err := app.Test(req)
		require.NoError(t, err)
		buf := make([]byte, 64)
		n, _ := resp.Body.Read(buf)
		return string(buf[:n])
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", read(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", read(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", read(req))

	assert.Equal(t, "from-query", read(httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)))
}
