package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agora/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer   = "agora-api"
	tokenAudience = "agora-client"
)

var (
	// ErrNoSession means the request carried no token at all.
	ErrNoSession = errors.New("no session token")
	// ErrInvalidSession covers malformed, expired, and revoked tokens.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Session is a verified session token.
type Session struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// Sessions issues and verifies signed session tokens. Logged-out tokens are
// remembered in Redis until they would have expired.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	rdb        *redis.Client
}

// NewSessions builds the session manager. rdb may be nil, in which case
// revocation is not persisted.
func NewSessions(cfg *config.Config, rdb *redis.Client) *Sessions {
	name := cfg.SessionCookieName
	if name == "" {
		name = "agora_session"
	}
	return &Sessions{
		secret:     []byte(cfg.JWTSecret),
		ttl:        cfg.SessionTTL(),
		cookieName: name,
		secure:     cfg.IsProduction(),
		rdb:        rdb,
	}
}

// Issue signs a new token for userID.
func (s *Sessions) Issue(userID uint) (string, *Session, error) {
	now := time.Now()
	sess := &Session{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ID:        sess.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, sess, nil
}

// Verify parses and validates token, including the revocation list.
func (s *Sessions) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	if s.rdb != nil {
		revoked, err := s.rdb.Exists(ctx, revokedKey(claims.ID)).Result()
		if err != nil {
			Logger.WarnContext(ctx, "session revocation check failed", "error", err)
		} else if revoked > 0 {
			return nil, ErrInvalidSession
		}
	}

	return &Session{
		UserID:    uint(userID),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists the session until its natural expiry.
func (s *Sessions) Revoke(ctx context.Context, sess *Session) error {
	if s.rdb == nil || sess == nil {
		return nil
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(sess.TokenID), "1", ttl).Err()
}

func revokedKey(tokenID string) string {
	return "session:revoked:" + tokenID
}

// TokenFrom extracts a token from the Authorization header, the session
// cookie, or (for websocket upgrades) the token query parameter.
func (s *Sessions) TokenFrom(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if token := c.Cookies(s.cookieName); token != "" {
		return token
	}
	return c.Query("token")
}

// SetCookie stores token in an HttpOnly session cookie.
func (s *Sessions) SetCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
