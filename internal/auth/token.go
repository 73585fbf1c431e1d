package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/campushub/lms-service/internal/models"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expired
	// tokens alike; callers must not leak which.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email            string        `json:"email"`
	Roles            []models.Role `json:"roles"`
	DefaultDashboard models.Role   `json:"defaultDashboard"`
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer mints and verifies the two session tokens. Access and refresh
// tokens are signed with distinct secrets so leaking one does not compromise
// the other's signing authority.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue signs a fresh access/refresh pair for the principal.
func (t *TokenIssuer) Issue(p Principal) (TokenPair, error) {
	access, err := t.sign(p, t.accessSecret, t.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := t.sign(p, t.refreshSecret, t.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess verifies signature and expiry of an access token.
func (t *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return t.verify(token, t.accessSecret)
}

// VerifyRefresh verifies signature and expiry of a refresh token.
func (t *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return t.verify(token, t.refreshSecret)
}

func (t *TokenIssuer) sign(p Principal, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:            p.Email,
		Roles:            p.Roles,
		DefaultDashboard: p.DefaultDashboard,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (t *TokenIssuer) verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Principal reconstructs the principal embedded in verified claims.
func (c *Claims) Principal() Principal {
	return Principal{
		UserID:           c.Subject,
		Email:            c.Email,
		Roles:            c.Roles,
		DefaultDashboard: c.DefaultDashboard,
		Builtin:          c.Subject == SuperAdminID,
	}
}
