package authorization

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/cristalhq/jwt/v4"
	"net/http"
	"roombuddy/domain"
	"strings"
	"time"
)

const TokenTTL = 30 * 24 * time.Hour

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	UserID    string           `json:"id"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

// TokenManager issues and verifies HS256 tokens carrying a user id.
type TokenManager struct {
	signer   jwt.Signer
	verifier jwt.Verifier
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	key := []byte(secret)
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}
	return &TokenManager{
		signer:   signer,
		verifier: verifier,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (manager *TokenManager) Generate(userID string) (string, error) {
	now := manager.now()
	claims := &Claims{
		UserID:    userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(manager.ttl)),
	}
	token, err := jwt.NewBuilder(manager.signer).Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (manager *TokenManager) Verify(raw string) (*Claims, error) {
	token, err := jwt.Parse([]byte(raw), manager.verifier)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(token.Claims(), &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(manager.now()) {
		return nil, ErrExpiredToken
	}
	return &claims, nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

type contextKey struct{}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated caller, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(contextKey{}).(*domain.User)
	return user
}
