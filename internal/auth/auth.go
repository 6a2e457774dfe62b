// Package auth is the admin gate: a password login that issues short
// lived JWTs, and a verifier the mutating surfaces consult. Everything a
// caller needs from it is the boolean is-admin signal.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// DefaultTokenTTL bounds how long an admin session lasts without a fresh
// login.
const DefaultTokenTTL = 12 * time.Hour

// DefaultLeeway tolerates small clock skew during validation.
const DefaultLeeway = 30 * time.Second

var (
	ErrBadPassword  = errors.New("wrong password")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the JWT claims carried by an admin token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Service issues and verifies admin tokens.
type Service struct {
	secret   []byte
	password string
	ttl      time.Duration
	leeway   time.Duration
}

func NewService(secret, adminPassword string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		secret:   []byte(secret),
		password: adminPassword,
		ttl:      ttl,
		leeway:   DefaultLeeway,
	}
}

// Login checks the admin password and returns a signed token. The
// comparison is constant time.
func (s *Service) Login(password string) (string, error) {
	if s.password == "" ||
		subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", ErrBadPassword
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: RoleAdmin,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithLeeway(s.leeway))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsAdmin reports whether token grants admin access. Empty or bad tokens
// are simply not admin; no error surfaces.
func (s *Service) IsAdmin(token string) bool {
	if token == "" {
		return false
	}
	claims, err := s.Verify(token)
	return err == nil && claims.Role == RoleAdmin
}

// RequireAdmin wraps next so only requests with a valid admin bearer
// token pass.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !s.IsAdmin(BearerToken(r)) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(rw, r)
	})
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
