// Package token issues and verifies signed, time-limited bearer tokens.
// Tokens are stateless JWTs: the subject and expiration live in the
// claims, the server keeps no session state and no revocation list.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/chote-app/chote/internal/models"
)

// Claims are the JWT claims carried by every issued token. The subject
// holds the user's email.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies bearer tokens with a shared HMAC secret.
type Service struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// New builds a token Service. algorithm must name a symmetric HMAC
// scheme (HS256, HS384 or HS512); ttl bounds the lifetime of every
// token issued with the default TTL.
func New(secret []byte, algorithm string, ttl time.Duration) (*Service, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}

	return &Service{
		secret: secret,
		method: method,
		ttl:    ttl,
	}, nil
}

// Issue produces a signed token for subject expiring at now + ttl.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	tokenString, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return tokenString, nil
}

// IssueDefault issues a token with the service's configured TTL.
func (s *Service) IssueDefault(subject string) (string, error) {
	return s.Issue(subject, s.ttl)
}

// Verify checks the signature and expiration of tokenString and returns
// the embedded subject. Every failure mode collapses into
// models.ErrUnauthorized so callers cannot tell a forged token from an
// expired one.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", models.ErrUnauthorized
	}

	return claims.Subject, nil
}
