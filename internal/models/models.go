// Package models defines the request/response shapes of the HTTP API
// and the domain error taxonomy shared by the service and storage layers.
package models

import "errors"

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserInfo is the public view of a user. It never carries the password hash.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// TokenResponse is the body returned by POST /token and POST /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	LongURL string `json:"long_url" validate:"required"`
}

// URLInfo describes a freshly shortened link.
type URLInfo struct {
	LongURL   string `json:"long_url"`
	ShortCode string `json:"short_code"`
	ShortURL  string `json:"short_url"`
	OwnerID   string `json:"owner_id"`
}

// OwnedURL is one entry of the authenticated user's link listing.
type OwnedURL struct {
	ShortURL string `json:"short_url"`
	LongURL  string `json:"long_url"`
}

// OwnedUrls is the body of GET /api/user/urls.
type OwnedUrls []OwnedURL

// ErrorResponse is the JSON shape of every non-2xx body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

var (
	// ErrEmailAlreadyRegistered is returned when registering an email
	// that some user already holds (byte-exact match).
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrEmailNotAllowed is returned when the email's domain is not in
	// the configured allowlist.
	ErrEmailNotAllowed = errors.New("invalid email or not supported")

	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized covers every token verification failure: missing,
	// malformed, bad signature, expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a short code has never been issued.
	ErrNotFound = errors.New("URL not found")

	// ErrCodeExists signals a short-code uniqueness violation on insert.
	// The shorten flow retries with a fresh code; it never reaches clients.
	ErrCodeExists = errors.New("short code already exists")

	// ErrCodeRetriesExhausted is returned when code generation keeps
	// colliding beyond the retry cap.
	ErrCodeRetriesExhausted = errors.New("could not generate a unique short code")
)

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeMemory
)
