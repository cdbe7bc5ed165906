// Package service implements the core flows of the shortener:
// registration, login, shortening, redirect resolution and the owner's
// link listing. Handlers stay thin; everything with behavior lives here.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/chote-app/chote/internal/link"
	"github.com/chote-app/chote/internal/models"
	"github.com/chote-app/chote/internal/shortcode"
	"github.com/chote-app/chote/internal/user"
)

// insertRetries bounds regeneration when a concurrent request wins the
// race for the same short code between our pre-check and insert.
const insertRetries = 10

type storage interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error)

	InsertLink(ctx context.Context, lnk *link.Link, transaction *sql.Tx) error

	FindLinkByCode(ctx context.Context, code string) (*link.Link, bool, error)

	IsCodeExists(ctx context.Context, code string) (bool, error)

	FindLinksByOwner(
		ctx context.Context,
		ownerID string,
		shortURLFormatter func(string) string,
	) (models.OwnedUrls, error)

	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error

	Ping(ctx context.Context) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type tokenIssuer interface {
	IssueDefault(subject string) (string, error)
}

type codeGenerator interface {
	NewUniqueCode(ctx context.Context, store shortcode.CodeChecker) (string, error)
}

// RedirectCache caches resolve lookups; a nil value disables caching.
type RedirectCache interface {
	Get(ctx context.Context, code string) (string, bool)
	Set(ctx context.Context, code, longURL string)
}

// Service wires the storage, hasher, token issuer, code generator and
// optional redirect cache into the application flows.
type Service struct {
	db           storage
	hasher       passwordHasher
	tokens       tokenIssuer
	codes        codeGenerator
	cache        RedirectCache
	shortURLBase string
	emailDomains []string

	// dummyHash is compared against when login hits an unknown email, so
	// both failure branches cost one bcrypt comparison.
	dummyHash string
}

// New builds a Service. cache may be nil to disable redirect caching.
func New(
	db storage,
	hasher passwordHasher,
	tokens tokenIssuer,
	codes codeGenerator,
	cache RedirectCache,
	shortURLBase string,
	emailDomains []string,
) (*Service, error) {
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("preparing dummy hash: %w", err)
	}

	return &Service{
		db:           db,
		hasher:       hasher,
		tokens:       tokens,
		codes:        codes,
		cache:        cache,
		shortURLBase: strings.TrimRight(shortURLBase, "/"),
		emailDomains: emailDomains,
		dummyHash:    dummyHash,
	}, nil
}

// FormatShortURL turns a short code into a fully-qualified short URL.
func (s *Service) FormatShortURL(code string) string {
	return s.shortURLBase + "/" + code
}

func (s *Service) checkEmailDomain(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return models.ErrEmailNotAllowed
	}

	if !funk.ContainsString(s.emailDomains, email[at+1:]) {
		return models.ErrEmailNotAllowed
	}

	return nil
}

// Register creates a new active user. The email must carry an allowed
// domain and must not be registered yet (byte-exact comparison). The
// storage unique index is the authoritative uniqueness check; the
// in-transaction lookup only produces a friendlier round-trip.
func (s *Service) Register(ctx context.Context, email, password string) (*models.UserInfo, error) {
	if err := s.checkEmailDomain(email); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	transaction, err := s.db.BeginTransaction()
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.db.RollbackTransaction(transaction)
		}
	}()

	_, found, err := s.db.FindUserByEmail(ctx, email, transaction)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, models.ErrEmailAlreadyRegistered
	}

	usr := &user.User{
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	userID, err := s.db.CreateUser(ctx, usr, transaction)
	if err != nil {
		return nil, err
	}

	if err = s.db.CommitTransaction(transaction); err != nil {
		return nil, err
	}
	committed = true

	return &models.UserInfo{
		ID:       userID,
		Email:    email,
		IsActive: true,
	}, nil
}

// Login verifies the credentials and returns a signed bearer token with
// the email as subject. Unknown email and wrong password are
// indistinguishable: both cost one hash comparison and both return
// models.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	usr, found, err := s.db.FindUserByEmail(ctx, email, nil)
	if err != nil {
		return "", err
	}

	if !found {
		s.hasher.Verify(password, s.dummyHash)
		return "", models.ErrInvalidCredentials
	}

	if !usr.IsActive || !s.hasher.Verify(password, usr.PasswordHash) {
		return "", models.ErrInvalidCredentials
	}

	return s.tokens.IssueDefault(usr.Email)
}

// Shorten creates a short link owned by ownerID and returns its public
// description. On a short-code collision at insert time it regenerates
// and retries transparently.
func (s *Service) Shorten(ctx context.Context, longURL, ownerID string) (*models.URLInfo, error) {
	for attempt := 0; attempt < insertRetries; attempt++ {
		code, err := s.codes.NewUniqueCode(ctx, s.db)
		if err != nil {
			return nil, err
		}

		lnk := &link.Link{
			LongURL:   longURL,
			ShortCode: code,
			OwnerID:   ownerID,
		}
		err = s.db.InsertLink(ctx, lnk, nil)
		if errors.Is(err, models.ErrCodeExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &models.URLInfo{
			LongURL:   longURL,
			ShortCode: code,
			ShortURL:  s.FormatShortURL(code),
			OwnerID:   ownerID,
		}, nil
	}

	return nil, models.ErrCodeRetriesExhausted
}

// Resolve maps a short code to its long URL, consulting the redirect
// cache first when one is configured. The target URL is returned
// verbatim; no scheme validation or unwrapping happens here.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if s.cache != nil {
		if longURL, found := s.cache.Get(ctx, code); found {
			return longURL, nil
		}
	}

	lnk, found, err := s.db.FindLinkByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrNotFound
	}

	if s.cache != nil {
		s.cache.Set(ctx, code, lnk.LongURL)
	}

	return lnk.LongURL, nil
}

// LinksByOwner lists the authenticated user's links with fully-qualified
// short URLs.
func (s *Service) LinksByOwner(ctx context.Context, ownerID string) (models.OwnedUrls, error) {
	return s.db.FindLinksByOwner(ctx, ownerID, s.FormatShortURL)
}

// Ping reports storage health.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
