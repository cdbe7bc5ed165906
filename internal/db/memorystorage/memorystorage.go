// Package memorystorage is an in-memory implementation of the storage
// contract. It backs tests and DSN-less development runs. Unlike the
// Postgres backend it has no real constraints, so uniqueness is checked
// under a single lock, which makes insert-time checks just as
// authoritative.
package memorystorage

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chote-app/chote/internal/link"
	"github.com/chote-app/chote/internal/models"
	"github.com/chote-app/chote/internal/user"
)

// MemoryStorage keeps users and links in maps guarded by one RWMutex.
type MemoryStorage struct {
	mu           sync.RWMutex
	usersByEmail map[string]*user.User
	linksByCode  map[string]*link.Link
	ownerCodes   map[string][]string
}

// New returns an empty MemoryStorage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		usersByEmail: map[string]*user.User{},
		linksByCode:  map[string]*link.Link{},
		ownerCodes:   map[string][]string{},
	}, nil
}

// CreateUser stores a new user and returns its generated ID.
func (s *MemoryStorage) CreateUser(_ context.Context, usr *user.User, _ *sql.Tx) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[usr.Email]; exists {
		return "", models.ErrEmailAlreadyRegistered
	}

	stored := *usr
	stored.ID = uuid.New().String()
	s.usersByEmail[stored.Email] = &stored

	return stored.ID, nil
}

// FindUserByEmail fetches a user by its exact email.
func (s *MemoryStorage) FindUserByEmail(
	_ context.Context,
	email string,
	_ *sql.Tx,
) (*user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr, found := s.usersByEmail[email]
	if !found {
		return nil, false, nil
	}

	result := *usr

	return &result, true, nil
}

// InsertLink stores a new short link, filling in its ID and creation time.
func (s *MemoryStorage) InsertLink(_ context.Context, lnk *link.Link, _ *sql.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.linksByCode[lnk.ShortCode]; exists {
		return models.ErrCodeExists
	}

	lnk.ID = uuid.New().String()
	lnk.CreatedAt = time.Now()

	stored := *lnk
	s.linksByCode[stored.ShortCode] = &stored
	s.ownerCodes[stored.OwnerID] = append(s.ownerCodes[stored.OwnerID], stored.ShortCode)

	return nil
}

// FindLinkByCode retrieves a link by its exact short code.
func (s *MemoryStorage) FindLinkByCode(_ context.Context, code string) (*link.Link, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lnk, found := s.linksByCode[code]
	if !found {
		return nil, false, nil
	}

	result := *lnk

	return &result, true, nil
}

// IsCodeExists checks whether a short code is already taken.
func (s *MemoryStorage) IsCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.linksByCode[code]

	return exists, nil
}

// FindLinksByOwner lists the links owned by the given user in insertion
// order.
func (s *MemoryStorage) FindLinksByOwner(
	_ context.Context,
	ownerID string,
	shortURLFormatter func(string) string,
) (models.OwnedUrls, error) {
	formatter := func(str string) string { return str }
	if shortURLFormatter != nil {
		formatter = shortURLFormatter
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := models.OwnedUrls{}
	for _, code := range s.ownerCodes[ownerID] {
		lnk := s.linksByCode[code]
		result = append(
			result,
			models.OwnedURL{
				ShortURL: formatter(lnk.ShortCode),
				LongURL:  lnk.LongURL,
			},
		)
	}

	return result, nil
}

// BeginTransaction is a no-op for the in-memory backend.
func (s *MemoryStorage) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

// RollbackTransaction is a no-op for the in-memory backend.
func (s *MemoryStorage) RollbackTransaction(_ *sql.Tx) error {
	return nil
}

// CommitTransaction is a no-op for the in-memory backend.
func (s *MemoryStorage) CommitTransaction(_ *sql.Tx) error {
	return nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}
