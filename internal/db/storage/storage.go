// Package storage declares the persistence contract shared by the
// Postgres and in-memory backends.
package storage

import (
	"context"
	"database/sql"

	"github.com/chote-app/chote/internal/link"
	"github.com/chote-app/chote/internal/models"
	"github.com/chote-app/chote/internal/user"
)

// Storage is the full persistence surface of the service. Uniqueness of
// users.email and urls.short_code is enforced by the backend itself;
// implementations map constraint violations to
// models.ErrEmailAlreadyRegistered and models.ErrCodeExists.
type Storage interface {
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

	Close() error
}
