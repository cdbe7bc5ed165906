// Package postgresdb is the PostgreSQL implementation of the storage
// contract. It connects through the pgx stdlib driver, runs goose
// migrations on startup, and maps unique-constraint violations to the
// domain errors the service layer retries or reports on.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/chote-app/chote/internal/link"
	"github.com/chote-app/chote/internal/models"
	"github.com/chote-app/chote/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB persists users and short links in PostgreSQL.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens the database, runs schema migrations and returns a ready
// PostgresDB.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return result, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser inserts a new user and returns its generated ID. A
// duplicate email surfaces as models.ErrEmailAlreadyRegistered: the
// unique index is the authoritative uniqueness check, any application
// pre-check only avoids the round-trip.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	var database queryer = db.database
	if transaction != nil {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`INSERT INTO users (email, password_hash, is_active)
			VALUES ($1, $2, $3)
			RETURNING id`,
		usr.Email,
		usr.PasswordHash,
		usr.IsActive,
	)

	var userID string
	if err := row.Scan(&userID); err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrEmailAlreadyRegistered
		}
		return "", err
	}

	return userID, nil
}

// FindUserByEmail fetches a user by its exact email. The second return
// value reports presence.
func (db *PostgresDB) FindUserByEmail(
	ctx context.Context,
	email string,
	transaction *sql.Tx,
) (*user.User, bool, error) {
	var database queryer = db.database
	if transaction != nil {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, is_active FROM users WHERE email = $1`,
		email,
	)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &usr.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// InsertLink persists a new short link and fills in its generated ID
// and creation time. A short-code collision surfaces as
// models.ErrCodeExists so the caller can regenerate and retry.
func (db *PostgresDB) InsertLink(ctx context.Context, lnk *link.Link, transaction *sql.Tx) error {
	var database queryer = db.database
	if transaction != nil {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`INSERT INTO urls (long_url, owner_id, short_code, password, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
		lnk.LongURL,
		lnk.OwnerID,
		lnk.ShortCode,
		lnk.Password,
		lnk.ExpiresAt,
	)

	if err := row.Scan(&lnk.ID, &lnk.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.ErrCodeExists
		}
		return err
	}

	return nil
}

// FindLinkByCode retrieves a link by its exact short code.
func (db *PostgresDB) FindLinkByCode(ctx context.Context, code string) (*link.Link, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, long_url, owner_id, short_code, password, created_at, expires_at
			FROM urls
			WHERE short_code = $1`,
		code,
	)

	lnk := &link.Link{}
	err := row.Scan(
		&lnk.ID,
		&lnk.LongURL,
		&lnk.OwnerID,
		&lnk.ShortCode,
		&lnk.Password,
		&lnk.CreatedAt,
		&lnk.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return lnk, true, nil
}

// IsCodeExists checks whether a short code is already taken.
func (db *PostgresDB) IsCodeExists(ctx context.Context, code string) (bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM urls WHERE short_code = $1`,
		code,
	)

	var codeCount int
	if err := row.Scan(&codeCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return codeCount > 0, nil
}

// FindLinksByOwner lists all links owned by the given user, oldest
// first. The formatter turns each short code into a public short URL.
func (db *PostgresDB) FindLinksByOwner(
	ctx context.Context,
	ownerID string,
	shortURLFormatter func(string) string,
) (models.OwnedUrls, error) {
	formatter := func(str string) string { return str }
	if shortURLFormatter != nil {
		formatter = shortURLFormatter
	}

	rows, err := db.database.QueryContext(
		ctx,
		`SELECT short_code, long_url FROM urls WHERE owner_id = $1 ORDER BY created_at`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := models.OwnedUrls{}
	for rows.Next() {
		var code, longURL string
		if err = rows.Scan(&code, &longURL); err != nil {
			return nil, err
		}

		result = append(
			result,
			models.OwnedURL{
				ShortURL: formatter(code),
				LongURL:  longURL,
			},
		)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// BeginTransaction starts a new SQL transaction. The caller must commit
// or roll it back.
func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// RollbackTransaction rolls back the given transaction.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// CommitTransaction commits the given transaction.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) error {
	return transaction.Commit()
}

// Ping verifies database connectivity within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close releases the connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}
