// Package auth provides the HTTP middleware guarding authenticated
// routes. It verifies the bearer token from the Authorization header,
// resolves the embedded subject to an active user, and stores the user
// ID in the request context.
package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/chote-app/chote/internal/logger"
	"github.com/chote-app/chote/internal/models"
	"github.com/chote-app/chote/internal/user"
)

type userFinder interface {
	FindUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error)
}

type tokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// Auth authenticates requests against the token service and user store.
type Auth struct {
	db     userFinder
	tokens tokenVerifier
}

// ContextKey is a dedicated type for context values to avoid collisions.
type ContextKey string

// UserIDKey is the context key holding the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates an Auth middleware provider.
func New(db userFinder, tokens tokenVerifier) *Auth {
	return &Auth{
		db:     db,
		tokens: tokens,
	}
}

const bearerPrefix = "Bearer "

func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}

	return strings.TrimPrefix(header, bearerPrefix)
}

func writeUnauthorized(response http.ResponseWriter) {
	response.Header().Set("Content-Type", "application/json")
	response.Header().Set("WWW-Authenticate", "Bearer")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.ErrorResponse{Detail: models.ErrUnauthorized.Error()})
}

// RequireUser rejects the request with 401 unless it carries a valid,
// unexpired bearer token whose subject resolves to an active user. A
// missing token, a bad one, and an unknown or inactive subject all get
// the same response.
func (a *Auth) RequireUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		subject, err := a.tokens.Verify(bearerToken(request))
		if err != nil {
			writeUnauthorized(response)
			return
		}

		usr, found, err := a.db.FindUserByEmail(request.Context(), subject, nil)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.db.FindUserByEmail()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !found || !usr.IsActive {
			writeUnauthorized(response)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, usr.ID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}
