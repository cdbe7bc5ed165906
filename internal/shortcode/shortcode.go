// Package shortcode generates the random URL-safe codes embedded in
// short URLs. A code carries 7 bytes (56 bits) of entropy encoded as 10
// URL-safe base64 characters, enough to make enumeration impractical.
package shortcode

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/chote-app/chote/internal/models"
)

const (
	codeBytes = 7

	// maxAttempts bounds the regenerate-on-collision loop. The original
	// design loops forever; the cap turns a pathologically full keyspace
	// into an error instead of a hang.
	maxAttempts = 10
)

// CodeChecker is the one storage capability the generator needs.
type CodeChecker interface {
	IsCodeExists(ctx context.Context, code string) (bool, error)
}

// Generator produces short codes.
type Generator struct{}

// New returns a code Generator.
func New() *Generator {
	return &Generator{}
}

// NewCode returns one random code without consulting any store.
func (g *Generator) NewCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewUniqueCode generates codes until one is not present in the store.
// The existence check is an optimization only: the store's uniqueness
// constraint is what actually protects against concurrent duplicates,
// and callers must retry on models.ErrCodeExists from the insert.
func (g *Generator) NewUniqueCode(ctx context.Context, store CodeChecker) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := g.NewCode()
		if err != nil {
			return "", err
		}

		exists, err := store.IsCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", models.ErrCodeRetriesExhausted
}
