// Package hasher provides one-way password hashing and verification
// built on bcrypt. Each hash embeds its own random salt, so hashing the
// same password twice yields different, non-comparable strings.
package hasher

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords.
type Hasher struct {
	cost int
}

// New returns a Hasher using the default bcrypt cost.
func New() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash returns the salted bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether password matches the stored hash. A malformed
// hash yields false, never an error or a panic. The comparison is
// constant-time with respect to the hash content.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
