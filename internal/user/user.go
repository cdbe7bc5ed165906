// Package user holds the user entity shared by the storage and auth layers.
package user

// User is a registered account. PasswordHash is the salted bcrypt hash of
// the password; it must never leave the storage/auth boundary.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
}
