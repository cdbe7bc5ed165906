// Package link holds the short link entity.
package link

import "time"

// Link maps a short code to its long URL. Password and ExpiresAt are
// reserved columns carried through from the schema; no flow reads them.
type Link struct {
	ID        string
	LongURL   string
	ShortCode string
	OwnerID   string
	Password  *string
	CreatedAt time.Time
	ExpiresAt *time.Time
}
