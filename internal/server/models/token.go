package models

import "time"

// Token is an opaque bearer credential presented to the serving endpoint.
// A nil Expires marks the owner's non-expiring token.
type Token struct {
	Token     string
	UserID    string
	Expires   *time.Time
	CreatedAt time.Time
}

// Expired reports whether the token has an expiry and it lies before now.
func (t *Token) Expired(now time.Time) bool {
	return t.Expires != nil && now.After(*t.Expires)
}
