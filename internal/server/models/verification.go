package models

import "time"

// Verification is an owner-issued, time-boxed grant for a user. It is the
// precondition for minting an access token.
type Verification struct {
	UserID    string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the grant has lapsed at now.
func (v *Verification) Expired(now time.Time) bool {
	return now.After(v.Expires)
}

// DaysRemaining returns the whole days left, never negative.
func (v *Verification) DaysRemaining(now time.Time) int {
	left := v.Expires.Unix() - now.Unix()
	if left <= 0 {
		return 0
	}
	return int(left / 86400)
}
