package domain

import "time"

// Token describes an issued bearer token. ID is unique per issuance and
// identifies the server-side session that keeps the token alive.
type Token struct {
	ID        string
	UserID    string
	Role      Role
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
