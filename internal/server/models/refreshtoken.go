package models

import "time"

// RefreshToken is a server-stored admin session token. Tokens are rotated on
// every refresh and deleted on use.
type RefreshToken struct {
	Token   string
	Expires time.Time
}
