package models

import "time"

// SocialAccount is one owner+brand credential row for a destination
// platform. Tokens are stored AES-GCM encrypted.
type SocialAccount struct {
	ID             int64     `db:"id"`
	OwnerID        string    `db:"owner_id"`
	Brand          string    `db:"brand"`
	Platform       Platform  `db:"platform"`
	AccountID      string    `db:"account_id"`
	AccountName    string    `db:"account_name"`
	AccessToken    string    `db:"access_token"`
	RefreshToken   string    `db:"refresh_token"`
	TokenExpiresAt time.Time `db:"token_expires_at"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
