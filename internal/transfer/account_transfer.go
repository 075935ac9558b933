package transfer

// AccountConnection is the connect-account request body. Tokens arrive
// in the clear and are encrypted before they reach the database.
// TokenExpiresAt is optional RFC3339.
type AccountConnection struct {
	Brand          string `json:"brand"`
	Platform       string `json:"platform"`
	AccountID      string `json:"account_id"`
	AccountName    string `json:"account_name,omitempty"`
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	TokenExpiresAt string `json:"token_expires_at,omitempty"`
}

// AccountRemoval identifies the credential row to disconnect.
type AccountRemoval struct {
	Brand    string `json:"brand"`
	Platform string `json:"platform"`
}

type AccountID struct {
	ID int64 `json:"id"`
}
