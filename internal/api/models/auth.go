package models

// TokenRequest is the request body for exchanging an API key for a
// short-lived access token.
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// TokenResponse carries a minted access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   Timestamp `json:"expires_at"`
}
