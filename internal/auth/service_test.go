package auth_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadroute/quadroute/internal/auth"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.quadroute.app",
		Audience:   "quadroute-api",
	})
}

func TestService_Authenticate_Disabled(t *testing.T) {
	svc := auth.NewService(auth.ServiceConfig{
		Required: false,
		Logger:   zerolog.Nop(),
	})

	assert.False(t, svc.Required())
	assert.NoError(t, svc.Authenticate(""))
	assert.NoError(t, svc.Authenticate("anything"))
}

func TestService_Authenticate_RawKey(t *testing.T) {
	svc := auth.NewService(auth.ServiceConfig{
		Required: true,
		APIKeys:  "key-a, key-b ,,",
		JWT:      newTestJWT(),
		Logger:   zerolog.Nop(),
	})

	assert.NoError(t, svc.Authenticate("key-a"))
	assert.NoError(t, svc.Authenticate("key-b"))
	assert.NoError(t, svc.Authenticate(" key-a "))

	err := svc.Authenticate("key-c")
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)

	err = svc.Authenticate("")
	assert.ErrorIs(t, err, auth.ErrMissingCredential)
}

func TestService_Authenticate_MintedToken(t *testing.T) {
	jwtSvc := newTestJWT()
	svc := auth.NewService(auth.ServiceConfig{
		Required: true,
		APIKeys:  "key-a",
		JWT:      jwtSvc,
		Logger:   zerolog.Nop(),
	})

	token, expiresAt, err := svc.MintToken("key-a")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	assert.NoError(t, svc.Authenticate(token))
}

func TestService_MintToken_InvalidKey(t *testing.T) {
	svc := auth.NewService(auth.ServiceConfig{
		Required: true,
		APIKeys:  "key-a",
		JWT:      newTestJWT(),
		Logger:   zerolog.Nop(),
	})

	_, _, err := svc.MintToken("key-z")
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)

	_, _, err = svc.MintToken("")
	assert.ErrorIs(t, err, auth.ErrMissingCredential)
}

func TestService_MintToken_WorksWhenEnforcementOff(t *testing.T) {
	svc := auth.NewService(auth.ServiceConfig{
		Required: false,
		APIKeys:  "key-a",
		JWT:      newTestJWT(),
		Logger:   zerolog.Nop(),
	})

	token, _, err := svc.MintToken("key-a")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_Authenticate_TokenFromOtherSigner(t *testing.T) {
	otherJWT := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "attacker-key",
		Issuer:     "https://api.quadroute.app",
		Audience:   "quadroute-api",
	})
	token, _, err := otherJWT.GenerateAccessToken("key-ab12")
	require.NoError(t, err)

	svc := auth.NewService(auth.ServiceConfig{
		Required: true,
		APIKeys:  "key-a",
		JWT:      newTestJWT(),
		Logger:   zerolog.Nop(),
	})

	assert.ErrorIs(t, svc.Authenticate(token), auth.ErrInvalidCredential)
}

func TestExtractCredential(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		authHeader string
		expected   string
	}{
		{"x-api-key", "key-a", "", "key-a"},
		{"bearer", "", "Bearer key-a", "key-a"},
		{"x-api-key wins", "key-a", "Bearer key-b", "key-a"},
		{"bearer with spaces", "", "Bearer   key-a  ", "key-a"},
		{"basic auth ignored", "", "Basic dXNlcjpwYXNz", ""},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.ExtractCredential(tt.apiKey, tt.authHeader))
		})
	}
}
