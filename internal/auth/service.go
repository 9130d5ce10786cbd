// Package auth implements optional API-key authentication. When enabled,
// requests carry either a raw configured key or a short-lived JWT minted by
// exchanging that key.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Auth errors.
var (
	ErrMissingCredential = errors.New("missing API key or bearer token")
	ErrInvalidCredential = errors.New("invalid API key or bearer token")
)

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	// Required turns authentication on. When false, every request passes.
	Required bool

	// APIKeys is the comma-separated list of accepted keys.
	APIKeys string

	// JWT mints and validates exchanged access tokens.
	JWT *JWTService

	// Logger for auth decisions.
	Logger zerolog.Logger
}

// Service validates request credentials and mints access tokens.
type Service struct {
	required  bool
	validKeys map[string]struct{}
	jwt       *JWTService
	logger    zerolog.Logger
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		required:  cfg.Required,
		validKeys: parseAPIKeys(cfg.APIKeys),
		jwt:       cfg.JWT,
		logger:    cfg.Logger.With().Str("component", "auth").Logger(),
	}
}

// Required reports whether authentication is enforced.
func (s *Service) Required() bool {
	return s.required
}

// Authenticate checks a credential extracted from the request. The credential
// may be a raw configured API key or a minted JWT.
func (s *Service) Authenticate(credential string) error {
	if !s.required {
		return nil
	}

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrMissingCredential
	}

	if _, ok := s.validKeys[credential]; ok {
		return nil
	}

	if s.jwt != nil {
		if _, err := s.jwt.ValidateAccessToken(credential); err == nil {
			return nil
		}
	}

	return ErrInvalidCredential
}

// MintToken exchanges a valid API key for a short-lived access token.
// Exchange works even when enforcement is off, so clients can set up tokens
// ahead of the flag being flipped.
func (s *Service) MintToken(apiKey string) (string, time.Time, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", time.Time{}, ErrMissingCredential
	}
	if _, ok := s.validKeys[apiKey]; !ok {
		s.logger.Warn().Msg("token mint attempted with invalid API key")
		return "", time.Time{}, ErrInvalidCredential
	}
	if s.jwt == nil {
		return "", time.Time{}, ErrInvalidCredential
	}

	return s.jwt.GenerateAccessToken(keyFingerprint(apiKey))
}

// ExtractCredential pulls the API key or bearer token from request headers.
// X-API-Key wins over Authorization: Bearer.
func ExtractCredential(apiKeyHeader, authorizationHeader string) string {
	if key := strings.TrimSpace(apiKeyHeader); key != "" {
		return key
	}
	if after, ok := strings.CutPrefix(authorizationHeader, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// parseAPIKeys splits a comma-separated key list, dropping blanks.
func parseAPIKeys(raw string) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// keyFingerprint builds a stable non-secret client identifier from a key.
func keyFingerprint(apiKey string) string {
	if len(apiKey) <= 4 {
		return "key-" + apiKey
	}
	return "key-" + apiKey[len(apiKey)-4:]
}
