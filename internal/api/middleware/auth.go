package middleware

import (
	"errors"
	"net/http"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/auth"
)

// Auth creates authentication middleware that validates the request
// credential (API key or minted bearer token). When enforcement is disabled
// on the auth service every request passes through.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.Required() {
				next.ServeHTTP(w, r)
				return
			}

			credential := auth.ExtractCredential(
				r.Header.Get("X-API-Key"),
				r.Header.Get("Authorization"),
			)

			if err := authService.Authenticate(credential); err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingCredential):
					writeUnauthorized(w, r, "missing API key or bearer token")
				case errors.Is(err, auth.ErrAccessTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidCredential):
					writeUnauthorized(w, r, "invalid API key or bearer token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}
