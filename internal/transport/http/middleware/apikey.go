package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"bloodconnect/internal/httputil"
)

// APIKeyHeader carries the shared secret on every write and admin call.
const APIKeyHeader = "x-api-key"

// APIKeyMiddleware rejects requests whose x-api-key header does not match
// apiKey. The comparison is constant time.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	expected := []byte(apiKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(APIKeyHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				hlog.FromRequest(r).Warn().
					Str("path", r.URL.Path).
					Bool("header_present", len(got) > 0).
					Msg("rejected api key")
				httputil.WriteUnauthorized(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
