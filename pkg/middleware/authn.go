package middleware

import (
	"net/http"
	"strings"

	"hallpass/pkg/auth"
	"hallpass/pkg/logger"
)

// Authentication parses an optional Bearer token and stores the resulting
// principal in the request context. Requests without a token continue
// anonymously; handlers that mutate state demand a principal themselves.
// A present but invalid token is rejected outright.
func Authentication(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasPrefix(header, "Bearer ") {
				rejectUnauthenticated(w, log, r, "malformed authorization header")
				return
			}

			principal, err := auth.ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				rejectUnauthenticated(w, log, r, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), principal)))
		})
	}
}

func rejectUnauthenticated(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Rejected bearer token",
		"request_id", requestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"reason", reason,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing credentials"}`))
}
