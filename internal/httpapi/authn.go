package httpapi

import (
	"net/http"
	"strings"

	"pennybook.org/internal/auth"
)

const authHeader = "Authorization"

// Gate rejection messages. Both strings are part of the external contract;
// clients match on them.
const (
	msgNoToken      = "No token, authorization denied"
	msgTokenInvalid = "Token is not valid"
)

// withAuth is the per-request authorization gate. It expects
// `Scheme<space>Token` in the Authorization header, verifies the token and
// attaches the asserted user id to the request context. Requests are
// evaluated independently; nothing is cached across them.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(authHeader)
		if strings.TrimSpace(header) == "" {
			writeError(w, r, http.StatusUnauthorized, msgNoToken)
			return
		}
		parts := strings.Fields(header)
		if len(parts) < 2 {
			writeError(w, r, http.StatusUnauthorized, msgNoToken)
			return
		}
		token := parts[1]

		userID, err := a.auth.Authenticate(token)
		if err != nil {
			// Malformed, expired and forged tokens are indistinguishable
			// on purpose.
			writeError(w, r, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		ctx := auth.ContextWithUserID(r.Context(), userID)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
