package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
)

// Auth verifies the bearer token and rejects requests whose token lacks a
// username claim. Every project operation resolves its owner from here,
// never from ambient session state.
func Auth(tokenAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator,
			requireUsername,
		).Handler(next)
	}
}

func requireUsername(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Username(r) == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Username returns the authenticated username, or "" when the token has
// no such claim.
func Username(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	username, _ := claims["username"].(string)
	return username
}
