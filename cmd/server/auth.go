package main

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// parseUsers reads "user:password,user:password" credential pairs.
func parseUsers(raw string) map[string]string {
	users := map[string]string{}

	for _, pair := range strings.Split(raw, ",") {
		name, password, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || password == "" {
			continue
		}

		users[name] = password
	}

	return users
}

func basicAuth(users map[string]string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, password, ok := r.BasicAuth()

			expected := users[name]
			if !ok || expected == "" ||
				subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="transactions"`)
				writeError(w, http.StatusUnauthorized, "valid credentials required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
