// Package middleware holds the HTTP middleware of the JSON API.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
)

// Authenticator checks credentials against the user store.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*primary.User, error)
}

// Auth provides HTTP Basic authentication middleware.
type Auth struct {
	authenticator Authenticator
	realm         string
}

// NewAuth creates a new instance.
func NewAuth(authenticator Authenticator) *Auth {
	return &Auth{authenticator: authenticator, realm: "auditplus"}
}

// RequireAuth rejects requests without valid credentials and stores the
// authenticated user as the request's actor.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			a.writeAuthError(w, "missing credentials")
			return
		}

		user, err := a.authenticator.Authenticate(r.Context(), username, password)
		if err != nil {
			a.writeAuthError(w, "invalid credentials")
			return
		}

		ctx := ctxutil.WithActor(r.Context(), ctxutil.Actor{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+a.realm+`", charset="UTF-8"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": message,
		"code":  "unauthorized",
	})
}
