package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/hospital-admin/internal"
)

// Authorizer is satisfied by the auth policies.
type Authorizer interface {
	Authorize(ctx context.Context, actor *internal.Actor, action string) error
}

// RequirePolicy gates a route on policy before the handler reads the body or path, so an
// unauthorized caller always gets 403 whatever it sent. Expects the auth middleware to
// have stored the actor.
func RequirePolicy(policy Authorizer, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := internal.ActorFromContext(r.Context())
			if err := policy.Authorize(r.Context(), actor, action); err != nil {
				appErr, ok := internal.IsAppError(err)
				if !ok {
					appErr = internal.NewInternalError("authorization check failed", err)
				}
				status, body := appErr.ToHTTPResponse()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(body)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
