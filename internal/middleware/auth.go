package middleware

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
)

// UnauthorizedFunc writes the response for a request without a valid token.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate returns HTTP middleware that validates the bearer token and
// stores the caller's auth.Identity in the request context.
func Authenticate(jwtManager *auth.JWTManager, unauthorized UnauthorizedFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			id, err := jwtManager.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth returns a Connect interceptor that validates the bearer token
// and stores the caller's auth.Identity in the context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id, err := jwtManager.Authenticate(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(auth.WithIdentity(ctx, id), req)
		}
	}
}
