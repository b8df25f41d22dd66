package middleware

import (
	"context"
	"net/http"

	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/pkg/ctxutil"
)

// APIKeyHeader is the header clients present their opaque key in.
const APIKeyHeader = "X-API-Key"

type accountResolver interface {
	ResolveAPIKey(ctx context.Context, apiKey string) (*domain.Account, error)
}

// Auth returns middleware that resolves the X-API-Key header to an account
// and stores its identity in the request context. Requests without a valid
// key are rejected with 401; every route behind this middleware requires
// authentication.
func Auth(resolver accountResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				unauthorized(w, "missing API key")
				return
			}

			acc, err := resolver.ResolveAPIKey(r.Context(), key)
			if err != nil {
				unauthorized(w, "invalid API key")
				return
			}

			ctx := ctxutil.WithAccountID(r.Context(), acc.ID)
			ctx = ctxutil.WithRole(ctx, acc.Role.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`)) //nolint:errcheck
}
