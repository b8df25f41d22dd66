package middleware

import (
	"context"

	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/pkg/ctxutil"
)

// RequireAdmin returns domain.ErrForbidden if the context identity is not
// an admin. Use inside REST handlers, not as HTTP middleware.
func RequireAdmin(ctx context.Context) error {
	if !ctxutil.IsAdminCtx(ctx) {
		return domain.ErrForbidden
	}
	return nil
}
