package httpx

import (
	"context"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type ctxKey string

const (
	CtxKeyUserID  ctxKey = "user_id"
	CtxKeySession ctxKey = "session" // full sessionx.Claims
)

// SessionFromContext returns the verified session claims attached by
// SessionMiddleware, if any.
func SessionFromContext(ctx context.Context) (sessionx.Claims, bool) {
	c, ok := ctx.Value(CtxKeySession).(sessionx.Claims)
	return c, ok
}
