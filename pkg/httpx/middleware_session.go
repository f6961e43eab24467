package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

// SessionCookieName is the cookie the session token travels in. API clients
// may alternatively send it as a bearer token.
const SessionCookieName = "saas_session"

// SessionMiddleware verifies the session token on the request and attaches
// its claims to the context. Unauthenticated requests get a 401 carrying the
// originally requested path so the client can return after login.
func SessionMiddleware(signer *sessionx.Signer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := sessionTokenFromRequest(r)
			if raw == "" {
				writeUnauthenticated(w, r, "missing session token")
				return
			}

			claims, err := signer.Verify(raw)
			if err != nil {
				log.Warn("session verification failed", "err", err)
				writeUnauthenticated(w, r, "session invalid or expired")
				return
			}

			ctx = contextWithSession(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetSessionCookie writes (or rewrites) the session cookie. Called on login,
// signup, tenant/workspace switches, and stale-workspace correction.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie (logout).
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	return ""
}

func contextWithSession(ctx context.Context, c sessionx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.UserID)
	ctx = context.WithValue(ctx, CtxKeySession, c)
	return ctx
}

func writeUnauthenticated(w http.ResponseWriter, r *http.Request, desc string) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:            "unauthenticated",
		ErrorDescription: desc,
		RedirectTo:       r.URL.RequestURI(),
	})
}
