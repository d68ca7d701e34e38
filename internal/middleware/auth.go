package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

// UserHeader carries the caller's user id when the deployment trusts an
// upstream gateway to authenticate.
const UserHeader = "X-User-ID"

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Middleware struct {
	AuthClient tokenVerifier
}

func NewMiddleware(client tokenVerifier) *Middleware {
	return &Middleware{AuthClient: client}
}

type contextKey string

const UIDKey contextKey = "uid"

// FirebaseAuth verifies a Bearer ID token.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid Authorization header", http.StatusUnauthorized)
			return
		}

		token, err := m.AuthClient.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			logger.FromContext(r.Context()).Warn("id token rejected", "error", err)
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUID(r.Context(), token.UID)))
	})
}

// HeaderAuth trusts the X-User-ID header.
func HeaderAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(UserHeader))
		if uid == "" || uid == "undefined" {
			http.Error(w, "missing "+UserHeader+" header", http.StatusUnauthorized)
			return
		}
		if strings.ContainsAny(uid, `/\`) || uid == "." || uid == ".." {
			http.Error(w, "invalid "+UserHeader+" header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUID(r.Context(), uid)))
	})
}

func withUID(ctx context.Context, uid string) context.Context {
	_, ctx = logger.With(ctx, "user_id", uid)
	return context.WithValue(ctx, UIDKey, uid)
}

// UID returns the authenticated user id, or "" outside an auth middleware.
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}
