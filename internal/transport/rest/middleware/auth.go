package middleware

import (
	"brainarcade/internal/model"
	"context"
	"net/http"
	"strings"
)

type claimsKey struct{}

// TokenValidator checks session tokens
type TokenValidator interface {
	ValidateSessionToken(token string) (*model.SessionClaims, error)
}

// AuthMiddleware gates routes that act on one live session
type AuthMiddleware struct {
	authSvc TokenValidator
}

func NewAuthMiddleware(authSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireSession accepts the token as "Authorization: Bearer <jwt>" or as a
// ?token= query parameter, for hosts that cannot set headers.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			unauthorized(w, "missing session token")
			return
		}

		claims, err := m.authSvc.ValidateSessionToken(token)
		if err != nil {
			unauthorized(w, "invalid or expired session token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// Claims returns the validated session claims, or nil outside RequireSession
func Claims(ctx context.Context) *model.SessionClaims {
	c, _ := ctx.Value(claimsKey{}).(*model.SessionClaims)
	return c
}

// GetSessionID returns the session the request's token was issued for
func GetSessionID(ctx context.Context) string {
	if c := Claims(ctx); c != nil {
		return c.SessionID
	}
	return ""
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="session"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
