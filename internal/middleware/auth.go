package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/identity"
)

// TokenAuthenticator verifies a raw session token.
type TokenAuthenticator interface {
	Authenticate(token string) (*identity.Principal, error)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (*identity.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*identity.Principal)
	return p, ok && p != nil
}

// Auth guards routes with user or seller session tokens. Tokens are read
// from the role's cookie, falling back to an Authorization bearer header.
type Auth struct {
	tokens       TokenAuthenticator
	userCookie   string
	sellerCookie string
}

func NewAuth(tokens TokenAuthenticator, userCookie, sellerCookie string) *Auth {
	return &Auth{tokens: tokens, userCookie: userCookie, sellerCookie: sellerCookie}
}

// RequireUser admits requests carrying a valid user token.
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return a.require(identity.RoleUser, a.userCookie, next)
}

// RequireSeller admits requests carrying a valid seller token.
func (a *Auth) RequireSeller(next http.Handler) http.Handler {
	return a.require(identity.RoleSeller, a.sellerCookie, next)
}

func (a *Auth) require(role identity.Role, cookie string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.tokens.Authenticate(tokenFrom(r, cookie))
		if err != nil {
			writeUnauthorized(w, apperr.PublicMessage(err))
			return
		}
		if p.Role != role {
			writeUnauthorized(w, "Please login to continue")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func tokenFrom(r *http.Request, cookie string) string {
	if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    false,
		"message":    message,
		"statusCode": http.StatusUnauthorized,
	})
}
