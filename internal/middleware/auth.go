package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"

	"github.com/horizonbank/backend/internal/session"
)

type contextKey string

const identityKey contextKey = "identity"

// Session resolves the caller's identity and stores it in the request
// context. The session cookie is checked first; API clients without a
// cookie may instead present the JWT issued at login as a Bearer token.
// Requests without a resolvable identity pass through with no identity in
// context, and each handler decides whether that is a 401.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := session.FromRequest(r)
		if identity == nil {
			identity = identityFromBearer(r)
		}

		if identity != nil {
			r = r.WithContext(WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, identity *session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the identity resolved by Session, or nil for an
// unauthenticated request.
func IdentityFrom(ctx context.Context) *session.Identity {
	identity, _ := ctx.Value(identityKey).(*session.Identity)
	return identity
}

func identityFromBearer(r *http.Request) *session.Identity {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return nil
	}

	identity := &session.Identity{Email: email}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	return identity
}
