package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizonbank/backend/internal/session"
)

func resolveIdentity(t *testing.T, mutate func(*http.Request)) *session.Identity {
	t.Helper()

	var resolved *session.Identity
	handler := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved = IdentityFrom(r.Context())
	}))

	r := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	mutate(r)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	return resolved
}

func TestSession_Cookie(t *testing.T) {
	identity := resolveIdentity(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{
			Name:  session.CookieName,
			Value: session.Encode(session.Identity{Email: "alice@example.com", Role: "user"}),
		})
	})

	require.NotNil(t, identity)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "user", identity.Role)
}

func TestSession_BearerToken(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret-key")
	t.Cleanup(viper.Reset)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	identity := resolveIdentity(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signed)
	})

	require.NotNil(t, identity)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "admin", identity.Role)
}

func TestSession_Unauthenticated(t *testing.T) {
	t.Run("no credentials", func(t *testing.T) {
		identity := resolveIdentity(t, func(*http.Request) {})
		assert.Nil(t, identity)
	})

	t.Run("malformed bearer token", func(t *testing.T) {
		viper.Set("jwt.secret_key", "test-secret-key")
		t.Cleanup(viper.Reset)

		identity := resolveIdentity(t, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not-a-jwt")
		})
		assert.Nil(t, identity)
	})

	t.Run("expired token", func(t *testing.T) {
		viper.Set("jwt.secret_key", "test-secret-key")
		t.Cleanup(viper.Reset)

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "alice@example.com",
			"exp":   time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		identity := resolveIdentity(t, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signed)
		})
		assert.Nil(t, identity)
	})

	t.Run("garbage cookie passes through", func(t *testing.T) {
		identity := resolveIdentity(t, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-json"})
		})
		assert.Nil(t, identity)
	})
}
