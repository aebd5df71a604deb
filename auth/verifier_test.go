package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func signHS256(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "https://id.example.com/",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:    "alice@example.com",
		Username: "alice",
	}
}

func TestVerifier_HS256(t *testing.T) {
	ctx := context.Background()
	v, err := NewVerifier(ctx, VerifierConfig{HMACSecret: testSecret, Issuer: "https://id.example.com/"})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		claims, err := v.Verify(ctx, "Bearer "+signHS256(t, testSecret, validClaims("user|1")))
		require.NoError(t, err)
		assert.Equal(t, "user|1", claims.Subject)
		assert.Equal(t, "alice", claims.Identity().Username)
		assert.Equal(t, "user|1", claims.Identity().ExternalID)
	})

	tests := []struct {
		name  string
		token func() string
	}{
		{"empty", func() string { return "" }},
		{"garbage", func() string { return "not.a.token" }},
		{"wrong secret", func() string { return signHS256(t, "another-secret", validClaims("user|1")) }},
		{"expired", func() string {
			c := validClaims("user|1")
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			return signHS256(t, testSecret, c)
		}},
		{"no expiry", func() string {
			c := validClaims("user|1")
			c.ExpiresAt = nil
			return signHS256(t, testSecret, c)
		}},
		{"wrong issuer", func() string {
			c := validClaims("user|1")
			c.Issuer = "https://evil.example.com/"
			return signHS256(t, testSecret, c)
		}},
		{"no subject", func() string { return signHS256(t, testSecret, validClaims("")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, tt.token())
			assert.Error(t, err)
		})
	}
}

func TestVerifier_JWKS(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub, err := jwk.FromRaw(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, "key-1"))
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer srv.Close()

	v, err := NewVerifier(ctx, VerifierConfig{JWKSURL: srv.URL})
	require.NoError(t, err)

	sign := func(kid string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("user|2"))
		tok.Header["kid"] = kid
		s, err := tok.SignedString(priv)
		require.NoError(t, err)
		return s
	}

	claims, err := v.Verify(ctx, sign("key-1"))
	require.NoError(t, err)
	assert.Equal(t, "user|2", claims.Subject)

	_, err = v.Verify(ctx, sign("key-2"))
	assert.Error(t, err, "unknown key id")

	_, err = v.Verify(ctx, signHS256(t, testSecret, validClaims("user|2")))
	assert.Error(t, err, "HS256 is off without a secret")
}

func TestNewVerifier_NeedsAKeySource(t *testing.T) {
	_, err := NewVerifier(context.Background(), VerifierConfig{})
	assert.Error(t, err)
}
