package helpers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]models.Category{
		"Plomería":     models.CategoryPlomeria,
		"  plomeria ":  models.CategoryPlomeria,
		"ELECTRICIDAD": models.CategoryElectricidad,
		"electricista": models.CategoryElectricidad,
		"Albañilería":  models.CategoryAlbanileria,
		"albañil":      models.CategoryAlbanileria,
		"Tecnología":   models.CategoryTecnologia,
		"cerrajero":    models.CategoryCerrajeria,
		"astronauta":   models.CategoryOtros,
		"":             models.CategoryOtros,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCategory(in), in)
	}

	_, ok := LookupCategory("astronauta")
	assert.False(t, ok)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, ParseList(`["a", " b   c ", ""]`))
	assert.Equal(t, []string{"tuberias", "griferia"}, ParseList("tuberias, griferia,"))
	assert.Equal(t, []string{}, ParseList("  "))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secreto1")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto1", hash)
	assert.True(t, CheckPassword(hash, "secreto1"))
	assert.False(t, CheckPassword(hash, "secreto2"))

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tm, err := NewTokenManager(context.Background(), "test-secret", 7*24*time.Hour, "")
	require.NoError(t, err)

	id := uuid.New()
	token, err := tm.Issue(id, "a@example.com", models.RoleProvider)
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, models.RoleProvider, claims.Role)
	assert.Equal(t, 7*24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenRejections(t *testing.T) {
	tm, err := NewTokenManager(context.Background(), "test-secret", time.Hour, "")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := tm.Verify("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := tm.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := &TokenManager{secret: []byte("test-secret"), ttl: time.Hour, now: func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}}
		token, err := past.Issue(uuid.New(), "a@example.com", models.RoleClient)
		require.NoError(t, err)
		_, err = tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager(context.Background(), "other-secret", time.Hour, "")
		require.NoError(t, err)
		token, err := other.Issue(uuid.New(), "a@example.com", models.RoleClient)
		require.NoError(t, err)
		_, err = tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rsa without jwks", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, rsaClaims()).SignedString(key)
		require.NoError(t, err)
		_, err = tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func rsaClaims() Claims {
	return Claims{
		UserID: uuid.NewString(),
		Email:  "fed@example.com",
		Role:   models.RoleClient,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://idp.example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenVerifiesAgainstJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "k1",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	defer srv.Close()

	tm, err := NewTokenManager(context.Background(), "test-secret", time.Hour, srv.URL)
	require.NoError(t, err)
	defer tm.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, rsaClaims())
	token.Header["kid"] = "k1"
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims, err := tm.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "fed@example.com", claims.Email)
}

func TestClaimsRoles(t *testing.T) {
	admin := &Claims{Role: models.RoleAdmin}
	client := &Claims{Role: models.RoleClient, UserID: "u1"}

	assert.True(t, admin.HasRole(models.RoleProvider))
	assert.True(t, client.HasRole(models.RoleClient, models.RoleProvider))
	assert.False(t, client.HasRole(models.RoleProvider))
	assert.True(t, client.IsOwner("u1"))
}
