package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/config"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var jane = models.Session{Identifier: "A100", Name: "Jane Doe", Email: "jane@x.edu"}

func cfgWithSecret(s string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = s
	return cfg
}

func TestGenerateAndVerify(t *testing.T) {
	cfg := cfgWithSecret("test-secret-32-bytes-should-be-long-enough")
	tok, err := GenerateSessionToken(cfg, jane, 2*time.Minute)
	require.NoError(t, err)

	v, err := NewVerifier(cfg)
	require.NoError(t, err)
	got, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, got.Claims(&claims))
	require.Equal(t, "A100", claims["sub"])
	require.Equal(t, "Jane Doe", claims["name"])

	exp, ok := ExpiresAt(claims)
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(2*time.Minute), exp, 5*time.Second)
}

func TestVerify_Rejects(t *testing.T) {
	cfg := cfgWithSecret("secret-one-32-bytes-xxxxxxxxxxxxxxxx")
	v, err := NewVerifier(cfg)
	require.NoError(t, err)

	other, err := GenerateSessionToken(cfgWithSecret("different-secret-xxxxxxxxxxxxxxxx"), jane, time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), other)
	require.Error(t, err, "wrong secret")

	expired, err := GenerateSessionToken(cfg, jane, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), expired)
	require.Error(t, err, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "A100"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), raw)
	require.Error(t, err, "alg none")

	_, err = v.Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

func TestNoSecret(t *testing.T) {
	cfg := &config.Config{}
	_, err := GenerateSessionToken(cfg, jane, time.Minute)
	require.ErrorIs(t, err, ErrNoSecret)
	_, err = NewVerifier(cfg)
	require.ErrorIs(t, err, ErrNoSecret)
}
