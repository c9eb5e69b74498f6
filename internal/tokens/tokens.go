package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/config"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSecret is returned when JWT_SECRET is not configured.
var ErrNoSecret = errors.New("jwt secret not configured")

// GenerateSessionToken creates a signed HS256 token describing the session.
func GenerateSessionToken(cfg *config.Config, s models.Session, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   s.Identifier,
		"name":  s.Name,
		"email": s.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// claimsToken exposes verified claims to the middleware.
type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims target %T", v)
	}
	*m = map[string]interface{}(t.claims)
	return nil
}

// Verifier checks HS256 session tokens against the configured secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(cfg *config.Config) (*Verifier, error) {
	if cfg.JWT.Secret == "" {
		return nil, ErrNoSecret
	}
	return &Verifier{secret: []byte(cfg.JWT.Secret)}, nil
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return &claimsToken{claims: claims}, nil
}

// ExpiresAt returns the exp claim of an already verified claims map.
func ExpiresAt(claims map[string]interface{}) (time.Time, bool) {
	exp, err := jwt.MapClaims(claims).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
