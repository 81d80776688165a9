package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/models"
)

const TokenIssuer = "servicios"

var ErrInvalidToken = errors.New("invalid or expired token")

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	jwks   *keyfunc.JWKS
	now    func() time.Time
}

// NewTokenManager builds an HS256 issuer/verifier. When jwksURL is set, RS/ES tokens are
// additionally accepted if they verify against the remote key set.
func NewTokenManager(ctx context.Context, secret string, ttl time.Duration, jwksURL string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	tm := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	if jwksURL == "" {
		return tm, nil
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error loading jwks: %w", err)
	}
	tm.jwks = jwks
	return tm, nil
}

func (tm *TokenManager) Close() {
	if tm.jwks != nil {
		tm.jwks.EndBackground()
	}
}

func (tm *TokenManager) Issue(userID uuid.UUID, email string, role models.Role) (string, error) {
	now := tm.now()
	claims := Claims{
		UserID: userID.String(),
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, tm.keyFor,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: bad user id", ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: bad role", ErrInvalidToken)
	}
	return claims, nil
}

func (tm *TokenManager) keyFor(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if iss, _ := token.Claims.GetIssuer(); iss != TokenIssuer {
			return nil, fmt.Errorf("unexpected issuer %q", iss)
		}
		return tm.secret, nil
	case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
		if tm.jwks == nil {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return tm.jwks.Keyfunc(token)
	}
	return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
}
