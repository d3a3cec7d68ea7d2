package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventmanagement/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type jwtCodec struct {
	secret []byte
	leeway time.Duration
}

// NewJWTCodec returns a TokenIssuer/TokenVerifier pair backed by HS256 JWTs.
// The leeway is applied to expiry checks during verification to tolerate
// clock skew between issuer and verifier.
func NewJWTCodec(secret string, leeway time.Duration) *jwtCodec {
	return &jwtCodec{secret: []byte(secret), leeway: leeway}
}

var (
	_ domain.TokenIssuer   = (*jwtCodec)(nil)
	_ domain.TokenVerifier = (*jwtCodec)(nil)
)

func (c *jwtCodec) Issue(identity domain.Identity, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Role: string(identity.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates the token. Structural problems, signature
// mismatches, and expiry all collapse into ErrInvalidToken; the caller does
// not need to distinguish them.
func (c *jwtCodec) Verify(tokenString string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithLeeway(c.leeway), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return domain.Identity{ID: claims.Subject, Role: role}, nil
}
