package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims represents the JWT claims issued by the identity provider
type Claims struct {
	MemberID string `json:"member_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// MemberUUID parses the member_id claim
func (c *Claims) MemberUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.MemberID)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}

// GenerateAccessToken signs an access token. Tokens are normally minted by
// the identity provider; this is used for local tooling and tests.
func GenerateAccessToken(memberID uuid.UUID, role, secret, issuer string, expiryMinutes int) (string, error) {
	now := time.Now()
	claims := Claims{
		MemberID: memberID.String(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   memberID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken validates an access token and returns claims
func ValidateAccessToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if _, err := claims.MemberUUID(); err != nil {
			return nil, err
		}
		return claims, nil
	}

	return nil, ErrTokenInvalid
}
