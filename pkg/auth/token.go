package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims are the claims carried by issued access tokens
type TokenClaims struct {
	UserID string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens with a shared secret
type TokenService struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// NewTokenService creates a new TokenService
func NewTokenService(secret, issuer string, expiry time.Duration) *TokenService {
	return &TokenService{
		Secret: secret,
		Issuer: issuer,
		Expiry: expiry,
	}
}

// IssueToken signs a token for the identity with a fresh jti and the
// configured expiry.
func (s *TokenService) IssueToken(identity Identity) (string, string, time.Time, error) {
	now := time.Now().UTC()
	jti := uuid.New().String()
	claims := TokenClaims{
		UserID: identity.ID,
		Email:  identity.Email,
		Name:   identity.Name,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
			Issuer:    s.Issuer,
			Subject:   identity.ID,
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.Secret))
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, claims.ExpiresAt.Time, nil
}

// ParseToken verifies signature and expiry and returns the decoded claims
func (s *TokenService) ParseToken(tokenStr string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
