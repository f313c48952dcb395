// Package jwttoken issues and validates signer tokens. A signer token is an
// EdDSA JWT whose subject is a base58 address and whose signature verifies
// under that same address read as an ed25519 public key, so holding the token
// proves control of the address.
package jwttoken

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tns/pkg/domain"
	dErrors "tns/pkg/domain-errors"
)

// Claims represents the JWT claims carried by a signer token.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService handles signer token creation and validation.
type JWTService struct {
	audience string
	leeway   time.Duration
}

func NewJWTService(audience string) *JWTService {
	return &JWTService{audience: audience, leeway: 30 * time.Second}
}

// AddressOf returns the address controlled by key.
func AddressOf(key ed25519.PrivateKey) domain.Address {
	var a domain.Address
	copy(a[:], key.Public().(ed25519.PublicKey))
	return a
}

// GenerateSignerToken signs a token proving control of key's address.
func (s *JWTService) GenerateSignerToken(key ed25519.PrivateKey, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   AddressOf(key).String(),
			Audience:  []string{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(key)
}

// ValidateToken verifies the token against its own subject and returns the
// signer address.
func (s *JWTService) ValidateToken(tokenString string) (domain.Address, error) {
	var signer domain.Address
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		sub, err := token.Claims.GetSubject()
		if err != nil {
			return nil, err
		}
		signer, err = domain.ParseAddress(sub)
		if err != nil {
			return nil, err
		}
		return ed25519.PublicKey(signer.Bytes()), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Address{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return domain.Address{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return domain.Address{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return signer, nil
}
