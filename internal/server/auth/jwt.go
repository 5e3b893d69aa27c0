package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the fixed "iss" claim of every token.
	Issuer = "self"
	// TokenTTL is the lifetime of an issued token.
	TokenTTL = 90 * time.Minute
)

// Claims are the registered claims plus the space-separated authority list.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// TokenService issues and validates stateless bearer tokens.
type TokenService struct {
	keys KeyProvider
	now  func() time.Time
}

// NewTokenService builds a TokenService. A nil clock means time.Now.
func NewTokenService(keys KeyProvider, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{keys: keys, now: now}
}

// Issue signs a token for subject that expires TokenTTL from now.
func (s *TokenService) Issue(subject, scope string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", common.ErrorValidation)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		Scope: scope,
	})
	token.Header["kid"] = s.keys.KeyID()

	signed, err := token.SignedString(s.keys.PrivateKey())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate checks signature, issuer and expiry and returns the subject.
// Expired tokens yield common.ErrTokenExpired; every other failure yields
// common.ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.keys.PublicKey(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
