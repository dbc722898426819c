// Package secret generates one-time codes and signs/verifies the compact
// claim tokens used for sessions, verification links, and password resets.
package secret

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credauth/internal/domain"
)

// VerificationSubject is the sentinel id claim marking a token as an
// email-verification token rather than a session token.
const VerificationSubject = "email-verification-token"

// Claims is the bundle carried by every signed token. ID holds the account
// id, or VerificationSubject for verification-link tokens.
type Claims struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateCode returns a zero-padded 6-digit one-time code.
// The source is a general-purpose PRNG, matching the behavior the codes
// have always had; it is not cryptographically secure.
func GenerateCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// Sign issues an HS256 token over the claims with issued-at now and the
// given ttl. The caller's Issuer, if set, is preserved. Every token gets a
// fresh jti so reissued tokens never serialize identically, which the
// stored-token replay check relies on.
func Sign(claims Claims, key []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.RegisteredClaims.ID = uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(key)
}

// Verify parses and validates a token. Malformed or tampered tokens fail
// with domain.ErrInvalidToken; structurally valid tokens past their expiry
// fail with domain.ErrExpired. Validity is purely signature+time based.
func Verify(tokenStr string, key []byte) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token has expired: %w", domain.ErrExpired)
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}
	return claims, nil
}
