package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenType = "bearer"

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IssueToken signs an HS256 token carrying subject and an absolute expiry
// ttl from now.
func (s *Service) IssueToken(subject string, ttl time.Duration) (string, error) {
	if len(subject) == 0 {
		return "", errors.New("token subject is required")
	}

	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

// VerifyToken reports the token's subject. Any bad signature, unexpected
// algorithm, malformed payload, missing subject or past expiry yields false.
func (s *Service) VerifyToken(tokenString string) (string, bool) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", false
	}

	if len(claims.Subject) == 0 {
		return "", false
	}

	return claims.Subject, true
}
