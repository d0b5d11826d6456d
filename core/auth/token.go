package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer          = "melodify"
	audienceAccess       = "authenticated"
	audienceVerification = "email_verification"
)

// AccessClaims are carried by bearer tokens.
type AccessClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// VerificationClaims are carried by email confirmation links.
type VerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenSigner issues and validates HS256 tokens with one shared key.
type TokenSigner struct {
	key []byte
	now func() time.Time
}

// NewTokenSigner returns a signer using key. now may be nil.
func NewTokenSigner(key string, now func() time.Time) *TokenSigner {
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{key: []byte(key), now: now}
}

// IssueAccessToken signs a token for the session.
func (s *TokenSigner) IssueAccessToken(userID, email, sessionID string, expiresAt time.Time) (string, error) {
	claims := AccessClaims{
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audienceAccess},
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return s.sign(claims)
}

// ParseAccessToken validates signature, issuer, audience and expiry.
func (s *TokenSigner) ParseAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, audienceAccess); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueVerificationToken signs an email confirmation token.
func (s *TokenSigner) IssueVerificationToken(userID, email string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := VerificationClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audienceVerification},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return s.sign(claims)
}

// ParseVerificationToken validates an email confirmation token.
func (s *TokenSigner) ParseVerificationToken(token string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := s.parse(token, claims, audienceVerification); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenSigner) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenSigner) parse(token string, claims jwt.Claims, audience string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
