package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TokenSigner issues a bearer token for the authoring surface.
type TokenSigner func(email string, ttl time.Duration) (string, error)

// AdminCredentials is the single builder account. PasswordHash is a bcrypt
// hash; an empty hash disables login entirely.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthService gates the authoring surface behind one admin login. The
// respondent surface stays public.
type AuthService struct {
	creds     AdminCredentials
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token string
	Email string
}

func NewAuthService(creds AdminCredentials, signer TokenSigner) *AuthService {
	return &AuthService{
		creds:     creds,
		signToken: signer,
		tokenTTL:  30 * 24 * time.Hour,
	}
}

// HashPassword produces a bcrypt hash suitable for AdminCredentials.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	if s.creds.PasswordHash == "" || !strings.EqualFold(email, s.creds.Email) {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	tok, err := s.signToken(s.creds.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, Email: s.creds.Email}, nil
}
