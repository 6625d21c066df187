package services

import (
	"testing"
	"time"
)

func testSigner(email string, ttl time.Duration) (string, error) {
	return "tok-" + email, nil
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewAuthService(AdminCredentials{Email: "admin@example.com", PasswordHash: hash}, testSigner)

	res, err := svc.Login("admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "tok-admin@example.com" {
		t.Fatalf("unexpected token %q", res.Token)
	}

	// email comparison is case-insensitive
	if _, err := svc.Login("Admin@Example.com", "s3cret"); err != nil {
		t.Fatalf("case-folded email rejected: %v", err)
	}

	if _, err := svc.Login("admin@example.com", "wrong"); err == nil {
		t.Fatalf("wrong password must fail")
	}
	if _, err := svc.Login("other@example.com", "s3cret"); err == nil {
		t.Fatalf("unknown email must fail")
	}
	if _, err := svc.Login("", ""); err == nil {
		t.Fatalf("blank credentials must fail")
	}
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	svc := NewAuthService(AdminCredentials{Email: "admin@example.com"}, testSigner)
	if _, err := svc.Login("admin@example.com", "anything"); err == nil {
		t.Fatalf("login must be disabled when no hash is configured")
	}
}
