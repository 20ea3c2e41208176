package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("expected hash to differ from plaintext")
	}
	if !h.CheckPasswordHash("s3cret-pass", hash) {
		t.Fatal("expected matching password to verify")
	}
	if h.CheckPasswordHash("wrong-pass", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestPasswordHasherRejectsEmptyPassword(t *testing.T) {
	t.Parallel()

	if _, err := NewPasswordHasher(bcrypt.MinCost).HashPassword(""); err == nil {
		t.Fatal("expected empty password error")
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	t.Parallel()

	if got := NewPasswordHasher(1).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", got, bcrypt.DefaultCost)
	}
	if got := NewPasswordHasher(12).Cost; got != 12 {
		t.Fatalf("cost = %d, want 12", got)
	}
}
