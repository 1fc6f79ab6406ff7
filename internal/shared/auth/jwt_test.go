package auth

import (
	"testing"
)

func TestSignAndVerify(t *testing.T) {
	secret := []byte("test-secret")

	token, err := Sign(secret, "user-1", "a@b.c", "Alice")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := Verify(secret, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected sub user-1, got %q", claims.Subject)
	}
	if claims.Email != "a@b.c" {
		t.Fatalf("expected email a@b.c, got %q", claims.Email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Sign([]byte("secret-a"), "user-1", "", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify([]byte("secret-b"), token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := Verify([]byte("secret"), "not.a.token"); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestGuestID(t *testing.T) {
	id := GuestID("abc")
	if id != "guest:abc" {
		t.Fatalf("unexpected guest id %q", id)
	}
	if !IsGuestID(id) {
		t.Fatalf("expected IsGuestID true")
	}
	if IsGuestID("user-1") {
		t.Fatalf("expected IsGuestID false for registered user")
	}
}
