package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("pass/port.pdf")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "pass_port.pdf" {
		t.Fatalf("expected pass_port.pdf, got %q", got)
	}

	if _, err := SanitizeFileName("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatalf("expected empty rejection")
	}
}

func TestHashUserKeyStable(t *testing.T) {
	a := HashUserKey("user-1")
	b := HashUserKey("user-1")
	if a != b {
		t.Fatalf("expected stable hash")
	}
	if a == HashUserKey("user-2") {
		t.Fatalf("expected distinct hashes for distinct users")
	}
}
