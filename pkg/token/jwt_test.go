package token

import (
	"testing"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 1)
	tok, err := m.GenerateToken("mini-program-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := m.VerifyToken(tok)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.ClientID != "mini-program-1" {
		t.Errorf("ClientID = %q", claims.ClientID)
	}
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	tok, _ := NewJWTManager("secret-a", 1).GenerateToken("c")
	if _, err := NewJWTManager("secret-b", 1).VerifyToken(tok); err == nil {
		t.Error("VerifyToken() accepted a token signed with another secret")
	}
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("s", 0)
	tok, _ := m.GenerateToken("c")
	if _, err := m.VerifyToken(tok); err == nil {
		t.Error("VerifyToken() accepted an expired token")
	}
}

func TestGenerateRandomString(t *testing.T) {
	a := GenerateRandomString(16)
	b := GenerateRandomString(16)
	if len(a) != 32 {
		t.Errorf("len = %d, want 32", len(a))
	}
	if a == b {
		t.Error("two random strings are equal")
	}
}
