package auth

import (
	"testing"
	"time"
)

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("u-1", "Jane Smith", "jane@example.com", RoleDoctor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Errorf("expected subject u-1, got %s", claims.Subject)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
	if claims.Email != "jane@example.com" {
		t.Errorf("unexpected email %s", claims.Email)
	}
}

func TestIssuer_RejectsInvalidRole(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)

	if _, err := issuer.Issue("u-1", "X", "x@example.com", "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	other := NewIssuer([]byte("other-secret"), time.Hour)

	token, err := issuer.Issue("u-1", "Jane", "jane@example.com", RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), -time.Minute)

	token, err := issuer.Issue("u-1", "Jane", "jane@example.com", RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected verification failure for expired token")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleDoctor, RolePatient} {
		if !ValidRole(role) {
			t.Errorf("expected %s to be valid", role)
		}
	}
	if ValidRole("nurse") {
		t.Error("expected nurse to be invalid")
	}
	if ValidRole("") {
		t.Error("expected empty role to be invalid")
	}
}
