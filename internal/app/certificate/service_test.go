package certificate

import (
	"testing"
	"time"
)

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret", "percity", 0)

	token, err := svc.GenerateToken(Completion{
		StudentID:    "student-1",
		VariantID:    "city-classic",
		Total:        84,
		AttemptsUsed: 1,
	})
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if got.StudentID != "student-1" {
		t.Fatalf("student = %s, want student-1", got.StudentID)
	}
	if got.VariantID != "city-classic" {
		t.Fatalf("variant = %s, want city-classic", got.VariantID)
	}
	if got.Total != 84 {
		t.Fatalf("total = %v, want 84", got.Total)
	}
	if got.AttemptsUsed != 1 {
		t.Fatalf("attempts = %d, want 1", got.AttemptsUsed)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issued := NewService("secret-a", "percity", 0)
	token, err := issued.GenerateToken(Completion{StudentID: "s", VariantID: "v", Total: 1})
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	other := NewService("secret-b", "percity", 0)
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	issued := NewService("secret", "school-a", 0)
	token, err := issued.GenerateToken(Completion{StudentID: "s", VariantID: "v", Total: 1})
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	other := NewService("secret", "school-b", 0)
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected error for issuer mismatch")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService("secret", "percity", -time.Minute)
	// ttl <= 0 falls back to the default, so force a short-lived service.
	svc.ttl = -time.Minute

	token, err := svc.GenerateToken(Completion{StudentID: "s", VariantID: "v", Total: 1})
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	if _, err := svc.Verify(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestGenerateTokenRequiresStudent(t *testing.T) {
	svc := NewService("secret", "percity", 0)
	if _, err := svc.GenerateToken(Completion{VariantID: "v"}); err == nil {
		t.Fatal("expected error for missing student")
	}
}

func TestGenerateTokenRequiresConfig(t *testing.T) {
	svc := NewService("", "percity", 0)
	if _, err := svc.GenerateToken(Completion{StudentID: "s", VariantID: "v"}); err == nil {
		t.Fatal("expected error for missing certificate config")
	}
}
