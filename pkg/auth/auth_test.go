package auth

import (
	"context"
	"testing"
	"time"

	apperrors "hallpass/pkg/errors"
)

const testSecret = "unit-test-secret-0123456789"

func TestHasRole(t *testing.T) {
	p := &Principal{ID: "u1", Roles: []string{RoleFaculty, RoleUser}}

	if !p.HasRole(RoleFaculty) {
		t.Error("expected faculty role")
	}
	if !p.HasRole("Faculty") {
		t.Error("role comparison should be case-insensitive")
	}
	if p.HasRole(RoleAdmin) {
		t.Error("unexpected admin role")
	}
	if !p.HasAnyRole(RoleAdmin, RoleUser) {
		t.Error("expected match on user role")
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		p        *Principal
		roles    []string
		wantCode string
	}{
		{"nil principal", nil, []string{RoleAdmin}, apperrors.CodeUnauthorized},
		{"missing role", &Principal{ID: "u1", Roles: []string{RoleStudent}}, []string{RoleAdmin}, apperrors.CodeForbidden},
		{"has role", &Principal{ID: "u1", Roles: []string{RoleAdmin}}, []string{RoleAdmin}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.p, tt.roles...)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	original := &Principal{
		ID:    "user-123",
		Name:  "Dana Levi",
		Roles: []string{RoleFaculty},
	}

	raw, err := IssueToken(testSecret, original, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	parsed, err := ParseToken(testSecret, raw)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if parsed.ID != original.ID || parsed.Name != original.Name {
		t.Errorf("principal mismatch: got %+v", parsed)
	}
	if !parsed.HasRole(RoleFaculty) {
		t.Error("faculty role lost in round trip")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	raw, err := IssueToken(testSecret, &Principal{ID: "u1"}, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := ParseToken("some-other-secret-value", raw); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	raw, err := IssueToken(testSecret, &Principal{ID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := ParseToken(testSecret, raw); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED for expired token, got %v", err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	p := &Principal{ID: "u1"}
	ctx := NewContext(context.Background(), p)

	got, ok := FromContext(ctx)
	if !ok || got.ID != "u1" {
		t.Errorf("FromContext = %+v, %v", got, ok)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context should not carry a principal")
	}
}
