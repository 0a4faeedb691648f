package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Room", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad limit"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("overlap"), CodeConflict, http.StatusConflict},
		{"concurrent modification", ConcurrentModification("Booking"), CodeConcurrentModification, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db down")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestConcurrentModificationDistinctFromConflict(t *testing.T) {
	cm := ConcurrentModification("Booking")
	c := Conflict("overlap")

	if cm.Code == c.Code {
		t.Fatalf("expected distinct codes, both are %s", cm.Code)
	}
	if cm.StatusCode() != c.StatusCode() {
		t.Errorf("both map to HTTP conflict, got %d and %d", cm.StatusCode(), c.StatusCode())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("insert failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestErrorString(t *testing.T) {
	err := Wrap(fmt.Errorf("low level"), CodeInternal, "high level", http.StatusInternalServerError)
	got := err.Error()
	want := "INTERNAL_ERROR: high level (caused by: low level)"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("plain")
	appErr := AsAppError(plain)
	if appErr.Code != CodeInternal {
		t.Errorf("plain error should map to %s, got %s", CodeInternal, appErr.Code)
	}

	original := Conflict("overlap")
	if AsAppError(original) != original {
		t.Error("AsAppError should return the original AppError unchanged")
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(Conflict("x"), CodeConflict) {
		t.Error("HasCode should match the conflict code")
	}
	if HasCode(errors.New("plain"), CodeConflict) {
		t.Error("HasCode should reject non-AppError values")
	}
}
