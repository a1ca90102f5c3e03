package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(NotFound, "string not found")

	if err.Code != NotFound {
		t.Errorf("Code = %v, want %v", err.Code, NotFound)
	}
	if err.Message != "string not found" {
		t.Errorf("Message = %q, want %q", err.Message, "string not found")
	}
	if err.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
	}
}

func TestRegistryError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *RegistryError
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       Wrap(InternalError, "insert failed", errors.New("disk I/O error")),
			wantParts: []string{"INTERNAL_ERROR", "insert failed", "disk I/O error"},
		},
		{
			name:      "without cause",
			err:       Newf(InvalidFilter, "min_length must be an integer, got %q", "abc"),
			wantParts: []string{"INVALID_FILTER", `got "abc"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, should contain %q", got, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", New(Conflict, "string already exists"))

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"direct", New(MissingField, "missing"), MissingField},
		{"wrapped with fmt", wrapped, Conflict},
		{"plain error", errors.New("boom"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	if Is(nil, NotFound) {
		t.Error("Is(nil) should be false")
	}
	if !Is(New(NotFound, "x"), NotFound) {
		t.Error("Is() should match same code")
	}
	if Is(New(NotFound, "x"), Conflict) {
		t.Error("Is() should not match a different code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(InvalidFilter, "bad filter").WithDetails(map[string]string{"param": "max_length"})
	details, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatalf("Details has type %T", err.Details)
	}
	if details["param"] != "max_length" {
		t.Errorf("details[param] = %q", details["param"])
	}
}
