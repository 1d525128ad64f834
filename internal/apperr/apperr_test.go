package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	errMissing := New(NotFound, "gateway not found")
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"sentinel", errMissing, NotFound},
		{"wrapped sentinel", fmt.Errorf("loading gateway: %w", errMissing), NotFound},
		{"wrap with cause", Wrap(Conflict, "uid exists", cause), Conflict},
		{"unclassified", cause, Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	sentinel := New(BadRequest, "device limit reached")
	wrapped := fmt.Errorf("attach: %w", sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Error("errors.Is() should match the wrapped sentinel")
	}
	if errors.Is(wrapped, New(BadRequest, "device limit reached")) {
		t.Error("errors.Is() should not match a distinct value with the same message")
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Wrap(Internal, "inserting gateway", cause)

	if got := err.Error(); got != "inserting gateway: constraint failed" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap() should expose the cause")
	}
	if got := MessageOf(err, "fallback"); got != "inserting gateway" {
		t.Errorf("MessageOf() = %q, want %q", got, "inserting gateway")
	}
	if got := MessageOf(cause, "fallback"); got != "fallback" {
		t.Errorf("MessageOf(unclassified) = %q, want fallback", got)
	}
}
