package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelMatchingSurvivesWrapping(t *testing.T) {
	sentinel := New(KindPrecondition, "insufficient_funds", "insufficient balance")

	wrapped := fmt.Errorf("rent: %w", sentinel)
	if !errors.Is(wrapped, sentinel) {
		t.Fatal("expected wrapped sentinel to match")
	}

	other := New(KindPrecondition, "other_code", "different rejection")
	if errors.Is(wrapped, other) {
		t.Fatal("distinct codes must not match")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != 0 {
		t.Fatalf("expected zero kind for nil, got %v", got)
	}
	if got := KindOf(Validation("bad")); got != KindValidation {
		t.Fatalf("expected KindValidation, got %v", got)
	}
	if got := KindOf(errors.New("plain")); got != KindServer {
		t.Fatalf("expected KindServer for plain errors, got %v", got)
	}
	if got := KindOf(fmt.Errorf("wrap: %w", NotFound("volt", "9"))); got != KindNotFound {
		t.Fatalf("expected KindNotFound through wrapping, got %v", got)
	}
}

func TestServerHidesInternals(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Server(cause)
	if err.Message != "internal error" {
		t.Fatalf("server fault must not leak cause in message, got %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to remain unwrappable")
	}
}
