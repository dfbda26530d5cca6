package requestid

import "testing"

func TestNew_UniqueAndSized(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(a) != 32 {
		t.Fatalf("len=%d, want 32 hex chars", len(a))
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
}
