package env

import (
	"testing"
	"time"
)

func TestString_Default(t *testing.T) {
	if got := String("AUTHENGINE_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("String=%q, want fallback", got)
	}
}

func TestString_Set(t *testing.T) {
	t.Setenv("AUTHENGINE_TEST_STR", "value")
	if got := String("AUTHENGINE_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("String=%q, want value", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("AUTHENGINE_TEST_DUR", "750ms")
	got, err := Duration("AUTHENGINE_TEST_DUR", time.Second)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != 750*time.Millisecond {
		t.Fatalf("Duration=%v, want 750ms", got)
	}
}

func TestDuration_Invalid(t *testing.T) {
	t.Setenv("AUTHENGINE_TEST_DUR_BAD", "soon")
	if _, err := Duration("AUTHENGINE_TEST_DUR_BAD", time.Second); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestInt(t *testing.T) {
	t.Setenv("AUTHENGINE_TEST_INT", "42")
	got, err := Int("AUTHENGINE_TEST_INT", 7)
	if err != nil {
		t.Fatalf("Int: %v", err)
	}
	if got != 42 {
		t.Fatalf("Int=%d, want 42", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("AUTHENGINE_TEST_BOOL", "true")
	got, err := Bool("AUTHENGINE_TEST_BOOL", false)
	if err != nil {
		t.Fatalf("Bool: %v", err)
	}
	if !got {
		t.Fatalf("Bool=false, want true")
	}
}
