package validation

import (
	"errors"
	"testing"
)

func TestChecker_CollectsFirstErrorPerField(t *testing.T) {
	err := New().
		NotBlank("username", "", "username vacío").
		Length("username", "", 5, 50, "username largo inválido").
		Email("email", "no-es-email", "email inválido").
		Length("password", "1234567", 8, 255, "password corto").
		Err()

	var ve Errors
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation.Errors, got %T", err)
	}
	if len(ve) != 3 {
		t.Fatalf("expected 3 fields, got %v", ve)
	}
	if ve["username"] != "username vacío" {
		t.Fatalf("first error must win, got %q", ve["username"])
	}
}

func TestChecker_NoErrors(t *testing.T) {
	err := New().
		NotBlank("username", "alice", "x").
		Length("username", "alice", 5, 50, "x").
		Email("email", "a@x.io", "x").
		Check(true, "code", "x").
		Err()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLength_CountsRunes(t *testing.T) {
	// 5 runes, 10 bytes
	if err := New().Length("u", "ñañañ", 5, 5, "x").Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := New().Length("u", "abc", 0, 0, "x").Err(); err != nil {
		t.Fatalf("max 0 must mean unbounded: %v", err)
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"a@x.io", "alice.smith+tag@mail.example.com", "root@localhost"}
	for _, v := range valid {
		if err := New().Email("email", v, "x").Err(); err != nil {
			t.Fatalf("expected valid: %q", v)
		}
	}
	invalid := []string{"", "plain", "@x.io", "a@", "a b@x.io", "a@@x.io"}
	for _, v := range invalid {
		if err := New().Email("email", v, "x").Err(); err == nil {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestErrors_ErrorIsSorted(t *testing.T) {
	e := Errors{"b": "2", "a": "1"}
	if got := e.Error(); got != "validation failed: a: 1; b: 2" {
		t.Fatalf("unexpected message %q", got)
	}
}
