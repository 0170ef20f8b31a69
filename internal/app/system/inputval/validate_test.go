package inputval

import (
	"strings"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name  string `validate:"required,max=10" label:"Name"`
		Email string `validate:"required,email" label:"Email"`
		Score int    `validate:"gte=1,lte=5" label:"Score"`
	}

	t.Run("valid input has no errors", func(t *testing.T) {
		r := Validate(input{Name: "Alice", Email: "alice@example.com", Score: 3})
		if r.HasErrors() {
			t.Fatalf("unexpected errors: %v", r.All())
		}
		if r.First() != "" {
			t.Fatalf("First() = %q, want empty", r.First())
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		r := Validate(input{Email: "alice@example.com", Score: 3})
		if !r.HasErrors() {
			t.Fatal("expected errors")
		}
		if got := r.First(); got != "Name is required." {
			t.Fatalf("First() = %q", got)
		}
	})

	t.Run("max length", func(t *testing.T) {
		r := Validate(input{Name: strings.Repeat("x", 11), Email: "a@b.co", Score: 3})
		if got := r.First(); got != "Name must be at most 10 characters." {
			t.Fatalf("First() = %q", got)
		}
	})

	t.Run("range bounds", func(t *testing.T) {
		r := Validate(input{Name: "Alice", Email: "a@b.co", Score: 6})
		if got := r.First(); got != "Score must be 5 or less." {
			t.Fatalf("First() = %q", got)
		}
	})

	t.Run("errors reported in field order", func(t *testing.T) {
		r := Validate(input{Score: 0})
		all := r.All()
		if len(all) != 3 {
			t.Fatalf("got %d errors, want 3: %v", len(all), all)
		}
		if !strings.HasPrefix(all[0], "Name") || !strings.HasPrefix(all[1], "Email") || !strings.HasPrefix(all[2], "Score") {
			t.Fatalf("unexpected order: %v", all)
		}
	})
}

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"user@example.com", true},
		{"user.name+tag@sub.example.com", true},
		{"user@localhost", true},
		{"", false},
		{"   ", false},
		{"plainaddress", false},
		{"@example.com", false},
		{"user@", false},
		{".user@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"User Name <user@example.com>", false},
		{"two words@example.com", false},
	}
	for _, tc := range cases {
		if got := IsValidEmail(tc.in); got != tc.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
