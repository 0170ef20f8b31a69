package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("key") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("key") {
		t.Fatal("fourth attempt should be blocked")
	}
	if !l.Allow("other") {
		t.Fatal("different key should not be affected")
	}
}

func TestLimiterRemaining(t *testing.T) {
	l := New(3, time.Minute)

	if got := l.Remaining("key"); got != 3 {
		t.Fatalf("Remaining before any attempts = %d, want 3", got)
	}
	l.Allow("key")
	l.Allow("key")
	if got := l.Remaining("key"); got != 1 {
		t.Fatalf("Remaining after two attempts = %d, want 1", got)
	}
}

func TestLimiterReset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("key")
	if l.Allow("key") {
		t.Fatal("second attempt should be blocked")
	}
	l.Reset("key")
	if !l.Allow("key") {
		t.Fatal("attempt after reset should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{name: "remote addr with port", remoteAddr: "10.1.2.3:4567", want: "10.1.2.3"},
		{name: "remote addr without port", remoteAddr: "10.1.2.3", want: "10.1.2.3"},
		{name: "x-forwarded-for single", remoteAddr: "10.0.0.1:80", xff: "203.0.113.5", want: "203.0.113.5"},
		{name: "x-forwarded-for chain", remoteAddr: "10.0.0.1:80", xff: "203.0.113.5, 10.0.0.2", want: "203.0.113.5"},
		{name: "x-real-ip", remoteAddr: "10.0.0.1:80", xri: "203.0.113.9", want: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiterEmailLimit(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	for i := 0; i < 2; i++ {
		ok, _, _ := ll.Check(r, "User@Example.com")
		if !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	// Email matching is case-insensitive.
	ok, limitType, msg := ll.Check(r, "user@example.com")
	if ok {
		t.Fatal("third attempt for same email should be blocked")
	}
	if limitType != LimitTypeEmail {
		t.Errorf("limitType = %q, want %q", limitType, LimitTypeEmail)
	}
	if msg == "" {
		t.Error("blocked attempt should carry a user-facing message")
	}

	ll.ResetEmail("USER@example.com")
	if ok, _, _ := ll.Check(r, "user@example.com"); !ok {
		t.Fatal("attempt after ResetEmail should be allowed")
	}
}

func TestLoginLimiterIPLimit(t *testing.T) {
	ll := NewLoginLimiterWithConfig(2, time.Minute, 100, time.Minute)

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.7:1234"

	ll.Check(r, "a@example.com")
	ll.Check(r, "b@example.com")

	ok, limitType, _ := ll.Check(r, "c@example.com")
	if ok {
		t.Fatal("third attempt from same IP should be blocked")
	}
	if limitType != LimitTypeIP {
		t.Errorf("limitType = %q, want %q", limitType, LimitTypeIP)
	}
}
