package inputval

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether s is a bare, well-formed email address.
// Display-name forms like "Jane <jane@example.com>" are rejected.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	if addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1
}
