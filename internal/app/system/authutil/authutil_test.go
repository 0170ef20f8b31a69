package authutil

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse 1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse 1" {
		t.Fatal("hash should not equal the plaintext password")
	}

	if !CheckPassword("correct horse 1", hash) {
		t.Error("expected matching password to verify")
	}
	if CheckPassword("wrong horse 1", hash) {
		t.Error("expected non-matching password to fail")
	}
	if CheckPassword("correct horse 1", "not-a-bcrypt-hash") {
		t.Error("expected malformed hash to fail verification")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "abcdefghi1", wantErr: false},
		{name: "too short", password: "abc1", wantErr: true},
		{name: "no digit", password: "abcdefghijk", wantErr: true},
		{name: "no letter", password: "1234567890123", wantErr: true},
		{name: "long mixed", password: "sufficiently l0ng passphrase", wantErr: false},
		{name: "empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestPasswordRulesMatchesValidation(t *testing.T) {
	if PasswordRules() == "" {
		t.Fatal("PasswordRules should describe the requirements")
	}
}
