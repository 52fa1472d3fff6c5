package security

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test_secret_key_minimum_32_chars"

func TestWindowTokenDeterministic(t *testing.T) {
	opensAt := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	a := WindowToken(testSecret, 42, 1, opensAt)
	b := WindowToken(testSecret, 42, 1, opensAt)

	if a != b {
		t.Errorf("same inputs produced different tokens: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("token length = %d, want 32", len(a))
	}
}

func TestWindowTokenVariesPerInput(t *testing.T) {
	opensAt := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	base := WindowToken(testSecret, 42, 1, opensAt)

	tests := []struct {
		name  string
		token string
	}{
		{"different event", WindowToken(testSecret, 43, 1, opensAt)},
		{"different number", WindowToken(testSecret, 42, 2, opensAt)},
		{"different start", WindowToken(testSecret, 42, 1, opensAt.Add(30*time.Minute))},
		{"different secret", WindowToken("another_secret_key_minimum_32_ch", 42, 1, opensAt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.token == base {
				t.Error("expected a distinct token")
			}
		})
	}
}

func TestTokensEqual(t *testing.T) {
	opensAt := time.Now().UTC()
	token := WindowToken(testSecret, 1, 1, opensAt)

	if !TokensEqual(token, token) {
		t.Error("identical tokens reported unequal")
	}
	if TokensEqual(token, WindowToken(testSecret, 1, 2, opensAt)) {
		t.Error("different tokens reported equal")
	}
	if TokensEqual(token, "") {
		t.Error("empty token reported equal")
	}
}

func TestQRPayloadRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	securityToken := WindowToken(testSecret, 42, 3, now)

	signed, err := SignQRPayload(testSecret, 42, 3, securityToken, now, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("SignQRPayload() error = %v", err)
	}

	claims, err := ParseQRPayload(signed, testSecret)
	if err != nil {
		t.Fatalf("ParseQRPayload() error = %v", err)
	}

	if claims.EventID != 42 {
		t.Errorf("EventID = %d, want 42", claims.EventID)
	}
	if claims.CheckinNumber != 3 {
		t.Errorf("CheckinNumber = %d, want 3", claims.CheckinNumber)
	}
	if claims.SecurityToken != securityToken {
		t.Errorf("SecurityToken = %s, want %s", claims.SecurityToken, securityToken)
	}
	if claims.ExpiresAt.Time.Before(time.Now()) {
		t.Error("payload already expired")
	}
}

func TestParseQRPayload_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"invalid format", "invalid.token.here"},
		{"random string", "randomstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseQRPayload(tt.token, testSecret); err == nil {
				t.Error("expected error for invalid token, got nil")
			}
		})
	}
}

func TestParseQRPayload_WrongSecret(t *testing.T) {
	now := time.Now().UTC()
	signed, err := SignQRPayload(testSecret, 42, 1, "token", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("SignQRPayload() error = %v", err)
	}

	if _, err := ParseQRPayload(signed, "another_secret_key_minimum_32_ch"); err == nil {
		t.Error("expected error for wrong secret, got nil")
	}
}

func TestParseQRPayload_Expired(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	signed, err := SignQRPayload(testSecret, 42, 1, "token", past, past.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("SignQRPayload() error = %v", err)
	}

	if _, err := ParseQRPayload(signed, testSecret); err == nil {
		t.Error("expected error for expired payload, got nil")
	}
}

func TestSignCheckoutPayload(t *testing.T) {
	signed, err := SignCheckoutPayload(testSecret, "ABCD2345", time.Now().UTC().Add(5*time.Minute))
	if err != nil {
		t.Fatalf("SignCheckoutPayload() error = %v", err)
	}
	if signed == "" {
		t.Error("SignCheckoutPayload() returned empty string")
	}
}

func TestGenerateSecureCode(t *testing.T) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateSecureCode(8)
		if len(code) != 8 {
			t.Fatalf("code length = %d, want 8", len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(charset, r) {
				t.Fatalf("code %q contains character outside charset", code)
			}
		}
		seen[code] = true
	}

	// 100 draws from a 32^8 space should essentially never collide.
	if len(seen) < 95 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}
