package security

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correcthorse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correcthorse" {
		t.Error("hash should not equal the plaintext password")
	}

	if !CheckPassword("correcthorse", hash) {
		t.Error("CheckPassword should accept the original password")
	}
	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword should reject a different password")
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("Verify() userID = %d, want 42", userID)
	}
}

func TestTokenVerifyRejections(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	expired := NewTokenManager("test-secret", -time.Minute)

	goodToken, _ := tm.Issue(1)
	otherToken, _ := other.Issue(1)
	expiredToken, _ := expired.Issue(1)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"wrong secret", otherToken},
		{"expired", expiredToken},
		{"truncated", goodToken[:len(goodToken)-5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.Verify(tt.token); err == nil {
				t.Errorf("Verify(%s) should fail", tt.name)
			}
		})
	}
}

func TestStateSigner(t *testing.T) {
	signer := NewStateSigner("test-secret")

	sig, err := signer.Sign("nonce-123")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if !signer.Validate("nonce-123", sig) {
		t.Error("Validate should accept a valid signature")
	}
	if signer.Validate("nonce-456", sig) {
		t.Error("Validate should reject a signature for a different nonce")
	}
	if signer.Validate("nonce-123", "deadbeef") {
		t.Error("Validate should reject a forged signature")
	}
	if signer.Validate("", sig) {
		t.Error("Validate should reject an empty nonce")
	}

	if _, err := signer.Sign(""); err == nil {
		t.Error("Sign with empty nonce should fail")
	}
}
