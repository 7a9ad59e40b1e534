package security

import (
	"testing"
	"time"
)

func TestUserTokenRoundTrip(t *testing.T) {
	token, err := SignUserToken("test-secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := ParseUserToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected uid=42, got %d", claims.UserID)
	}
}

func TestUserTokenWrongSecret(t *testing.T) {
	token, err := SignUserToken("test-secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseUserToken("other-secret", token); errParse == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}
}

func TestAdminTokenRejectedAsUserToken(t *testing.T) {
	token, err := SignAdminToken("test-secret", 7, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseUserToken("test-secret", token); errParse == nil {
		t.Fatalf("expected admin token to be rejected by user parser")
	}
}

func TestPasswordHash(t *testing.T) {
	hashed, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hashed, "hunter22") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hashed, "hunter23") {
		t.Fatalf("expected mismatching password to fail")
	}
}
