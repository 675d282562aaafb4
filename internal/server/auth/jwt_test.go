package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	claims := Claims{UserID: "user-123", Username: "alice", Email: "a@x.io", FullName: "Alice A"}

	tok, err := GenerateToken(claims, AudienceAccess, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	got, err := ParseToken(tok, AudienceAccess, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if got.UserID != "user-123" || got.Username != "alice" || got.Email != "a@x.io" || got.FullName != "Alice A" {
		t.Fatalf("claims mismatch: %+v", got)
	}
	if got.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestGenerateToken_UniqueWithinSameSecond(t *testing.T) {
	t.Parallel()

	secret := []byte("s")
	a, err := GenerateToken(Claims{UserID: "u"}, AudienceRefresh, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	b, err := GenerateToken(Claims{UserID: "u"}, AudienceRefresh, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken(Claims{UserID: "u1"}, AudienceAccess, secret, -1*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, AudienceAccess, secret)
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(Claims{UserID: "u2"}, AudienceAccess, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, AudienceAccess, []byte("wrong-secret"))
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_WrongAudience(t *testing.T) {
	t.Parallel()

	secret := []byte("shared")
	tok, err := GenerateToken(Claims{UserID: "u3"}, AudienceRefresh, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := GetUserIDFromToken(tok, AudienceAccess, secret); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not.a.jwt", AudienceAccess, []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
