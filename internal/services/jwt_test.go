package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nicozh/lesson-scheduler/internal/config"
)

func testAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		cfg: &config.Config{
			JWT: config.JWTConfig{Secret: secret, TokenTTL: ttl},
		},
	}
}

func TestIssueAndVerifyTeacherToken(t *testing.T) {
	a := testAuthService("test-secret", time.Hour)

	token, err := a.IssueTeacherToken("teacher-123")
	if err != nil {
		t.Fatalf("IssueTeacherToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	teacherID, err := a.VerifyTeacherToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyTeacherToken: %v", err)
	}
	if teacherID != "teacher-123" {
		t.Errorf("expected teacher id %q, got %q", "teacher-123", teacherID)
	}
}

func TestVerifyTeacherToken_Invalid(t *testing.T) {
	a := testAuthService("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"wrong signature", mustIssue(t, testAuthService("other-secret", time.Hour), "teacher-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.VerifyTeacherToken(context.Background(), tt.token); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestVerifyTeacherToken_Expired(t *testing.T) {
	a := testAuthService("test-secret", -time.Minute)

	token, err := a.IssueTeacherToken("teacher-123")
	if err != nil {
		t.Fatalf("IssueTeacherToken: %v", err)
	}

	if _, err := a.VerifyTeacherToken(context.Background(), token); err == nil {
		t.Error("expected expired token to fail verification")
	}
}

func TestRevokeToken_RejectsFurtherVerification(t *testing.T) {
	a := testAuthService("test-secret", time.Hour)

	token, err := a.IssueTeacherToken("teacher-123")
	if err != nil {
		t.Fatalf("IssueTeacherToken: %v", err)
	}

	claims := &teacherClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(a.cfg.JWT.Secret), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := a.RevokeToken(context.Background(), claims.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	if _, err := a.VerifyTeacherToken(context.Background(), token); err != ErrTokenRevoked {
		t.Errorf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestMemoryRevocationStore_ExpiresNaturally(t *testing.T) {
	s := newMemoryRevocationStore()
	ctx := context.Background()

	if err := s.Revoke(ctx, "jti-1", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Error("expected an already-expired revocation to read back as not revoked")
	}
}

func mustIssue(t *testing.T, a *AuthService, teacherID string) string {
	t.Helper()
	token, err := a.IssueTeacherToken(teacherID)
	if err != nil {
		t.Fatalf("IssueTeacherToken: %v", err)
	}
	return token
}
