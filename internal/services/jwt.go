package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nicozh/lesson-scheduler/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// teacherClaims is the HS256 payload carried by the bearer token issued to
// a teacher account for the /api/schedules surface.
type teacherClaims struct {
	jwt.RegisteredClaims
}

// revocationStore tracks revoked token jtis until their natural expiry.
// Redis-backed when configured (SADD/SISMEMBER against a set keyed by jti,
// each member expiring with the token it stands for); otherwise an
// in-process map guarded by a mutex, which is enough for a single-process
// deployment and the dev/test path.
type revocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryRevocationStore() *memoryRevocationStore {
	return &memoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *memoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = expiresAt
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

type redisRevocationStore struct {
	client *redis.Client
}

const revokedTokenKeyPrefix = "revoked_token:"

func (s *redisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedTokenKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NewRedisRevocationStore wires a redis.Client into the AuthService's
// revocation path. Pass nil to fall back to the in-process store (dev/test
// or a Redis-less deployment).
func (a *AuthService) NewRedisRevocationStore(client *redis.Client) {
	if client == nil {
		return
	}
	a.revocation = &redisRevocationStore{client: client}
}

func (a *AuthService) revocationStoreOrDefault() revocationStore {
	if a.revocation == nil {
		a.revocation = newMemoryRevocationStore()
	}
	return a.revocation
}

// IssueTeacherToken signs an HS256 bearer token for the teacher account API
// surface. jti is a fresh uuid so the token can be revoked independently of
// any session cookie.
func (a *AuthService) IssueTeacherToken(teacherID string) (string, error) {
	now := time.Now()
	claims := teacherClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   teacherID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.JWT.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.JWT.Secret))
}

// VerifyTeacherToken parses and validates a bearer token, then checks its
// jti against the revocation set. Returns the teacher id from the sub claim.
func (a *AuthService) VerifyTeacherToken(ctx context.Context, tokenString string) (string, error) {
	claims := &teacherClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(a.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.ID == "" || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	revoked, err := a.revocationStoreOrDefault().IsRevoked(ctx, claims.ID)
	if err != nil {
		log.Printf("[AUTH] revocation lookup failed for jti %s: %v", claims.ID, err)
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	return claims.Subject, nil
}

// RevokeToken adds jti to the revocation set until expiresAt, and persists
// the revocation row for durability across process restarts.
func (a *AuthService) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := a.revocationStoreOrDefault().Revoke(ctx, jti, expiresAt); err != nil {
		return err
	}
	if a.repos == nil || a.repos.RevokedToken == nil {
		return nil
	}
	return a.repos.RevokedToken.Create(ctx, &models.RevokedToken{
		JTI:       jti,
		RevokedAt: models.Now(),
		ExpiresAt: models.NewSQLiteTime(expiresAt),
	})
}
