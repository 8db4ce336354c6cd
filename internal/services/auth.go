package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nicozh/lesson-scheduler/internal/config"
	"github.com/nicozh/lesson-scheduler/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService authenticates teacher accounts (backed by the hosts table)
// and issues/verifies/revokes the bearer JWTs the /api/schedules surface
// requires. Password verification is the only credential-checking path
// this service exposes; there is no cookie-session login.
type AuthService struct {
	cfg        *config.Config
	repos      *repository.Repositories
	auditLog   *AuditLogService
	revocation revocationStore
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config, repos *repository.Repositories, auditLog *AuditLogService) *AuthService {
	return &AuthService{cfg: cfg, repos: repos, auditLog: auditLog}
}

// dummyHash is compared against on an unknown-email login attempt so the
// response time doesn't leak whether the email exists.
const dummyHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8OWOk1xf2OiIfHn/8tJMUjA.9YjDEW"

// Login verifies a teacher's email and password against the hosts table
// and, on success, issues a bearer JWT scoped to that teacher's account.
func (s *AuthService) Login(ctx context.Context, email, password string) (token string, teacherID string, err error) {
	host, err := s.repos.Host.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", "", err
	}
	if host == nil {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err = s.IssueTeacherToken(host.ID)
	if err != nil {
		return "", "", err
	}

	s.auditLog.Log(ctx, host.TenantID, &host.ID, "host.login", "host", host.ID, nil, "")
	return token, host.ID, nil
}
