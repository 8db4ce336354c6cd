package services

import (
	"github.com/nicozh/lesson-scheduler/internal/config"
	"github.com/nicozh/lesson-scheduler/internal/observability"
	"github.com/nicozh/lesson-scheduler/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth     *AuthService
	AuditLog *AuditLogService
	Schedule *ScheduleService
}

// New creates all services. metrics may be nil (no /metrics surface wired).
func New(cfg *config.Config, repos *repository.Repositories, metrics *observability.SchedulingMetrics) *Services {
	auditLogSvc := NewAuditLogService(repos)
	authSvc := NewAuthService(cfg, repos, auditLogSvc)
	scheduleSvc := NewScheduleService(cfg, repos, auditLogSvc, metrics)

	return &Services{
		Auth:     authSvc,
		AuditLog: auditLogSvc,
		Schedule: scheduleSvc,
	}
}
