package handlers

import (
	"github.com/nicozh/lesson-scheduler/internal/config"
	"github.com/nicozh/lesson-scheduler/internal/repository"
	"github.com/nicozh/lesson-scheduler/internal/services"
)

// Handlers wires the API surface's sub-handlers to their shared
// collaborators (config, repositories, services).
type Handlers struct {
	cfg      *config.Config
	repos    *repository.Repositories
	services *services.Services

	Auth     *AuthHandler
	Schedule *ScheduleHandler
}

// New creates the handler tree.
func New(cfg *config.Config, svc *services.Services, repos *repository.Repositories) *Handlers {
	h := &Handlers{cfg: cfg, repos: repos, services: svc}
	h.Auth = newAuthHandler(h)
	h.Schedule = newScheduleHandler(h)
	return h
}
