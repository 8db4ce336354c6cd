package handlers

import (
	"testing"

	"github.com/nicozh/lesson-scheduler/internal/config"
	"github.com/nicozh/lesson-scheduler/internal/database"
	"github.com/nicozh/lesson-scheduler/internal/repository"
	"github.com/nicozh/lesson-scheduler/internal/services"
)

func setupTestDatabase(t *testing.T) (*config.Config, *repository.Repositories, func()) {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         "sqlite",
			Name:           ":memory:",
			MigrationsPath: "../../migrations",
		},
		JWT: config.JWTConfig{Secret: "test-secret"},
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}

	if err := database.Migrate(db, cfg.Database.Driver, cfg.Database.MigrationsPath); err != nil {
		db.Close()
		t.Fatalf("database.Migrate: %v", err)
	}

	repos := repository.NewRepositories(db, cfg.Database.Driver)
	return cfg, repos, func() { db.Close() }
}

func createTestHandlers(t *testing.T, repos *repository.Repositories) *Handlers {
	t.Helper()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	svc := services.New(cfg, repos, nil)
	return New(cfg, svc, repos)
}
