package repository

import (
	"context"
	"database/sql"
	"log"
	"regexp"

	"github.com/nicozh/lesson-scheduler/internal/models"
)

// Repositories holds all repository instances
type Repositories struct {
	Tenant   *TenantRepository
	Host     *HostRepository
	AuditLog *AuditLogRepository

	Schedule          *ScheduleRepository
	Student           *StudentRepository
	Availability      *AvailabilityRepository
	FinalizedSchedule *FinalizedScheduleRepository
	RevokedToken      *RevokedTokenRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *sql.DB, driver string) *Repositories {
	return &Repositories{
		Tenant:            &TenantRepository{db: db, driver: driver},
		Host:              &HostRepository{db: db, driver: driver},
		AuditLog:          &AuditLogRepository{db: db, driver: driver},
		Schedule:          &ScheduleRepository{db: db, driver: driver},
		Student:           &StudentRepository{db: db, driver: driver},
		Availability:      &AvailabilityRepository{db: db, driver: driver},
		FinalizedSchedule: &FinalizedScheduleRepository{db: db, driver: driver},
		RevokedToken:      &RevokedTokenRepository{db: db, driver: driver},
	}
}

// q converts PostgreSQL-style placeholders ($1, $2) to SQLite-style (?) if needed
func q(driver, query string) string {
	if driver == "sqlite" {
		re := regexp.MustCompile(`\$\d+`)
		return re.ReplaceAllString(query, "?")
	}
	return query
}

// TenantRepository handles tenant database operations
type TenantRepository struct {
	db     *sql.DB
	driver string
}

func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := q(r.driver, `
		INSERT INTO tenants (id, slug, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	_, err := r.db.ExecContext(ctx, query,
		tenant.ID, tenant.Slug, tenant.Name, tenant.CreatedAt, tenant.UpdatedAt)
	return err
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := q(r.driver, `SELECT id, slug, name, created_at, updated_at FROM tenants WHERE id = $1`)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tenant.ID, &tenant.Slug, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tenant, err
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := q(r.driver, `SELECT id, slug, name, created_at, updated_at FROM tenants WHERE slug = $1`)
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&tenant.ID, &tenant.Slug, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tenant, err
}

// HostRepository handles host (teacher account) database operations. A
// host's email is globally unique, so lookups never need tenant scoping.
type HostRepository struct {
	db     *sql.DB
	driver string
}

func (r *HostRepository) Create(ctx context.Context, host *models.Host) error {
	query := q(r.driver, `
		INSERT INTO hosts (id, tenant_id, email, password_hash, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	_, err := r.db.ExecContext(ctx, query,
		host.ID, host.TenantID, host.Email, host.PasswordHash, host.Name,
		host.Slug, host.CreatedAt, host.UpdatedAt)
	return err
}

func (r *HostRepository) GetByID(ctx context.Context, id string) (*models.Host, error) {
	host := &models.Host{}
	query := q(r.driver, `
		SELECT id, tenant_id, email, password_hash, name, slug, created_at, updated_at
		FROM hosts WHERE id = $1
	`)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&host.ID, &host.TenantID, &host.Email, &host.PasswordHash, &host.Name,
		&host.Slug, &host.CreatedAt, &host.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return host, err
}

func (r *HostRepository) GetByEmail(ctx context.Context, email string) (*models.Host, error) {
	host := &models.Host{}
	query := q(r.driver, `
		SELECT id, tenant_id, email, password_hash, name, slug, created_at, updated_at
		FROM hosts WHERE email = $1
	`)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&host.ID, &host.TenantID, &host.Email, &host.PasswordHash, &host.Name,
		&host.Slug, &host.CreatedAt, &host.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return host, err
}

// AuditLogRepository handles audit-log database operations
type AuditLogRepository struct {
	db     *sql.DB
	driver string
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	query := q(r.driver, `
		INSERT INTO audit_logs (id, tenant_id, host_id, action, entity_type, entity_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.TenantID, entry.HostID, entry.Action, entry.EntityType,
		entry.EntityID, entry.Details, entry.IPAddress, entry.CreatedAt)
	return err
}

func (r *AuditLogRepository) GetByTenantID(ctx context.Context, tenantID string, limit, offset int) ([]*models.AuditLog, error) {
	query := q(r.driver, `
		SELECT id, tenant_id, host_id, action, entity_type, entity_id, details, ip_address, created_at
		FROM audit_logs WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`)
	rows, err := r.db.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error closing rows: %v", err)
		}
	}()

	var logs []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		err := rows.Scan(
			&entry.ID, &entry.TenantID, &entry.HostID, &entry.Action, &entry.EntityType,
			&entry.EntityID, &entry.Details, &entry.IPAddress, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

func (r *AuditLogRepository) CountByTenantID(ctx context.Context, tenantID string) (int, error) {
	query := q(r.driver, `SELECT COUNT(*) FROM audit_logs WHERE tenant_id = $1`)
	var count int
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&count)
	return count, err
}
