package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/nicozh/lesson-scheduler/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*ScheduleRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return &ScheduleRepository{db: db, driver: "postgres"}, mock, func() { db.Close() }
}

func TestScheduleRepositoryGetByID(t *testing.T) {
	repo, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "slug", "dates", "slot_minutes", "buffer_minutes",
		"day_open_cost", "gap_penalty", "is_finalized", "finalized_at", "created_at", "updated_at",
	}).AddRow("sch1", "teacher-1", "fall-2026", []byte(`["2026-08-03"]`), 30, 0, 10000, 5, false, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, slug, dates, slot_minutes, buffer_minutes, day_open_cost, gap_penalty,")).
		WithArgs("sch1").
		WillReturnRows(rows)

	s, err := repo.GetByID(context.Background(), "sch1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s == nil || s.ID != "sch1" || s.TeacherID != "teacher-1" {
		t.Fatalf("unexpected schedule: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScheduleRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, slug, dates, slot_minutes, buffer_minutes, day_open_cost, gap_penalty,")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	s, err := repo.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error on not-found, got %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil schedule, got %+v", s)
	}
}

func TestScheduleRepositoryMarkFinalized(t *testing.T) {
	repo, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule SET is_finalized = true, finalized_at = $1, updated_at = $1 WHERE id = $2")).
		WithArgs(sqlmock.AnyArg(), "sch1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkFinalized(context.Background(), "sch1", models.Now()); err != nil {
		t.Fatalf("MarkFinalized: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevokedTokenRepositoryIsRevoked(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := &RevokedTokenRepository{db: db, driver: "postgres"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM revoked_token WHERE jti = $1")).
		WithArgs("jti-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	revoked, err := repo.IsRevoked(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected jti-1 to be revoked")
	}
}
