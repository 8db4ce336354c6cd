package repository

import (
	"context"
	"database/sql"

	"github.com/nicozh/lesson-scheduler/internal/models"
)

// ScheduleRepository handles schedule database operations.
type ScheduleRepository struct {
	db     *sql.DB
	driver string
}

func (r *ScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
	query := q(r.driver, `
		INSERT INTO schedule (id, teacher_id, slug, dates, slot_minutes, buffer_minutes, day_open_cost, gap_penalty, is_finalized, finalized_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TeacherID, s.Slug, s.Dates, s.SlotMinutes, s.BufferMinutes,
		s.DayOpenCost, s.GapPenalty, s.IsFinalized, s.FinalizedAt, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	s := &models.Schedule{}
	query := q(r.driver, `
		SELECT id, teacher_id, slug, dates, slot_minutes, buffer_minutes, day_open_cost, gap_penalty,
		       is_finalized, finalized_at, created_at, updated_at
		FROM schedule WHERE id = $1
	`)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.TeacherID, &s.Slug, &s.Dates, &s.SlotMinutes, &s.BufferMinutes,
		&s.DayOpenCost, &s.GapPenalty, &s.IsFinalized, &s.FinalizedAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *ScheduleRepository) GetBySlug(ctx context.Context, slug string) (*models.Schedule, error) {
	s := &models.Schedule{}
	query := q(r.driver, `
		SELECT id, teacher_id, slug, dates, slot_minutes, buffer_minutes, day_open_cost, gap_penalty,
		       is_finalized, finalized_at, created_at, updated_at
		FROM schedule WHERE slug = $1
	`)
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&s.ID, &s.TeacherID, &s.Slug, &s.Dates, &s.SlotMinutes, &s.BufferMinutes,
		&s.DayOpenCost, &s.GapPenalty, &s.IsFinalized, &s.FinalizedAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *ScheduleRepository) MarkFinalized(ctx context.Context, id string, finalizedAt models.SQLiteTime) error {
	query := q(r.driver, `UPDATE schedule SET is_finalized = true, finalized_at = $1, updated_at = $1 WHERE id = $2`)
	_, err := r.db.ExecContext(ctx, query, finalizedAt, id)
	return err
}

// StudentRepository handles the students entered into a schedule run.
type StudentRepository struct {
	db     *sql.DB
	driver string
}

func (r *StudentRepository) Create(ctx context.Context, s *models.ScheduleStudent) error {
	query := q(r.driver, `
		INSERT INTO students (id, schedule_id, name, lesson_length, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	_, err := r.db.ExecContext(ctx, query, s.ID, s.ScheduleID, s.Name, s.LessonLength, s.CreatedAt)
	return err
}

func (r *StudentRepository) GetByScheduleID(ctx context.Context, scheduleID string) ([]*models.ScheduleStudent, error) {
	query := q(r.driver, `
		SELECT id, schedule_id, name, lesson_length, created_at
		FROM students WHERE schedule_id = $1 ORDER BY created_at ASC
	`)
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ScheduleStudent
	for rows.Next() {
		s := &models.ScheduleStudent{}
		if err := rows.Scan(&s.ID, &s.ScheduleID, &s.Name, &s.LessonLength, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AvailabilityRepository handles teacher and student availability rows.
type AvailabilityRepository struct {
	db     *sql.DB
	driver string
}

func (r *AvailabilityRepository) Create(ctx context.Context, a *models.Availability) error {
	query := q(r.driver, `
		INSERT INTO availability (id, schedule_id, teacher_id, student_id, start_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	_, err := r.db.ExecContext(ctx, query, a.ID, a.ScheduleID, a.TeacherID, a.StudentID, a.StartTime, a.CreatedAt)
	return err
}

func (r *AvailabilityRepository) GetByScheduleID(ctx context.Context, scheduleID string) ([]*models.Availability, error) {
	query := q(r.driver, `
		SELECT id, schedule_id, teacher_id, student_id, start_time, created_at
		FROM availability WHERE schedule_id = $1
	`)
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Availability
	for rows.Next() {
		a := &models.Availability{}
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.TeacherID, &a.StudentID, &a.StartTime, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FinalizedScheduleRepository persists accepted lessons once a schedule is
// finalized.
type FinalizedScheduleRepository struct {
	db     *sql.DB
	driver string
}

func (r *FinalizedScheduleRepository) ReplaceAll(ctx context.Context, scheduleID string, lessons []*models.FinalizedSchedule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, q(r.driver, `DELETE FROM finalized_schedule WHERE schedule_id = $1`), scheduleID); err != nil {
		return err
	}

	insert := q(r.driver, `
		INSERT INTO finalized_schedule (id, schedule_id, student_id, student_name, day, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	for _, l := range lessons {
		if _, err := tx.ExecContext(ctx, insert,
			l.ID, l.ScheduleID, l.StudentID, l.StudentName, l.Day, l.StartTime, l.EndTime, l.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *FinalizedScheduleRepository) GetByScheduleID(ctx context.Context, scheduleID string) ([]*models.FinalizedSchedule, error) {
	query := q(r.driver, `
		SELECT id, schedule_id, student_id, student_name, day, start_time, end_time, created_at
		FROM finalized_schedule WHERE schedule_id = $1 ORDER BY day ASC, start_time ASC
	`)
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.FinalizedSchedule
	for rows.Next() {
		l := &models.FinalizedSchedule{}
		if err := rows.Scan(&l.ID, &l.ScheduleID, &l.StudentID, &l.StudentName, &l.Day, &l.StartTime, &l.EndTime, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// RevokedTokenRepository backs bearer-JWT revocation when the in-process
// (or Redis) fast path isn't authoritative, e.g. on process restart.
type RevokedTokenRepository struct {
	db     *sql.DB
	driver string
}

func (r *RevokedTokenRepository) Create(ctx context.Context, t *models.RevokedToken) error {
	query := q(r.driver, `
		INSERT INTO revoked_token (jti, teacher_id, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`)
	_, err := r.db.ExecContext(ctx, query, t.JTI, t.TeacherID, t.RevokedAt, t.ExpiresAt)
	return err
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	query := q(r.driver, `SELECT COUNT(*) FROM revoked_token WHERE jti = $1`)
	err := r.db.QueryRowContext(ctx, query, jti).Scan(&count)
	return count > 0, err
}

func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context) error {
	query := q(r.driver, `DELETE FROM revoked_token WHERE expires_at < $1`)
	_, err := r.db.ExecContext(ctx, query, models.Now())
	return err
}
