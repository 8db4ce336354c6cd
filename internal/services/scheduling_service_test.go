package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nicozh/lesson-scheduler/internal/config"
	"github.com/nicozh/lesson-scheduler/internal/database"
	"github.com/nicozh/lesson-scheduler/internal/models"
	"github.com/nicozh/lesson-scheduler/internal/repository"
)

func setupScheduleServiceTest(t *testing.T) *repository.Repositories {
	t.Helper()

	dbCfg := config.DatabaseConfig{
		Driver:         "sqlite",
		Name:           ":memory:",
		MigrationsPath: "../../migrations",
	}
	db, err := database.New(dbCfg)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, dbCfg.Driver, dbCfg.MigrationsPath); err != nil {
		t.Fatalf("database.Migrate: %v", err)
	}

	return repository.NewRepositories(db, dbCfg.Driver)
}

func seedSchedule(t *testing.T, repos *repository.Repositories, teacherID, day string) *models.Schedule {
	t.Helper()
	ctx := context.Background()

	sched := &models.Schedule{
		ID:          uuid.New().String(),
		TeacherID:   teacherID,
		Slug:        "test-schedule-" + uuid.New().String()[:8],
		Dates:       models.StringSlice{day},
		SlotMinutes: 30,
		GapPenalty:  5,
		DayOpenCost: 10000,
		CreatedAt:   models.Now(),
		UpdatedAt:   models.Now(),
	}
	if err := repos.Schedule.Create(ctx, sched); err != nil {
		t.Fatalf("Schedule.Create: %v", err)
	}

	student := &models.ScheduleStudent{
		ID:           uuid.New().String(),
		ScheduleID:   sched.ID,
		Name:         "Ada",
		LessonLength: 30,
		CreatedAt:    models.Now(),
	}
	if err := repos.Student.Create(ctx, student); err != nil {
		t.Fatalf("Student.Create: %v", err)
	}

	base, err := time.Parse("2006-01-02T15:04:05Z", day+"T09:00:00Z")
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}

	teacherSlot := &models.Availability{
		ID:         uuid.New().String(),
		ScheduleID: sched.ID,
		TeacherID:  teacherID,
		StartTime:  models.NewSQLiteTime(base),
		CreatedAt:  models.Now(),
	}
	if err := repos.Availability.Create(ctx, teacherSlot); err != nil {
		t.Fatalf("Availability.Create (teacher): %v", err)
	}

	studentSlot := &models.Availability{
		ID:         uuid.New().String(),
		ScheduleID: sched.ID,
		StudentID:  student.ID,
		StartTime:  models.NewSQLiteTime(base),
		CreatedAt:  models.Now(),
	}
	if err := repos.Availability.Create(ctx, studentSlot); err != nil {
		t.Fatalf("Availability.Create (student): %v", err)
	}

	return sched
}

func TestScheduleService_Generate(t *testing.T) {
	repos := setupScheduleServiceTest(t)
	svc := NewScheduleService(&config.Config{}, repos, nil, nil)

	sched := seedSchedule(t, repos, "teacher-1", "2026-08-03")

	result, err := svc.Generate(context.Background(), sched.ID, "teacher-1", GenerateOverrides{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ScheduledCount != 1 {
		t.Errorf("expected 1 scheduled lesson, got %d", result.ScheduledCount)
	}
}

func TestScheduleService_Generate_NotAuthorized(t *testing.T) {
	repos := setupScheduleServiceTest(t)
	svc := NewScheduleService(&config.Config{}, repos, nil, nil)

	sched := seedSchedule(t, repos, "teacher-1", "2026-08-03")

	if _, err := svc.Generate(context.Background(), sched.ID, "someone-else", GenerateOverrides{}); err != ErrNotAuthorized {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestScheduleService_Generate_NotFound(t *testing.T) {
	repos := setupScheduleServiceTest(t)
	svc := NewScheduleService(&config.Config{}, repos, nil, nil)

	if _, err := svc.Generate(context.Background(), uuid.New().String(), "teacher-1", GenerateOverrides{}); err != ErrScheduleNotFound {
		t.Errorf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestScheduleService_FinalizeAndGetFinalized(t *testing.T) {
	repos := setupScheduleServiceTest(t)
	auditLog := NewAuditLogService(repos)
	svc := NewScheduleService(&config.Config{}, repos, auditLog, nil)

	sched := seedSchedule(t, repos, "teacher-1", "2026-08-03")

	result, err := svc.Generate(context.Background(), sched.ID, "teacher-1", GenerateOverrides{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := svc.Finalize(context.Background(), sched.ID, "teacher-1", result); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	finalized, err := svc.GetFinalized(context.Background(), sched.ID, "teacher-1")
	if err != nil {
		t.Fatalf("GetFinalized: %v", err)
	}
	if len(finalized) != len(result.Lessons) {
		t.Errorf("expected %d finalized lessons, got %d", len(result.Lessons), len(finalized))
	}
}

func TestToEngineStudentsAndAvailability(t *testing.T) {
	students := []*models.ScheduleStudent{
		{ID: "s1", Name: "Ada", LessonLength: 30},
	}
	out := toEngineStudents(students)
	if len(out) != 1 || out[0].ID != "s1" || out[0].LessonLength != 30 {
		t.Errorf("unexpected conversion: %+v", out)
	}

	now := models.Now()
	avail := []*models.Availability{
		{TeacherID: "t1", StartTime: now},
		{StudentID: "s1", StartTime: now},
	}
	converted := toEngineAvailability(avail)
	if len(converted) != 2 {
		t.Fatalf("expected 2 records, got %d", len(converted))
	}
	if converted[0].TeacherID != "t1" || converted[1].StudentID != "s1" {
		t.Errorf("unexpected conversion: %+v", converted)
	}
}

func TestPickInt(t *testing.T) {
	if got := pickInt(0, 5); got != 5 {
		t.Errorf("expected fallback 5, got %d", got)
	}
	if got := pickInt(7, 5); got != 7 {
		t.Errorf("expected override 7, got %d", got)
	}
}

func TestToAllowedDays(t *testing.T) {
	if got := toAllowedDays(nil); got != nil {
		t.Errorf("expected nil for empty dates, got %v", got)
	}
	got := toAllowedDays(models.StringSlice{"2026-08-03", "2026-08-04"})
	if !got["2026-08-03"] || !got["2026-08-04"] || len(got) != 2 {
		t.Errorf("unexpected allowed days: %v", got)
	}
}
