package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nicozh/lesson-scheduler/internal/config"
	"github.com/nicozh/lesson-scheduler/internal/models"
	"github.com/nicozh/lesson-scheduler/internal/observability"
	"github.com/nicozh/lesson-scheduler/internal/repository"
	"github.com/nicozh/lesson-scheduler/internal/services/scheduling"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrNotAuthorized    = errors.New("not authorized")
)

// ScheduleService orchestrates the scheduling engine: it loads a schedule's
// persisted students/availability, invokes scheduling.GenerateSchedule, and
// persists a finalized run. It owns none of the engine's algorithmic logic;
// that lives entirely in internal/services/scheduling.
type ScheduleService struct {
	cfg      *config.Config
	repos    *repository.Repositories
	auditLog *AuditLogService
	metrics  *observability.SchedulingMetrics
}

// NewScheduleService creates a ScheduleService. metrics may be nil, in which
// case observations are silently dropped (see SchedulingMetrics.ObserveGenerate).
func NewScheduleService(cfg *config.Config, repos *repository.Repositories, auditLog *AuditLogService, metrics *observability.SchedulingMetrics) *ScheduleService {
	return &ScheduleService{cfg: cfg, repos: repos, auditLog: auditLog, metrics: metrics}
}

// GenerateOverrides carries the optional per-request overrides from the
// generate endpoint's request body; zero values mean "use the schedule's
// stored defaults".
type GenerateOverrides struct {
	SlotMinutes   int
	BufferMinutes *int
	DayOpenCost   int
	// GapPenalty is a pointer because an explicit 0 is a meaningful
	// request (no penalty for gaps) distinct from "not supplied".
	GapPenalty *int
}

// Generate loads the schedule's persisted student/availability rows, builds
// a scheduling.GenerateScheduleInput, and runs the engine. teacherID must
// match the schedule's owner or ErrNotAuthorized is returned.
func (s *ScheduleService) Generate(ctx context.Context, scheduleID, teacherID string, overrides GenerateOverrides) (*scheduling.GenerateScheduleResult, error) {
	start := time.Now()

	sched, err := s.repos.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}
	if sched.TeacherID != teacherID {
		return nil, ErrNotAuthorized
	}

	students, err := s.repos.Student.GetByScheduleID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	availabilityRows, err := s.repos.Availability.GetByScheduleID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	input := scheduling.GenerateScheduleInput{
		TeacherID:      sched.TeacherID,
		Students:       toEngineStudents(students),
		Availabilities: toEngineAvailability(availabilityRows),
		AllowedDays:    toAllowedDays(sched.Dates),
		SlotMinutes:    pickInt(overrides.SlotMinutes, sched.SlotMinutes),
		DayOpenCost:    pickInt(overrides.DayOpenCost, sched.DayOpenCost),
	}
	if overrides.GapPenalty != nil {
		input.GapPenalty = *overrides.GapPenalty
	} else {
		input.GapPenalty = sched.GapPenalty
	}
	if overrides.BufferMinutes != nil {
		input.BufferMinutes = *overrides.BufferMinutes
	} else {
		input.BufferMinutes = sched.BufferMinutes
	}
	input.ResolveDefaults()

	result, err := scheduling.GenerateSchedule(ctx, input)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if result.ScheduledCount == 0 {
		outcome = "empty"
	}
	var augmentations, nodes int
	if result != nil {
		augmentations, nodes = result.Augmentations, result.NetworkNodes
	}
	s.metrics.ObserveGenerate(outcome, time.Since(start), augmentations, nodes)

	return result, err
}

// Finalize persists a generated result's lessons as the schedule's accepted
// assignment, replacing any previously finalized run, and marks the
// schedule finalized.
func (s *ScheduleService) Finalize(ctx context.Context, scheduleID, teacherID string, result *scheduling.GenerateScheduleResult) error {
	sched, err := s.repos.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sched == nil {
		return ErrScheduleNotFound
	}
	if sched.TeacherID != teacherID {
		return ErrNotAuthorized
	}

	rows := make([]*models.FinalizedSchedule, len(result.Lessons))
	for i, l := range result.Lessons {
		rows[i] = &models.FinalizedSchedule{
			ID:          uuid.New().String(),
			ScheduleID:  scheduleID,
			StudentID:   l.StudentID,
			StudentName: l.StudentName,
			Day:         l.Day,
			StartTime:   models.NewSQLiteTime(l.Start),
			EndTime:     models.NewSQLiteTime(l.End),
			CreatedAt:   models.Now(),
		}
	}
	if err := s.repos.FinalizedSchedule.ReplaceAll(ctx, scheduleID, rows); err != nil {
		return err
	}

	if err := s.repos.Schedule.MarkFinalized(ctx, scheduleID, models.Now()); err != nil {
		return err
	}

	if s.auditLog != nil {
		s.auditLog.Log(ctx, "", &teacherID, "schedule.finalize", "schedule", scheduleID, nil, "")
	}
	return nil
}

// GetFinalized returns the persisted finalized lessons for a schedule.
func (s *ScheduleService) GetFinalized(ctx context.Context, scheduleID, teacherID string) ([]*models.FinalizedSchedule, error) {
	sched, err := s.repos.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}
	if sched.TeacherID != teacherID {
		return nil, ErrNotAuthorized
	}
	return s.repos.FinalizedSchedule.GetByScheduleID(ctx, scheduleID)
}

func toEngineStudents(rows []*models.ScheduleStudent) []scheduling.Student {
	out := make([]scheduling.Student, len(rows))
	for i, r := range rows {
		out[i] = scheduling.Student{ID: r.ID, Name: r.Name, LessonLength: r.LessonLength}
	}
	return out
}

func toEngineAvailability(rows []*models.Availability) []scheduling.AvailabilityRecord {
	out := make([]scheduling.AvailabilityRecord, len(rows))
	for i, r := range rows {
		out[i] = scheduling.AvailabilityRecord{
			TeacherID: r.TeacherID,
			StudentID: r.StudentID,
			Start:     r.StartTime.Time,
		}
	}
	return out
}

func toAllowedDays(dates models.StringSlice) map[string]bool {
	if len(dates) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(dates))
	for _, d := range dates {
		allowed[d] = true
	}
	return allowed
}

func pickInt(override, fallback int) int {
	if override != 0 {
		return override
	}
	return fallback
}
