// Package scheduling assigns lesson slots to students from teacher and
// student availability. It is a pure, synchronous computation: one call
// builds one schedule from its inputs with no I/O and no shared state.
package scheduling

import (
	"errors"
	"time"
)

// Input errors, raised before or during graph construction and surfaced
// verbatim to the caller.
var (
	ErrScheduleNotFound       = errors.New("scheduling: schedule not found")
	ErrNotAuthorized          = errors.New("scheduling: teacher does not own this schedule")
	ErrAmbiguousSlotLength    = errors.New("scheduling: slot_minutes not supplied and students have differing lesson lengths")
	ErrInvalidSlotGranularity = errors.New("scheduling: a student's lesson length is not a multiple of the slot length")
	ErrInvalidBuffer          = errors.New("scheduling: buffer_minutes must be >= 0")
	ErrDayOpenCostTooLow      = errors.New("scheduling: day_open_cost does not dominate the largest possible gap-penalty cost")
)

// ErrInternalInvariantViolation wraps a defensive "this should never happen"
// condition detected at runtime (e.g. negative residual capacity).
type ErrInternalInvariantViolation struct {
	Detail string
}

func (e *ErrInternalInvariantViolation) Error() string {
	return "scheduling: internal invariant violated: " + e.Detail
}

// Student is an input record, immutable for the duration of one run.
type Student struct {
	ID           string
	Name         string
	LessonLength int // minutes
}

// AvailabilityRecord is a single declared instant, either teacher-offered or
// student-accepted. Exactly one of TeacherID/StudentID is set.
type AvailabilityRecord struct {
	TeacherID string
	StudentID string
	Start     time.Time
}

// SlotGrid is the output of the grid builder: per-day ordered teacher
// instants and per-student acceptance sets.
type SlotGrid struct {
	// Days lists the calendar dates (YYYY-MM-DD) that have at least one
	// surviving teacher instant, ascending.
	Days []string
	// TeacherSlots maps day -> ascending, de-duplicated teacher instants.
	TeacherSlots map[string][]time.Time
	// StudentSlots maps student id -> set of accepted instants, keyed by
	// Unix seconds (UTC) since time.Time is not a safe map key across
	// construction paths.
	StudentSlots map[string]map[int64]bool
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func instantKey(t time.Time) int64 {
	return t.UTC().Unix()
}

// SlotMeta describes one teacher instant assigned a slot id during candidate
// enumeration, whether or not it ends up anchoring a surviving candidate.
type SlotMeta struct {
	Day      string
	Position int
	Start    time.Time
}

// Candidate records that student StudentID could start a lesson at SlotID,
// consuming Extras (the following contiguous slot ids) if any.
type Candidate struct {
	SlotID    int
	StudentID string
	Extras    []int
}

// EnumerateResult is the full output of candidate enumeration: the surviving
// candidates plus the slot-metadata tables the network assembler needs.
type EnumerateResult struct {
	Candidates []Candidate
	// SlotMeta covers every teacher instant assigned a slot id (§4.1/§9
	// "deferred slot-id resolution"), not just anchors.
	SlotMeta map[int]SlotMeta
	// AnchorSlots lists, per day, the slot ids that anchor at least one
	// surviving candidate, ordered by position ascending. Only these get
	// slot nodes in the flow network.
	AnchorSlots map[string][]int
	// DaySlotCount is the raw teacher-instant count per day (m in spec
	// notation), used for the day_open_cost bound check.
	DaySlotCount map[string]int
	// SlotMinutes is the uniform slot length used to build this result,
	// resolved from the caller's value or inferred from the students.
	SlotMinutes int
}

// Lesson is one accepted assignment.
type Lesson struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Day         string    `json:"day"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}
