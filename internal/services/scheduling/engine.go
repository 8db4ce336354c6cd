package scheduling

import "context"

const (
	DefaultDayOpenCost   = 10000
	DefaultGapPenalty    = 5
	DefaultBufferMinutes = 0
)

// GenerateScheduleInput carries the recognized configuration options from
// §6, already resolved by the caller's persistence collaborator (the
// engine itself never loads anything).
type GenerateScheduleInput struct {
	TeacherID      string
	Students       []Student
	Availabilities []AvailabilityRecord
	AllowedDays    map[string]bool

	// SlotMinutes is 0 if unspecified (infer from students).
	SlotMinutes int
	// BufferMinutes defaults to DefaultBufferMinutes if the caller leaves
	// it unset via ResolveDefaults.
	BufferMinutes int
	// DayOpenCost defaults to DefaultDayOpenCost if zero.
	DayOpenCost int
	// GapPenalty defaults to DefaultGapPenalty; both are caller-resolved
	// before the call since 0 is a legitimate explicit gap_penalty.
	GapPenalty int

	SkipCostBoundCheck bool
}

// ResolveDefaults fills DayOpenCost/GapPenalty with §6's defaults when the
// caller leaves them at the zero value. BufferMinutes' default (0) is
// already the zero value, so it needs no resolution.
func (in *GenerateScheduleInput) ResolveDefaults() {
	if in.DayOpenCost == 0 {
		in.DayOpenCost = DefaultDayOpenCost
	}
	if in.GapPenalty == 0 {
		in.GapPenalty = DefaultGapPenalty
	}
}

// GenerateScheduleResult is the §6 output shape.
type GenerateScheduleResult struct {
	Lessons               []Lesson
	UnscheduledStudentIDs []string
	ScheduledCount        int
	ObjectiveCost         int

	// Augmentations and NetworkNodes are diagnostic counters for the
	// caller's metrics collector; they carry no scheduling semantics.
	Augmentations int
	NetworkNodes  int
}

// GenerateSchedule runs the full five-stage pipeline: grid -> candidates ->
// network -> solve -> extract. It is a pure function of its inputs; the
// caller is responsible for authorization (§6's NotAuthorized) and for
// loading the schedule record before invocation.
func GenerateSchedule(ctx context.Context, input GenerateScheduleInput) (*GenerateScheduleResult, error) {
	if err := ValidateBuffer(input.BufferMinutes); err != nil {
		return nil, err
	}

	grid, err := BuildSlotGrid(input.Availabilities, input.AllowedDays, input.TeacherID)
	if err != nil {
		return nil, err
	}

	if len(grid.Days) == 0 {
		return emptyOutcome(input.Students), nil
	}

	enumerated, err := EnumerateCandidates(grid, input.Students, input.SlotMinutes)
	if err != nil {
		return nil, err
	}

	anyAnchors := false
	for _, list := range enumerated.AnchorSlots {
		if len(list) > 0 {
			anyAnchors = true
			break
		}
	}
	if !anyAnchors {
		return emptyOutcome(input.Students), nil
	}

	net, err := BuildNetwork(grid, enumerated, input.Students, NetworkConfig{
		DayOpenCost:        input.DayOpenCost,
		GapPenalty:         input.GapPenalty,
		SlotMinutes:        enumerated.SlotMinutes,
		SkipCostBoundCheck: input.SkipCostBoundCheck,
	})
	if err != nil {
		return nil, err
	}

	_, cost, augmentations, err := net.Solve(ctx)
	if err != nil {
		return nil, err
	}

	lessons, unscheduled := ExtractAssignments(net, input.Students, input.BufferMinutes)

	return &GenerateScheduleResult{
		Lessons:               lessons,
		UnscheduledStudentIDs: unscheduled,
		ScheduledCount:        len(lessons),
		ObjectiveCost:         cost,
		Augmentations:         augmentations,
		NetworkNodes:          net.numNodes,
	}, nil
}

func emptyOutcome(students []Student) *GenerateScheduleResult {
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return &GenerateScheduleResult{
		Lessons:               nil,
		UnscheduledStudentIDs: ids,
		ScheduledCount:        0,
		ObjectiveCost:         0,
	}
}
