package scheduling

import (
	"sort"
	"time"
)

// BuildSlotGrid turns raw availability rows into the per-day teacher slot
// table and per-student acceptance sets. Rows are filtered to teacherID for
// the teacher side; the student side is taken as-is, unfiltered by day —
// day filtering happens implicitly later, via slot matching.
//
// allowedDays, if non-empty, restricts teacher days to that set; an empty
// set means "infer from the teacher rows present."
func BuildSlotGrid(availabilities []AvailabilityRecord, allowedDays map[string]bool, teacherID string) (*SlotGrid, error) {
	teacherByDay := make(map[string]map[int64]time.Time)
	studentSlots := make(map[string]map[int64]bool)

	for _, a := range availabilities {
		if a.TeacherID != "" {
			if a.TeacherID != teacherID {
				continue
			}
			d := dayKey(a.Start)
			if len(allowedDays) > 0 && !allowedDays[d] {
				continue
			}
			if teacherByDay[d] == nil {
				teacherByDay[d] = make(map[int64]time.Time)
			}
			teacherByDay[d][instantKey(a.Start)] = a.Start
			continue
		}
		if a.StudentID != "" {
			if studentSlots[a.StudentID] == nil {
				studentSlots[a.StudentID] = make(map[int64]bool)
			}
			studentSlots[a.StudentID][instantKey(a.Start)] = true
		}
	}

	teacherSlots := make(map[string][]time.Time, len(teacherByDay))
	days := make([]string, 0, len(teacherByDay))
	for d, set := range teacherByDay {
		list := make([]time.Time, 0, len(set))
		for _, t := range set {
			list = append(list, t)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Before(list[j]) })
		teacherSlots[d] = list
		days = append(days, d)
	}
	sort.Strings(days)

	return &SlotGrid{
		Days:         days,
		TeacherSlots: teacherSlots,
		StudentSlots: studentSlots,
	}, nil
}
