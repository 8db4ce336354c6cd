package scheduling

import (
	"testing"
	"time"
)

func buildGrid(t *testing.T, day string, slotTimes []string, studentAccepts map[string][]string) *SlotGrid {
	t.Helper()
	var avail []AvailabilityRecord
	for _, s := range slotTimes {
		tm, err := time.Parse(time.RFC3339, day+"T"+s+":00Z")
		if err != nil {
			t.Fatalf("parsing time: %v", err)
		}
		avail = append(avail, AvailabilityRecord{TeacherID: "t1", Start: tm})
	}
	for student, times := range studentAccepts {
		for _, s := range times {
			tm, err := time.Parse(time.RFC3339, day+"T"+s+":00Z")
			if err != nil {
				t.Fatalf("parsing time: %v", err)
			}
			avail = append(avail, AvailabilityRecord{StudentID: student, Start: tm})
		}
	}
	grid, err := BuildSlotGrid(avail, nil, "t1")
	if err != nil {
		t.Fatalf("BuildSlotGrid: %v", err)
	}
	return grid
}

func TestEnumerateCandidates_MultiSlotContiguity(t *testing.T) {
	grid := buildGrid(t, "2026-08-03", []string{"09:00", "09:30", "10:00"}, map[string][]string{
		"s1": {"09:00", "09:30"},
	})
	result, err := EnumerateCandidates(grid, []Student{{ID: "s1", Name: "Alice", LessonLength: 60}}, 30)
	if err != nil {
		t.Fatalf("EnumerateCandidates: %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d: %+v", len(result.Candidates), result.Candidates)
	}
	c := result.Candidates[0]
	if len(c.Extras) != 1 {
		t.Fatalf("expected 1 extra slot, got %d", len(c.Extras))
	}
}

func TestEnumerateCandidates_NonContiguousAvailabilityRejected(t *testing.T) {
	// Student accepts 09:00 and 10:00 but not 09:30: a 60-minute lesson
	// can't start at 09:00 because the slot grid isn't contiguous for it.
	grid := buildGrid(t, "2026-08-03", []string{"09:00", "09:30", "10:00"}, map[string][]string{
		"s1": {"09:00", "10:00"},
	})
	result, err := EnumerateCandidates(grid, []Student{{ID: "s1", Name: "Alice", LessonLength: 60}}, 30)
	if err != nil {
		t.Fatalf("EnumerateCandidates: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", result.Candidates)
	}
}

func TestEnumerateCandidates_AmbiguousSlotLength(t *testing.T) {
	grid := buildGrid(t, "2026-08-03", []string{"09:00"}, map[string][]string{"s1": {"09:00"}})
	students := []Student{
		{ID: "s1", LessonLength: 30},
		{ID: "s2", LessonLength: 45},
	}
	_, err := EnumerateCandidates(grid, students, 0)
	if err != ErrAmbiguousSlotLength {
		t.Fatalf("expected ErrAmbiguousSlotLength, got %v", err)
	}
}

func TestEnumerateCandidates_InvalidGranularity(t *testing.T) {
	grid := buildGrid(t, "2026-08-03", []string{"09:00"}, map[string][]string{"s1": {"09:00"}})
	students := []Student{{ID: "s1", LessonLength: 45}}
	_, err := EnumerateCandidates(grid, students, 30)
	if err != ErrInvalidSlotGranularity {
		t.Fatalf("expected ErrInvalidSlotGranularity, got %v", err)
	}
}

func TestEnumerateCandidates_DropsSlotsWithNoCandidates(t *testing.T) {
	grid := buildGrid(t, "2026-08-03", []string{"09:00", "10:00"}, map[string][]string{
		"s1": {"09:00"},
	})
	result, err := EnumerateCandidates(grid, []Student{{ID: "s1", LessonLength: 60}}, 60)
	if err != nil {
		t.Fatalf("EnumerateCandidates: %v", err)
	}
	anchors := result.AnchorSlots["2026-08-03"]
	if len(anchors) != 1 {
		t.Fatalf("expected only the 09:00 slot to anchor a candidate, got %d anchors", len(anchors))
	}
}
