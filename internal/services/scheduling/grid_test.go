package scheduling

import (
	"testing"
	"time"
)

func TestBuildSlotGrid_DeduplicatesAndSorts(t *testing.T) {
	mk := func(s string) time.Time {
		tm, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("parsing %q: %v", s, err)
		}
		return tm
	}

	avail := []AvailabilityRecord{
		{TeacherID: "t1", Start: mk("2026-08-03T10:00:00Z")},
		{TeacherID: "t1", Start: mk("2026-08-03T09:00:00Z")},
		{TeacherID: "t1", Start: mk("2026-08-03T09:00:00Z")}, // duplicate
		{StudentID: "s1", Start: mk("2026-08-03T09:00:00Z")},
	}

	grid, err := BuildSlotGrid(avail, nil, "t1")
	if err != nil {
		t.Fatalf("BuildSlotGrid: %v", err)
	}
	if len(grid.Days) != 1 || grid.Days[0] != "2026-08-03" {
		t.Fatalf("expected single day 2026-08-03, got %v", grid.Days)
	}
	slots := grid.TeacherSlots["2026-08-03"]
	if len(slots) != 2 {
		t.Fatalf("expected 2 deduplicated slots, got %d", len(slots))
	}
	if !slots[0].Before(slots[1]) {
		t.Fatalf("expected ascending order, got %v", slots)
	}
	if !grid.StudentSlots["s1"][instantKey(mk("2026-08-03T09:00:00Z"))] {
		t.Fatal("expected student s1's availability to survive")
	}
}

func TestBuildSlotGrid_AllowedDaysFilter(t *testing.T) {
	mk := func(s string) time.Time {
		tm, _ := time.Parse(time.RFC3339, s)
		return tm
	}
	avail := []AvailabilityRecord{
		{TeacherID: "t1", Start: mk("2026-08-03T09:00:00Z")},
		{TeacherID: "t1", Start: mk("2026-08-04T09:00:00Z")},
	}
	grid, err := BuildSlotGrid(avail, map[string]bool{"2026-08-04": true}, "t1")
	if err != nil {
		t.Fatalf("BuildSlotGrid: %v", err)
	}
	if len(grid.Days) != 1 || grid.Days[0] != "2026-08-04" {
		t.Fatalf("expected only 2026-08-04 to survive, got %v", grid.Days)
	}
}
