package scheduling

import (
	"sort"
	"time"
)

type tentative struct {
	requiredSlots int
	day           string
	start         time.Time
	slotID        int
	studentID     string
	studentName   string
	extras        []int
}

// ExtractAssignments scans saturated slot_student edges and resolves
// conflicts for multi-slot blocks deterministically, per §4.5. It returns
// the accepted lessons (sorted by day, start, student name) and the ids of
// students with no accepted assignment, in input order.
func ExtractAssignments(net *Network, students []Student, bufferMinutes int) ([]Lesson, []string) {
	nameByID := make(map[string]string, len(students))
	for _, s := range students {
		nameByID[s.ID] = s.Name
	}

	var tentatives []tentative
	for slotID, edgeIndices := range net.slotStudentEdges {
		for _, e := range edgeIndices {
			if net.edges[e].cap != 0 {
				continue // not fired
			}
			tag, ok := net.edges[e].tag.(SlotStudentTag)
			if !ok {
				continue
			}
			dsEdge, ok := net.slotDaySlotEdge[slotID]
			if !ok {
				continue
			}
			dt, ok := net.edges[dsEdge].tag.(DaySlotTag)
			if !ok {
				continue
			}
			meta := net.slotMeta[slotID]
			tentatives = append(tentatives, tentative{
				requiredSlots: 1 + len(tag.Extras),
				day:           dt.Day,
				start:         meta.Start,
				slotID:        slotID,
				studentID:     tag.StudentID,
				studentName:   nameByID[tag.StudentID],
				extras:        tag.Extras,
			})
		}
	}

	sort.Slice(tentatives, func(i, j int) bool {
		a, b := tentatives[i], tentatives[j]
		if a.requiredSlots != b.requiredSlots {
			return a.requiredSlots > b.requiredSlots
		}
		if a.day != b.day {
			return a.day < b.day
		}
		if !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		return a.studentName < b.studentName
	})

	occupied := make(map[int]bool)
	scheduled := make(map[string]bool, len(students))
	var lessons []Lesson

	buffer := time.Duration(bufferMinutes) * time.Minute

	for _, t := range tentatives {
		if occupied[t.slotID] {
			continue
		}
		conflict := false
		for _, ex := range t.extras {
			if occupied[ex] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}

		occupied[t.slotID] = true
		for _, ex := range t.extras {
			occupied[ex] = true
		}

		lessonLength := time.Duration(t.requiredSlots*net.slotMinutes) * time.Minute
		lessons = append(lessons, Lesson{
			StudentID:   t.studentID,
			StudentName: t.studentName,
			Day:         t.day,
			Start:       t.start,
			End:         t.start.Add(lessonLength).Add(buffer),
		})
		scheduled[t.studentID] = true
	}

	sort.Slice(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.StudentName < b.StudentName
	})

	var unscheduled []string
	for _, s := range students {
		if !scheduled[s.ID] {
			unscheduled = append(unscheduled, s.ID)
		}
	}

	return lessons, unscheduled
}

