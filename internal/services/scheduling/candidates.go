package scheduling

import (
	"sort"
	"time"
)

// EnumerateCandidates assigns slot ids to every teacher instant (pass 1),
// then for each day and student finds every position where that student
// could start a contiguous lesson block (pass 2). Positions with zero
// surviving candidates never get a network slot node.
//
// slotMinutes is the uniform slot length to use; if zero, it is inferred
// from the students' lesson lengths, which must then all agree.
func EnumerateCandidates(grid *SlotGrid, students []Student, slotMinutes int) (*EnumerateResult, error) {
	slotMinutes, err := resolveSlotMinutes(students, slotMinutes)
	if err != nil {
		return nil, err
	}

	requiredSlots := make(map[string]int, len(students))
	for _, s := range students {
		if slotMinutes == 0 || s.LessonLength%slotMinutes != 0 {
			return nil, ErrInvalidSlotGranularity
		}
		requiredSlots[s.ID] = s.LessonLength / slotMinutes
	}

	// Pass 1: assign slot ids to every teacher instant, day by day.
	slotMeta := make(map[int]SlotMeta)
	posToSlotID := make(map[string][]int) // day -> slot id per position, ascending
	daySlotCount := make(map[string]int, len(grid.Days))
	nextID := 0
	for _, d := range grid.Days {
		instants := grid.TeacherSlots[d]
		ids := make([]int, len(instants))
		for p, t := range instants {
			id := nextID
			nextID++
			slotMeta[id] = SlotMeta{Day: d, Position: p, Start: t}
			ids[p] = id
		}
		posToSlotID[d] = ids
		daySlotCount[d] = len(instants)
	}

	// Pass 2: for each day/student, find candidate anchor positions.
	var candidates []Candidate
	anchorSet := make(map[string]map[int]bool, len(grid.Days))
	for _, d := range grid.Days {
		instants := grid.TeacherSlots[d]
		m := len(instants)
		ids := posToSlotID[d]
		for _, s := range students {
			r := requiredSlots[s.ID]
			// Cap a block's length at the day's own slot count (§9 open
			// question: multi-slot bonus overflow), so the gap-penalty sum
			// can never exceed a day-bounded cube.
			if r > m {
				continue
			}
			accepted := grid.StudentSlots[s.ID]
			for p := 0; p+r <= m; p++ {
				if !blockIsContiguousAndAccepted(instants, accepted, p, r, slotMinutes) {
					continue
				}
				var extras []int
				if r > 1 {
					extras = append([]int(nil), ids[p+1:p+r]...)
				}
				candidates = append(candidates, Candidate{
					SlotID:    ids[p],
					StudentID: s.ID,
					Extras:    extras,
				})
				if anchorSet[d] == nil {
					anchorSet[d] = make(map[int]bool)
				}
				anchorSet[d][ids[p]] = true
			}
		}
	}

	anchorSlots := make(map[string][]int, len(anchorSet))
	for d, set := range anchorSet {
		list := make([]int, 0, len(set))
		for id := range set {
			list = append(list, id)
		}
		sort.Ints(list)
		anchorSlots[d] = list
	}

	return &EnumerateResult{
		Candidates:   candidates,
		SlotMeta:     slotMeta,
		AnchorSlots:  anchorSlots,
		DaySlotCount: daySlotCount,
		SlotMinutes:  slotMinutes,
	}, nil
}

func blockIsContiguousAndAccepted(instants []time.Time, accepted map[int64]bool, p, r, slotMinutes int) bool {
	step := time.Duration(slotMinutes) * time.Minute
	base := instants[p]
	for j := 0; j < r; j++ {
		want := base.Add(time.Duration(j) * step)
		if !instants[p+j].Equal(want) {
			return false
		}
		if !accepted[instantKey(instants[p+j])] {
			return false
		}
	}
	return true
}

func resolveSlotMinutes(students []Student, slotMinutes int) (int, error) {
	if slotMinutes > 0 {
		return slotMinutes, nil
	}
	distinct := map[int]bool{}
	for _, s := range students {
		distinct[s.LessonLength] = true
	}
	switch len(distinct) {
	case 0:
		return 0, nil
	case 1:
		for v := range distinct {
			return v, nil
		}
	}
	return 0, ErrAmbiguousSlotLength
}

// ValidateBuffer checks the buffer_minutes configuration option.
func ValidateBuffer(bufferMinutes int) error {
	if bufferMinutes < 0 {
		return ErrInvalidBuffer
	}
	return nil
}
