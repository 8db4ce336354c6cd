package scheduling

// EdgeTag identifies what real-world thing an edge represents, so the
// solver can dispatch DayState reconciliation and the augmentation
// callback without decoding a heterogeneous tuple.
type EdgeTag interface {
	isEdgeTag()
}

// OpenTag marks the source->day edge that opens a day (cap 1, cost
// day_open_cost).
type OpenTag struct{ Day string }

// ThroughputTag marks the source->day edge that carries flow once the day
// is already open (cap 0 until rewired by the solver).
type ThroughputTag struct{ Day string }

// DaySlotTag marks a day->slot edge.
type DaySlotTag struct {
	Day    string
	SlotID int
}

// SlotStudentTag marks a slot->student edge for a (possibly multi-slot)
// candidate.
type SlotStudentTag struct {
	SlotID    int
	StudentID string
	Extras    []int
}

// StudentSinkTag marks a student->sink edge.
type StudentSinkTag struct{ StudentID string }

func (OpenTag) isEdgeTag()        {}
func (ThroughputTag) isEdgeTag()  {}
func (DaySlotTag) isEdgeTag()     {}
func (SlotStudentTag) isEdgeTag() {}
func (StudentSinkTag) isEdgeTag() {}

// edge is one directed arc of the residual graph. Edges are always added
// in forward/reverse pairs at consecutive indices (i, i^1), the standard
// trick for locating an edge's reverse without a separate pointer field.
type edge struct {
	to   int
	cap  int
	cost int
	tag  EdgeTag
}

// dayState tracks one day's opening/throughput bookkeeping across
// augmentations, per spec §3/§4.4.
type dayState struct {
	day             string
	totalSlots      int
	openEdge        int
	throughputEdge  int
	opened          bool
	assignmentsMade int
}

func (d *dayState) remaining() int {
	r := d.totalSlots - d.assignmentsMade
	if r < 0 {
		return 0
	}
	return r
}

// Network is the assembled layered flow graph: source -> day -> slot ->
// student -> sink. The assembler owns the adjacency lists; the solver
// mutates edge capacities in place; nothing else writes to it.
type Network struct {
	edges []edge
	adj   [][]int // node -> edge indices, insertion order

	source int
	sink   int

	dayNode     map[string]int
	slotNode    map[int]int
	studentNode map[string]int

	dayStates map[string]*dayState

	// slotDaySlotEdge maps an anchor slot id to the edge index of its
	// day->slot edge (forward half of the pair), used to zero it out when
	// that slot is consumed as an "extra" of another block.
	slotDaySlotEdge map[int]int
	// slotStudentEdges maps a slot id to every slot_student forward edge
	// index anchored there.
	slotStudentEdges map[int][]int

	// slotMeta carries every slot id's day/position/start, for the
	// extractor to read back without re-deriving it.
	slotMeta map[int]SlotMeta
	// slotMinutes is the uniform slot length used to build this network.
	slotMinutes int

	numNodes int
}

// NetworkConfig holds the tunable cost parameters from §6.
type NetworkConfig struct {
	DayOpenCost        int
	GapPenalty         int
	SlotMinutes        int
	SkipCostBoundCheck bool
}

func newNode(n *int) int {
	id := *n
	*n++
	return id
}

func (g *Network) addEdge(from, to, cap, cost int, tag EdgeTag) int {
	fwd := len(g.edges)
	g.edges = append(g.edges, edge{to: to, cap: cap, cost: cost, tag: tag})
	g.edges = append(g.edges, edge{to: from, cap: 0, cost: -cost, tag: tag})
	g.adj[from] = append(g.adj[from], fwd)
	g.adj[to] = append(g.adj[to], fwd+1)
	return fwd
}

// BuildNetwork assembles the flow network from candidates, per §4.3.
func BuildNetwork(grid *SlotGrid, enumerated *EnumerateResult, students []Student, cfg NetworkConfig) (*Network, error) {
	maxSlotsInAnyDay := 0
	for _, d := range grid.Days {
		if len(enumerated.AnchorSlots[d]) == 0 {
			continue
		}
		if c := enumerated.DaySlotCount[d]; c > maxSlotsInAnyDay {
			maxSlotsInAnyDay = c
		}
	}

	candidateDays := 0
	for _, d := range grid.Days {
		if len(enumerated.AnchorSlots[d]) > 0 {
			candidateDays++
		}
	}
	if !cfg.SkipCostBoundCheck && candidateDays > 1 {
		bound := cfg.GapPenalty * maxSlotsInAnyDay * maxSlotsInAnyDay * maxSlotsInAnyDay
		if cfg.DayOpenCost < bound {
			return nil, ErrDayOpenCostTooLow
		}
	}

	g := &Network{
		dayNode:          make(map[string]int),
		slotNode:         make(map[int]int),
		studentNode:      make(map[string]int),
		dayStates:        make(map[string]*dayState),
		slotDaySlotEdge:  make(map[int]int),
		slotStudentEdges: make(map[int][]int),
		slotMeta:         enumerated.SlotMeta,
		slotMinutes:      cfg.SlotMinutes,
	}

	var n int
	g.source = newNode(&n)

	for _, d := range grid.Days {
		anchors := enumerated.AnchorSlots[d]
		if len(anchors) == 0 {
			continue
		}
		g.dayNode[d] = newNode(&n)
	}
	for _, d := range grid.Days {
		for _, slotID := range enumerated.AnchorSlots[d] {
			g.slotNode[slotID] = newNode(&n)
		}
	}
	for _, s := range students {
		g.studentNode[s.ID] = newNode(&n)
	}
	g.sink = newNode(&n)
	g.numNodes = n

	g.adj = make([][]int, n)

	for _, d := range grid.Days {
		anchors := enumerated.AnchorSlots[d]
		if len(anchors) == 0 {
			continue
		}
		dn := g.dayNode[d]
		openEdge := g.addEdge(g.source, dn, 1, cfg.DayOpenCost, OpenTag{Day: d})
		throughEdge := g.addEdge(g.source, dn, 0, 0, ThroughputTag{Day: d})
		g.dayStates[d] = &dayState{
			day:            d,
			totalSlots:     len(anchors),
			openEdge:       openEdge,
			throughputEdge: throughEdge,
		}

		for _, slotID := range anchors {
			meta := enumerated.SlotMeta[slotID]
			cost := cfg.GapPenalty * meta.Position * meta.Position
			sn := g.slotNode[slotID]
			e := g.addEdge(dn, sn, 1, cost, DaySlotTag{Day: d, SlotID: slotID})
			g.slotDaySlotEdge[slotID] = e
		}
	}

	for _, c := range enumerated.Candidates {
		sn, ok := g.slotNode[c.SlotID]
		if !ok {
			continue // not an anchor slot (shouldn't happen: candidates anchor by construction)
		}
		xn := g.studentNode[c.StudentID]
		bonus := 0
		for _, extraID := range c.Extras {
			p := enumerated.SlotMeta[extraID].Position
			bonus += cfg.GapPenalty * p * p
		}
		bonus -= len(c.Extras)
		e := g.addEdge(sn, xn, 1, bonus, SlotStudentTag{SlotID: c.SlotID, StudentID: c.StudentID, Extras: c.Extras})
		g.slotStudentEdges[c.SlotID] = append(g.slotStudentEdges[c.SlotID], e)
	}

	for _, s := range students {
		xn := g.studentNode[s.ID]
		g.addEdge(xn, g.sink, 1, 0, StudentSinkTag{StudentID: s.ID})
	}

	return g, nil
}
