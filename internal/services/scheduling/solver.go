package scheduling

import (
	"container/heap"
	"context"
	"math"
)

// Solve runs successive shortest augmenting paths with Johnson-reweighted
// Dijkstra until the sink is unreachable or flow reaches the student count
// (len of student nodes), per §4.4. It returns the total flow pushed and
// its total cost.
func (g *Network) Solve(ctx context.Context) (flow, cost, augmentations int, err error) {
	potential := make([]int, g.numNodes)

	studentCount := len(g.studentNode)

	for flow < studentCount {
		if err := ctx.Err(); err != nil {
			return flow, cost, augmentations, err
		}

		dist, prevEdge, reached := g.dijkstra(potential)
		if !reached[g.sink] {
			break
		}

		for v := 0; v < g.numNodes; v++ {
			if reached[v] {
				potential[v] += dist[v]
			}
		}

		path := g.tracePath(prevEdge)

		delta := math.MaxInt32
		for _, e := range path {
			if g.edges[e].cap < delta {
				delta = g.edges[e].cap
			}
		}
		if delta <= 0 {
			return flow, cost, augmentations, &ErrInternalInvariantViolation{Detail: "augmenting path with non-positive bottleneck capacity"}
		}

		pathCost := 0
		for _, e := range path {
			pathCost += g.edges[e].cost
		}

		for _, e := range path {
			g.edges[e].cap -= delta
			g.edges[e^1].cap += delta
		}

		g.reconcileDayStates(path, delta)
		g.dispatchAugmentationCallback(path, delta)

		flow += delta
		cost += pathCost * delta
		augmentations++
	}

	return flow, cost, augmentations, nil
}

// reconcileDayStates implements §4.4's DayState reconciliation, run in the
// order the spec lists: day_slot increments first, then open/throughput
// transitions (a day newly opened in this same path needs its updated
// remaining() to seed the throughput edge correctly).
func (g *Network) reconcileDayStates(path []int, delta int) {
	daySlotDays := map[string]bool{}
	openDays := map[string]bool{}

	for _, e := range path {
		switch tag := g.edges[e].tag.(type) {
		case DaySlotTag:
			daySlotDays[tag.Day] = true
		case OpenTag:
			openDays[tag.Day] = true
		}
	}

	for d := range daySlotDays {
		ds := g.dayStates[d]
		ds.assignmentsMade += delta
	}

	for d := range openDays {
		ds := g.dayStates[d]
		if ds.opened {
			continue
		}
		ds.opened = true
		g.edges[ds.throughputEdge].cap = ds.remaining()
		g.edges[ds.openEdge^1].cap = 0
	}

	for d := range daySlotDays {
		ds := g.dayStates[d]
		if !ds.opened {
			continue
		}
		if g.edges[ds.throughputEdge].cap > ds.remaining() {
			g.edges[ds.throughputEdge].cap = ds.remaining()
		}
	}
}

// dispatchAugmentationCallback implements §4.4's multi-slot callback: when
// a traversed slot_student edge carries extras, those extra slots are
// removed from the residual graph and their day credited with virtual
// assignments.
func (g *Network) dispatchAugmentationCallback(path []int, delta int) {
	for _, e := range path {
		tag, ok := g.edges[e].tag.(SlotStudentTag)
		if !ok || len(tag.Extras) == 0 {
			continue
		}

		var day string
		if dsEdge, ok := g.slotDaySlotEdge[tag.SlotID]; ok {
			if dt, ok := g.edges[dsEdge].tag.(DaySlotTag); ok {
				day = dt.Day
			}
		}

		for _, extraID := range tag.Extras {
			if dsEdge, ok := g.slotDaySlotEdge[extraID]; ok {
				g.edges[dsEdge].cap = 0
				g.edges[dsEdge^1].cap = 0
			}
			for _, se := range g.slotStudentEdges[extraID] {
				g.edges[se].cap = 0
				g.edges[se^1].cap = 0
			}
		}

		if day == "" {
			continue
		}
		ds := g.dayStates[day]
		ds.assignmentsMade += len(tag.Extras) * delta
		if ds.opened && g.edges[ds.throughputEdge].cap > ds.remaining() {
			g.edges[ds.throughputEdge].cap = ds.remaining()
		}
	}
}

func (g *Network) tracePath(prevEdge []int) []int {
	var path []int
	for v := g.sink; v != g.source; {
		e := prevEdge[v]
		path = append(path, e)
		v = g.edges[e^1].to
	}
	// reverse into source->sink order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// heapItem is one entry of the Dijkstra priority queue, ordered by
// distance then node id, to make tie-breaks deterministic per §4.4.
type heapItem struct {
	node int
	dist int
}

type priorityQueue []heapItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].node < pq[j].node
}
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(heapItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra runs Dijkstra over reduced costs c(u,v)+π(u)-π(v), which are
// non-negative as long as potential is valid (maintained by the caller's
// potential update after every augmentation).
func (g *Network) dijkstra(potential []int) (dist []int, prevEdge []int, reached []bool) {
	const inf = math.MaxInt32

	dist = make([]int, g.numNodes)
	prevEdge = make([]int, g.numNodes)
	reached = make([]bool, g.numNodes)
	for i := range dist {
		dist[i] = inf
		prevEdge[i] = -1
	}
	dist[g.source] = 0

	pq := &priorityQueue{{node: g.source, dist: 0}}
	heap.Init(pq)

	visited := make([]bool, g.numNodes)

	for pq.Len() > 0 {
		top := heap.Pop(pq).(heapItem)
		u := top.node
		if visited[u] {
			continue
		}
		visited[u] = true
		reached[u] = true

		for _, eIdx := range g.adj[u] {
			e := g.edges[eIdx]
			if e.cap <= 0 {
				continue
			}
			reduced := e.cost + potential[u] - potential[e.to]
			nd := dist[u] + reduced
			if nd < dist[e.to] {
				dist[e.to] = nd
				prevEdge[e.to] = eIdx
				heap.Push(pq, heapItem{node: e.to, dist: nd})
			}
		}
	}

	return dist, prevEdge, reached
}
