package kdtree

import "container/heap"

// Neighbour is one result of a nearest-n, within, or best-n-within query.
type Neighbour[A Axis, T comparable] struct {
	Dist A
	Item T
}

// collector is the caller-owned accumulator a query feeds candidates into
// (§4.5). radius reports the collector's current pruning radius so the
// traversal engine knows when it may stop descending into a subtree. seq
// is the candidate's insertion/build sequence number, used only to break
// exact-distance ties deterministically (see itemLess).
type collector[A Axis, T comparable] interface {
	consider(dist A, item T, seq int)
	radius() A
}

// itemLess decides, for two candidates tied on distance, which one the
// traversal must prefer, so results don't depend on traversal or dispatch
// order (§4.4, §8's correctness property; spec's S5 scenario: item 7 beats
// item 9 at equal distance).
//
// When T's dynamic value is one of the ordered kinds spec.md calls out as
// the "typical choice" for Item (an integer, float, or string), the lower
// value wins, exactly matching S5. Only the predeclared types are matched: a
// defined type such as `type ID int` takes the seq fallback below. Item
// types without an intrinsic order
// (structs used as opaque handles, the common case once items carry
// application payloads rather than bare identifiers) fall back to seq, the
// order the item was inserted/built in: still fully deterministic and
// reproducible for a given construction, just not a comparison of the item
// value itself. This fallback is a deliberate, documented deviation from a
// literal "item identifier" comparison for types that have none; see
// DESIGN.md.
func itemLess[T comparable](a, b T, seqA, seqB int) bool {
	switch av := any(a).(type) {
	case int:
		return av < any(b).(int)
	case int8:
		return av < any(b).(int8)
	case int16:
		return av < any(b).(int16)
	case int32:
		return av < any(b).(int32)
	case int64:
		return av < any(b).(int64)
	case uint:
		return av < any(b).(uint)
	case uint8:
		return av < any(b).(uint8)
	case uint16:
		return av < any(b).(uint16)
	case uint32:
		return av < any(b).(uint32)
	case uint64:
		return av < any(b).(uint64)
	case float32:
		return av < any(b).(float32)
	case float64:
		return av < any(b).(float64)
	case string:
		return av < any(b).(string)
	default:
		return seqA < seqB
	}
}

// singleBestCollector implements the single-best shape (§4.5): it holds
// (bestDist, bestItem); consider replaces on strict improvement, or on an
// exact tie that itemLess prefers, so the result no longer depends on
// which candidate traversal visits first.
type singleBestCollector[A Axis, T comparable] struct {
	dist  A
	item  T
	seq   int
	found bool
}

func newSingleBest[A Axis, T comparable]() *singleBestCollector[A, T] {
	c := &singleBestCollector[A, T]{}
	c.dist = maxFinite[A]()
	return c
}

func (c *singleBestCollector[A, T]) consider(dist A, item T, seq int) {
	if !c.found || dist < c.dist || (dist == c.dist && itemLess(item, c.item, seq, c.seq)) {
		c.dist = dist
		c.item = item
		c.seq = seq
		c.found = true
	}
}

func (c *singleBestCollector[A, T]) radius() A { return c.dist }

// maxFinite returns the largest finite value of A, used to seed a
// not-yet-filled collector's pruning radius to "no bound yet".
func maxFinite[A Axis]() A {
	var a A
	switch any(a).(type) {
	case float32:
		v := float32(maxFloat32)
		return A(v)
	default:
		v := float64(maxFloat64)
		return A(v)
	}
}

const (
	maxFloat32 = 3.40282346638528859811704183484516925440e+38
	maxFloat64 = 1.797693134862315708145274237317043567981e+308
)

// heapItem is one entry in a bounded-N max-heap, keyed by dist so the root
// is always the current worst candidate.
type heapItem[A Axis, T comparable] struct {
	dist A
	item T
	seq  int
}

type maxHeap[A Axis, T comparable] []heapItem[A, T]

func (h maxHeap[A, T]) Len() int            { return len(h) }
func (h maxHeap[A, T]) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h maxHeap[A, T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap[A, T]) Push(x interface{}) { *h = append(*h, x.(heapItem[A, T])) }
func (h *maxHeap[A, T]) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// boundedHeapCollector implements the bounded-N heap shape (§4.5): it keeps
// at most n candidates, replacing the current worst once full. Pruning
// radius is maxFinite (no bound yet) until full, then the worst (largest)
// kept distance.
type boundedHeapCollector[A Axis, T comparable] struct {
	n int
	h maxHeap[A, T]
}

func newBoundedHeap[A Axis, T comparable](n int) *boundedHeapCollector[A, T] {
	return &boundedHeapCollector[A, T]{n: n}
}

func (c *boundedHeapCollector[A, T]) consider(dist A, item T, seq int) {
	if len(c.h) < c.n {
		heap.Push(&c.h, heapItem[A, T]{dist, item, seq})
		return
	}
	if c.n > 0 && dist < c.h[0].dist {
		c.h[0] = heapItem[A, T]{dist, item, seq}
		heap.Fix(&c.h, 0)
	}
}

func (c *boundedHeapCollector[A, T]) radius() A {
	if len(c.h) < c.n {
		return maxFinite[A]()
	}
	if len(c.h) == 0 {
		return maxFinite[A]()
	}
	return c.h[0].dist
}

// rankedNeighbour pairs a Neighbour with the seq its item was recorded
// under, carried only so sortNeighbours can fall back to itemLess on an
// exact tie; seq never reaches the public API.
type rankedNeighbour[A Axis, T comparable] struct {
	n   Neighbour[A, T]
	seq int
}

// results drains the heap into ascending-distance order. Ties use the
// caller-supplied less when given; otherwise they fall back to itemLess, so
// the output is always deterministic (§4.5's "tie-break by item identifier
// ascending" requirement is unconditional, not opt-in).
func (c *boundedHeapCollector[A, T]) results(less func(a, b T) bool) []Neighbour[A, T] {
	ranked := make([]rankedNeighbour[A, T], len(c.h))
	tmp := append(maxHeap[A, T](nil), c.h...)
	for i := len(ranked) - 1; i >= 0; i-- {
		top := heap.Pop(&tmp).(heapItem[A, T])
		ranked[i] = rankedNeighbour[A, T]{Neighbour[A, T]{Dist: top.dist, Item: top.item}, top.seq}
	}
	sortNeighbours(ranked, less)
	out := make([]Neighbour[A, T], len(ranked))
	for i, r := range ranked {
		out[i] = r.n
	}
	return out
}

func sortNeighbours[A Axis, T comparable](ranked []rankedNeighbour[A, T], less func(a, b T) bool) {
	SortBy(ranked, func(i, j int) bool {
		if ranked[i].n.Dist != ranked[j].n.Dist {
			return ranked[i].n.Dist < ranked[j].n.Dist
		}
		if less != nil {
			return less(ranked[i].n.Item, ranked[j].n.Item)
		}
		return itemLess(ranked[i].n.Item, ranked[j].n.Item, ranked[i].seq, ranked[j].seq)
	})
}

// withinCollector implements the within/unsorted shape (§4.5): a flat list
// of everything within a fixed threshold. Pruning radius never tightens.
type withinCollector[A Axis, T comparable] struct {
	threshold A
	out       []Neighbour[A, T]
}

func newWithin[A Axis, T comparable](threshold A) *withinCollector[A, T] {
	return &withinCollector[A, T]{threshold: threshold}
}

func (c *withinCollector[A, T]) consider(dist A, item T, seq int) {
	if dist <= c.threshold {
		c.out = append(c.out, Neighbour[A, T]{Dist: dist, Item: item})
	}
}

func (c *withinCollector[A, T]) radius() A { return c.threshold }

// bestNWithinCollector implements best-n-within (§4.5): bounded by a fixed
// distance threshold, but ranked by a caller-supplied "best" score instead
// of distance. Pruning radius is always the (constant) threshold, since the
// score doesn't participate in the metric space the traversal prunes on.
type bestNWithinCollector[A Axis, T comparable, S cmpOrdered] struct {
	threshold A
	n         int
	score     func(T) S
	cand      []Neighbour[A, T]
}

// cmpOrdered mirrors cmp.Ordered; declared locally so this file doesn't need
// the "cmp" import just for the constraint name.
type cmpOrdered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

func newBestNWithin[A Axis, T comparable, S cmpOrdered](threshold A, n int, score func(T) S) *bestNWithinCollector[A, T, S] {
	return &bestNWithinCollector[A, T, S]{threshold: threshold, n: n, score: score}
}

func (c *bestNWithinCollector[A, T, S]) consider(dist A, item T, seq int) {
	if dist <= c.threshold {
		c.cand = append(c.cand, Neighbour[A, T]{Dist: dist, Item: item})
	}
}

func (c *bestNWithinCollector[A, T, S]) radius() A { return c.threshold }

func (c *bestNWithinCollector[A, T, S]) results() []Neighbour[A, T] {
	out := append([]Neighbour[A, T](nil), c.cand...)
	SortBy(out, func(i, j int) bool { return c.score(out[i].Item) > c.score(out[j].Item) })
	if c.n < len(out) {
		out = out[:c.n]
	}
	return out
}
