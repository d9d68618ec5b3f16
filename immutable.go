package kdtree

import "time"

// ImmutableTree is a static k-d tree built once from a slice via
// NewFromPoints. It supports no further insertion; callers who need to
// mutate a point set should use Tree instead. Queries allocate no heap
// storage beyond the per-query scratch accumulator and collector.
type ImmutableTree[A Axis, T comparable] struct {
	k, b   int
	stems  []stemNode[A]
	leaves []*leafNode[A, T]
	root   int
	size   int

	stats     *TreeStats
	selection *SelectionStats[T]
}

// NewFromPoints builds an immutable tree from points and their associated
// items (items[i] is the item for points[i]). All points must share the
// same dimensionality (> 0), and no coordinate may be NaN or infinite
// (§7's NonFinite contract). Splits are chosen cyclically by depth (depth %
// K), with the split value taken as the median of the current slice along
// that axis via QuickSelectByKey, per the reference builder policy (§4.6).
func NewFromPoints[A Axis, T comparable](points [][]A, items []T, opts ...TreeOption[A]) (*ImmutableTree[A, T], error) {
	if len(points) == 0 {
		return nil, ErrEmptyPoints
	}
	if len(points) != len(items) {
		return nil, ErrLenMismatch
	}
	k := len(points[0])
	if k == 0 {
		return nil, ErrZeroDim
	}
	for _, p := range points {
		if err := validatePoint(p, k); err != nil {
			return nil, err
		}
	}

	cfg := defaultTreeOptions[A]()
	for _, o := range opts {
		o(&cfg)
	}

	t := &ImmutableTree[A, T]{
		k:         k,
		b:         cfg.bucketSize,
		size:      len(points),
		stats:     NewTreeStats(),
		selection: NewSelectionStats[T](),
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(points, items, idx, 0)
	return t, nil
}

// build recursively partitions idx (indices into points/items) into the
// node arena, returning the ref of the node it created. Leaves are emitted
// once a slice no longer exceeds the bucket capacity; otherwise the slice is
// split at the median along the cyclic split axis.
func (t *ImmutableTree[A, T]) build(points [][]A, items []T, idx []int, depth int) int {
	if len(idx) <= t.b {
		leaf := newLeaf[A, T](t.k, t.b)
		leaf.size = len(idx)
		for i, pi := range idx {
			for d := 0; d < t.k; d++ {
				leaf.coords[d][i] = points[pi][d]
			}
			leaf.items[i] = items[pi]
			// pi is the point's position in the caller's input slices, which
			// doubles as its insertion sequence number for tie-breaking
			// (itemLess) since NewFromPoints takes the whole set at once.
			leaf.seq[i] = pi
		}
		t.leaves = append(t.leaves, leaf)
		return leafRef(len(t.leaves) - 1)
	}

	axis := depth % t.k
	mid := len(idx) / 2
	QuickSelectByKey(idx, mid, func(i int) A { return points[i][axis] })
	splitVal := points[idx[mid]][axis]

	left := append([]int(nil), idx[:mid]...)
	right := append([]int(nil), idx[mid:]...)

	leftRef := t.build(points, items, left, depth+1)
	rightRef := t.build(points, items, right, depth+1)

	t.stems = append(t.stems, stemNode[A]{left: leftRef, right: rightRef, splitDim: axis, splitVal: splitVal})
	return len(t.stems) - 1
}

func (t *ImmutableTree[A, T]) rootRef() int                 { return t.root }
func (t *ImmutableTree[A, T]) stemAt(ref int) *stemNode[A]  { return &t.stems[ref] }
func (t *ImmutableTree[A, T]) leafAt(ref int) *leafNode[A, T] { return t.leaves[leafIndex(ref)] }
func (t *ImmutableTree[A, T]) dims() int                    { return t.k }

// Size returns the number of live points in the tree.
func (t *ImmutableTree[A, T]) Size() int { return t.size }

// Stats returns the tree's operational statistics tracker.
func (t *ImmutableTree[A, T]) Stats() *TreeStats { return t.stats }

// Selection returns the tree's per-item selection frequency tracker.
func (t *ImmutableTree[A, T]) Selection() *SelectionStats[T] { return t.selection }

func (t *ImmutableTree[A, T]) recordQuery(start time.Time) {
	t.stats.RecordQuery(time.Since(start))
}

// NearestOne returns the closest item to query and its distance. It panics
// if the tree is empty.
func (t *ImmutableTree[A, T]) NearestOne(m Metric[A], query []A) (A, T) {
	start := time.Now()
	defer t.recordQuery(start)
	dist, item := NearestOne[A, T](t, m, query)
	t.selection.RecordSelection(item, float64(dist))
	return dist, item
}

// NearestN returns up to n items closest to query, ascending by distance.
func (t *ImmutableTree[A, T]) NearestN(m Metric[A], query []A, n int, less func(a, b T) bool) []Neighbour[A, T] {
	start := time.Now()
	defer t.recordQuery(start)
	res := NearestN[A, T](t, m, query, n, less)
	for _, r := range res {
		t.selection.RecordSelection(r.Item, float64(r.Dist))
	}
	return res
}

// Within returns every item within radius of query.
func (t *ImmutableTree[A, T]) Within(m Metric[A], query []A, radius A) []Neighbour[A, T] {
	start := time.Now()
	defer t.recordQuery(start)
	res := Within[A, T](t, m, query, radius)
	for _, r := range res {
		t.selection.RecordSelection(r.Item, float64(r.Dist))
	}
	return res
}

// BestNWithin is not exposed as a method because Go methods cannot
// introduce the extra score type parameter S; call the package-level
// BestNWithin(t, m, query, radius, n, score) function directly instead.
