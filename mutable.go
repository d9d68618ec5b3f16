package kdtree

import (
	"math"
	"time"
)

// Tree is a mutable k-d tree supporting Add and Remove. New points start in
// a single leaf; once a leaf fills, the next insert into it splits the leaf
// into a stem plus two leaves (§4.7), the same way the teacher's KDTree
// grows by append but realized over real stem/leaf topology instead of a
// flat slice. Remove never rebalances or merges leaves back together,
// mirroring the teacher's own choice not to rebuild on delete.
type Tree[A Axis, T comparable] struct {
	k, b    int
	stems   []stemNode[A]
	leaves  []*leafNode[A, T]
	root    int
	size    int
	nextSeq int

	stats     *TreeStats
	selection *SelectionStats[T]
}

// NewTree constructs an empty mutable tree of the given dimension. Call Add
// to populate it.
func NewTree[A Axis, T comparable](dim int, opts ...TreeOption[A]) *Tree[A, T] {
	cfg := defaultTreeOptions[A]()
	for _, o := range opts {
		o(&cfg)
	}
	t := &Tree[A, T]{
		k:         dim,
		b:         cfg.bucketSize,
		stats:     NewTreeStats(),
		selection: NewSelectionStats[T](),
	}
	t.leaves = append(t.leaves, newLeaf[A, T](dim, cfg.bucketSize))
	t.root = leafRef(0)
	return t
}

func (t *Tree[A, T]) rootRef() int                   { return t.root }
func (t *Tree[A, T]) stemAt(ref int) *stemNode[A]    { return &t.stems[ref] }
func (t *Tree[A, T]) leafAt(ref int) *leafNode[A, T] { return t.leaves[leafIndex(ref)] }
func (t *Tree[A, T]) dims() int                      { return t.k }

// Size returns the number of live points in the tree.
func (t *Tree[A, T]) Size() int { return t.size }

// Stats returns the tree's operational statistics tracker.
func (t *Tree[A, T]) Stats() *TreeStats { return t.stats }

// Selection returns the tree's per-item selection frequency tracker.
func (t *Tree[A, T]) Selection() *SelectionStats[T] { return t.selection }

// Add inserts point with the given item, splitting a full leaf into a stem
// plus two leaves if necessary (§4.7). It returns ErrDimMismatch or
// ErrNonFinite if point is invalid for this tree, and ErrCapacityExceeded
// once the tree's int insertion counter has reached its maximum.
func (t *Tree[A, T]) Add(point []A, item T) error {
	if err := validatePoint(point, t.k); err != nil {
		return err
	}
	if t.nextSeq == math.MaxInt {
		return ErrCapacityExceeded
	}

	ref := t.root
	depth := 0
	setChild := func(newRef int) { t.root = newRef }

	for isLeafRef(ref) == false {
		stem := &t.stems[ref]
		d := stem.splitDim
		if point[d] <= stem.splitVal {
			si := ref
			ref = stem.left
			setChild = func(newRef int) { t.stems[si].left = newRef }
		} else {
			si := ref
			ref = stem.right
			setChild = func(newRef int) { t.stems[si].right = newRef }
		}
		depth++
	}

	seq := t.nextSeq
	t.nextSeq++

	leafIdx := leafIndex(ref)
	leaf := t.leaves[leafIdx]
	if leaf.size < leaf.cap() {
		i := leaf.size
		for d := 0; d < t.k; d++ {
			leaf.coords[d][i] = point[d]
		}
		leaf.items[i] = item
		leaf.seq[i] = seq
		leaf.size++
		t.size++
		t.stats.RecordInsert()
		return nil
	}

	if err := t.splitLeaf(leafIdx, point, item, seq, depth, setChild); err != nil {
		return err
	}
	t.size++
	t.stats.RecordInsert()
	return nil
}

// splitLeaf combines a full leaf's B points with the new one, partitions
// the B+1 points at their median along the cyclic split axis for this
// depth, and replaces the leaf with a stem pointing at two fresh leaves.
func (t *Tree[A, T]) splitLeaf(leafIdx int, point []A, item T, seq int, depth int, setChild func(int)) error {
	old := t.leaves[leafIdx]
	n := old.size + 1
	pts := make([][]A, n)
	items := make([]T, n)
	seqs := make([]int, n)
	for i := 0; i < old.size; i++ {
		p := make([]A, t.k)
		for d := 0; d < t.k; d++ {
			p[d] = old.coords[d][i]
		}
		pts[i] = p
		items[i] = old.items[i]
		seqs[i] = old.seq[i]
	}
	pts[old.size] = append([]A(nil), point...)
	items[old.size] = item
	seqs[old.size] = seq

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	axis := depth % t.k
	mid := n / 2
	QuickSelectByKey(idx, mid, func(i int) A { return pts[i][axis] })
	splitVal := pts[idx[mid]][axis]

	left := newLeaf[A, T](t.k, t.b)
	for i, pi := range idx[:mid] {
		for d := 0; d < t.k; d++ {
			left.coords[d][i] = pts[pi][d]
		}
		left.items[i] = items[pi]
		left.seq[i] = seqs[pi]
	}
	left.size = mid

	right := newLeaf[A, T](t.k, t.b)
	for i, pi := range idx[mid:] {
		for d := 0; d < t.k; d++ {
			right.coords[d][i] = pts[pi][d]
		}
		right.items[i] = items[pi]
		right.seq[i] = seqs[pi]
	}
	right.size = n - mid

	t.leaves[leafIdx] = left
	t.leaves = append(t.leaves, right)
	newStem := stemNode[A]{left: leafRef(leafIdx), right: leafRef(len(t.leaves) - 1), splitDim: axis, splitVal: splitVal}
	t.stems = append(t.stems, newStem)
	setChild(len(t.stems) - 1)
	return nil
}

// Remove deletes one point equal to (point, item) from the tree, swapping
// the leaf's last live slot into the freed position (the same swap-delete
// the teacher's DeleteByID uses, adapted to per-leaf SoA slots instead of a
// flat points slice). point is used only to disambiguate equal items at
// different locations; matching is ultimately by item equality, since that
// is the only operation §3 requires of Item. Remove never rebalances the
// tree: an emptied leaf is simply left in place, matching the teacher's own
// choice not to rebuild its backend on every delete.
func (t *Tree[A, T]) Remove(point []A, item T) bool {
	if len(point) != t.k {
		return false
	}
	for _, leaf := range t.leaves {
		for i := 0; i < leaf.size; i++ {
			if leaf.items[i] != item {
				continue
			}
			if !pointEquals(leaf, i, point, t.k) {
				continue
			}
			last := leaf.size - 1
			for d := 0; d < t.k; d++ {
				leaf.coords[d][i] = leaf.coords[d][last]
			}
			leaf.items[i] = leaf.items[last]
			leaf.seq[i] = leaf.seq[last]
			leaf.size--
			t.size--
			t.stats.RecordRemove()
			return true
		}
	}
	return false
}

func pointEquals[A Axis, T comparable](leaf *leafNode[A, T], slot int, point []A, k int) bool {
	for d := 0; d < k; d++ {
		if leaf.coords[d][slot] != point[d] {
			return false
		}
	}
	return true
}

func (t *Tree[A, T]) recordQuery(start time.Time) {
	t.stats.RecordQuery(time.Since(start))
}

// NearestOne returns the closest item to query and its distance. It panics
// if the tree is empty.
func (t *Tree[A, T]) NearestOne(m Metric[A], query []A) (A, T) {
	start := time.Now()
	defer t.recordQuery(start)
	dist, item := NearestOne[A, T](t, m, query)
	t.selection.RecordSelection(item, float64(dist))
	return dist, item
}

// NearestN returns up to n items closest to query, ascending by distance.
func (t *Tree[A, T]) NearestN(m Metric[A], query []A, n int, less func(a, b T) bool) []Neighbour[A, T] {
	start := time.Now()
	defer t.recordQuery(start)
	res := NearestN[A, T](t, m, query, n, less)
	for _, r := range res {
		t.selection.RecordSelection(r.Item, float64(r.Dist))
	}
	return res
}

// Within returns every item within radius of query.
func (t *Tree[A, T]) Within(m Metric[A], query []A, radius A) []Neighbour[A, T] {
	start := time.Now()
	defer t.recordQuery(start)
	res := Within[A, T](t, m, query, radius)
	for _, r := range res {
		t.selection.RecordSelection(r.Item, float64(r.Dist))
	}
	return res
}
