package kdtree

// descend is the shared branch-and-bound traversal (§4.4). It generalizes
// what the teacher's kdtree_gonum.go expressed as three near-duplicate
// closures (gonumNearest, gonumKNearest, gonumRadius) into one routine that
// differs only in which collector is passed in.
//
// rd is the accumulated lower-bound distance from query to the current
// subtree's admissible region. At each stem, the near child (the side query
// falls on) is always descended; the far child is descended only if the
// updated rd still falls within the collector's pruning radius. offs[d] is
// the gap already charged to rd for axis d on the current path, so a stem
// that revisits an axis replaces that axis's charge instead of adding to it.
func descend[A Axis, T comparable](q Queryable[A, T], m Metric[A], query []A, ref int, rd A, offs []A, acc []A, c collector[A, T]) {
	if ref == noNode {
		return
	}
	if isLeafRef(ref) {
		leaf := q.leafAt(ref)
		feedLeaf(leaf, query, m, acc, c)
		return
	}
	stem := q.stemAt(ref)
	d := stem.splitDim
	diff := query[d] - stem.splitVal

	near, far := stem.left, stem.right
	if diff > 0 {
		near, far = stem.right, stem.left
	}

	descend(q, m, query, near, rd, offs, acc, c)

	off := m.Dist1(query[d], stem.splitVal)
	var rdFar A
	if accumulatesWithMax(m) {
		rdFar = off
		if rd > rdFar {
			rdFar = rd
		}
	} else {
		rdFar = rdUpdate(rd-offs[d], off)
	}
	if rdFar <= c.radius() {
		old := offs[d]
		offs[d] = off
		descend(q, m, query, far, rdFar, offs, acc, c)
		offs[d] = old
	}
}

// feedLeaf evaluates one leaf against query and reports every live slot to
// the collector. For a single-best collector this goes through the bucket
// kernel (§4.2, §4.3) directly; every other collector shape needs each
// candidate individually, so it reuses the same accumulated distances but
// iterates them one at a time (§4.5).
func feedLeaf[A Axis, T comparable](leaf *leafNode[A, T], query []A, m Metric[A], acc []A, c collector[A, T]) {
	if sb, ok := c.(*singleBestCollector[A, T]); ok {
		leaf.bestFromLeaf(query, m, acc, &sb.dist, &sb.item, &sb.seq)
		sb.found = sb.found || leaf.size > 0
		return
	}
	useMax := accumulatesWithMax(m)
	leaf.scanInto(query, m, acc, useMax)
	for i := 0; i < leaf.size; i++ {
		c.consider(acc[i], leaf.items[i], leaf.seq[i])
	}
}

// fullScan visits every leaf unconditionally, ignoring pruning. It backs
// queries against metrics that report PrunesExactly() == false (Cosine,
// WeightedCosine), and is also the "disabled pruning" mode referenced by
// the testable property that pruning must not change results (§8.4).
func fullScan[A Axis, T comparable](q Queryable[A, T], m Metric[A], query []A, acc []A, c collector[A, T]) {
	var walk func(ref int)
	walk = func(ref int) {
		if ref == noNode {
			return
		}
		if isLeafRef(ref) {
			feedLeaf(q.leafAt(ref), query, m, acc, c)
			return
		}
		stem := q.stemAt(ref)
		walk(stem.left)
		walk(stem.right)
	}
	walk(q.rootRef())
}

func runQuery[A Axis, T comparable](q Queryable[A, T], m Metric[A], query []A, c collector[A, T]) {
	acc := make([]A, leafBucketSizeOf(q))
	if m.PrunesExactly() {
		descend(q, m, query, q.rootRef(), 0, make([]A, q.dims()), acc, c)
		return
	}
	fullScan(q, m, query, acc, c)
}

// leafBucketSizeOf finds the capacity of the tree's leaves so callers can
// size the scratch accumulator once per query instead of per leaf.
func leafBucketSizeOf[A Axis, T comparable](q Queryable[A, T]) int {
	switch t := any(q).(type) {
	case *ImmutableTree[A, T]:
		return t.b
	case *Tree[A, T]:
		return t.b
	default:
		return 32
	}
}

// NearestOne returns the closest item to query and its distance. It panics
// if the tree is empty, per the EmptyTree contract (§7): callers must check
// Size() first.
func NearestOne[A Axis, T comparable](q Queryable[A, T], m Metric[A], query []A) (A, T) {
	if q.Size() == 0 {
		panic("kdtree: NearestOne called on an empty tree")
	}
	c := newSingleBest[A, T]()
	runQuery(q, m, query, c)
	return c.dist, c.item
}

// NearestN returns up to n items closest to query, ascending by distance.
// Its length is min(n, q.Size()); ties break by the supplied less function
// over items, or, if less is nil, by itemLess's default ascending-item-value
// (falling back to insertion/build order for item types with no intrinsic
// order) — always deterministic, never left in encounter order.
func NearestN[A Axis, T comparable](q Queryable[A, T], m Metric[A], query []A, n int, less func(a, b T) bool) []Neighbour[A, T] {
	if n <= 0 || q.Size() == 0 {
		return nil
	}
	c := newBoundedHeap[A, T](n)
	runQuery(q, m, query, c)
	return c.results(less)
}

// Within returns every item within radius (inclusive) of query. Output
// order is implementation-defined (§4.4); callers that need a stable order
// should sort the result themselves.
func Within[A Axis, T comparable](q Queryable[A, T], m Metric[A], query []A, radius A) []Neighbour[A, T] {
	if q.Size() == 0 || radius < 0 {
		return nil
	}
	c := newWithin[A, T](radius)
	runQuery(q, m, query, c)
	return c.out
}

// BestNWithin returns up to n items within radius of query, ranked
// descending by score (highest score first), per §4.5's "best" collector.
func BestNWithin[A Axis, T comparable, S cmpOrdered](q Queryable[A, T], m Metric[A], query []A, radius A, n int, score func(T) S) []Neighbour[A, T] {
	if q.Size() == 0 || radius < 0 || n <= 0 {
		return nil
	}
	c := newBestNWithin[A, T, S](radius, n, score)
	runQuery(q, m, query, c)
	return c.results()
}
