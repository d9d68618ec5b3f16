package kdtree

import (
	"math"
	"testing"
)

func bruteForceNearest[A Axis](points [][]A, m Metric[A], query []A) (A, int) {
	best := maxFinite[A]()
	bestIdx := -1
	for i, p := range points {
		d := m.Dist(p, query)
		if d < best {
			best = d
			bestIdx = i
		}
	}
	return best, bestIdx
}

func bruteForceWithin[A Axis](points [][]A, m Metric[A], query []A, radius A) []int {
	var out []int
	for i, p := range points {
		if d := m.Dist(p, query); d <= radius {
			out = append(out, i)
		}
	}
	return out
}

func lcg(seed uint64) func() float64 {
	state := seed
	return func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(state>>11) / float64(1<<53)
	}
}

func randomPoints(n, k int, seed uint64) [][]float64 {
	rnd := lcg(seed)
	pts := make([][]float64, n)
	for i := range pts {
		p := make([]float64, k)
		for d := range p {
			p[d] = rnd() * 1000
		}
		pts[i] = p
	}
	return pts
}

func TestNewFromPointsRejectsEmpty(t *testing.T) {
	if _, err := NewFromPoints[float64, int](nil, nil); err != ErrEmptyPoints {
		t.Fatalf("expected ErrEmptyPoints, got %v", err)
	}
}

func TestNewFromPointsRejectsLenMismatch(t *testing.T) {
	_, err := NewFromPoints([][]float64{{1, 2}}, []int{1, 2})
	if err != ErrLenMismatch {
		t.Fatalf("expected ErrLenMismatch, got %v", err)
	}
}

func TestNewFromPointsRejectsZeroDim(t *testing.T) {
	_, err := NewFromPoints([][]float64{{}}, []int{1})
	if err != ErrZeroDim {
		t.Fatalf("expected ErrZeroDim, got %v", err)
	}
}

func TestNewFromPointsRejectsDimMismatch(t *testing.T) {
	_, err := NewFromPoints([][]float64{{1, 2}, {1}}, []int{1, 2})
	if err != ErrDimMismatch {
		t.Fatalf("expected ErrDimMismatch, got %v", err)
	}
}

func TestNewFromPointsRejectsNonFinite(t *testing.T) {
	_, err := NewFromPoints([][]float64{{1, math.NaN()}}, []int{1})
	if err != ErrNonFinite {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
}

// TestNearestOnePanicsOnEmptyTree is scenario S4 (empty tree).
func TestNearestOnePanicsOnEmptyTree(t *testing.T) {
	mt := NewTree[float64, int](2)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on NearestOne against an empty tree")
		}
	}()
	mt.NearestOne(SquaredEuclidean[float64]{}, []float64{0, 0})
}

// TestNearestOneMatchesBruteForce is the correctness-vs-brute-force
// property (§8) for a moderately sized random point set (scenario S3).
func TestNearestOneMatchesBruteForce(t *testing.T) {
	const n, k = 2000, 3
	pts := randomPoints(n, k, 42)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	tr, err := NewFromPoints(pts, items, WithBucketSize[float64](16))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := SquaredEuclidean[float64]{}

	queries := randomPoints(50, k, 7)
	for _, q := range queries {
		wantDist, wantIdx := bruteForceNearest(pts, m, q)
		gotDist, gotItem := tr.NearestOne(m, q)
		if gotDist != wantDist {
			t.Fatalf("distance mismatch: want %v got %v", wantDist, gotDist)
		}
		// Items are 0..n-1 and bruteForceNearest keeps the first (lowest
		// index) winner on a tie, matching NearestOne's documented
		// lowest-item-identifier tie-break, so the winner must match exactly.
		if gotItem != wantIdx {
			t.Fatalf("item mismatch on tie-break: want %d got %d (dist %v)", wantIdx, gotItem, gotDist)
		}
	}
}

// TestNearestNMonotonic checks the nearest-n monotonicity property (§8):
// distances returned by NearestN must be non-decreasing.
func TestNearestNMonotonic(t *testing.T) {
	const n, k = 500, 2
	pts := randomPoints(n, k, 99)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	tr, err := NewFromPoints(pts, items)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res := tr.NearestN(SquaredEuclidean[float64]{}, []float64{500, 500}, 10, func(a, b int) bool { return a < b })
	if len(res) != 10 {
		t.Fatalf("expected 10 results, got %d", len(res))
	}
	for i := 1; i < len(res); i++ {
		if res[i].Dist < res[i-1].Dist {
			t.Fatalf("nearest-n results not monotonic at index %d: %v then %v", i, res[i-1].Dist, res[i].Dist)
		}
	}
}

// TestNearestNClampsToSize ensures asking for more neighbours than exist
// returns exactly Size() results.
func TestNearestNClampsToSize(t *testing.T) {
	pts := [][]float64{{0}, {1}, {2}}
	tr, err := NewFromPoints(pts, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res := tr.NearestN(SquaredEuclidean[float64]{}, []float64{0}, 100, nil)
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res))
	}
}

// TestWithinSoundAndComplete checks both directions of the within property
// (§8): every returned neighbour must be within radius (soundness), and
// every point actually within radius must be returned (completeness).
func TestWithinSoundAndComplete(t *testing.T) {
	const n, k = 1000, 3
	pts := randomPoints(n, k, 123)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	tr, err := NewFromPoints(pts, items, WithBucketSize[float64](8))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := SquaredEuclidean[float64]{}
	query := []float64{500, 500, 500}
	radius := 40000.0

	got := tr.Within(m, query, radius)
	gotSet := make(map[int]float64, len(got))
	for _, r := range got {
		if r.Dist > radius {
			t.Fatalf("unsound result: item %v at distance %v exceeds radius %v", r.Item, r.Dist, radius)
		}
		gotSet[r.Item] = r.Dist
	}

	want := bruteForceWithin(pts, m, query, radius)
	if len(want) != len(got) {
		t.Fatalf("incomplete/unsound result set: brute force found %d, tree found %d", len(want), len(got))
	}
	for _, idx := range want {
		if _, ok := gotSet[idx]; !ok {
			t.Fatalf("within is incomplete: missing point index %d", idx)
		}
	}
}

// TestPruningDoesNotChangeResults is the pruning-equivalence property (§8):
// a pruning metric's NearestN results must match the unpruned full scan.
func TestPruningDoesNotChangeResults(t *testing.T) {
	const n, k = 800, 4
	pts := randomPoints(n, k, 7)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	tr, err := NewFromPoints(pts, items, WithBucketSize[float64](4))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := SquaredEuclidean[float64]{}
	query := []float64{250, 250, 250, 250}

	pruned := tr.NearestN(m, query, 5, func(a, b int) bool { return a < b })

	c := newBoundedHeap[float64, int](5)
	acc := make([]float64, tr.b)
	fullScan[float64, int](tr, m, query, acc, c)
	unpruned := c.results(func(a, b int) bool { return a < b })

	if len(pruned) != len(unpruned) {
		t.Fatalf("pruned/unpruned result count mismatch: %d vs %d", len(pruned), len(unpruned))
	}
	for i := range pruned {
		if pruned[i].Dist != unpruned[i].Dist || pruned[i].Item != unpruned[i].Item {
			t.Fatalf("pruned/unpruned mismatch at %d: %+v vs %+v", i, pruned[i], unpruned[i])
		}
	}
}

// TestDispatchEquivalence is the dispatch-equivalence property (§8): forcing
// the scalar vs wide kernel path must not change NearestOne's result.
func TestDispatchEquivalence(t *testing.T) {
	const n, k = 300, 2
	pts := randomPoints(n, k, 55)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	tr, err := NewFromPoints(pts, items, WithBucketSize[float64](32))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := SquaredEuclidean[float64]{}
	query := []float64{400, 600}

	dispatchOnce.Do(func() {})
	laneWidth = lanesScalar
	scalarDist, scalarItem := tr.NearestOne(m, query)

	laneWidth = lanesWide
	wideDist, wideItem := tr.NearestOne(m, query)

	if scalarDist != wideDist || scalarItem != wideItem {
		t.Fatalf("dispatch changed result: scalar=(%v,%v) wide=(%v,%v)", scalarDist, scalarItem, wideDist, wideItem)
	}
}

// TestS1SquaredEuclidean2D is scenario S1 from spec.md's concrete examples:
// a small 2D point set queried with SquaredEuclidean.
func TestS1SquaredEuclidean2D(t *testing.T) {
	pts := [][]float64{{0, 0}, {1, 1}, {5, 5}, {2, 3}, {-1, -1}}
	items := []string{"a", "b", "c", "d", "e"}
	tr, err := NewFromPoints(pts, items)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	d, item := tr.NearestOne(SquaredEuclidean[float64]{}, []float64{0, 0})
	if item != "a" || d != 0 {
		t.Fatalf("expected (a, 0), got (%v, %v)", item, d)
	}
}

// TestS2SquaredEuclidean3D is scenario S2: a 3D point set, nearest-3.
func TestS2SquaredEuclidean3D(t *testing.T) {
	pts := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {10, 10, 10}}
	items := []int{0, 1, 2, 3, 4}
	tr, err := NewFromPoints(pts, items)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res := tr.NearestN(SquaredEuclidean[float64]{}, []float64{0, 0, 0}, 3, func(a, b int) bool { return a < b })
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res))
	}
	if res[0].Item != 0 || res[0].Dist != 0 {
		t.Fatalf("expected the origin point first, got %+v", res[0])
	}
}

func TestInsertionInvariant(t *testing.T) {
	const n, k = 600, 2
	pts := randomPoints(n, k, 9)
	tr := NewTree[float64, int](k)
	for i, p := range pts {
		if err := tr.Add(p, i); err != nil {
			t.Fatalf("unexpected Add err: %v", err)
		}
	}
	if tr.Size() != n {
		t.Fatalf("expected size %d, got %d", n, tr.Size())
	}
	m := SquaredEuclidean[float64]{}
	for _, q := range randomPoints(20, k, 10) {
		wantDist, _ := bruteForceNearest(pts, m, q)
		gotDist, _ := tr.NearestOne(m, q)
		if gotDist != wantDist {
			t.Fatalf("mutable tree nearest mismatch: want %v got %v", wantDist, gotDist)
		}
	}
}

func TestRemoveThenNearestExcludesRemoved(t *testing.T) {
	pts := [][]float64{{0, 0}, {1, 1}, {2, 2}}
	tr := NewTree[float64, string](2)
	labels := []string{"a", "b", "c"}
	for i, p := range pts {
		if err := tr.Add(p, labels[i]); err != nil {
			t.Fatalf("Add err: %v", err)
		}
	}
	if !tr.Remove([]float64{0, 0}, "a") {
		t.Fatalf("expected Remove to find and remove (0,0)/a")
	}
	if tr.Size() != 2 {
		t.Fatalf("expected size 2 after remove, got %d", tr.Size())
	}
	_, best := tr.NearestOne(SquaredEuclidean[float64]{}, []float64{0, 0})
	if best != "b" {
		t.Fatalf("expected nearest to be b after removing a, got %v", best)
	}
}

func TestLeafSizeInvariant(t *testing.T) {
	const n, k = 500, 2
	pts := randomPoints(n, k, 3)
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	tr, err := NewFromPoints(pts, items, WithBucketSize[float64](16))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, leaf := range tr.leaves {
		if leaf.size > leaf.cap() {
			t.Fatalf("leaf size %d exceeds capacity %d", leaf.size, leaf.cap())
		}
	}
}

func TestBestNWithin(t *testing.T) {
	type item struct {
		name  string
		score int
	}
	pts := [][]float64{{0, 0}, {1, 0}, {2, 0}, {10, 10}}
	items := []item{{"a", 1}, {"b", 9}, {"c", 5}, {"d", 100}}
	tr, err := NewFromPoints(pts, items)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res := BestNWithin[float64, item, int](tr, SquaredEuclidean[float64]{}, []float64{0, 0}, 10, 2, func(it item) int { return it.score })
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	if res[0].Item.name != "b" {
		t.Fatalf("expected highest-score item b first, got %v", res[0].Item.name)
	}
}

// TestS5LowerItemIdentifierWinsExactTie is spec.md's S5 scenario: duplicate
// points with items 7 and 9 at the query, lower identifier wins.
func TestS5LowerItemIdentifierWinsExactTie(t *testing.T) {
	pts := [][]float64{{1, 1, 1}, {1, 1, 1}}
	items := []int{9, 7}
	tr, err := NewFromPoints(pts, items)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	d, item := tr.NearestOne(SquaredEuclidean[float64]{}, []float64{1, 1, 1})
	if d != 0 || item != 7 {
		t.Fatalf("expected (0, 7), got (%v, %v)", d, item)
	}
}

// TestNearestNTieBreaksByItemValueWithoutLess exercises NearestN's
// documented default tie-break (ascending item identifier) when the caller
// passes a nil less, for item types with an intrinsic order.
func TestNearestNTieBreaksByItemValueWithoutLess(t *testing.T) {
	pts := [][]float64{{0, 0}, {0, 0}, {0, 0}}
	items := []int{20, 5, 10}
	tr, err := NewFromPoints(pts, items)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res := tr.NearestN(SquaredEuclidean[float64]{}, []float64{0, 0}, 3, nil)
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res))
	}
	want := []int{5, 10, 20}
	for i, r := range res {
		if r.Item != want[i] {
			t.Fatalf("expected ascending item order %v on an all-tied NearestN, got %v at %d", want, r.Item, i)
		}
	}
}
