package kdtree

import "testing"

func TestBestFromDistsScalarVsWideAgree(t *testing.T) {
	acc := []float64{9, 3, 7, 3, 5, 1, 8, 2, 6, 4, 1, 0}
	items := make([]int, len(acc))
	seq := make([]int, len(acc))
	for i := range items {
		items[i] = i
		seq[i] = i
	}

	var scalarDist, wideDist float64
	var scalarItem, wideItem int
	var scalarSeq, wideSeq int
	scalarDist = maxFinite[float64]()
	wideDist = maxFinite[float64]()

	bestFromDistsScalar(acc, items, seq, &scalarDist, &scalarItem, &scalarSeq)
	bestFromDistsWide(acc, items, seq, &wideDist, &wideItem, &wideSeq)

	if scalarDist != wideDist {
		t.Fatalf("scalar/wide distance mismatch: %v vs %v", scalarDist, wideDist)
	}
	if scalarItem != wideItem {
		t.Fatalf("scalar/wide item mismatch: %v vs %v", scalarItem, wideItem)
	}
	if scalarItem != 11 {
		t.Fatalf("expected lowest-distance winner 11, got %v", scalarItem)
	}
}

// TestBestFromDistsTieBreaksOnLowestItem pins down the itemLess tie-break:
// two slots reach the same minimum distance, and the lower item value must
// win regardless of which lane or chunk either slot falls into.
func TestBestFromDistsTieBreaksOnLowestItem(t *testing.T) {
	// Index 1 (lane 1 of chunk 0, item 1) and index 4 (lane 0 of chunk 1,
	// item 4) both reach distance 2. Processing lanes in order 0,1,2,3 would
	// let lane 0's winner (item 4) lock in before lane 1's tied-but-lower
	// item 1 is ever compared against it, so the lower item only wins if the
	// reduction compares every lane's winner against each other by value,
	// not by discovery order.
	acc := []float64{9, 2, 9, 9, 2, 9, 9, 9}
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	seq := []int{0, 1, 2, 3, 4, 5, 6, 7}

	for _, fn := range []func([]float64, []int, []int, *float64, *int, *int){bestFromDistsScalar[float64, int], bestFromDistsWide[float64, int]} {
		dist := maxFinite[float64]()
		var item, s int
		fn(acc, items, seq, &dist, &item, &s)
		if item != 1 {
			t.Fatalf("expected tie-break winner item 1, got %v (dist %v)", item, dist)
		}
	}
}

func TestBestFromDistsRespectsExistingBest(t *testing.T) {
	acc := []float64{5, 5, 5}
	items := []int{0, 1, 2}
	seq := []int{0, 1, 2}
	dist := 1.0 // already better than anything in acc
	item := -1
	s := -1
	bestFromDists(acc, items, seq, &dist, &item, &s)
	if item != -1 || dist != 1.0 {
		t.Fatalf("expected no replacement when caller's best already beats all slots, got item=%v dist=%v", item, dist)
	}
}

func TestBestFromDistsEmpty(t *testing.T) {
	dist := maxFinite[float64]()
	item := -1
	s := -1
	bestFromDists[float64, int](nil, nil, nil, &dist, &item, &s)
	if item != -1 {
		t.Fatalf("expected no change on empty input, got item=%v", item)
	}
}
