package kdtree

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// bestFromDists is the leaf evaluation kernel (§4.2): given per-slot
// accumulated distances, the bucket's items, and their insertion/build
// sequence numbers, it updates (bestDist, bestItem, bestSeq) if any slot
// beats the caller's current best. Exact ties are broken by itemLess, a
// pure function of (item, seq) rather than of scan position, so the
// reduction is associative and gives the same winner regardless of lane
// width or visitation order (§8's dispatch-equivalence property).
//
// Dispatch picks a lane width once per process (cached in laneWidth via
// dispatchOnce) based on runtime CPU capability, mirroring the reference
// design's AVX2/AVX-512/NEON/auto-vectorized-fallback split. Go has no
// portable way to emit hand-written SIMD intrinsics the way the reference
// implementation's per-ISA assembly does, so "dispatch" here means choosing
// an unroll factor the compiler can turn into wide loads on that target;
// the arithmetic performed by every lane is identical regardless of width,
// so results are bit-identical across dispatch choices.
func bestFromDists[A Axis, T comparable](acc []A, items []T, seq []int, bestDist *A, bestItem *T, bestSeq *int) {
	dispatchOnce.Do(detectLaneWidth)
	switch laneWidth {
	case lanesWide:
		bestFromDistsWide(acc, items, seq, bestDist, bestItem, bestSeq)
	default:
		bestFromDistsScalar(acc, items, seq, bestDist, bestItem, bestSeq)
	}
}

type laneWidthKind int

const (
	lanesScalar laneWidthKind = iota
	lanesWide
)

var (
	dispatchOnce sync.Once
	laneWidth    laneWidthKind
)

// detectLaneWidth probes the running CPU once and caches the chosen kernel
// variant for the lifetime of the process, per §4.2's dispatch contract.
func detectLaneWidth() {
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		laneWidth = lanesWide
		return
	}
	laneWidth = lanesScalar
}

// bestFromDistsScalar is the portable, auto-vectorizable fallback: a
// straight index-order scan.
func bestFromDistsScalar[A Axis, T comparable](acc []A, items []T, seq []int, bestDist *A, bestItem *T, bestSeq *int) {
	for i, d := range acc {
		if d < *bestDist || (d == *bestDist && itemLess(items[i], *bestItem, seq[i], *bestSeq)) {
			*bestDist = d
			*bestItem = items[i]
			*bestSeq = seq[i]
		}
	}
}

// bestFromDistsWide processes acc in chunks of 4, tracking a running
// minimum and its (item, seq) per lane before reducing lane-wise at the
// end. This is the chunked shape that maps onto the reference design's
// vector compare + blend + reduce pattern (4 lanes = AVX2-width for
// float64 on the reference), without requiring actual intrinsics. It must
// produce the same (bestDist, bestItem) as the scalar path for any input:
// every comparison, within a lane and during the final reduction, resolves
// ties through the same itemLess predicate, which depends only on the
// candidates' own (item, seq) values and not on which lane or chunk they
// were found in.
func bestFromDistsWide[A Axis, T comparable](acc []A, items []T, seq []int, bestDist *A, bestItem *T, bestSeq *int) {
	const lanes = 4
	n := len(acc)
	chunks := n - n%lanes

	var laneMin [lanes]A
	var laneIdx [lanes]int
	for l := 0; l < lanes; l++ {
		laneMin[l] = *bestDist
		laneIdx[l] = -1
	}
	for i := 0; i < chunks; i += lanes {
		for l := 0; l < lanes; l++ {
			idx := i + l
			d := acc[idx]
			if laneIdx[l] < 0 || d < laneMin[l] || (d == laneMin[l] && itemLess(items[idx], items[laneIdx[l]], seq[idx], seq[laneIdx[l]])) {
				laneMin[l] = d
				laneIdx[l] = idx
			}
		}
	}
	for i := chunks; i < n; i++ {
		d := acc[i]
		if laneIdx[0] < 0 || d < laneMin[0] || (d == laneMin[0] && itemLess(items[i], items[laneIdx[0]], seq[i], seq[laneIdx[0]])) {
			laneMin[0] = d
			laneIdx[0] = i
		}
	}
	// Reduce the per-lane candidates to a single winner via itemLess, then
	// compare once against the caller's best. Because itemLess is a
	// function of (item, seq) alone, it doesn't matter whether lanes are
	// folded pairwise, sequentially, or in any other order.
	bestLaneIdx := -1
	var bestLaneVal A
	for l := 0; l < lanes; l++ {
		if laneIdx[l] < 0 {
			continue
		}
		if bestLaneIdx < 0 || laneMin[l] < bestLaneVal ||
			(laneMin[l] == bestLaneVal && itemLess(items[laneIdx[l]], items[bestLaneIdx], seq[laneIdx[l]], seq[bestLaneIdx])) {
			bestLaneVal = laneMin[l]
			bestLaneIdx = laneIdx[l]
		}
	}
	if bestLaneIdx >= 0 && (bestLaneVal < *bestDist || (bestLaneVal == *bestDist && itemLess(items[bestLaneIdx], *bestItem, seq[bestLaneIdx], *bestSeq))) {
		*bestDist = bestLaneVal
		*bestItem = items[bestLaneIdx]
		*bestSeq = seq[bestLaneIdx]
	}
}
