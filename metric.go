package kdtree

import "math"

// Axis is the set of scalar coordinate types a tree can be built over.
// Both 32- and 64-bit floats are supported, per the reference design.
type Axis interface {
	~float32 | ~float64
}

// saturatingDist returns the absolute difference between two axis values.
// For ordinary floating point this is the full extent of the abstraction;
// it exists so that fixed-point variants could one day saturate instead of
// overflow without touching the traversal engine.
func saturatingDist[A Axis](a, b A) A {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

// rdUpdate extends a running lower-bound distance by a non-negative
// per-axis delta. For ordinary floats this is addition.
func rdUpdate[A Axis](rd, delta A) A {
	return rd + delta
}

// Metric computes distances over points of dimension K with scalar type A.
//
// Dist must equal the sum of Dist1 across every axis (the max, for
// Chebyshev); that equality is what lets the traversal engine prune using a
// per-axis partial sum (or max). Metrics that cannot satisfy it (e.g.
// Cosine) report PrunesExactly() == false, and
// queries using them fall back to an unpruned full scan instead of branch
// and bound.
type Metric[A Axis] interface {
	// Dist1 is the contribution of a single axis to the distance.
	Dist1(a, b A) A
	// Dist is the full distance between two points of equal length.
	Dist(p, q []A) A
	// PrunesExactly reports whether Dist1-based pruning is valid for this
	// metric.
	PrunesExactly() bool
}

// SquaredEuclidean is the squared L2 metric: sum((a-b)^2). Squaring avoids a
// sqrt per comparison; since sqrt is monotonic, nearest-neighbour ordering
// is unaffected.
type SquaredEuclidean[A Axis] struct{}

func (SquaredEuclidean[A]) Dist1(a, b A) A {
	d := a - b
	return d * d
}

func (SquaredEuclidean[A]) Dist(p, q []A) A {
	var sum A
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return sum
}

func (SquaredEuclidean[A]) PrunesExactly() bool { return true }

// Manhattan is the L1 metric: sum(|a-b|).
type Manhattan[A Axis] struct{}

func (Manhattan[A]) Dist1(a, b A) A { return saturatingDist(a, b) }

func (Manhattan[A]) Dist(p, q []A) A {
	var sum A
	for i := range p {
		sum += saturatingDist(p[i], q[i])
	}
	return sum
}

func (Manhattan[A]) PrunesExactly() bool { return true }

// Chebyshev is the L-infinity (max) metric. Dist1 is not additive across
// axes in the usual sense, but max is monotone in each per-axis term, so the
// branch-and-bound contract (Dist >= Dist1 for every axis, and Dist monotone
// in each Dist1) still holds: the traversal engine's rd accumulation uses
// max instead of sum for this metric, selected via accumulatesWithMax below.
type Chebyshev[A Axis] struct{}

func (Chebyshev[A]) Dist1(a, b A) A { return saturatingDist(a, b) }

func (Chebyshev[A]) Dist(p, q []A) A {
	var max A
	for i := range p {
		d := saturatingDist(p[i], q[i])
		if d > max {
			max = d
		}
	}
	return max
}

func (Chebyshev[A]) PrunesExactly() bool { return true }

// combinesMax reports whether a metric accumulates per-axis contributions
// with max (Chebyshev) instead of sum (everything else that prunes). The
// traversal engine checks this to pick the right rd-accumulation operator.
type combinesMax interface{ combinesMax() bool }

func (Chebyshev[A]) combinesMax() bool { return true }

func accumulatesWithMax[A Axis](m Metric[A]) bool {
	if cm, ok := any(m).(combinesMax); ok {
		return cm.combinesMax()
	}
	return false
}

// Cosine is 1 - cosine similarity. It does not decompose per-axis, so it
// cannot drive branch-and-bound pruning; queries using it fall back to an
// unpruned full scan, mirroring the teacher's gonum-backend metric
// allowlist (kdtree_gonum.go only enabled its balanced backend for
// Euclidean/Manhattan/Chebyshev and fell back to linear scan otherwise).
type Cosine[A Axis] struct{}

func (Cosine[A]) Dist1(a, b A) A {
	panic("kdtree: Cosine does not support per-axis pruning; use Dist via an unpruned scan")
}

func (Cosine[A]) Dist(p, q []A) A {
	var dot, na2, nb2 A
	for i := range p {
		ai, bi := p[i], q[i]
		dot += ai * bi
		na2 += ai * ai
		nb2 += bi * bi
	}
	return cosineFromSums(dot, na2, nb2)
}

func (Cosine[A]) PrunesExactly() bool { return false }

func cosineFromSums[A Axis](dot, na2, nb2 A) A {
	if na2 == 0 && nb2 == 0 {
		return 0
	}
	if na2 == 0 || nb2 == 0 {
		return 1
	}
	den := A(math.Sqrt(float64(na2)) * math.Sqrt(float64(nb2)))
	if den == 0 {
		return 1
	}
	cos := dot / den
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	d := 1 - cos
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}

// WeightedCosine is 1 - weighted cosine similarity, scaling each axis by a
// supplied weight in both the dot product and the norms. If Weights is nil
// or mismatched in length, it falls back to plain Cosine.
type WeightedCosine[A Axis] struct{ Weights []A }

func (WeightedCosine[A]) Dist1(a, b A) A {
	panic("kdtree: WeightedCosine does not support per-axis pruning; use Dist via an unpruned scan")
}

func (wc WeightedCosine[A]) Dist(p, q []A) A {
	w := wc.Weights
	if len(w) == 0 || len(w) != len(p) || len(p) != len(q) {
		return Cosine[A]{}.Dist(p, q)
	}
	var dot, na2, nb2 A
	for i := range p {
		wi, ai, bi := w[i], p[i], q[i]
		v := wi * ai
		dot += v * bi
		na2 += v * ai
		nb2 += (wi * bi) * bi
	}
	return cosineFromSums(dot, na2, nb2)
}

func (WeightedCosine[A]) PrunesExactly() bool { return false }
