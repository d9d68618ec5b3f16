// Package kdtree is a high-performance k-d tree for low-to-moderate
// dimensional spatial search over floating-point coordinates.
//
// It answers three families of queries against a set of points: nearest-one,
// nearest-n, and within/best-n-within. Internally a tree is an arena of
// "stem" nodes (a split dimension and value plus two child indices) and
// "leaf" nodes (a fixed-capacity bucket of up to B points, held in a
// dimension-major layout so the inner distance loop is straight-line and
// auto-vectorizable).
//
// Two tree variants are provided: ImmutableTree, built once from a slice via
// NewFromPoints with balanced median splits, and Tree, a mutable variant
// supporting Add/Remove. Both satisfy Queryable and can be passed to
// NearestOne, NearestN, Within, and BestNWithin.
//
// Distance metrics include squared Euclidean (L2²), Manhattan (L1), and
// Chebyshev (L∞), all of which decompose per-axis and therefore support
// branch-and-bound pruning. Cosine and WeightedCosine are also provided for
// vector-similarity use cases; they do not decompose per-axis, so queries
// using them fall back to an unpruned full scan.
package kdtree
