package kdtree

// AxisStats holds the min/max observed for a single axis, used to
// min-max-normalize raw feature values into [0,1] before handing them to
// NewFromPoints.
type AxisStats struct {
	Min, Max float64
}

// NormStats holds per-axis normalization statistics for len(Stats) axes.
type NormStats struct {
	Stats []AxisStats
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mn, mx := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return mn, mx
}

func scale01(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

// ComputeNormStats computes per-axis min/max across items using the given
// feature extractors, one call replacing the teacher's hardcoded
// ComputeNormStats2D/3D/4D (which duplicated this loop once per fixed
// dimension count) with a single pass over an arbitrary number of
// extractors, since K is a runtime value in this port rather than a
// compile-time array length.
func ComputeNormStats[T any](items []T, features []func(T) float64) NormStats {
	stats := make([]AxisStats, len(features))
	for fi, f := range features {
		vals := make([]float64, len(items))
		for i, it := range items {
			vals[i] = f(it)
		}
		mn, mx := minMax(vals)
		stats[fi] = AxisStats{Min: mn, Max: mx}
	}
	return NormStats{Stats: stats}
}

// BuildPoints constructs normalized-and-weighted coordinate rows from
// items, one per feature extractor, generalizing the teacher's
// Build2D/Build3D/Build4D (kdtree_helpers.go) into a single function that
// works for any number of features. invert[i], if true, flips axis i's
// normalized value (1-v) so that a "higher raw value is better" feature
// still produces a lower coordinate, matching the convention that distance
// 0 is "best". Pass a zero-value NormStats to compute stats from items
// on the fly, or a precomputed one (e.g. from ComputeNormStats) to reuse
// statistics across multiple calls.
func BuildPoints[T any](items []T, features []func(T) float64, weights []float64, invert []bool, stats NormStats) ([][]float64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if len(weights) != len(features) || len(invert) != len(features) {
		return nil, ErrDimMismatch
	}
	if len(stats.Stats) == 0 {
		stats = ComputeNormStats(items, features)
	}
	if len(stats.Stats) != len(features) {
		return nil, ErrDimMismatch
	}

	points := make([][]float64, len(items))
	for i, it := range items {
		row := make([]float64, len(features))
		for fi, f := range features {
			v := scale01(f(it), stats.Stats[fi].Min, stats.Stats[fi].Max)
			if invert[fi] {
				v = 1 - v
			}
			row[fi] = weights[fi] * v
		}
		points[i] = row
	}
	return points, nil
}
