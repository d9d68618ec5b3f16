package kdtree

import "errors"

var (
	// ErrEmptyPoints indicates that no points were provided to build a tree.
	ErrEmptyPoints = errors.New("kdtree: no points provided")
	// ErrZeroDim indicates that points or tree dimension must be at least 1.
	ErrZeroDim = errors.New("kdtree: points must have at least one dimension")
	// ErrDimMismatch indicates inconsistent dimensionality among points.
	ErrDimMismatch = errors.New("kdtree: inconsistent dimensionality in points")
	// ErrLenMismatch indicates the points and items slices passed to
	// NewFromPoints have different lengths.
	ErrLenMismatch = errors.New("kdtree: points and items have different lengths")
	// ErrNonFinite indicates a NaN or infinite coordinate was supplied.
	ErrNonFinite = errors.New("kdtree: non-finite coordinate")
	// ErrCapacityExceeded indicates a mutable insert could not be recorded
	// because the tree's int insertion counter has saturated its range.
	ErrCapacityExceeded = errors.New("kdtree: capacity exceeded")
)
