package kdtree

// Queryable is the common read-only surface both ImmutableTree and Tree
// expose to the traversal engine, letting NearestOne, NearestN, Within, and
// BestNWithin work identically over either variant.
type Queryable[A Axis, T comparable] interface {
	rootRef() int
	stemAt(ref int) *stemNode[A]
	leafAt(ref int) *leafNode[A, T]
	dims() int
	// Size returns the number of live points in the tree.
	Size() int
}
