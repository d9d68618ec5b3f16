package kdtree

// defaultBucketSize is the reference bucket capacity (§4.6).
const defaultBucketSize = 32

// TreeOption configures tree construction, in the teacher's functional
// option style (kdtree.go's KDOption).
type TreeOption[A Axis] func(*treeOptions[A])

type treeOptions[A Axis] struct {
	bucketSize int
}

func defaultTreeOptions[A Axis]() treeOptions[A] {
	return treeOptions[A]{bucketSize: defaultBucketSize}
}

// WithBucketSize overrides the leaf capacity B (default 32, per §4.6).
func WithBucketSize[A Axis](b int) TreeOption[A] {
	return func(o *treeOptions[A]) {
		if b > 0 {
			o.bucketSize = b
		}
	}
}
