package kdtree

import "sort"

// SortBy sorts a slice using a custom less function.
// The less function should return true if data[i] should come before data[j].
func SortBy[T any](data []T, less func(i, j int) bool) {
	sort.Slice(data, less)
}

// QuickSelectByKey partitions data in place so that the element at index k
// is the one that would occupy position k were data fully sorted by key,
// every element before it compares <=, and every element after it compares
// >=. It's Hoare's nth-element (unstable, expected O(n)), and is what the
// static builder (§4.6) uses to find a median split value without fully
// sorting each slice of points on every recursive call.
func QuickSelectByKey[T any, K cmpOrdered](data []T, k int, key func(T) K) {
	lo, hi := 0, len(data)-1
	for lo < hi {
		p := quickSelectPartition(data, lo, hi, key)
		switch {
		case k < p:
			hi = p - 1
		case k > p:
			lo = p + 1
		default:
			return
		}
	}
}

func quickSelectPartition[T any, K cmpOrdered](data []T, lo, hi int, key func(T) K) int {
	mid := lo + (hi-lo)/2
	data[mid], data[hi] = data[hi], data[mid]
	pivot := key(data[hi])
	store := lo
	for i := lo; i < hi; i++ {
		if key(data[i]) < pivot {
			data[i], data[store] = data[store], data[i]
			store++
		}
	}
	data[store], data[hi] = data[hi], data[store]
	return store
}
