package kdtree

import "testing"

func TestSquaredEuclideanDist(t *testing.T) {
	m := SquaredEuclidean[float64]{}
	got := m.Dist([]float64{0, 0}, []float64{3, 4})
	if got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if !m.PrunesExactly() {
		t.Fatalf("expected SquaredEuclidean to prune exactly")
	}
}

func TestManhattanDist(t *testing.T) {
	m := Manhattan[float64]{}
	got := m.Dist([]float64{1, 1}, []float64{4, -2})
	if got != 6 {
		t.Fatalf("expected 6, got %v", got)
	}
}

func TestChebyshevDist(t *testing.T) {
	m := Chebyshev[float64]{}
	got := m.Dist([]float64{0, 0, 0}, []float64{1, 5, 2})
	if got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	if !accumulatesWithMax[float64](m) {
		t.Fatalf("expected Chebyshev to accumulate with max")
	}
}

func TestCosineDistIdentical(t *testing.T) {
	m := Cosine[float64]{}
	got := m.Dist([]float64{1, 2, 3}, []float64{2, 4, 6})
	if got > 1e-12 {
		t.Fatalf("expected ~0 distance between parallel vectors, got %v", got)
	}
	if m.PrunesExactly() {
		t.Fatalf("Cosine must not claim exact pruning")
	}
}

func TestCosineDistOrthogonal(t *testing.T) {
	m := Cosine[float64]{}
	got := m.Dist([]float64{1, 0}, []float64{0, 1})
	if diff := got - 1; diff < -1e-12 || diff > 1e-12 {
		t.Fatalf("expected distance 1 between orthogonal vectors, got %v", got)
	}
}

func TestCosineDist1Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Dist1 to panic for Cosine")
		}
	}()
	Cosine[float64]{}.Dist1(1, 2)
}

func TestWeightedCosineFallsBackWithoutWeights(t *testing.T) {
	wc := WeightedCosine[float64]{}
	plain := Cosine[float64]{}
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}
	if wc.Dist(a, b) != plain.Dist(a, b) {
		t.Fatalf("expected WeightedCosine with no weights to equal plain Cosine")
	}
}
