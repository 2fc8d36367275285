package quant

import (
	"math"
	"testing"
)

func TestQuantizeEmpty(t *testing.T) {
	out := Quantize(nil, 4, 8, nil)
	if out != nil {
		t.Errorf("Quantize(nil) = %v, want nil", out)
	}
}

func TestQuantizeSingleUniqueColour(t *testing.T) {
	data := make([]Vec4, 16)
	for i := range data {
		data[i] = Vec4{B: 0.5, G: 0.25, R: 0.75, A: 1}
	}
	assignments := make([]int32, len(data))
	out := Quantize(data, 8, 8, assignments)
	if len(out) != 1 {
		t.Fatalf("Quantize single unique colour: got %d centroids, want 1", len(out))
	}
	if out[0] != data[0] {
		t.Errorf("centroid = %+v, want %+v", out[0], data[0])
	}
	for i, a := range assignments {
		if a != 0 {
			t.Errorf("assignments[%d] = %d, want 0", i, a)
		}
	}
}

func TestQuantizeTwoDistinctClusters(t *testing.T) {
	a := Vec4{B: 0, G: 0, R: 0, A: 1}
	b := Vec4{B: 1, G: 1, R: 1, A: 1}
	var data []Vec4
	for i := 0; i < 20; i++ {
		data = append(data, a)
	}
	for i := 0; i < 20; i++ {
		data = append(data, b)
	}
	assignments := make([]int32, len(data))
	out := Quantize(data, 2, 8, assignments)
	if len(out) != 2 {
		t.Fatalf("got %d centroids, want 2", len(out))
	}

	// The two resolved centroids should recover a and b, in some order.
	matches := func(c Vec4, want Vec4) bool {
		d := want.B - c.B
		if d < 0 {
			d = -d
		}
		return d < 1e-9
	}
	ok := (matches(out[0], a) && matches(out[1], b)) || (matches(out[0], b) && matches(out[1], a))
	if !ok {
		t.Errorf("centroids = %+v, want {a,b} in some order", out)
	}

	for i, assign := range assignments {
		want := data[i]
		got := out[assign]
		if !matches(got, want) {
			t.Errorf("assignments[%d]=%d -> centroid %+v, want to match data %+v", i, assign, got, want)
		}
	}
}

func TestQuantizeFewerThanK(t *testing.T) {
	// Only 3 distinct colours present; asking for 8 clusters must not error,
	// and must not exceed 3 resolved centroids.
	colours := []Vec4{
		{B: 0, G: 0, R: 0, A: 1},
		{B: 0.5, G: 0.5, R: 0.5, A: 1},
		{B: 1, G: 1, R: 1, A: 1},
	}
	var data []Vec4
	for i := 0; i < 10; i++ {
		data = append(data, colours[i%3])
	}
	assignments := make([]int32, len(data))
	out := Quantize(data, 8, 8, assignments)
	if len(out) > 3 {
		t.Errorf("got %d centroids, want at most 3", len(out))
	}
	if len(out) == 0 {
		t.Errorf("got 0 centroids, want at least 1")
	}
}

func TestQuantizeDefaultPasses(t *testing.T) {
	data := []Vec4{{B: 0}, {B: 1}}
	assignments := make([]int32, len(data))
	// passes=0 should substitute DefaultPasses rather than skip refinement.
	out := Quantize(data, 2, 0, assignments)
	if len(out) != 2 {
		t.Fatalf("got %d centroids, want 2", len(out))
	}
}

func TestQuantizeAssignmentsInRange(t *testing.T) {
	data := make([]Vec4, 64)
	for i := range data {
		data[i] = Vec4{B: float64(i%7) / 7, G: float64(i%5) / 5, R: float64(i%3) / 3, A: 1}
	}
	assignments := make([]int32, len(data))
	out := Quantize(data, 5, 8, assignments)
	for _, a := range assignments {
		if a < 0 || int(a) >= len(out) {
			t.Fatalf("assignment %d out of range [0,%d)", a, len(out))
		}
	}
}

func TestQuantizeAssignmentsLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on assignments length mismatch")
		}
	}()
	Quantize([]Vec4{{B: 0}, {B: 1}}, 2, 1, make([]int32, 1))
}

func TestInsertDescendingOrdering(t *testing.T) {
	clusters := make([]cluster, 3)
	clusters[0].maxDistVal = 1
	clusters[1].maxDistVal = 3
	clusters[2].maxDistVal = 2
	head := -1
	head = insertDescending(clusters, 0, head)
	head = insertDescending(clusters, 1, head)
	head = insertDescending(clusters, 2, head)
	var order []int
	for n := head; n != -1; n = clusters[n].next {
		order = append(order, n)
	}
	want := []int{1, 2, 0}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
		}
	}
}

func TestErrorToDistIsL1Norm(t *testing.T) {
	got := errorToDist(Vec4{B: 1, G: 2, R: 3, A: 4})
	want := 10.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("errorToDist = %v, want %v", got, want)
	}
}
