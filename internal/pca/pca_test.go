package pca

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestReduce_InsufficientDimensions(t *testing.T) {
	var dimErr *InsufficientDimensionsError
	if _, err := Reduce([][]float64{{1}, {2}, {3}}); !errors.As(err, &dimErr) {
		t.Fatalf("expected InsufficientDimensionsError, got %v", err)
	}
	if dimErr.Cols != 1 {
		t.Fatalf("expected Cols=1, got %d", dimErr.Cols)
	}
	if _, err := Reduce(nil); !errors.As(err, &dimErr) {
		t.Fatalf("expected InsufficientDimensionsError for empty matrix, got %v", err)
	}
}

func TestReduce_DegenerateColumn(t *testing.T) {
	matrix := [][]float64{
		{20, 1.0},
		{20, 2.0},
		{20, 3.0},
		{20, 4.0},
	}
	var colErr *DegenerateColumnError
	points, err := Reduce(matrix)
	if !errors.As(err, &colErr) {
		t.Fatalf("expected DegenerateColumnError, got %v (points=%v)", err, points)
	}
	if colErr.Column != 0 {
		t.Fatalf("expected column 0, got %d", colErr.Column)
	}
	if points != nil {
		t.Fatalf("no points should be returned on failure")
	}
}

func TestReduce_CorrelatedColumnsProjectOntoFirstComponent(t *testing.T) {
	// Perfectly correlated columns have all their variance along PC1.
	matrix := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, 40},
	}
	points, err := Reduce(matrix)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(points) != len(matrix) {
		t.Fatalf("expected %d points, got %d", len(matrix), len(points))
	}
	for i, p := range points {
		if math.Abs(p.PC2) > 1e-9 {
			t.Fatalf("point %d should be on PC1 only, got PC2=%g", i, p.PC2)
		}
		if math.IsNaN(p.PC1) || math.IsNaN(p.PC2) {
			t.Fatalf("point %d contains NaN: %v", i, p)
		}
	}
	// Monotonic input stays monotonic along the first component.
	for i := 1; i < len(points); i++ {
		if points[i].PC1 <= points[i-1].PC1 {
			t.Fatalf("PC1 should increase with the input, got %v", points)
		}
	}
}

func TestReduce_Deterministic(t *testing.T) {
	matrix := [][]float64{
		{25, 14.2},
		{61, 103.0},
		{33, 22.9},
		{58, 96.4},
		{29, 18.1},
	}
	first, err := Reduce(matrix)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	second, err := Reduce(matrix)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated reductions differ:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestReduce_RaggedMatrix(t *testing.T) {
	if _, err := Reduce([][]float64{{1, 2}, {3}}); err == nil {
		t.Fatalf("expected error for ragged matrix")
	}
}
