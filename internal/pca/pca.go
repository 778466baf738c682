// Package pca projects numeric transaction attributes onto their top two
// principal components for 2-D visualization and clustering.
package pca

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point is a 2-D coordinate in principal-component space, one per input row
// with row order preserved.
type Point struct {
	PC1 float64 `json:"pc1"`
	PC2 float64 `json:"pc2"`
}

// InsufficientDimensionsError indicates the numeric matrix has fewer than
// two columns, which leaves nothing to project.
type InsufficientDimensionsError struct {
	Cols int
}

func (e *InsufficientDimensionsError) Error() string {
	return fmt.Sprintf("pca: need at least 2 numeric columns, got %d", e.Cols)
}

// DegenerateColumnError indicates a zero-variance column, which cannot be
// standardized.
type DegenerateColumnError struct {
	Column int
}

func (e *DegenerateColumnError) Error() string {
	return fmt.Sprintf("pca: column %d has zero variance", e.Column)
}

// Reduce standardizes each column to zero mean and unit variance, then
// projects every row onto the top two principal components obtained from an
// SVD of the standardized matrix.
//
// Component orientation is fixed within a run: each component is flipped, if
// necessary, so its largest-magnitude loading is positive. Repeated calls on
// identical input therefore produce identical points.
func Reduce(matrix [][]float64) ([]Point, error) {
	if len(matrix) == 0 || len(matrix[0]) < 2 {
		cols := 0
		if len(matrix) > 0 {
			cols = len(matrix[0])
		}
		return nil, &InsufficientDimensionsError{Cols: cols}
	}
	rows := len(matrix)
	cols := len(matrix[0])
	if rows < 2 {
		return nil, errors.New("pca: need at least 2 rows")
	}
	for i, row := range matrix {
		if len(row) != cols {
			return nil, fmt.Errorf("pca: row %d has %d columns, want %d", i, len(row), cols)
		}
	}

	standardized, err := standardize(matrix, rows, cols)
	if err != nil {
		return nil, err
	}

	var svd mat.SVD
	if ok := svd.Factorize(standardized, mat.SVDThin); !ok {
		return nil, errors.New("pca: svd failed to converge")
	}
	var v mat.Dense
	svd.VTo(&v)

	// Singular values come back in descending order, so the first two
	// columns of V are the top two components.
	loadings := [2][]float64{}
	for c := 0; c < 2; c++ {
		col := make([]float64, cols)
		mat.Col(col, c, &v)
		orient(col)
		loadings[c] = col
	}

	points := make([]Point, rows)
	for i := 0; i < rows; i++ {
		var p Point
		for j := 0; j < cols; j++ {
			x := standardized.At(i, j)
			p.PC1 += x * loadings[0][j]
			p.PC2 += x * loadings[1][j]
		}
		points[i] = p
	}
	return points, nil
}

// standardize centers and scales every column. A zero-variance column makes
// the division undefined and fails the reduction.
func standardize(matrix [][]float64, rows, cols int) (*mat.Dense, error) {
	out := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = matrix[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 {
			return nil, &DegenerateColumnError{Column: j}
		}
		for i := 0; i < rows; i++ {
			out.Set(i, j, (matrix[i][j]-mean)/std)
		}
	}
	return out, nil
}

// orient flips a component in place so its largest-magnitude loading is
// positive, making the output orientation stable across runs and platforms.
func orient(loading []float64) {
	maxIdx := 0
	for j, v := range loading {
		if math.Abs(v) > math.Abs(loading[maxIdx]) {
			maxIdx = j
		}
	}
	if loading[maxIdx] < 0 {
		for j := range loading {
			loading[j] = -loading[j]
		}
	}
}
