package matrix

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DenseMatrix stores the system in a dense gonum matrix and solves it by LU
// factorization with partial pivoting.
type DenseMatrix struct {
	size     int
	a        *mat.Dense
	rhs      []float64
	solution []float64
}

func NewDenseMatrix(size int) *DenseMatrix {
	return &DenseMatrix{
		size:     size,
		a:        mat.NewDense(size, size, nil),
		rhs:      make([]float64, size+1), // 1-based indexing
		solution: make([]float64, size+1),
	}
}

func (m *DenseMatrix) Size() int { return m.size }

func (m *DenseMatrix) AddElement(i, j int, value float64) {
	if !m.stampable(i, j) {
		return
	}
	m.a.Set(i-1, j-1, m.a.At(i-1, j-1)+value)
}

func (m *DenseMatrix) SetElement(i, j int, value float64) {
	if !m.stampable(i, j) {
		return
	}
	m.a.Set(i-1, j-1, value)
}

func (m *DenseMatrix) AddRHS(i int, value float64) {
	if !m.stampable(i, 1) {
		return
	}
	m.rhs[i] += value
}

func (m *DenseMatrix) stampable(i, j int) bool {
	if i == 0 || j == 0 {
		return false
	}
	if !inBounds(m, i, j) {
		panic(fmt.Sprintf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.size))
	}
	return true
}

func (m *DenseMatrix) At(i, j int) float64 {
	if !inBounds(m, i, j) {
		return 0
	}
	return m.a.At(i-1, j-1)
}

func (m *DenseMatrix) RHS() []float64 {
	return m.rhs
}

// Solve factorizes A and solves for x. Only an exactly singular factor is an
// error: a large but finite condition estimate still yields gonum's x, which
// is kept as long as it is finite.
func (m *DenseMatrix) Solve() error {
	var lu mat.LU
	lu.Factorize(m.a)

	if row := zeroPivot(&lu); row > 0 {
		return fmt.Errorf("%w: zero pivot at row %d", ErrSingular, row)
	}

	b := mat.NewVecDense(m.size, append([]float64(nil), m.rhs[1:]...))
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		var cond mat.Condition
		switch {
		case errors.As(err, &cond) && !math.IsInf(float64(cond), 1):
			// ill-conditioned, x was still computed
		case errors.As(err, &cond) || errors.Is(err, mat.ErrSingular):
			return fmt.Errorf("%w: %v", ErrSingular, err)
		default:
			return fmt.Errorf("matrix solve failed: %w", err)
		}
	}
	if x.Len() != m.size {
		return fmt.Errorf("%w: solve did not complete", ErrSingular)
	}

	solution := make([]float64, m.size+1)
	for i := 0; i < m.size; i++ {
		v := x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite solution at row %d", ErrSingular, i+1)
		}
		solution[i+1] = v
	}
	m.solution = solution

	return nil
}

// zeroPivot returns the 1-based row of the first exactly zero diagonal entry
// of U, or 0 when there is none.
func zeroPivot(lu *mat.LU) int {
	var u mat.TriDense
	lu.UTo(&u)
	n, _ := u.Dims()
	for i := 0; i < n; i++ {
		if u.At(i, i) == 0 {
			return i + 1
		}
	}
	return 0
}

func (m *DenseMatrix) Solution() []float64 {
	return m.solution
}

func (m *DenseMatrix) Destroy() {}
