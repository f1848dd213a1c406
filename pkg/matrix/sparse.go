package matrix

import (
	"fmt"
	"math"

	"github.com/edp1096/sparse"
)

// SparseMatrix stores the system in a Markowitz-ordered sparse LU matrix.
type SparseMatrix struct {
	size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

func NewSparseMatrix(size int) (*SparseMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	m := &SparseMatrix{
		size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1), // 1-based indexing
		solution: make([]float64, size+1),
		config:   config,
	}
	m.setupElements()

	return m, nil
}

// Every entry is allocated up front so later stamps never grow the structure.
func (m *SparseMatrix) setupElements() {
	for i := 1; i <= m.size; i++ {
		for j := 1; j <= m.size; j++ {
			m.matrix.GetElement(int64(i), int64(j))
		}
	}
}

func (m *SparseMatrix) Size() int { return m.size }

func (m *SparseMatrix) AddElement(i, j int, value float64) {
	if !m.stampable(i, j) {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *SparseMatrix) SetElement(i, j int, value float64) {
	if !m.stampable(i, j) {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real = value
}

func (m *SparseMatrix) AddRHS(i int, value float64) {
	if !m.stampable(i, 1) {
		return
	}
	m.rhs[i] += value
}

func (m *SparseMatrix) stampable(i, j int) bool {
	if i == 0 || j == 0 {
		return false
	}
	if !inBounds(m, i, j) {
		panic(fmt.Sprintf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.size))
	}
	return true
}

func (m *SparseMatrix) At(i, j int) float64 {
	if !inBounds(m, i, j) {
		return 0
	}
	return m.matrix.GetElement(int64(i), int64(j)).Real
}

func (m *SparseMatrix) RHS() []float64 {
	return m.rhs
}

func (m *SparseMatrix) Solve() error {
	var err error

	err = m.matrix.Factor()
	if err != nil {
		return fmt.Errorf("%w: factorization failed: %v", ErrSingular, err)
	}

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}

	for i := 1; i <= m.size; i++ {
		if math.IsNaN(solution[i]) || math.IsInf(solution[i], 0) {
			return fmt.Errorf("%w: non-finite solution at row %d", ErrSingular, i)
		}
	}
	m.solution = solution

	return nil
}

func (m *SparseMatrix) Solution() []float64 {
	return m.solution
}

func (m *SparseMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
