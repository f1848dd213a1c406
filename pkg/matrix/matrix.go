package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSingular is returned by Solve when the system has no unique solution.
var ErrSingular = errors.New("matrix is singular")

type Backend string

const (
	Dense  Backend = "dense"
	Sparse Backend = "sparse"
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return Dense, nil
	case Dense, Sparse:
		return b, nil
	default:
		return "", fmt.Errorf("unknown solver backend %q", s)
	}
}

// Matrix holds an MNA system A x = b of a fixed size, 1-based.
type Matrix interface {
	DeviceMatrix
	Size() int
	At(i, j int) float64
	RHS() []float64
	Solve() error
	Solution() []float64
	Destroy()
}

func New(backend Backend, size int) (Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid matrix size %d", size)
	}

	switch backend {
	case Dense, "":
		return NewDenseMatrix(size), nil
	case Sparse:
		return NewSparseMatrix(size)
	default:
		return nil, fmt.Errorf("unknown solver backend %q", backend)
	}
}

func inBounds(m Matrix, i, j int) bool {
	return i > 0 && j > 0 && i <= m.Size() && j <= m.Size()
}
