package matrix

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stampDivider builds the MNA system of a 10 V source over two 1 kohm resistors.
// Unknowns: x1 = V(1), x2 = V(2), x3 = I(Vsrc).
func stampDivider(m Matrix) {
	g := 1.0 / 1000.0
	m.AddElement(1, 1, g)
	m.AddElement(1, 2, -g)
	m.AddElement(2, 1, -g)
	m.AddElement(2, 2, g)
	m.AddElement(2, 2, g)

	m.SetElement(3, 1, 1)
	m.SetElement(1, 3, 1)
	m.AddRHS(3, 10)
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", Dense, false},
		{"dense", Dense, false},
		{" Sparse ", Sparse, false},
		{"klu", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New(Dense, 0)
	assert.Error(t, err)

	_, err = New(Backend("lapack"), 3)
	assert.Error(t, err)
}

func TestSolve_Divider(t *testing.T) {
	for _, backend := range []Backend{Dense, Sparse} {
		t.Run(string(backend), func(t *testing.T) {
			m, err := New(backend, 3)
			require.NoError(t, err)
			defer m.Destroy()

			stampDivider(m)
			require.NoError(t, m.Solve())

			x := m.Solution()
			require.Len(t, x, 4)
			assert.InDelta(t, 10.0, x[1], 1e-9)
			assert.InDelta(t, 5.0, x[2], 1e-9)
			assert.InDelta(t, -0.005, x[3], 1e-12)
		})
	}
}

func TestDense_GroundIgnored(t *testing.T) {
	m := NewDenseMatrix(2)
	m.AddElement(0, 1, 5)
	m.AddElement(1, 0, 5)
	m.SetElement(0, 0, 5)
	m.AddRHS(0, 5)

	assert.Equal(t, 0.0, m.At(1, 1))
	assert.Equal(t, []float64{0, 0, 0}, m.RHS())
}

func TestDense_OutOfBoundsPanics(t *testing.T) {
	m := NewDenseMatrix(2)
	assert.Panics(t, func() { m.AddElement(3, 1, 1) })
}

func TestDense_SetOverwrites(t *testing.T) {
	m := NewDenseMatrix(2)
	m.AddElement(1, 2, 3)
	m.SetElement(1, 2, -1)
	assert.Equal(t, -1.0, m.At(1, 2))
}

func TestDense_Singular(t *testing.T) {
	// Two identical branch rows: parallel ideal sources.
	m := NewDenseMatrix(3)
	m.AddElement(1, 1, 0.1)
	m.SetElement(2, 1, 1)
	m.SetElement(1, 2, 1)
	m.SetElement(3, 1, 1)
	m.SetElement(1, 3, 1)
	m.AddRHS(2, 5)
	m.AddRHS(3, 10)

	err := m.Solve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSingular))
}

func TestDense_IllConditioned(t *testing.T) {
	// 1 nohm shunt next to two 10 Gohm resistors, driven by 1 A.
	g1, g2 := 1e9, 1e-10
	m := NewDenseMatrix(2)
	m.AddElement(1, 1, g1+g2)
	m.AddElement(1, 2, -g2)
	m.AddElement(2, 1, -g2)
	m.AddElement(2, 2, 2*g2)
	m.AddRHS(1, 1)

	require.NoError(t, m.Solve())
	x := m.Solution()
	assert.InEpsilon(t, 1e-9, x[1], 1e-9)
	assert.InEpsilon(t, x[1]/2, x[2], 1e-9)
}

func TestDense_ZeroMatrixSingular(t *testing.T) {
	m := NewDenseMatrix(1)
	m.AddRHS(1, 1)

	err := m.Solve()
	assert.ErrorIs(t, err, ErrSingular)
}

func TestRank(t *testing.T) {
	t.Run("floating pair", func(t *testing.T) {
		m := NewDenseMatrix(3)
		m.AddElement(1, 1, 1)
		m.AddElement(2, 2, 1)
		m.AddElement(2, 3, -1)
		m.AddElement(3, 2, -1)
		m.AddElement(3, 3, 1)
		assert.Equal(t, 2, Rank(m, 3))
	})

	t.Run("leading block only", func(t *testing.T) {
		m := NewDenseMatrix(3)
		m.AddElement(1, 1, 2)
		m.SetElement(3, 3, 1)
		assert.Equal(t, 1, Rank(m, 2))
	})

	t.Run("zero block", func(t *testing.T) {
		m := NewDenseMatrix(2)
		assert.Equal(t, 0, Rank(m, 2))
	})

	t.Run("empty", func(t *testing.T) {
		m := NewDenseMatrix(1)
		assert.Equal(t, 0, Rank(m, 0))
	})

	t.Run("sparse backend", func(t *testing.T) {
		m, err := NewSparseMatrix(3)
		require.NoError(t, err)
		defer m.Destroy()
		stampDivider(m)
		assert.Equal(t, 2, Rank(m, 2))
	})
}

func TestPrintSystem(t *testing.T) {
	m := NewDenseMatrix(3)
	stampDivider(m)

	var buf bytes.Buffer
	PrintSystem(&buf, m)

	out := buf.String()
	assert.Contains(t, out, "Circuit Equations (3x3)")
	assert.Contains(t, out, "Equation 3:  +1*x1  = 10")
	assert.Contains(t, out, "Equation 1:  +0.001*x1  -0.001*x2  +1*x3  = 0")
}
