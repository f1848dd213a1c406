package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rank returns the numerical rank of the leading n x n block of m.
// Singular values at or below n * eps * sigma_max count as zero.
func Rank(m Matrix, n int) int {
	if n <= 0 {
		return 0
	}

	block := mat.NewDense(n, n, nil)
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			block.Set(i-1, j-1, m.At(i, j))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(block, mat.SVDNone) {
		return 0
	}
	return svd.Rank(float64(n) * eps)
}

var eps = math.Nextafter(1, 2) - 1
