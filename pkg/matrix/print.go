package matrix

import (
	"fmt"
	"io"
)

// PrintSystem writes the equations of m, one row per unknown.
func PrintSystem(w io.Writer, m Matrix) {
	fmt.Fprintf(w, "\nCircuit Equations (%dx%d):\n", m.Size(), m.Size())
	fmt.Fprintln(w, "Node equations first, followed by branch equations")

	rhs := m.RHS()
	for i := 1; i <= m.Size(); i++ {
		fmt.Fprintf(w, "Equation %d:", i)
		for j := 1; j <= m.Size(); j++ {
			if v := m.At(i, j); v != 0 {
				fmt.Fprintf(w, "  %+g*x%d", v, j)
			}
		}
		fmt.Fprintf(w, "  = %g\n", rhs[i])
	}
}
