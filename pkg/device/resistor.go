package device

import (
	"fmt"

	"github.com/edp1096/evalspice/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

func NewResistor(name string, nodeNames []string, value float64, line int) *Resistor {
	return &Resistor{BaseDevice: newBaseDevice(name, nodeNames, value, line)}
}

func (r *Resistor) GetType() string { return "R" }

// Shorted reports whether the resistor must be replaced by a 0 V source.
func (r *Resistor) Shorted() bool {
	return r.Value == 0
}

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}
	if r.Value < 0 {
		return fmt.Errorf("resistor %s: negative resistance %g", r.Name, r.Value)
	}
	if r.Shorted() {
		return nil
	}

	n1, n2 := r.Nodes[0], r.Nodes[1]
	g := 1.0 / r.Value // Conductance. G = 1/R

	if n1 != 0 {
		matrix.AddElement(n1, n1, g)
	}
	if n2 != 0 {
		matrix.AddElement(n2, n2, g)
	}
	if n1 != 0 && n2 != 0 {
		matrix.AddElement(n1, n2, -g)
		matrix.AddElement(n2, n1, -g)
	}

	return nil
}
