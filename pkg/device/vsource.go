package device

import (
	"fmt"

	"github.com/edp1096/evalspice/pkg/matrix"
)

type VoltageSource struct {
	BaseDevice
	// Branch index for MNA
	branchIdx int
	// Stands in for the named zero-ohm resistor
	shortOf string
}

func NewDCVoltageSource(name string, nodeNames []string, value float64, line int) *VoltageSource {
	return &VoltageSource{BaseDevice: newBaseDevice(name, nodeNames, value, line)}
}

// NewShort returns the 0 V source that replaces resistor r.
func NewShort(name string, r *Resistor) *VoltageSource {
	v := NewDCVoltageSource(name, r.NodeNames, 0, r.Line)
	v.shortOf = r.Name
	return v
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix) error {
	if len(v.Nodes) != 2 {
		return fmt.Errorf("voltage source %s: requires exactly 2 nodes", v.Name)
	}
	if v.branchIdx <= 0 {
		return fmt.Errorf("voltage source %s: branch index not assigned", v.Name)
	}

	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx

	// v1 - v2 = V
	if n1 != 0 {
		matrix.SetElement(bIdx, n1, 1) // v1 coefficient
		matrix.SetElement(n1, bIdx, 1) // n1 current
	}
	if n2 != 0 {
		matrix.SetElement(bIdx, n2, -1) // -v2 coefficient
		matrix.SetElement(n2, bIdx, -1) // n2 current
	}

	matrix.AddRHS(bIdx, v.Value)
	return nil
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}

// ShortOf names the resistor this source replaces, empty for declared sources.
func (v *VoltageSource) ShortOf() string {
	return v.shortOf
}

func (v *VoltageSource) Synthesized() bool {
	return v.shortOf != ""
}
