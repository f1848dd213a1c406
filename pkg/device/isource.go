package device

import (
	"fmt"

	"github.com/edp1096/evalspice/pkg/matrix"
)

// CurrentSource drives Value amperes out of its first node, through the
// source, into its second node.
type CurrentSource struct {
	BaseDevice
}

func NewDCCurrentSource(name string, nodeNames []string, value float64, line int) *CurrentSource {
	return &CurrentSource{BaseDevice: newBaseDevice(name, nodeNames, value, line)}
}

func (i *CurrentSource) GetType() string { return "I" }

// Idle reports whether the source is exactly zero and contributes nothing.
func (i *CurrentSource) Idle() bool {
	return i.Value == 0
}

func (i *CurrentSource) Stamp(matrix matrix.DeviceMatrix) error {
	if len(i.Nodes) != 2 {
		return fmt.Errorf("current source %s: requires exactly 2 nodes", i.Name)
	}
	if i.Idle() {
		return nil
	}

	n1, n2 := i.Nodes[0], i.Nodes[1]
	if n1 != 0 {
		matrix.AddRHS(n1, -i.Value)
	}
	if n2 != 0 {
		matrix.AddRHS(n2, i.Value)
	}
	return nil
}
