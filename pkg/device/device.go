package device

import (
	"github.com/edp1096/evalspice/pkg/matrix"
)

// Device is one of Resistor, VoltageSource or CurrentSource.
type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	SetNodes(nodes []int)
	GetValue() float64
	GetLine() int
	Stamp(matrix matrix.DeviceMatrix) error
}

type BaseDevice struct {
	Name      string
	Nodes     []int // matrix indices, 0 for ground
	Value     float64
	NodeNames []string
	Line      int // netlist line, 0 for synthesized devices
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) GetLine() int {
	return d.Line
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func newBaseDevice(name string, nodeNames []string, value float64, line int) BaseDevice {
	return BaseDevice{
		Name:      name,
		Nodes:     make([]int, len(nodeNames)),
		NodeNames: nodeNames,
		Value:     value,
		Line:      line,
	}
}
