package analysis

import (
	"github.com/edp1096/evalspice/pkg/circuit"
	"github.com/edp1096/evalspice/pkg/netlist"
)

// OperatingPoint solves the DC bias of a linear netlist once.
type OperatingPoint struct {
	BaseAnalysis
	solution *circuit.Solution
}

func NewOP(opts ...Option) *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(opts...),
	}
}

func (op *OperatingPoint) Setup(data *netlist.NetlistData) error {
	return op.setData(data)
}

func (op *OperatingPoint) Execute() error {
	if op.Data == nil {
		return errNotSetup
	}

	op.log.V(1).Info("operating point", "elements", len(op.Data.Elements))
	solution, err := op.evaluate("op", op.Data, op.dump)
	if err != nil {
		return err
	}

	op.solution = solution
	op.StoreResult(solution)
	return nil
}

// Solution returns the solved point, nil before a successful Execute.
func (op *OperatingPoint) Solution() *circuit.Solution {
	return op.solution
}
