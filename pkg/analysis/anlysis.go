package analysis

import (
	"fmt"
	"io"
	"runtime"

	"github.com/go-logr/logr"

	"github.com/edp1096/evalspice/internal/consts"
	"github.com/edp1096/evalspice/pkg/circuit"
	"github.com/edp1096/evalspice/pkg/matrix"
	"github.com/edp1096/evalspice/pkg/netlist"
)

type Analysis interface {
	Setup(data *netlist.NetlistData) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Data    *netlist.NetlistData
	results map[string][]float64 // key: V(node) or I(source), value: result per point
	backend matrix.Backend
	log     logr.Logger
	dump    io.Writer
	workers int
}

type Option func(*BaseAnalysis)

func WithBackend(backend matrix.Backend) Option {
	return func(a *BaseAnalysis) { a.backend = backend }
}

func WithLogger(log logr.Logger) Option {
	return func(a *BaseAnalysis) { a.log = log }
}

// WithSystemDump prints the assembled equations to w before solving.
func WithSystemDump(w io.Writer) Option {
	return func(a *BaseAnalysis) { a.dump = w }
}

// WithWorkers bounds the number of evaluations run at once.
func WithWorkers(n int) Option {
	return func(a *BaseAnalysis) {
		if n > 0 {
			a.workers = n
		}
	}
}

func NewBaseAnalysis(opts ...Option) *BaseAnalysis {
	ba := &BaseAnalysis{
		results: make(map[string][]float64),
		backend: matrix.Dense,
		log:     logr.Discard(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(ba)
	}
	return ba
}

func (a *BaseAnalysis) setData(data *netlist.NetlistData) error {
	if data == nil {
		return fmt.Errorf("netlist not set")
	}
	a.Data = data
	return nil
}

// evaluate runs one full pipeline over data. The circuit lives only for the
// duration of the call.
func (a *BaseAnalysis) evaluate(name string, data *netlist.NetlistData, dump io.Writer) (*circuit.Solution, error) {
	ckt := circuit.New(name, circuit.WithBackend(a.backend), circuit.WithLogger(a.log))
	defer ckt.Destroy()

	if err := ckt.Assemble(data.Elements); err != nil {
		return nil, err
	}
	if dump != nil && ckt.GetMatrix() != nil {
		matrix.PrintSystem(dump, ckt.GetMatrix())
	}
	if err := ckt.CheckConnectivity(); err != nil {
		return nil, err
	}
	if err := ckt.Solve(); err != nil {
		return nil, err
	}
	return ckt.GetSolution(), nil
}

// StoreResult appends one solved point. Ground is not stored.
func (a *BaseAnalysis) StoreResult(solution *circuit.Solution) {
	for _, v := range solution.Voltages {
		if v.Name == consts.Ground {
			continue
		}
		key := fmt.Sprintf("V(%s)", v.Name)
		a.results[key] = append(a.results[key], v.Value)
	}
	for _, i := range solution.Currents {
		key := fmt.Sprintf("I(%s)", i.Name)
		a.results[key] = append(a.results[key], i.Value)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
