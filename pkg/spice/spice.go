// Package spice evaluates DC operating points of linear resistive netlists.
//
// A netlist lists resistors, independent voltage sources and independent
// current sources between a ".circuit" and an ".end" line. Evaluate returns
// the voltage of every node against ground (GND) and the current through
// every voltage source. Each call is independent and safe to run
// concurrently.
package spice

import (
	"bytes"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/edp1096/evalspice/pkg/analysis"
	"github.com/edp1096/evalspice/pkg/circuit"
	"github.com/edp1096/evalspice/pkg/matrix"
	"github.com/edp1096/evalspice/pkg/netlist"
	"github.com/edp1096/evalspice/pkg/simerr"
)

type (
	Solution   = circuit.Solution
	SweepPoint = analysis.SweepPoint
)

type options struct {
	backend matrix.Backend
	log     logr.Logger
	dump    io.Writer
	workers int
}

type Option func(*options)

// WithBackend selects the linear solver. Results agree between backends on
// well-conditioned systems.
func WithBackend(backend matrix.Backend) Option {
	return func(o *options) { o.backend = backend }
}

func WithLogger(log logr.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSystemDump writes the assembled equations to w. Sweeps ignore it.
func WithSystemDump(w io.Writer) Option {
	return func(o *options) { o.dump = w }
}

// WithWorkers bounds the number of sweep points solved at once.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func newOptions(opts []Option) *options {
	o := &options{backend: matrix.Dense, log: logr.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) analysisOptions() []analysis.Option {
	return []analysis.Option{
		analysis.WithBackend(o.backend),
		analysis.WithLogger(o.log),
		analysis.WithWorkers(o.workers),
	}
}

// Evaluate parses text and solves its operating point.
func Evaluate(text string, opts ...Option) (*Solution, error) {
	o := newOptions(opts)

	data, err := netlist.Parse(text)
	if err != nil {
		return nil, err
	}
	o.log.V(1).Info("parsed netlist", "elements", len(data.Elements))

	aopts := o.analysisOptions()
	if o.dump != nil {
		aopts = append(aopts, analysis.WithSystemDump(o.dump))
	}
	op := analysis.NewOP(aopts...)
	if err := op.Setup(data); err != nil {
		return nil, err
	}
	if err := op.Execute(); err != nil {
		return nil, err
	}
	return op.Solution(), nil
}

// EvaluateReader reads r to the end before evaluating.
func EvaluateReader(r io.Reader, opts ...Option) (*Solution, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, simerr.Wrap(simerr.ErrInputUnavailable, err)
	}
	return Evaluate(buf.String(), opts...)
}

func EvaluateFile(path string, opts ...Option) (*Solution, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, simerr.Wrap(simerr.ErrInputUnavailable, err)
	}
	return Evaluate(string(content), opts...)
}

// Sweep evaluates text once per value of source from start to stop by step.
// Points come back in sweep order; the first failing point fails the sweep.
func Sweep(text, source string, start, stop, step float64, opts ...Option) ([]SweepPoint, error) {
	o := newOptions(opts)

	data, err := netlist.Parse(text)
	if err != nil {
		return nil, err
	}

	dc, err := analysis.NewDCSweep(source, start, stop, step, o.analysisOptions()...)
	if err != nil {
		return nil, err
	}
	if err := dc.Setup(data); err != nil {
		return nil, err
	}
	if err := dc.Execute(); err != nil {
		return nil, err
	}
	return dc.Points(), nil
}
