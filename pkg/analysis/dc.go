package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/edp1096/evalspice/pkg/circuit"
	"github.com/edp1096/evalspice/pkg/netlist"
)

const maxSweepPoints = 100000

var (
	ErrSourceNotFound = errors.New("sweep source not found")
	ErrInvalidSweep   = errors.New("invalid sweep range")

	errNotSetup = errors.New("netlist not set, call Setup first")
)

type SweepPoint struct {
	Value    float64
	Solution *circuit.Solution
}

// DCSweep re-evaluates the netlist with one independent source stepped over
// a range. Every point is a separate evaluation of its own copy of the netlist.
type DCSweep struct {
	BaseAnalysis
	sourceName string    // V or I element to sweep
	sourceIdx  int       // position of the source in Data.Elements
	sweepVals  []float64 // start + k*step
	points     []SweepPoint
}

func NewDCSweep(source string, start, stop, step float64, opts ...Option) (*DCSweep, error) {
	for _, v := range []float64{start, stop, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: values must be finite", ErrInvalidSweep)
		}
	}
	if step == 0 {
		return nil, fmt.Errorf("%w: step must not be zero", ErrInvalidSweep)
	}

	steps := (stop - start) / step
	if steps < 0 {
		return nil, fmt.Errorf("%w: step %g never reaches %g from %g", ErrInvalidSweep, step, stop, start)
	}
	if steps >= maxSweepPoints {
		return nil, fmt.Errorf("%w: more than %d points", ErrInvalidSweep, maxSweepPoints)
	}

	// Tolerate rounding so that stop itself is included.
	n := int(math.Floor(steps + 1e-9))
	sweepVals := make([]float64, n+1)
	for k := range sweepVals {
		sweepVals[k] = start + float64(k)*step
	}

	return &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(opts...),
		sourceName:   source,
		sourceIdx:    -1,
		sweepVals:    sweepVals,
	}, nil
}

func (dc *DCSweep) Setup(data *netlist.NetlistData) error {
	if err := dc.setData(data); err != nil {
		return err
	}

	for i, elem := range data.Elements {
		if elem.Name != dc.sourceName {
			continue
		}
		if elem.Type == netlist.TypeVoltageSource || elem.Type == netlist.TypeCurrentSource {
			dc.sourceIdx = i
			return nil
		}
		return fmt.Errorf("%w: %s is not an independent source", ErrSourceNotFound, dc.sourceName)
	}
	return fmt.Errorf("%w: %s", ErrSourceNotFound, dc.sourceName)
}

func (dc *DCSweep) Execute() error {
	if dc.Data == nil || dc.sourceIdx < 0 {
		return errNotSetup
	}

	points := make([]SweepPoint, len(dc.sweepVals))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(dc.workers)

	dc.log.V(1).Info("dc sweep", "source", dc.sourceName, "points", len(points), "workers", dc.workers)
	for k, val := range dc.sweepVals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data := dc.Data.Clone()
			data.Elements[dc.sourceIdx].Value = val

			name := fmt.Sprintf("%s=%g", dc.sourceName, val)
			solution, err := dc.evaluate(name, data, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			points[k] = SweepPoint{Value: val, Solution: solution}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	dc.points = points
	for _, p := range points {
		dc.results["SWEEP1"] = append(dc.results["SWEEP1"], p.Value)
		dc.StoreResult(p.Solution)
	}
	return nil
}

// Points returns the solved points in sweep order.
func (dc *DCSweep) Points() []SweepPoint {
	return dc.points
}

func (dc *DCSweep) Values() []float64 {
	return dc.sweepVals
}
