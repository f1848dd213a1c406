package circuit

import (
	"sort"

	"github.com/edp1096/evalspice/internal/consts"
)

type Value struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Resistor replaced by a synthesized 0 V source, currents only
	Short string `json:"short,omitempty"`
}

// Values is an ordered name -> value mapping.
type Values []Value

func (vs Values) Get(name string) (float64, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

func (vs Values) Names() []string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return names
}

func (vs Values) Map() map[string]float64 {
	m := make(map[string]float64, len(vs))
	for _, v := range vs {
		m[v.Name] = v.Value
	}
	return m
}

type NoticeKind string

const (
	NoticeShortedResistor   NoticeKind = "shorted-resistor"
	NoticeIdleCurrentSource NoticeKind = "idle-current-source"
)

// Notice records a non-fatal condition met while assembling.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Component string     `json:"component"`
	Line      int        `json:"line"`
	Message   string     `json:"message"`
}

type Solution struct {
	// Ground first, then the other nodes in ascending lexical order
	Voltages Values `json:"voltages"`
	// Declared sources in declaration order, then 0 V shorts
	Currents Values   `json:"currents"`
	Notices  []Notice `json:"notices,omitempty"`
}

// GetSolution maps the solved vector onto node and source names.
// It returns nil until Solve has succeeded.
func (c *Circuit) GetSolution() *Solution {
	if !c.solved {
		return nil
	}

	var x []float64
	if c.matrix != nil {
		x = c.matrix.Solution()
	}

	names := append([]string(nil), c.nodeNames[1:]...)
	sort.Strings(names)

	voltages := make(Values, 0, len(names)+1)
	voltages = append(voltages, Value{Name: consts.Ground, Value: 0})
	for _, name := range names {
		voltages = append(voltages, Value{Name: name, Value: x[c.nodeMap[name]]})
	}

	currents := make(Values, 0, len(c.vsources))
	for _, v := range c.vsources {
		cur := Value{Name: v.Name, Value: x[v.BranchIndex()]}
		if v.Synthesized() {
			cur.Short = v.ShortOf()
		}
		currents = append(currents, cur)
	}

	return &Solution{
		Voltages: voltages,
		Currents: currents,
		Notices:  append([]Notice(nil), c.notices...),
	}
}
