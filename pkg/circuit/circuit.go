package circuit

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/edp1096/evalspice/internal/consts"
	"github.com/edp1096/evalspice/pkg/device"
	"github.com/edp1096/evalspice/pkg/matrix"
	"github.com/edp1096/evalspice/pkg/netlist"
	"github.com/edp1096/evalspice/pkg/simerr"
)

// Circuit is the assembly context of one evaluation. It is built from one
// netlist, solved once and then discarded.
type Circuit struct {
	name       string
	nodeMap    map[string]int
	nodeNames  []string // by index, nodeNames[0] is ground
	branchMap  map[string]int
	resistors  []*device.Resistor
	vsources   []*device.VoltageSource // declared first, then shorts
	isources   []*device.CurrentSource
	elements   map[string]netlist.Element
	shortCount int
	numNodes   int
	backend    matrix.Backend
	matrix     matrix.Matrix
	solved     bool
	notices    []Notice
	log        logr.Logger
}

type Option func(*Circuit)

func WithBackend(backend matrix.Backend) Option {
	return func(c *Circuit) { c.backend = backend }
}

func WithLogger(log logr.Logger) Option {
	return func(c *Circuit) { c.log = log }
}

func New(name string, opts ...Option) *Circuit {
	c := &Circuit{
		name:      name,
		nodeMap:   map[string]int{consts.Ground: 0},
		nodeNames: []string{consts.Ground},
		branchMap: make(map[string]int),
		elements:  make(map[string]netlist.Element),
		backend:   matrix.Dense,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assemble builds the MNA system for elements.
func (c *Circuit) Assemble(elements []netlist.Element) error {
	if err := c.SetupDevices(elements); err != nil {
		return err
	}
	c.AssignNodeMap()
	if err := c.ExpandShorts(); err != nil {
		return err
	}
	c.AssignBranchMap()
	if err := c.CreateMatrix(); err != nil {
		return err
	}
	return c.Stamp()
}

func (c *Circuit) SetupDevices(elements []netlist.Element) error {
	for _, elem := range elements {
		if first, dup := c.elements[elem.Name]; dup {
			return simerr.New(simerr.ErrMalformedNetlist, "duplicate element name, first declared at line %d", first.Line).
				AtLine(elem.Line, elem.Text).For(elem.Name)
		}
		if len(elem.Nodes) != 2 {
			return simerr.New(simerr.ErrMalformedNetlist, "element needs exactly 2 nodes, got %d", len(elem.Nodes)).
				AtLine(elem.Line, elem.Text).For(elem.Name)
		}
		c.elements[elem.Name] = elem

		dev, err := netlist.CreateDevice(elem)
		if err != nil {
			return c.errorFor(simerr.ErrMalformedNetlist, elem.Name, "creating device: %v", err)
		}

		switch d := dev.(type) {
		case *device.Resistor:
			c.resistors = append(c.resistors, d)
		case *device.VoltageSource:
			c.vsources = append(c.vsources, d)
		case *device.CurrentSource:
			c.isources = append(c.isources, d)
		}
	}
	return nil
}

// AssignNodeMap indexes nodes in order of first appearance, scanning voltage
// sources, then current sources, then resistors.
func (c *Circuit) AssignNodeMap() {
	var devs []device.Device
	for _, v := range c.vsources {
		devs = append(devs, v)
	}
	for _, i := range c.isources {
		devs = append(devs, i)
	}
	for _, r := range c.resistors {
		devs = append(devs, r)
	}

	for _, dev := range devs {
		nodeIndices := make([]int, len(dev.GetNodeNames()))
		for i, nodeName := range dev.GetNodeNames() {
			idx, exists := c.nodeMap[nodeName]
			if !exists {
				idx = len(c.nodeNames)
				c.nodeMap[nodeName] = idx
				c.nodeNames = append(c.nodeNames, nodeName)
			}
			nodeIndices[i] = idx
		}
		dev.SetNodes(nodeIndices)
	}

	c.numNodes = len(c.nodeNames) - 1
	c.log.V(1).Info("assigned nodes", "circuit", c.name, "nodes", c.numNodes)
}

// ExpandShorts rejects negative resistances and replaces every zero-ohm
// resistor with a 0 V source appended after the declared sources.
func (c *Circuit) ExpandShorts() error {
	for _, r := range c.resistors {
		if r.Value < 0 {
			return c.errorFor(simerr.ErrInvalidComponentValue, r.Name, "negative resistance %g", r.Value)
		}
		if !r.Shorted() {
			continue
		}

		short := device.NewShort(c.nextShortName(), r)
		short.SetNodes(append([]int(nil), r.GetNodes()...))
		c.vsources = append(c.vsources, short)

		c.notice(Notice{
			Kind:      NoticeShortedResistor,
			Component: r.Name,
			Line:      r.Line,
			Message:   fmt.Sprintf("zero resistance treated as a wire, replaced by %s", short.Name),
		})
	}
	return nil
}

func (c *Circuit) nextShortName() string {
	for {
		name := fmt.Sprintf("%s%d", consts.ShortPrefix, c.shortCount)
		c.shortCount++
		if _, taken := c.elements[name]; !taken {
			return name
		}
	}
}

func (c *Circuit) AssignBranchMap() {
	branchStart := c.numNodes + 1
	for i, v := range c.vsources {
		v.SetBranchIndex(branchStart + i)
		c.branchMap[v.Name] = branchStart + i
	}
	c.log.V(1).Info("assigned branches", "circuit", c.name, "branches", len(c.vsources))
}

// CreateMatrix allocates the (N+M) x (N+M) system. An empty circuit has no matrix.
func (c *Circuit) CreateMatrix() error {
	size := c.numNodes + len(c.vsources)
	if size == 0 {
		return nil
	}

	mat, err := matrix.New(c.backend, size)
	if err != nil {
		return fmt.Errorf("creating matrix: %w", err)
	}
	c.matrix = mat
	return nil
}

func (c *Circuit) Stamp() error {
	if c.matrix == nil {
		return nil
	}

	for _, r := range c.resistors {
		if err := r.Stamp(c.matrix); err != nil {
			return c.errorFor(simerr.ErrInvalidComponentValue, r.Name, "stamping device: %v", err)
		}
	}
	for _, v := range c.vsources {
		if err := v.Stamp(c.matrix); err != nil {
			return fmt.Errorf("stamping device %s: %w", v.Name, err)
		}
	}
	for _, i := range c.isources {
		if i.Idle() {
			c.notice(Notice{
				Kind:      NoticeIdleCurrentSource,
				Component: i.Name,
				Line:      i.Line,
				Message:   "zero current source ignored",
			})
			continue
		}
		if err := i.Stamp(c.matrix); err != nil {
			return fmt.Errorf("stamping device %s: %w", i.Name, err)
		}
	}
	return nil
}

// CheckConnectivity fails when the conductance block has rank below N-1.
func (c *Circuit) CheckConnectivity() error {
	n := c.numNodes
	if c.matrix == nil || n < 2 {
		return nil
	}

	rank := matrix.Rank(c.matrix, n)
	if rank < n-1 {
		err := simerr.New(simerr.ErrDisconnectedCircuit, "conductance matrix rank %d is below %d", rank, n-1)
		err.Groups = c.FloatingGroups()
		return err
	}
	return nil
}

func (c *Circuit) Solve() error {
	if c.matrix == nil {
		c.solved = true
		return nil
	}

	if err := c.matrix.Solve(); err != nil {
		if errors.Is(err, matrix.ErrSingular) {
			return simerr.Wrap(simerr.ErrUnsolvableSystem, err)
		}
		return simerr.Wrap(simerr.ErrUnsolvableSystem, fmt.Errorf("solving: %w", err))
	}
	c.solved = true
	c.log.V(1).Info("solved", "circuit", c.name, "size", c.matrix.Size())
	return nil
}

func (c *Circuit) notice(n Notice) {
	c.notices = append(c.notices, n)
	c.log.Info(n.Message, "kind", string(n.Kind), "component", n.Component, "line", n.Line)
}

func (c *Circuit) errorFor(kind error, name, format string, args ...any) error {
	elem := c.elements[name]
	return simerr.New(kind, format, args...).AtLine(elem.Line, elem.Text).For(name)
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
	}
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) GetMatrix() matrix.Matrix {
	return c.matrix
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

func (c *Circuit) GetBranchMap() map[string]int {
	return c.branchMap
}

// GetNodeNames returns node names by index, ground first.
func (c *Circuit) GetNodeNames() []string {
	return c.nodeNames
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

func (c *Circuit) GetVoltageSources() []*device.VoltageSource {
	return c.vsources
}

func (c *Circuit) GetDevices() []device.Device {
	devs := make([]device.Device, 0, len(c.resistors)+len(c.vsources)+len(c.isources))
	for _, r := range c.resistors {
		devs = append(devs, r)
	}
	for _, v := range c.vsources {
		devs = append(devs, v)
	}
	for _, i := range c.isources {
		devs = append(devs, i)
	}
	return devs
}

func (c *Circuit) Notices() []Notice {
	return c.notices
}
