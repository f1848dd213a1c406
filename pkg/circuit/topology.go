package circuit

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// FloatingGroups lists the groups of nodes that no chain of resistors joins
// to ground. Names are sorted within a group, groups by their first name.
func (c *Circuit) FloatingGroups() [][]string {
	g := simple.NewUndirectedGraph()
	for idx := range c.nodeNames {
		g.AddNode(simple.Node(idx))
	}
	for _, r := range c.resistors {
		if r.Value <= 0 {
			continue
		}
		n1, n2 := r.Nodes[0], r.Nodes[1]
		if n1 == n2 {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(n1), T: simple.Node(n2)})
	}

	var groups [][]string
	for _, comp := range topo.ConnectedComponents(g) {
		names := make([]string, 0, len(comp))
		grounded := false
		for _, n := range comp {
			if n.ID() == 0 {
				grounded = true
				break
			}
			names = append(names, c.nodeNames[n.ID()])
		}
		if grounded {
			continue
		}
		sort.Strings(names)
		groups = append(groups, names)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
