package crackfront

import (
	"github.com/notargets/FractureKernel/mesh"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// nodeLayers returns, for every point, the topological distance of each
// mesh node from the point's front nodes: 0 for the front nodes themselves,
// 1 for their element neighbors, and so on. Unreachable nodes get -1.
func nodeLayers(m *mesh.Mesh, frontNodes [][]int) [][]int {
	g := m.NodeGraph()
	source := simple.Node(int64(m.NumNodes()))
	layers := make([][]int, len(frontNodes))
	for p, nodes := range frontNodes {
		// a virtual source one step before every front node turns the
		// multi-source search into a single breadth first walk
		g.AddNode(source)
		for _, n := range nodes {
			g.SetEdge(simple.Edge{F: source, T: simple.Node(n)})
		}

		layer := make([]int, m.NumNodes())
		for i := range layer {
			layer[i] = -1
		}
		var bf traverse.BreadthFirst
		bf.Walk(g, source, func(n graph.Node, depth int) bool {
			if id := int(n.ID()); id != int(source.ID()) {
				layer[id] = depth - 1
			}
			return false
		})
		layers[p] = layer

		g.RemoveNode(source.ID())
	}
	return layers
}
