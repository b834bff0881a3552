// Package mesh holds an unstructured finite element mesh, its node and
// element adjacency, and generators for the structured crack-tip meshes
// used to verify the domain integrals.
package mesh

import (
	"fmt"

	"github.com/notargets/FractureKernel/utils"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a first order finite element mesh
type Mesh struct {
	Dim          int                  // spatial dimension, 2 or 3
	Vertices     []r3.Vec             // node coordinates
	EtoV         [][]int              // element to vertex connectivity
	ElementTypes []utils.GeometryType // shape of each element
}

// NumElements returns the number of elements
func (m *Mesh) NumElements() int { return len(m.EtoV) }

// NumNodes returns the number of nodes
func (m *Mesh) NumNodes() int { return len(m.Vertices) }

// ElementCoords returns the vertex coordinates of element k in local order
func (m *Mesh) ElementCoords(k int) []r3.Vec {
	x := make([]r3.Vec, len(m.EtoV[k]))
	for i, n := range m.EtoV[k] {
		x[i] = m.Vertices[n]
	}
	return x
}

// Validate checks that connectivity and element types agree
func (m *Mesh) Validate() error {
	if m.Dim != 2 && m.Dim != 3 {
		return fmt.Errorf("mesh dimension %d is not 2 or 3", m.Dim)
	}
	if len(m.ElementTypes) != len(m.EtoV) {
		return fmt.Errorf("%d element types for %d elements", len(m.ElementTypes), len(m.EtoV))
	}
	for k, verts := range m.EtoV {
		gt := m.ElementTypes[k]
		if gt.Dimension() != m.Dim {
			return fmt.Errorf("element %d: %v in a %dD mesh", k, gt, m.Dim)
		}
		if len(verts) != gt.NumVertices() {
			return fmt.Errorf("element %d: %v with %d vertices", k, gt, len(verts))
		}
		for _, n := range verts {
			if n < 0 || n >= len(m.Vertices) {
				return fmt.Errorf("element %d: vertex %d out of range", k, n)
			}
		}
	}
	return nil
}

// NodeToElements returns, for every node, the elements that contain it
func (m *Mesh) NodeToElements() [][]int {
	nte := make([][]int, len(m.Vertices))
	for k, verts := range m.EtoV {
		for _, n := range verts {
			nte[n] = append(nte[n], k)
		}
	}
	return nte
}

// NodeGraph returns the graph whose nodes are mesh nodes, connected when
// they belong to a common element. Graph node IDs are mesh node indices.
func (m *Mesh) NodeGraph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for n := range m.Vertices {
		g.AddNode(simple.Node(n))
	}
	for _, verts := range m.EtoV {
		for i, a := range verts {
			for _, b := range verts[i+1:] {
				if a != b {
					g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
				}
			}
		}
	}
	return g
}

// DualGraph returns the element adjacency graph: two elements are connected
// when they share a face (an edge in 2D). Graph node IDs are element indices.
func (m *Mesh) DualGraph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for k := range m.EtoV {
		g.AddNode(simple.Node(k))
	}
	nte := m.NodeToElements()
	for k, verts := range m.EtoV {
		shared := make(map[int]int)
		for _, n := range verts {
			for _, e := range nte[n] {
				if e > k {
					shared[e]++
				}
			}
		}
		need := m.ElementTypes[k].FaceNodeCount()
		for e, cnt := range shared {
			if cnt >= need {
				g.SetEdge(simple.Edge{F: simple.Node(k), T: simple.Node(e)})
			}
		}
	}
	return g
}

// Transform returns a copy of the mesh with every vertex mapped by f
func (m *Mesh) Transform(f func(r3.Vec) r3.Vec) *Mesh {
	out := &Mesh{
		Dim:          m.Dim,
		Vertices:     make([]r3.Vec, len(m.Vertices)),
		EtoV:         m.EtoV,
		ElementTypes: m.ElementTypes,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = f(v)
	}
	return out
}
