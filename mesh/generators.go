package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/FractureKernel/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Annulus describes a structured polar mesh around a crack tip at the
// origin. The crack lies along the negative x axis: the nodes at θ = -π
// and θ = +π are distinct, so the two crack faces are not connected.
type Annulus struct {
	RInner, ROuter float64            // radii of the hole around the tip and of the outer boundary
	NRadial        int                // element divisions in r
	NTheta         int                // element divisions in θ
	Shape          utils.GeometryType // Rectangle or Tri (each quad split in two)
}

func (a Annulus) validate() error {
	if a.RInner <= 0 || a.ROuter <= a.RInner {
		return fmt.Errorf("invalid annulus radii %g, %g", a.RInner, a.ROuter)
	}
	if a.NRadial < 1 || a.NTheta < 2 {
		return fmt.Errorf("invalid annulus divisions %d × %d", a.NRadial, a.NTheta)
	}
	if a.Shape != utils.Rectangle && a.Shape != utils.Tri {
		return fmt.Errorf("annulus cannot be meshed with %v", a.Shape)
	}
	return nil
}

// NodesPerLayer returns the number of nodes of one annulus layer
func (a Annulus) NodesPerLayer() int { return (a.NRadial + 1) * (a.NTheta + 1) }

// NodeID returns the node at radial index i and angular index j of layer l
func (a Annulus) NodeID(i, j, l int) int {
	return l*a.NodesPerLayer() + j*(a.NRadial+1) + i
}

// InnerNodes returns the nodes on the inner boundary (r = RInner) of layer l
func (a Annulus) InnerNodes(l int) []int {
	nodes := make([]int, a.NTheta+1)
	for j := range nodes {
		nodes[j] = a.NodeID(0, j, l)
	}
	return nodes
}

func (a Annulus) layer(z float64) []r3.Vec {
	v := make([]r3.Vec, 0, a.NodesPerLayer())
	for j := 0; j <= a.NTheta; j++ {
		th := -math.Pi + 2*math.Pi*float64(j)/float64(a.NTheta)
		for i := 0; i <= a.NRadial; i++ {
			r := a.RInner + (a.ROuter-a.RInner)*float64(i)/float64(a.NRadial)
			v = append(v, r3.Vec{X: r * math.Cos(th), Y: r * math.Sin(th), Z: z})
		}
	}
	return v
}

// quads returns the counter clockwise cells of layer l
func (a Annulus) quads(l int) [][4]int {
	cells := make([][4]int, 0, a.NRadial*a.NTheta)
	for j := 0; j < a.NTheta; j++ {
		for i := 0; i < a.NRadial; i++ {
			cells = append(cells, [4]int{
				a.NodeID(i, j, l), a.NodeID(i+1, j, l),
				a.NodeID(i+1, j+1, l), a.NodeID(i, j+1, l),
			})
		}
	}
	return cells
}

// NewAnnulus2D meshes the annulus in the z = 0 plane
func NewAnnulus2D(a Annulus) (*Mesh, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	m := &Mesh{Dim: 2, Vertices: a.layer(0)}
	for _, c := range a.quads(0) {
		if a.Shape == utils.Rectangle {
			m.EtoV = append(m.EtoV, []int{c[0], c[1], c[2], c[3]})
			m.ElementTypes = append(m.ElementTypes, utils.Rectangle)
			continue
		}
		m.EtoV = append(m.EtoV, []int{c[0], c[1], c[2]}, []int{c[0], c[2], c[3]})
		m.ElementTypes = append(m.ElementTypes, utils.Tri, utils.Tri)
	}
	return m, nil
}

// NewAnnularCylinder extrudes the annulus along z from 0 to length with nz
// layers of hexahedra. The crack front is the z axis.
func NewAnnularCylinder(a Annulus, nz int, length float64) (*Mesh, error) {
	a.Shape = utils.Rectangle
	if err := a.validate(); err != nil {
		return nil, err
	}
	if nz < 1 || length <= 0 {
		return nil, fmt.Errorf("invalid extrusion: %d layers over %g", nz, length)
	}
	m := &Mesh{Dim: 3}
	for l := 0; l <= nz; l++ {
		m.Vertices = append(m.Vertices, a.layer(length*float64(l)/float64(nz))...)
	}
	for l := 0; l < nz; l++ {
		bot, top := a.quads(l), a.quads(l+1)
		for c := range bot {
			b, t := bot[c], top[c]
			m.EtoV = append(m.EtoV, []int{b[0], b[1], b[2], b[3], t[0], t[1], t[2], t[3]})
			m.ElementTypes = append(m.ElementTypes, utils.Hex)
		}
	}
	return m, nil
}

// FrontPositions returns the points of a straight crack front along the z
// axis, one per node layer of an extruded annulus
func FrontPositions(nz int, length float64) []r3.Vec {
	pts := make([]r3.Vec, nz+1)
	for l := range pts {
		pts[l] = r3.Vec{Z: length * float64(l) / float64(nz)}
	}
	return pts
}

// hexToTets splits a hexahedron into six tetrahedra around its 0-6
// diagonal. Neighboring hexahedra of a structured mesh with the same node
// orientation get matching face diagonals.
var hexToTets = [6][4]int{
	{0, 1, 2, 6}, {0, 2, 3, 6}, {0, 3, 7, 6},
	{0, 7, 4, 6}, {0, 4, 5, 6}, {0, 5, 1, 6},
}

// SplitHexes returns a copy of m with every Hex8 element replaced by six
// Tet4 elements on the same nodes. Other elements are kept.
func SplitHexes(m *Mesh) *Mesh {
	out := &Mesh{Dim: m.Dim, Vertices: m.Vertices}
	for k, verts := range m.EtoV {
		if m.ElementTypes[k] != utils.Hex {
			out.EtoV = append(out.EtoV, verts)
			out.ElementTypes = append(out.ElementTypes, m.ElementTypes[k])
			continue
		}
		for _, tet := range hexToTets {
			out.EtoV = append(out.EtoV, []int{verts[tet[0]], verts[tet[1]], verts[tet[2]], verts[tet[3]]})
			out.ElementTypes = append(out.ElementTypes, utils.Tet)
		}
	}
	return out
}
