package mesh

import (
	"fmt"

	"github.com/notargets/FractureKernel/utils"
	gocfdmesh "github.com/notargets/gocfd/DG3D/mesh"
	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadFile reads a tetrahedral mesh in any format the gocfd readers
// recognize by extension (Gmsh, Gambit neutral, SU2). Ten node tetrahedra
// keep their corner nodes.
func ReadFile(path string) (*Mesh, error) {
	gm, err := readers.ReadMeshFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh %s: %w", path, err)
	}

	m := &Mesh{Dim: 3, Vertices: make([]r3.Vec, len(gm.Vertices))}
	for i, v := range gm.Vertices {
		m.Vertices[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	for k := 0; k < gm.NumElements; k++ {
		elemType := gm.ElementTypes[k]
		if elemType != gocfdmesh.Tet && elemType != gocfdmesh.Tet10 {
			return nil, fmt.Errorf("mesh %s: element %d is not tetrahedral (type=%v)", path, k, elemType)
		}
		nodes := gm.EtoV[k]
		if len(nodes) < 4 {
			return nil, fmt.Errorf("mesh %s: element %d has %d nodes", path, k, len(nodes))
		}
		m.EtoV = append(m.EtoV, append([]int(nil), nodes[:4]...))
		m.ElementTypes = append(m.ElementTypes, utils.Tet)
	}
	if err = m.Validate(); err != nil {
		return nil, fmt.Errorf("mesh %s: %w", path, err)
	}
	return m, nil
}

// NearestNodes returns, for every point, the nodes whose distance to the
// line through the point along axis is minimal among the nodes in the
// plane of the point normal to axis. It gives the front nodes of a mesh
// with a hole around a straight crack front.
func NearestNodes(m *Mesh, points []r3.Vec, axis r3.Vec) [][]int {
	const tol = 1e-9
	axis = r3.Unit(axis)
	var extent float64
	for _, v := range m.Vertices {
		extent = max(extent, r3.Norm(r3.Sub(v, m.Vertices[0])))
	}
	out := make([][]int, len(points))
	for p, x := range points {
		best := -1.0
		for n, v := range m.Vertices {
			d := r3.Sub(v, x)
			s := r3.Dot(d, axis)
			if s > tol*extent || s < -tol*extent {
				continue
			}
			dist := r3.Norm(r3.Sub(d, r3.Scale(s, axis)))
			switch {
			case best < 0 || dist < best-tol*extent:
				best = dist
				out[p] = []int{n}
			case dist <= best+tol*extent:
				out[p] = append(out[p], n)
			}
		}
	}
	return out
}
