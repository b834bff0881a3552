// Package element provides first order Lagrange reference elements,
// quadrature rules, and the per-element evaluation of shape functions,
// their physical gradients and the Jacobian weights at quadrature points.
package element

import (
	"fmt"

	"github.com/notargets/FractureKernel/utils"
)

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D0 Dimensionality = iota // points
	D1                       // lines
	D2                       // triangles, quadrilaterals
	D3                       // tetrahedra, hexahedra
)

// ShapeFunc evaluates the shape functions S and, when dSdR is not nil, their
// derivatives with respect to the natural coordinates at r
type ShapeFunc func(S []float64, dSdR [][]float64, r []float64)

// ReferenceElement defines a first order element in natural coordinates
type ReferenceElement struct {
	Name       string             // e.g. "Quad4"
	Type       utils.GeometryType // element shape
	Dimensions Dimensionality     // topological dimension
	Nverts     int                // number of vertices (== nodes for first order)
	NatCoords  [][]float64        // [nverts][gndim] natural coordinates of the vertices
	Func       ShapeFunc
}

// Gndim returns the dimension of the natural coordinate space
func (o *ReferenceElement) Gndim() int { return int(o.Dimensions) }

var library = map[utils.GeometryType]*ReferenceElement{
	utils.Tri: {
		Name: "Tri3", Type: utils.Tri, Dimensions: D2, Nverts: 3,
		NatCoords: [][]float64{{0, 0}, {1, 0}, {0, 1}},
		Func:      tri3,
	},
	utils.Rectangle: {
		Name: "Quad4", Type: utils.Rectangle, Dimensions: D2, Nverts: 4,
		NatCoords: [][]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
		Func:      quad4,
	},
	utils.Tet: {
		Name: "Tet4", Type: utils.Tet, Dimensions: D3, Nverts: 4,
		NatCoords: [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Func:      tet4,
	},
	utils.Hex: {
		Name: "Hex8", Type: utils.Hex, Dimensions: D3, Nverts: 8,
		NatCoords: [][]float64{
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		},
		Func: hex8,
	},
}

// GetReferenceElement returns the first order reference element for a shape
func GetReferenceElement(gt utils.GeometryType) (*ReferenceElement, error) {
	ref, ok := library[gt]
	if !ok {
		return nil, fmt.Errorf("no first order reference element for geometry %v", gt)
	}
	return ref, nil
}
