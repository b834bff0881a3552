package utils

import "fmt"

// GeometryType identifies the shape of an element
type GeometryType uint8

const (
	// 3D element types
	Tet GeometryType = iota // Tetrahedron
	Hex                     // Hexahedron

	// 2D element types
	Tri       // Triangle
	Rectangle // Quadrilateral

	// 1D element type
	Line // Line segment
)

func (g GeometryType) String() string {
	switch g {
	case Tet:
		return "Tet"
	case Hex:
		return "Hex"
	case Tri:
		return "Tri"
	case Rectangle:
		return "Rectangle"
	case Line:
		return "Line"
	}
	return fmt.Sprintf("GeometryType(%d)", uint8(g))
}

// NumVertices returns the vertex count of the first order element of this shape
func (g GeometryType) NumVertices() int {
	switch g {
	case Tet:
		return 4
	case Hex:
		return 8
	case Tri:
		return 3
	case Rectangle:
		return 4
	case Line:
		return 2
	}
	return 0
}

// Dimension returns the topological dimension of the shape
func (g GeometryType) Dimension() int {
	switch g {
	case Tet, Hex:
		return 3
	case Tri, Rectangle:
		return 2
	case Line:
		return 1
	}
	return 0
}

// FaceNodeCount is the minimum number of shared vertices that makes two
// elements of this shape face neighbors
func (g GeometryType) FaceNodeCount() int {
	switch g.Dimension() {
	case 3:
		return 3
	case 2:
		return 2
	}
	return 1
}
