// Package crackfront defines the crack-front geometry consumed by the domain
// integrals: local frames, 2D/3D classification, segment lengths, the
// tangential strain along the front, and the q-function weights of the
// integration rings.
package crackfront

import (
	"github.com/notargets/FractureKernel/tensor"
	"gonum.org/v1/gonum/spatial/r3"
)

// Definition is the read-only crack-front geometry. All methods must be
// safe for concurrent use once the definition has been set up.
type Definition interface {
	// IsTwoDimensional reports whether the front is treated as a single 2D tip
	IsTwoDimensional() bool

	// RotateVec returns v in the local frame of point
	RotateVec(v r3.Vec, point int) r3.Vec
	// RotateMat returns the second order tensor m in the local frame of point
	RotateMat(m tensor.Mat3, point int) tensor.Mat3

	// ForwardSegmentLength is the distance to the next point (0 at the end)
	ForwardSegmentLength(point int) float64
	// BackwardSegmentLength is the distance to the previous point (0 at the start)
	BackwardSegmentLength(point int) float64

	// TangentialStrain returns the strain along the front tangent at point
	TangentialStrain(point int) float64

	// QWeight is the distance based q-function weight of node for ring
	// ordinal ring around point
	QWeight(point, ring, node int) float64
	// TopologicalQWeight is the connectivity based q-function weight of node
	// for ring ordinal ring around point
	TopologicalQWeight(point, ring, node int) float64
}
