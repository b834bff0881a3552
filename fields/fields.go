// Package fields defines the per quadrature point field data read by the
// domain integrals, and providers that supply it.
package fields

import (
	"github.com/notargets/FractureKernel/tensor"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point holds the fields at one quadrature point. Primary fields are in
// global coordinates; auxiliary fields are already in the local crack-front
// frame.
type Point struct {
	// GradDisp[i] is the gradient of displacement component i
	GradDisp      [3]r3.Vec
	Stress        tensor.SymmTensor
	ElasticStrain tensor.SymmTensor

	AuxStress tensor.Mat3
	// AuxGradDisp row i holds the derivatives along local axis i:
	// AuxGradDisp[i][j] = ∂u_j/∂x_i
	AuxGradDisp tensor.Mat3

	GradTemp         r3.Vec
	ThermalExpansion float64 // instantaneous thermal expansion coefficient
}

// Provider supplies field data. Implementations must be safe for concurrent
// use by the processing units.
type Provider interface {
	// HasThermalExpansion reports whether ThermalExpansion is computed
	HasThermalExpansion() bool
	// At returns the fields at quadrature point qp of element elem, located at x
	At(elem, qp int, x r3.Vec) Point
}

// Constant returns the same Point everywhere
type Constant struct {
	Value   Point
	Thermal bool
}

func (c Constant) HasThermalExpansion() bool { return c.Thermal }

func (c Constant) At(int, int, r3.Vec) Point { return c.Value }
