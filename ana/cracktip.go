// Package ana implements analytical solutions used to verify the domain
// integrals
package ana

import (
	"math"

	"github.com/notargets/FractureKernel/tensor"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mode identifies a crack opening mode
type Mode int

const (
	ModeI   Mode = iota + 1 // opening
	ModeII                  // in-plane shear
	ModeIII                 // anti-plane shear
)

// CrackTip implements the leading (Williams) term of the linear elastic
// crack-tip fields in the local crack frame: x along the crack extension
// direction, y normal to the crack plane, z along the front. The crack
// faces lie at θ = ±π.
//
//	      y ^
//	        |
//	========o----> x
//	 crack    tip
type CrackTip struct {
	K1, K2, K3  float64 // stress intensity factors
	E, Nu       float64 // Young's modulus and Poisson's coefficient
	PlaneStress bool    // plane stress instead of plane strain
}

// Shear returns the shear modulus μ
func (o CrackTip) Shear() float64 { return o.E / (2 * (1 + o.Nu)) }

// Kolosov returns κ: 3-4ν in plane strain, (3-ν)/(1+ν) in plane stress
func (o CrackTip) Kolosov() float64 {
	if o.PlaneStress {
		return (3 - o.Nu) / (1 + o.Nu)
	}
	return 3 - 4*o.Nu
}

// Displacement computes u @ x
func (o CrackTip) Displacement(x r3.Vec) r3.Vec {
	r, th := math.Hypot(x.X, x.Y), math.Atan2(x.Y, x.X)
	mu, ka := o.Shear(), o.Kolosov()
	c, s := math.Cos(th/2), math.Sin(th/2)
	f := math.Sqrt(r/(2*math.Pi)) / (2 * mu)
	return r3.Vec{
		X: f * (o.K1*c*(ka-1+2*s*s) + o.K2*s*(ka+1+2*c*c)),
		Y: f * (o.K1*s*(ka+1-2*c*c) - o.K2*c*(ka-1-2*s*s)),
		Z: 4 * f * o.K3 * s,
	}
}

// Stress computes σ @ x
func (o CrackTip) Stress(x r3.Vec) tensor.SymmTensor {
	r, th := math.Hypot(x.X, x.Y), math.Atan2(x.Y, x.X)
	c, s := math.Cos(th/2), math.Sin(th/2)
	c3, s3 := math.Cos(3*th/2), math.Sin(3*th/2)
	f := 1 / math.Sqrt(2*math.Pi*r)
	sig := tensor.SymmTensor{
		XX: f * (o.K1*c*(1-s*s3) - o.K2*s*(2+c*c3)),
		YY: f * (o.K1*c*(1+s*s3) + o.K2*s*c*c3),
		XY: f * (o.K1*c*s*c3 + o.K2*c*(1-s*s3)),
		XZ: -f * o.K3 * s,
		YZ: f * o.K3 * c,
	}
	if !o.PlaneStress {
		sig.ZZ = o.Nu * (sig.XX + sig.YY)
	}
	return sig
}

// Strain computes the elastic strain @ x from the stress by Hooke's law
func (o CrackTip) Strain(x r3.Vec) tensor.SymmTensor {
	sig := o.Stress(x)
	a := (1 + o.Nu) / o.E
	b := o.Nu / o.E * sig.Trace()
	return tensor.SymmTensor{
		XX: a*sig.XX - b,
		YY: a*sig.YY - b,
		ZZ: a*sig.ZZ - b,
		XY: a * sig.XY,
		YZ: a * sig.YZ,
		XZ: a * sig.XZ,
	}
}

// DisplacementGradient computes ∂u_i/∂x_j @ x (row i: component, column j:
// direction) by central differences. The fields do not depend on z.
func (o CrackTip) DisplacementGradient(x r3.Vec) tensor.Mat3 {
	jac := mat.NewDense(3, 2, nil)
	fd.Jacobian(jac, func(dst, pt []float64) {
		u := o.Displacement(r3.Vec{X: pt[0], Y: pt[1]})
		dst[0], dst[1], dst[2] = u.X, u.Y, u.Z
	}, []float64{x.X, x.Y}, &fd.JacobianSettings{Formula: fd.Central})

	var g tensor.Mat3
	for i := 0; i < 3; i++ {
		g[i][0] = jac.At(i, 0)
		g[i][1] = jac.At(i, 1)
	}
	return g
}

// KFactor converts the interaction integral computed with a unit auxiliary
// field of the given mode into the stress intensity factor of that mode
func KFactor(mode Mode, E, nu float64, planeStress bool) float64 {
	if mode == ModeIII {
		return E / (2 * (1 + nu))
	}
	Ep := E
	if !planeStress {
		Ep = E / (1 - nu*nu)
	}
	return Ep / 2
}

// Unit returns the crack-tip field of a single mode with K = 1 and the same
// material, the usual auxiliary field of the interaction integral
func (o CrackTip) Unit(mode Mode) CrackTip {
	aux := CrackTip{E: o.E, Nu: o.Nu, PlaneStress: o.PlaneStress}
	switch mode {
	case ModeI:
		aux.K1 = 1
	case ModeII:
		aux.K2 = 1
	case ModeIII:
		aux.K3 = 1
	}
	return aux
}
