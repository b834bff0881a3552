package integral

import (
	"github.com/notargets/FractureKernel/crackfront"
	"github.com/notargets/FractureKernel/element"
	"github.com/notargets/FractureKernel/fields"
	"github.com/notargets/FractureKernel/tensor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// crackDirection is the crack extension axis of the local frame
var crackDirection = r3.Vec{X: 1}

// Terms are the four contributions to the interaction integrand
type Terms struct {
	Stress    float64 // auxiliary displacement gradient against primary stress
	AuxStress float64 // primary displacement gradient against auxiliary stress
	Energy    float64 // mixed strain energy density
	Thermal   float64 // thermal strain, 0 without temperature coupling
}

// Sum combines the terms into the integrand
func (t Terms) Sum() float64 { return t.Stress + t.AuxStress - t.Energy + t.Thermal }

// Accumulator evaluates the interaction integrand at quadrature points for
// one crack-front point
type Accumulator struct {
	Front         crackfront.Definition
	Point         int
	SymmetryPlane bool
	Thermal       bool
	TreatAs2D     bool
}

// Terms evaluates the integrand contributions from the interpolated q and
// its global gradient
func (a Accumulator) Terms(q float64, gradQ r3.Vec, pt fields.Point) Terms {
	gradDisp := tensor.FromRows(pt.GradDisp[0], pt.GradDisp[1], pt.GradDisp[2])

	gradQcf := a.Front.RotateVec(gradQ, a.Point)
	gradDispCf := a.Front.RotateMat(gradDisp, a.Point)
	stressCf := a.Front.RotateMat(pt.Stress.Expand(), a.Point)
	strainCf := a.Front.RotateMat(pt.ElasticStrain.Expand(), a.Point)

	dq := tensor.Outer(crackDirection, gradQcf)

	// only row 0 of the auxiliary gradient (derivatives along e1) takes part
	auxDu := tensor.Mat3{pt.AuxGradDisp[0]}

	var t Terms
	t.Stress = auxDu.DoubleContraction(dq.Mul(stressCf))
	t.AuxStress = r3.Dot(gradDispCf.Col(0), dq.Mul(pt.AuxStress).Row(0))
	t.Energy = dq[0][0] * pt.AuxStress.DoubleContraction(strainCf)
	if a.Thermal {
		// TODO: add the d(alpha)/dx term for temperature dependent expansion
		gradTempCf := a.Front.RotateVec(pt.GradTemp, a.Point)
		t.Thermal = q * pt.AuxStress.Trace() * pt.ThermalExpansion * gradTempCf.X
	}
	return t
}

// Raw is the integrand before normalization; it is doubled on a symmetry plane
func (a Accumulator) Raw(q float64, gradQ r3.Vec, pt fields.Point) float64 {
	eq := a.Terms(q, gradQ, pt).Sum()
	if a.SymmetryPlane {
		eq *= 2
	}
	return eq
}

// Normalization is 1 for 2D fronts and the mean length of the segments
// adjacent to the point in 3D
func (a Accumulator) Normalization() float64 {
	if a.TreatAs2D {
		return 1
	}
	return (a.Front.ForwardSegmentLength(a.Point) + a.Front.BackwardSegmentLength(a.Point)) / 2
}

// Evaluate interpolates the nodal weights qNodal with the shape functions of
// fe at qp and returns the normalized integrand
func (a Accumulator) Evaluate(fe *element.FE, qp int, qNodal []float64, pt fields.Point) float64 {
	q := floats.Dot(fe.Phi[qp], qNodal)
	var gradQ r3.Vec
	for n, dphi := range fe.DPhi[qp] {
		gradQ = r3.Add(gradQ, r3.Scale(qNodal[n], dphi))
	}
	return a.Raw(q, gradQ, pt) / a.Normalization()
}
