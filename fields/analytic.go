package fields

import (
	"github.com/notargets/FractureKernel/ana"
	"github.com/notargets/FractureKernel/tensor"
	"gonum.org/v1/gonum/spatial/r3"
)

// Thermal is a uniform temperature gradient with a constant expansion coefficient
type Thermal struct {
	Alpha    float64
	GradTemp r3.Vec
}

// Analytic evaluates crack-tip solutions for both the primary and the
// auxiliary fields. Frame rotates global vectors into the crack frame whose
// origin is Origin; a zero Frame means the identity.
type Analytic struct {
	Primary   ana.CrackTip
	Auxiliary ana.CrackTip
	Origin    r3.Vec
	Frame     tensor.Mat3
	Thermal   *Thermal
}

func (a Analytic) HasThermalExpansion() bool { return a.Thermal != nil }

func (a Analytic) At(_, _ int, x r3.Vec) Point {
	R := a.Frame
	if R == (tensor.Mat3{}) {
		R = tensor.Identity()
	}
	Rt := R.T()
	xl := R.MulVec(r3.Sub(x, a.Origin))

	grad := a.Primary.DisplacementGradient(xl).Rotate(Rt)
	p := Point{
		GradDisp:      [3]r3.Vec{grad.Row(0), grad.Row(1), grad.Row(2)},
		Stress:        tensor.Sym(a.Primary.Stress(xl).Expand().Rotate(Rt)),
		ElasticStrain: tensor.Sym(a.Primary.Strain(xl).Expand().Rotate(Rt)),
		AuxStress:     a.Auxiliary.Stress(xl).Expand(),
		AuxGradDisp:   a.Auxiliary.DisplacementGradient(xl).T(),
	}
	if a.Thermal != nil {
		p.GradTemp = a.Thermal.GradTemp
		p.ThermalExpansion = a.Thermal.Alpha
	}
	return p
}
