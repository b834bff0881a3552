package element

import (
	"fmt"
	"math"

	"github.com/notargets/FractureKernel/tensor"
	"github.com/notargets/FractureKernel/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinDet is the minimum |det(dx/dR)| accepted for an element mapping
const MinDet = 1.0e-14

// FE holds first order Lagrange shape functions attached to a quadrature
// rule. After Reinit it stores, for every quadrature point, the shape
// function values, their physical gradients, the Jacobian weights and the
// physical coordinates. An FE is scratch space and must not be shared
// between goroutines.
type FE struct {
	Ref  *ReferenceElement
	Rule Rule

	Phi  [][]float64 // [nqp][nverts] shape functions
	DPhi [][]r3.Vec  // [nqp][nverts] dS/dx
	JxW  []float64   // [nqp] |det(dx/dR)| × quadrature weight
	Xq   []r3.Vec    // [nqp] physical coordinates

	dSdR [][]float64 // [nverts][gndim]
	dxdR *mat.Dense  // [gndim][gndim]
	dRdx *mat.Dense  // [gndim][gndim]
}

// NewFE allocates the first order FE of a shape with a quadrature rule
// exact up to the given polynomial order
func NewFE(gt utils.GeometryType, order int) (*FE, error) {
	ref, err := GetReferenceElement(gt)
	if err != nil {
		return nil, err
	}
	rule, err := NewRule(gt, order)
	if err != nil {
		return nil, err
	}
	nqp, nv, gnd := rule.NumPoints(), ref.Nverts, ref.Gndim()
	o := &FE{
		Ref:  ref,
		Rule: rule,
		Phi:  make([][]float64, nqp),
		DPhi: make([][]r3.Vec, nqp),
		JxW:  make([]float64, nqp),
		Xq:   make([]r3.Vec, nqp),
		dSdR: make([][]float64, nv),
		dxdR: mat.NewDense(gnd, gnd, nil),
		dRdx: mat.NewDense(gnd, gnd, nil),
	}
	for qp := 0; qp < nqp; qp++ {
		o.Phi[qp] = make([]float64, nv)
		o.DPhi[qp] = make([]r3.Vec, nv)
	}
	for n := range o.dSdR {
		o.dSdR[n] = make([]float64, gnd)
	}
	return o, nil
}

// NumPoints returns the number of quadrature points
func (o *FE) NumPoints() int { return o.Rule.NumPoints() }

// Reinit computes S, dS/dx, JxW and the physical coordinates at all
// quadrature points for an element with vertex coordinates x. Two
// dimensional elements use the X and Y coordinates only.
func (o *FE) Reinit(x []r3.Vec) error {
	nv, gnd := o.Ref.Nverts, o.Ref.Gndim()
	if len(x) != nv {
		return fmt.Errorf("%s needs %d vertices, got %d", o.Ref.Name, nv, len(x))
	}
	for qp, r := range o.Rule.Points {
		o.Ref.Func(o.Phi[qp], o.dSdR, r)

		// dxdR := sum_n x * dSdR  =>  dx_i/dR_j := sum_n x^n_i * dS^n/dR_j
		var xq r3.Vec
		for n := 0; n < nv; n++ {
			xq = r3.Add(xq, r3.Scale(o.Phi[qp][n], x[n]))
		}
		o.Xq[qp] = xq
		for i := 0; i < gnd; i++ {
			for j := 0; j < gnd; j++ {
				var v float64
				for n := 0; n < nv; n++ {
					v += tensor.Component(x[n], i) * o.dSdR[n][j]
				}
				o.dxdR.Set(i, j, v)
			}
		}

		det := mat.Det(o.dxdR)
		if math.Abs(det) < MinDet {
			return fmt.Errorf("%s: det(dx/dR) = %g is below the minimum %g", o.Ref.Name, det, MinDet)
		}
		if err := o.dRdx.Inverse(o.dxdR); err != nil {
			return fmt.Errorf("%s: cannot invert dx/dR: %w", o.Ref.Name, err)
		}
		o.JxW[qp] = math.Abs(det) * o.Rule.Weights[qp]

		// G == dSdx := dSdR * dRdx
		for n := 0; n < nv; n++ {
			var g [3]float64
			for j := 0; j < gnd; j++ {
				for k := 0; k < gnd; k++ {
					g[j] += o.dSdR[n][k] * o.dRdx.At(k, j)
				}
			}
			o.DPhi[qp][n] = r3.Vec{X: g[0], Y: g[1], Z: g[2]}
		}
	}
	return nil
}
