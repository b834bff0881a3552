package element

import (
	"fmt"
	"math"

	"github.com/notargets/FractureKernel/utils"
	"gonum.org/v1/gonum/mat"
)

// Rule is a quadrature rule in natural coordinates
type Rule struct {
	Points  [][]float64 // [nqp][gndim]
	Weights []float64   // [nqp]
}

// NumPoints returns the number of quadrature points
func (q Rule) NumPoints() int { return len(q.Weights) }

// JacobiGQ computes the N+1 point Gauss quadrature for the Jacobi weight
// (1-x)^alpha (1+x)^beta on [-1,1], using the Golub-Welsch eigenvalue method
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	if N == 0 {
		return []float64{-(alpha - beta) / (alpha + beta + 2.)}, []float64{Gamma0(alpha, beta)}
	}

	// recurrence coefficients of the symmetric tridiagonal Jacobi matrix
	n := N + 1
	JJ := mat.NewSymDense(n, nil)
	fac := beta*beta - alpha*alpha
	for i := 0; i < n; i++ {
		h := 2*float64(i) + alpha + beta
		if i == 0 && alpha+beta < 1e-15 {
			JJ.SetSym(0, 0, 0)
		} else {
			JJ.SetSym(i, i, fac/(h*(h+2.)))
		}
		if i < N {
			ip1 := float64(i + 1)
			JJ.SetSym(i, i+1, 2.0/(h+2.0)*math.Sqrt(
				ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/(h+1)/(h+3)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	W = make([]float64, n)
	g0 := Gamma0(alpha, beta)
	for i := range W {
		v := vecs.At(0, i)
		W[i] = v * v * g0
	}
	return X, W
}

// Gamma0 is the integral of the Jacobi weight over [-1,1]
func Gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// pointsFor returns the number of 1D Gauss points exact for polynomials of
// the given order
func pointsFor(order int) int {
	if order < 1 {
		order = 1
	}
	return order/2 + 1
}

// NewRule returns a quadrature rule on the reference element of the given
// shape that integrates polynomials up to order exactly
func NewRule(gt utils.GeometryType, order int) (Rule, error) {
	n := pointsFor(order)
	switch gt {
	case utils.Line:
		x, w := JacobiGQ(0, 0, n-1)
		q := Rule{}
		for i := range x {
			q.Points = append(q.Points, []float64{x[i]})
			q.Weights = append(q.Weights, w[i])
		}
		return q, nil
	case utils.Rectangle:
		x, w := JacobiGQ(0, 0, n-1)
		q := Rule{}
		for j := range x {
			for i := range x {
				q.Points = append(q.Points, []float64{x[i], x[j]})
				q.Weights = append(q.Weights, w[i]*w[j])
			}
		}
		return q, nil
	case utils.Hex:
		x, w := JacobiGQ(0, 0, n-1)
		q := Rule{}
		for k := range x {
			for j := range x {
				for i := range x {
					q.Points = append(q.Points, []float64{x[i], x[j], x[k]})
					q.Weights = append(q.Weights, w[i]*w[j]*w[k])
				}
			}
		}
		return q, nil
	case utils.Tri:
		return collapsedTri(n + 1), nil
	case utils.Tet:
		return collapsedTet(n + 1), nil
	}
	return Rule{}, fmt.Errorf("no quadrature rule for geometry %v", gt)
}

// collapsedTri maps a Gauss-Legendre × Gauss-Jacobi(1,0) square rule onto
// the unit triangle:
//
//	r = (1+a)(1-b)/4, s = (1+b)/2, dr ds = (1-b)/8 da db
func collapsedTri(n int) Rule {
	a, wa := JacobiGQ(0, 0, n-1)
	b, wb := JacobiGQ(1, 0, n-1)
	q := Rule{}
	for j := range b {
		for i := range a {
			q.Points = append(q.Points, []float64{
				(1 + a[i]) * (1 - b[j]) / 4,
				(1 + b[j]) / 2,
			})
			q.Weights = append(q.Weights, wa[i]*wb[j]/8)
		}
	}
	return q
}

// collapsedTet maps a Gauss-Legendre × Gauss-Jacobi(1,0) × Gauss-Jacobi(2,0)
// cube rule onto the unit tetrahedron
func collapsedTet(n int) Rule {
	a, wa := JacobiGQ(0, 0, n-1)
	b, wb := JacobiGQ(1, 0, n-1)
	c, wc := JacobiGQ(2, 0, n-1)
	q := Rule{}
	for k := range c {
		for j := range b {
			for i := range a {
				q.Points = append(q.Points, []float64{
					(1 + a[i]) * (1 - b[j]) * (1 - c[k]) / 8,
					(1 + b[j]) * (1 - c[k]) / 4,
					(1 + c[k]) / 2,
				})
				q.Weights = append(q.Weights, wa[i]*wb[j]*wc[k]/64)
			}
		}
	}
	return q
}
