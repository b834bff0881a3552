// Package tensor provides the small fixed-size matrix types used to contract
// stress, strain and displacement-gradient fields at a quadrature point.
package tensor

import "gonum.org/v1/gonum/spatial/r3"

// Mat3 is a dense 3×3 matrix, stored row-major
type Mat3 [3][3]float64

// Identity returns the 3×3 identity matrix
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// FromRows assembles a matrix whose rows are the given vectors
func FromRows(r0, r1, r2 r3.Vec) Mat3 {
	return Mat3{
		{r0.X, r0.Y, r0.Z},
		{r1.X, r1.Y, r1.Z},
		{r2.X, r2.Y, r2.Z},
	}
}

// Outer returns the dyadic product u ⊗ v, (u ⊗ v)_ij = u_i v_j
func Outer(u, v r3.Vec) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = Component(u, i) * Component(v, j)
		}
	}
	return m
}

// Row returns row i as a vector
func (a Mat3) Row(i int) r3.Vec {
	return r3.Vec{X: a[i][0], Y: a[i][1], Z: a[i][2]}
}

// Col returns column j as a vector
func (a Mat3) Col(j int) r3.Vec {
	return r3.Vec{X: a[0][j], Y: a[1][j], Z: a[2][j]}
}

// T returns the transpose
func (a Mat3) T() Mat3 {
	var t Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = a[j][i]
		}
	}
	return t
}

// Mul returns the matrix product a·b
func (a Mat3) Mul(b Mat3) Mat3 {
	var c Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return c
}

// MulVec returns a·v
func (a Mat3) MulVec(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: a[0][0]*v.X + a[0][1]*v.Y + a[0][2]*v.Z,
		Y: a[1][0]*v.X + a[1][1]*v.Y + a[1][2]*v.Z,
		Z: a[2][0]*v.X + a[2][1]*v.Y + a[2][2]*v.Z,
	}
}

// DoubleContraction returns a : b = Σ_ij a_ij b_ij
func (a Mat3) DoubleContraction(b Mat3) float64 {
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += a[i][j] * b[i][j]
		}
	}
	return s
}

func (a Mat3) Trace() float64 { return a[0][0] + a[1][1] + a[2][2] }

// Rotate returns R·a·Rᵀ, the change of basis of a second order tensor
func (a Mat3) Rotate(R Mat3) Mat3 {
	return R.Mul(a).Mul(R.T())
}

// Component returns v_i for i in {0,1,2}
func Component(v r3.Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("tensor: vector component out of range")
}
