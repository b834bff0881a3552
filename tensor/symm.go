package tensor

// SymmTensor stores the six independent components of a symmetric second
// order tensor
type SymmTensor struct {
	XX, YY, ZZ float64
	XY, YZ, XZ float64
}

// Expand returns the full matrix, mirroring the off-diagonal components
func (s SymmTensor) Expand() Mat3 {
	return Mat3{
		{s.XX, s.XY, s.XZ},
		{s.XY, s.YY, s.YZ},
		{s.XZ, s.YZ, s.ZZ},
	}
}

func (s SymmTensor) Trace() float64 { return s.XX + s.YY + s.ZZ }

// Sym returns the symmetric part ½(a + aᵀ)
func Sym(a Mat3) SymmTensor {
	return SymmTensor{
		XX: a[0][0],
		YY: a[1][1],
		ZZ: a[2][2],
		XY: 0.5 * (a[0][1] + a[1][0]),
		YZ: 0.5 * (a[1][2] + a[2][1]),
		XZ: 0.5 * (a[0][2] + a[2][0]),
	}
}
