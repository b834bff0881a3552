package element

// Natural coordinates:
//   Tri3, Tet4:   r,s,t ∈ [0,1] with r+s+t ≤ 1
//   Quad4, Hex8:  r,s,t ∈ [-1,1]

func tri3(S []float64, dSdR [][]float64, r []float64) {
	S[0] = 1.0 - r[0] - r[1]
	S[1] = r[0]
	S[2] = r[1]
	if dSdR == nil {
		return
	}
	dSdR[0][0], dSdR[0][1] = -1, -1
	dSdR[1][0], dSdR[1][1] = 1, 0
	dSdR[2][0], dSdR[2][1] = 0, 1
}

func quad4(S []float64, dSdR [][]float64, r []float64) {
	x, y := r[0], r[1]
	S[0] = (1 - x) * (1 - y) / 4
	S[1] = (1 + x) * (1 - y) / 4
	S[2] = (1 + x) * (1 + y) / 4
	S[3] = (1 - x) * (1 + y) / 4
	if dSdR == nil {
		return
	}
	dSdR[0][0], dSdR[0][1] = -(1-y)/4, -(1-x)/4
	dSdR[1][0], dSdR[1][1] = (1-y)/4, -(1+x)/4
	dSdR[2][0], dSdR[2][1] = (1+y)/4, (1+x)/4
	dSdR[3][0], dSdR[3][1] = -(1+y)/4, (1-x)/4
}

func tet4(S []float64, dSdR [][]float64, r []float64) {
	S[0] = 1.0 - r[0] - r[1] - r[2]
	S[1] = r[0]
	S[2] = r[1]
	S[3] = r[2]
	if dSdR == nil {
		return
	}
	for j := 0; j < 3; j++ {
		dSdR[0][j] = -1
		for n := 1; n < 4; n++ {
			dSdR[n][j] = 0
		}
		dSdR[j+1][j] = 1
	}
}

// hex8 nodes: bottom face (t=-1) counter clockwise, then top face (t=+1)
var hex8Signs = [8][3]float64{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

func hex8(S []float64, dSdR [][]float64, r []float64) {
	for n, sg := range hex8Signs {
		a := 1 + sg[0]*r[0]
		b := 1 + sg[1]*r[1]
		c := 1 + sg[2]*r[2]
		S[n] = a * b * c / 8
		if dSdR != nil {
			dSdR[n][0] = sg[0] * b * c / 8
			dSdR[n][1] = sg[1] * a * c / 8
			dSdR[n][2] = sg[2] * a * b / 8
		}
	}
}
