package integral

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/notargets/FractureKernel/ana"
	"github.com/notargets/FractureKernel/comm"
	"github.com/notargets/FractureKernel/crackfront"
	"github.com/notargets/FractureKernel/element"
	"github.com/notargets/FractureKernel/fields"
	"github.com/notargets/FractureKernel/mesh"
	"github.com/notargets/FractureKernel/partitions"
	"github.com/notargets/FractureKernel/tensor"
	"github.com/notargets/FractureKernel/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"k8s.io/utils/ptr"
)

var primary = ana.CrackTip{K1: 1.5, K2: 0.7, K3: 1.1, E: youngs, Nu: poisson}

func pureMode(mode ana.Mode) ana.CrackTip {
	o := ana.CrackTip{E: youngs, Nu: poisson}
	switch mode {
	case ana.ModeI:
		o.K1 = primary.K1
	case ana.ModeII:
		o.K2 = primary.K2
	case ana.ModeIII:
		o.K3 = primary.K3
	}
	return o
}

func expectedK(mode ana.Mode) float64 {
	switch mode {
	case ana.ModeI:
		return primary.K1
	case ana.ModeII:
		return primary.K2
	}
	return primary.K3
}

func TestConvergence2D(t *testing.T) {
	modes := []ana.Mode{ana.ModeI, ana.ModeII, ana.ModeIII}
	for _, shape := range []utils.GeometryType{utils.Rectangle, utils.Tri} {
		coarse := newSetup2D(t, shape, 4, 12)
		fine := newSetup2D(t, shape, 12, 36)
		for _, mode := range modes {
			t.Run(fmt.Sprintf("%v/Mode%d", shape, mode), func(t *testing.T) {
				// mixed mode primary fields separate into the mode of the auxiliary field
				provider, kf := modeField(primary, mode)
				cfg := Config{KFactor: kf, RingIndex: 3}
				want := expectedK(mode)

				errCoarse := math.Abs(run(t, cfg, coarse, provider, nil) - want)
				got := run(t, cfg, fine, provider, nil)
				assert.InEpsilon(t, want, got, 5e-3, "mode %d", mode)
				assert.Less(t, math.Abs(got-want), errCoarse, "mode %d", mode)
			})
		}
	}
}

func TestConvergence3D(t *testing.T) {
	s := newSetup3D(t, 10, 32, 4, 1)
	for _, mode := range []ana.Mode{ana.ModeI, ana.ModeII, ana.ModeIII} {
		provider, kf := modeField(pureMode(mode), mode)
		for _, point := range []int{0, 2, 4} {
			cfg := Config{PointIndex: ptr.To(point), KFactor: kf, RingIndex: 2}
			got := run(t, cfg, s, provider, nil)
			assert.InEpsilon(t, expectedK(mode), got, 1e-2, "mode %d point %d", mode, point)
		}
	}

	t.Run("Topology", func(t *testing.T) {
		provider, kf := modeField(pureMode(ana.ModeI), ana.ModeI)
		for _, point := range []int{0, 2, 4} {
			for _, ring := range []int{2, 3, 4} {
				cfg := Config{PointIndex: ptr.To(point), KFactor: kf, RingIndex: ring,
					QFunction: Topology, RingFirst: ptr.To(1)}
				got := run(t, cfg, s, provider, nil)
				assert.InEpsilon(t, primary.K1, got, 1e-2, "point %d ring %d", point, ring)
			}
		}
	})

	t.Run("Tet4", func(t *testing.T) {
		tets := newSetup3DTets(t, 10, 32, 4, 1)
		for _, mode := range []ana.Mode{ana.ModeI, ana.ModeIII} {
			provider, kf := modeField(pureMode(mode), mode)
			cfg := Config{PointIndex: ptr.To(2), KFactor: kf, RingIndex: 2}
			assert.InEpsilon(t, expectedK(mode), run(t, cfg, tets, provider, nil), 2e-2, "mode %d", mode)
		}
	})
}

func TestTopologicalRings(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 16, 36)
	provider, kf := modeField(primary, ana.ModeI)
	for _, ring := range []int{2, 4, 6} {
		cfg := Config{KFactor: kf, RingIndex: ring, QFunction: Topology, RingFirst: ptr.To(1)}
		assert.InEpsilon(t, primary.K1, run(t, cfg, s, provider, nil), 1e-2, "ring %d", ring)
	}
}

func TestPathIndependence(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 12, 36)
	provider, kf := modeField(primary, ana.ModeII)
	var values []float64
	for ring := 1; ring <= 5; ring++ {
		values = append(values, run(t, Config{KFactor: kf, RingIndex: ring}, s, provider, nil))
	}
	for _, v := range values[1:] {
		assert.InEpsilon(t, values[0], v, 5e-3)
	}
}

func TestSymmetryPlaneDoubles(t *testing.T) {
	s := newSetup2D(t, utils.Tri, 6, 16)
	provider, kf := modeField(primary, ana.ModeI)
	cfg := Config{KFactor: kf, RingIndex: 2}
	plain := run(t, cfg, s, provider, nil)

	cfg.SymmetryPlane = ptr.To(1)
	doubled := run(t, cfg, s, provider, nil)
	assert.InEpsilon(t, 2*plain, doubled, 1e-13)
}

func TestRingOffset(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 6, 12)
	provider, kf := modeField(primary, ana.ModeI)
	for r := 1; r <= 5; r++ {
		for _, qf := range []QFunctionType{Geometry, Topology} {
			rec := newRingRecorder(s.front)
			cfg := Config{KFactor: kf, RingIndex: r, QFunction: qf, RingFirst: ptr.To(1)}
			e, err := New(cfg, rec, s.mesh, provider)
			require.NoError(t, err)
			e.InitialSetup()
			require.NoError(t, e.Execute(context.Background()))

			if qf == Geometry {
				assert.Equal(t, map[int]bool{r - 1: true}, rec.geometric)
				assert.Empty(t, rec.topological)
			} else {
				assert.Equal(t, map[int]bool{r: true}, rec.topological)
				assert.Empty(t, rec.geometric)
			}
		}
	}
}

func TestReductionEquivalence(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 8, 24)
	provider, kf := modeField(primary, ana.ModeI)
	cfg := Config{KFactor: kf, RingIndex: 4}
	serial := run(t, cfg, s, provider, nil)

	for _, strategy := range []partitions.PartitionStrategy{
		partitions.BlockPartition, partitions.RoundRobin, partitions.GraphPartition,
	} {
		for _, np := range []int{1, 2, 3, 7} {
			t.Run(strategy.String(), func(t *testing.T) {
				pb := &partitions.PartitionBuilder{
					Mesh:          partitions.NewMeshConnectivity(s.mesh),
					NumPartitions: np,
					Strategy:      strategy,
				}
				layout, err := pb.BuildPartitions()
				require.NoError(t, err)
				assert.InEpsilon(t, serial, run(t, cfg, s, provider, layout), 1e-12)
			})
		}
	}
}

func TestRotationInvariance(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 8, 24)
	provider, kf := modeField(primary, ana.ModeI)
	cfg := Config{KFactor: kf, RingIndex: 3}
	want := run(t, cfg, s, provider, nil)

	// rotate the crack by phi about z and translate it
	phi := 0.6
	c, sn := math.Cos(phi), math.Sin(phi)
	Q := tensor.Mat3{{c, -sn, 0}, {sn, c, 0}, {0, 0, 1}}
	origin := r3.Vec{X: 2, Y: -1}
	m := s.mesh.Transform(func(v r3.Vec) r3.Vec { return r3.Add(Q.MulVec(v), origin) })

	in, out := ringRadii()
	f, err := crackfront.New(crackfront.Options{
		Positions:   []r3.Vec{origin},
		Normal:      Q.MulVec(r3.Vec{Y: 1}),
		Mesh:        m,
		RadiusInner: in,
		RadiusOuter: out,
	})
	require.NoError(t, err)
	require.NoError(t, f.InitialSetup())

	rotated := provider
	rotated.Origin = origin
	rotated.Frame = f.Frame(0)
	got := run(t, cfg, crackSetup{mesh: m, front: f}, rotated, nil)
	assert.InEpsilon(t, want, got, 1e-8)
}

func TestTStress(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 2, 4)
	cfg := Config{KFactor: 2, TStress: true, PoissonsRatio: ptr.To(0.25), RingIndex: 1}

	t.Run("ThreeDimensional", func(t *testing.T) {
		front := stubFront{forward: 1, backward: 1, tangentialStrain: 0.4}
		e, err := New(cfg, front, s.mesh, fields.Constant{})
		require.NoError(t, err)
		e.InitialSetup()
		require.NoError(t, e.Execute(context.Background()))
		v, err := e.GetValue(comm.Serial{})
		require.NoError(t, err)
		assert.InDelta(t, 2*0.25*0.4, v, 1e-15)
	})
	t.Run("TwoDimensional", func(t *testing.T) {
		front := stubFront{twoD: true, tangentialStrain: 0.4}
		e, err := New(cfg, front, s.mesh, fields.Constant{})
		require.NoError(t, err)
		e.InitialSetup()
		require.NoError(t, e.Execute(context.Background()))
		v, err := e.GetValue(comm.Serial{})
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})
}

func TestAccumulator(t *testing.T) {
	pt := fields.Point{
		GradDisp:         [3]r3.Vec{{X: 4}},
		Stress:           tensor.SymmTensor{XX: 2},
		ElasticStrain:    tensor.SymmTensor{XX: 0.5},
		AuxStress:        tensor.Identity(),
		AuxGradDisp:      tensor.Mat3{{3, 0, 0}, {7, 7, 7}},
		GradTemp:         r3.Vec{X: 0.5, Y: 9},
		ThermalExpansion: 2,
	}
	gradQ := r3.Vec{X: 1}

	t.Run("Terms", func(t *testing.T) {
		a := Accumulator{Front: stubFront{twoD: true}}
		terms := a.Terms(0.5, gradQ, pt)
		assert.Equal(t, 6.0, terms.Stress)
		assert.Equal(t, 4.0, terms.AuxStress)
		assert.Equal(t, 0.5, terms.Energy)
		assert.Equal(t, 0.0, terms.Thermal)
		assert.Equal(t, 9.5, terms.Sum())
	})
	t.Run("Thermal", func(t *testing.T) {
		a := Accumulator{Front: stubFront{twoD: true}, Thermal: true}
		assert.Equal(t, 0.5*3*2*0.5, a.Terms(0.5, gradQ, pt).Thermal)
		assert.Equal(t, 11.0, a.Raw(0.5, gradQ, pt))
	})
	t.Run("ThermalOffIsZero", func(t *testing.T) {
		a := Accumulator{Front: stubFront{twoD: true}}
		points := []fields.Point{
			pt,
			{Stress: tensor.SymmTensor{XX: -3, YY: 1, XY: 2}, AuxStress: tensor.Mat3{{1, 2, 0}, {2, 5, 0}, {0, 0, 4}},
				GradTemp: r3.Vec{X: 100}, ThermalExpansion: 1e-5},
			{GradDisp: [3]r3.Vec{{X: 1, Y: 2}, {X: -1, Z: 3}}, ElasticStrain: tensor.SymmTensor{ZZ: 0.1},
				AuxStress: tensor.Identity(), GradTemp: r3.Vec{X: -7, Z: 2}, ThermalExpansion: 3},
			{AuxStress: tensor.Mat3{{-2, 0, 0}, {0, -2, 0}, {0, 0, -2}}, GradTemp: r3.Vec{X: 1}, ThermalExpansion: 1},
		}
		for i, p := range points {
			for _, q := range []float64{0.25, 1} {
				assert.Equal(t, 0.0, a.Terms(q, r3.Vec{X: 1, Y: -2}, p).Thermal, "point %d q %g", i, q)
			}
		}
	})
	t.Run("SymmetryPlane", func(t *testing.T) {
		a := Accumulator{Front: stubFront{twoD: true}, SymmetryPlane: true}
		assert.Equal(t, 19.0, a.Raw(0.5, gradQ, pt))
	})
	t.Run("Normalization", func(t *testing.T) {
		front := stubFront{forward: 3, backward: 5}
		assert.Equal(t, 1.0, Accumulator{Front: front, TreatAs2D: true}.Normalization())
		assert.Equal(t, 4.0, Accumulator{Front: front}.Normalization())
	})
}

func TestThermalCoupling(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 8, 24)
	provider, kf := modeField(pureMode(ana.ModeI), ana.ModeI)
	cfg := Config{KFactor: kf, RingIndex: 3}
	isothermal := run(t, cfg, s, provider, nil)

	withGradient := func(alpha float64, grad r3.Vec) fields.Analytic {
		p := provider
		p.Thermal = &fields.Thermal{Alpha: alpha, GradTemp: grad}
		return p
	}

	t.Run("Uncoupled", func(t *testing.T) {
		assert.Equal(t, isothermal, run(t, cfg, s, withGradient(1e-3, r3.Vec{X: 50}), nil))
	})

	cfg.Temperature = true
	t.Run("NormalGradient", func(t *testing.T) {
		// only the gradient along the crack extension contributes
		assert.InDelta(t, isothermal, run(t, cfg, s, withGradient(1e-3, r3.Vec{Y: 50}), nil), 1e-12)
	})
	t.Run("Linear", func(t *testing.T) {
		d1 := run(t, cfg, s, withGradient(1e-3, r3.Vec{X: 50}), nil) - isothermal
		d2 := run(t, cfg, s, withGradient(2e-3, r3.Vec{X: 50}), nil) - isothermal
		d3 := run(t, cfg, s, withGradient(1e-3, r3.Vec{X: -100}), nil) - isothermal
		require.Greater(t, math.Abs(d1), 1e-6)
		assert.InEpsilon(t, 2*d1, d2, 1e-9)
		assert.InEpsilon(t, -2*d1, d3, 1e-9)
	})
}

func TestCoordinateFactor(t *testing.T) {
	// one unit square at 1 ≤ x ≤ 2; q = 1 leaves only the thermal term,
	// 1 × tr(I) × 2 × 0.5 = 3 at every point
	m := &mesh.Mesh{
		Dim:          2,
		Vertices:     []r3.Vec{{X: 1}, {X: 2}, {X: 2, Y: 1}, {X: 1, Y: 1}},
		EtoV:         [][]int{{0, 1, 2, 3}},
		ElementTypes: []utils.GeometryType{utils.Rectangle},
	}
	provider := fields.Constant{
		Value:   fields.Point{AuxStress: tensor.Identity(), GradTemp: r3.Vec{X: 0.5}, ThermalExpansion: 2},
		Thermal: true,
	}
	tests := []struct {
		coord element.CoordSystem
		want  float64
	}{
		{element.Cartesian, 3},
		// 3 × ∫ 2πx dx dy over the square
		{element.Axisymmetric, 3 * 2 * math.Pi * 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.coord.String(), func(t *testing.T) {
			cfg := Config{KFactor: 1, Temperature: true, CoordSystem: tt.coord}
			v, err := Run(context.Background(), cfg, stubFront{twoD: true}, m, provider, nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v, 1e-12)
		})
	}
}

func TestConfigErrors(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 2, 4)
	provider, kf := modeField(primary, ana.ModeI)

	tests := []struct {
		name     string
		cfg      Config
		provider fields.Provider
		want     error
	}{
		{"ThermalExpansionMissing", Config{KFactor: kf, Temperature: true}, provider, ErrThermalExpansionMissing},
		{"RingFirstRequired", Config{KFactor: kf, QFunction: Topology}, provider, ErrRingFirstRequired},
		{"RingFirstMismatch", Config{KFactor: kf, QFunction: Topology, RingFirst: ptr.To(2)}, provider, ErrRingFirstMismatch},
		{"PoissonsRatioRequired", Config{KFactor: kf, TStress: true}, provider, ErrPoissonsRatioRequired},
		{"KFactorRequired", Config{}, provider, ErrKFactorRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, s.front, s.mesh, tt.provider)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("GeometryIgnoresRingFirst", func(t *testing.T) {
		_, err := New(Config{KFactor: kf, RingFirst: ptr.To(7)}, s.front, s.mesh, provider)
		assert.NoError(t, err)
	})
	t.Run("ThermalExpansionAvailable", func(t *testing.T) {
		thermal := provider
		thermal.Thermal = &fields.Thermal{Alpha: 1e-5, GradTemp: r3.Vec{X: 1}}
		_, err := New(Config{KFactor: kf, Temperature: true}, s.front, s.mesh, thermal)
		assert.NoError(t, err)
	})
	t.Run("InvalidMesh", func(t *testing.T) {
		bad := &mesh.Mesh{Dim: 2, Vertices: s.mesh.Vertices, EtoV: s.mesh.EtoV,
			ElementTypes: s.mesh.ElementTypes[1:]}
		_, err := New(Config{KFactor: kf, RingIndex: 1}, s.front, bad, provider)
		assert.Error(t, err)
	})
	t.Run("NotInitialized", func(t *testing.T) {
		e, err := New(Config{KFactor: kf, RingIndex: 1}, s.front, s.mesh, provider)
		require.NoError(t, err)
		_, err = e.GetValue(comm.Serial{})
		assert.ErrorIs(t, err, ErrNotInitialized)
		assert.ErrorIs(t, e.Execute(context.Background()), ErrNotInitialized)
	})
}

func TestRunAbortsOnElementError(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 4, 8)
	provider, kf := modeField(primary, ana.ModeI)

	// collapse one element inside the active ring
	bad := &mesh.Mesh{Dim: 2, Vertices: append([]r3.Vec{}, s.mesh.Vertices...), EtoV: s.mesh.EtoV,
		ElementTypes: s.mesh.ElementTypes}
	k := 3 * s.annulus.NRadial
	for _, n := range bad.EtoV[k] {
		bad.Vertices[n] = bad.Vertices[bad.EtoV[k][0]]
	}
	pb := &partitions.PartitionBuilder{Mesh: partitions.NewMeshConnectivity(s.mesh), NumPartitions: 3}
	layout, err := pb.BuildPartitions()
	require.NoError(t, err)

	_, err = Run(context.Background(), Config{KFactor: kf, RingIndex: 5}, s.front, bad, provider, layout)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotInitialized))
}

func TestSweep(t *testing.T) {
	s := newSetup3D(t, 8, 24, 4, 1)
	provider, kf := modeField(pureMode(ana.ModeI), ana.ModeI)
	values, err := Sweep(context.Background(), Config{KFactor: kf}, s.front, s.mesh, provider, nil,
		[]int{1, 2, 3}, []int{2, 3})
	require.NoError(t, err)
	require.Len(t, values, 3)
	for _, row := range values {
		require.Len(t, row, 2)
		for _, v := range row {
			assert.InEpsilon(t, primary.K1, v, 2e-2)
		}
	}
}

func TestMetrics(t *testing.T) {
	s := newSetup2D(t, utils.Rectangle, 4, 8)
	provider, kf := modeField(primary, ana.ModeI)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	_, err := Run(context.Background(), Config{KFactor: kf, RingIndex: 1}, s.front, s.mesh, provider, nil,
		WithMetrics(m))
	require.NoError(t, err)

	integrated := testutil.ToFloat64(m.Elements)
	skipped := testutil.ToFloat64(m.SkippedElements)
	assert.Equal(t, float64(s.mesh.NumElements()), integrated+skipped)
	assert.Greater(t, integrated, 0.0)
	assert.Greater(t, skipped, 0.0)
	assert.Equal(t, 4*integrated, testutil.ToFloat64(m.QuadraturePoints))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reductions))
}

func TestParseQFunctionType(t *testing.T) {
	q, err := ParseQFunctionType("Topology")
	require.NoError(t, err)
	assert.Equal(t, Topology, q)
	assert.Equal(t, "Geometry", Geometry.String())
	_, err = ParseQFunctionType("rings")
	assert.Error(t, err)
}
