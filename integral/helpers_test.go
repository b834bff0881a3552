package integral

import (
	"context"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/notargets/FractureKernel/ana"
	"github.com/notargets/FractureKernel/crackfront"
	"github.com/notargets/FractureKernel/fields"
	"github.com/notargets/FractureKernel/logging"
	"github.com/notargets/FractureKernel/mesh"
	"github.com/notargets/FractureKernel/partitions"
	"github.com/notargets/FractureKernel/tensor"
	"github.com/notargets/FractureKernel/utils"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	youngs  = 1000.0
	poisson = 0.3
)

// crackSetup is a structured mesh around a straight crack front with five
// geometric rings; the q-function tapers between 0.2 and 0.35 + 0.1 k
type crackSetup struct {
	annulus mesh.Annulus
	mesh    *mesh.Mesh
	front   *crackfront.Front
}

func ringRadii() (in, out []float64) {
	for k := 0; k < 5; k++ {
		in = append(in, 0.2)
		out = append(out, 0.35+0.1*float64(k))
	}
	return in, out
}

func newSetup2D(t *testing.T, shape utils.GeometryType, nr, nth int) crackSetup {
	t.Helper()
	a := mesh.Annulus{RInner: 0.05, ROuter: 1, NRadial: nr, NTheta: nth, Shape: shape}
	m, err := mesh.NewAnnulus2D(a)
	require.NoError(t, err)
	in, out := ringRadii()
	f, err := crackfront.New(crackfront.Options{
		Positions:   []r3.Vec{{}},
		Mesh:        m,
		RadiusInner: in,
		RadiusOuter: out,
		FrontNodes:  [][]int{a.InnerNodes(0)},
		RingFirst:   1,
	})
	require.NoError(t, err)
	require.NoError(t, f.InitialSetup())
	return crackSetup{annulus: a, mesh: m, front: f}
}

func newSetup3D(t *testing.T, nr, nth, nz int, length float64) crackSetup {
	t.Helper()
	return extrudedSetup(t, nr, nth, nz, length, false)
}

// newSetup3DTets is newSetup3D with every hexahedron split into tetrahedra
func newSetup3DTets(t *testing.T, nr, nth, nz int, length float64) crackSetup {
	t.Helper()
	return extrudedSetup(t, nr, nth, nz, length, true)
}

func extrudedSetup(t *testing.T, nr, nth, nz int, length float64, tets bool) crackSetup {
	t.Helper()
	a := mesh.Annulus{RInner: 0.05, ROuter: 1, NRadial: nr, NTheta: nth}
	m, err := mesh.NewAnnularCylinder(a, nz, length)
	require.NoError(t, err)
	if tets {
		m = mesh.SplitHexes(m)
	}
	in, out := ringRadii()
	frontNodes := make([][]int, nz+1)
	for l := range frontNodes {
		frontNodes[l] = a.InnerNodes(l)
	}
	f, err := crackfront.New(crackfront.Options{
		Positions:   mesh.FrontPositions(nz, length),
		Mesh:        m,
		RadiusInner: in,
		RadiusOuter: out,
		FrontNodes:  frontNodes,
		RingFirst:   1,
	})
	require.NoError(t, err)
	require.NoError(t, f.InitialSetup())
	return crackSetup{annulus: a, mesh: m, front: f}
}

// modeField returns the analytic fields of primary with the unit auxiliary
// field of mode, and the matching K factor
func modeField(primary ana.CrackTip, mode ana.Mode) (fields.Analytic, float64) {
	return fields.Analytic{Primary: primary, Auxiliary: primary.Unit(mode)},
		ana.KFactor(mode, primary.E, primary.Nu, primary.PlaneStress)
}

func run(t *testing.T, cfg Config, s crackSetup, provider fields.Provider,
	layout *partitions.PartitionLayout) float64 {
	t.Helper()
	ctx := logr.NewContext(context.Background(), logging.NewTestLogger())
	v, err := Run(ctx, cfg, s.front, s.mesh, provider, layout)
	require.NoError(t, err)
	return v
}

// ringRecorder records the ring ordinals queried from a crack front
type ringRecorder struct {
	*crackfront.Front
	mu          sync.Mutex
	geometric   map[int]bool
	topological map[int]bool
}

func newRingRecorder(f *crackfront.Front) *ringRecorder {
	return &ringRecorder{Front: f, geometric: map[int]bool{}, topological: map[int]bool{}}
}

func (r *ringRecorder) QWeight(point, ring, node int) float64 {
	r.mu.Lock()
	r.geometric[ring] = true
	r.mu.Unlock()
	return r.Front.QWeight(point, ring, node)
}

func (r *ringRecorder) TopologicalQWeight(point, ring, node int) float64 {
	r.mu.Lock()
	r.topological[ring] = true
	r.mu.Unlock()
	return r.Front.TopologicalQWeight(point, ring, node)
}

// stubFront is a crack front with fixed geometry and identity frames
type stubFront struct {
	twoD              bool
	forward, backward float64
	tangentialStrain  float64
}

func (s stubFront) IsTwoDimensional() bool { return s.twoD }

func (s stubFront) RotateVec(v r3.Vec, _ int) r3.Vec { return v }

func (s stubFront) RotateMat(m tensor.Mat3, _ int) tensor.Mat3 { return m }

func (s stubFront) ForwardSegmentLength(int) float64 { return s.forward }

func (s stubFront) BackwardSegmentLength(int) float64 { return s.backward }

func (s stubFront) TangentialStrain(int) float64 { return s.tangentialStrain }

func (s stubFront) QWeight(_, _, _ int) float64 { return 1 }

func (s stubFront) TopologicalQWeight(_, _, _ int) float64 { return 1 }
