package crackfront

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/FractureKernel/mesh"
	"github.com/notargets/FractureKernel/tensor"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotSetUp is returned when the front is queried before InitialSetup
var ErrNotSetUp = errors.New("crack front has not been set up")

// Options configures a Front
type Options struct {
	// Positions are the ordered points of the front. A single point is a 2D
	// crack tip.
	Positions []r3.Vec
	// Normal is the crack plane normal; defaults to +y
	Normal r3.Vec
	// Tangent of a single point front; defaults to +z
	Tangent r3.Vec
	// TreatAs2D forces the 2D classification of a multi-point front
	TreatAs2D bool

	// Mesh provides node coordinates and connectivity for the q-functions
	Mesh *mesh.Mesh

	// RadiusInner and RadiusOuter, indexed by ring ordinal, bound the
	// geometric rings: q = 1 inside RadiusInner, 0 outside RadiusOuter
	RadiusInner []float64
	RadiusOuter []float64

	// FrontNodes, indexed by point, are the mesh nodes the topological rings
	// grow from. RingFirst is the innermost topological ring.
	FrontNodes [][]int
	RingFirst  int

	// StrainAt samples the strain at a front position, used for the
	// tangential strain. Nil means zero tangential strain.
	StrainAt func(x r3.Vec) tensor.SymmTensor
}

// Front is a crack front built from an ordered point list
type Front struct {
	opts Options

	setUp     bool
	treatAs2D bool
	frames    []tensor.Mat3 // rows: e1 (extension), e2 (normal), e3 (tangent)
	forward   []float64
	backward  []float64
	tangStrn  []float64
	layers    [][]int // [point][node] topological layer, -1 if unreachable
}

// New validates the options and returns a front that still needs InitialSetup
func New(opts Options) (*Front, error) {
	if len(opts.Positions) == 0 {
		return nil, fmt.Errorf("crack front needs at least one point")
	}
	if opts.Mesh == nil {
		return nil, fmt.Errorf("crack front needs a mesh")
	}
	if err := opts.Mesh.Validate(); err != nil {
		return nil, fmt.Errorf("crack front mesh: %w", err)
	}
	if len(opts.RadiusInner) != len(opts.RadiusOuter) {
		return nil, fmt.Errorf("%d inner radii for %d outer radii",
			len(opts.RadiusInner), len(opts.RadiusOuter))
	}
	for r := range opts.RadiusInner {
		if opts.RadiusInner[r] < 0 || opts.RadiusOuter[r] <= opts.RadiusInner[r] {
			return nil, fmt.Errorf("ring %d: invalid radii [%g, %g]", r, opts.RadiusInner[r], opts.RadiusOuter[r])
		}
	}
	if opts.FrontNodes != nil && len(opts.FrontNodes) != len(opts.Positions) {
		return nil, fmt.Errorf("%d front node sets for %d points", len(opts.FrontNodes), len(opts.Positions))
	}
	if opts.Normal == (r3.Vec{}) {
		opts.Normal = r3.Vec{Y: 1}
	}
	if opts.Tangent == (r3.Vec{}) {
		opts.Tangent = r3.Vec{Z: 1}
	}
	return &Front{opts: opts}, nil
}

// NumPoints returns the number of points on the front
func (f *Front) NumPoints() int { return len(f.opts.Positions) }

// NumRings returns the number of geometric rings
func (f *Front) NumRings() int { return len(f.opts.RadiusInner) }

// RingFirst returns the innermost topological ring
func (f *Front) RingFirst() int { return f.opts.RingFirst }

// Position returns the coordinates of point
func (f *Front) Position(point int) r3.Vec { return f.opts.Positions[point] }

// Frame returns the rotation from global to local coordinates at point
func (f *Front) Frame(point int) tensor.Mat3 { return f.frames[point] }

// InitialSetup classifies the front, builds the local frames, segment
// lengths and tangential strains, and the topological node layers. It must
// complete before any integral is evaluated.
func (f *Front) InitialSetup() error {
	pos := f.opts.Positions
	n := len(pos)
	f.treatAs2D = n == 1 || f.opts.TreatAs2D || f.opts.Mesh.Dim == 2

	f.frames = make([]tensor.Mat3, n)
	f.forward = make([]float64, n)
	f.backward = make([]float64, n)
	for i := range pos {
		t := f.opts.Tangent
		if n > 1 && !f.treatAs2D {
			lo, hi := max(i-1, 0), min(i+1, n-1)
			t = r3.Sub(pos[hi], pos[lo])
		}
		if r3.Norm(t) == 0 {
			return fmt.Errorf("point %d: degenerate front tangent", i)
		}
		e3 := r3.Unit(t)
		e2 := r3.Sub(f.opts.Normal, r3.Scale(r3.Dot(f.opts.Normal, e3), e3))
		if r3.Norm(e2) < 1e-12 {
			return fmt.Errorf("point %d: crack plane normal is parallel to the front", i)
		}
		e2 = r3.Unit(e2)
		e1 := r3.Cross(e2, e3)
		f.frames[i] = tensor.FromRows(e1, e2, e3)

		if i+1 < n {
			f.forward[i] = r3.Norm(r3.Sub(pos[i+1], pos[i]))
		}
		if i > 0 {
			f.backward[i] = r3.Norm(r3.Sub(pos[i], pos[i-1]))
		}
	}

	f.tangStrn = make([]float64, n)
	if f.opts.StrainAt != nil {
		for i := range pos {
			local := f.opts.StrainAt(pos[i]).Expand().Rotate(f.frames[i])
			f.tangStrn[i] = local[2][2]
		}
	}

	if f.opts.FrontNodes != nil {
		f.layers = nodeLayers(f.opts.Mesh, f.opts.FrontNodes)
	}
	f.setUp = true
	return nil
}

func (f *Front) IsTwoDimensional() bool {
	f.mustBeSetUp()
	return f.treatAs2D
}

func (f *Front) RotateVec(v r3.Vec, point int) r3.Vec {
	f.mustBeSetUp()
	return f.frames[point].MulVec(v)
}

func (f *Front) RotateMat(m tensor.Mat3, point int) tensor.Mat3 {
	f.mustBeSetUp()
	return m.Rotate(f.frames[point])
}

func (f *Front) ForwardSegmentLength(point int) float64 {
	f.mustBeSetUp()
	return f.forward[point]
}

func (f *Front) BackwardSegmentLength(point int) float64 {
	f.mustBeSetUp()
	return f.backward[point]
}

func (f *Front) TangentialStrain(point int) float64 {
	f.mustBeSetUp()
	return f.tangStrn[point]
}

// QWeight is 1 within RadiusInner of the front, tapers linearly to 0 at
// RadiusOuter, and in 3D is multiplied by a hat along the tangent spanning
// the backward and forward segments. Unknown ring ordinals weigh 0.
func (f *Front) QWeight(point, ring, node int) float64 {
	f.mustBeSetUp()
	if ring < 0 || ring >= len(f.opts.RadiusInner) {
		return 0
	}
	d := r3.Sub(f.opts.Mesh.Vertices[node], f.opts.Positions[point])
	e3 := f.frames[point].Row(2)
	s := r3.Dot(d, e3)
	dist := r3.Norm(r3.Sub(d, r3.Scale(s, e3)))
	if f.treatAs2D {
		dist = r3.Norm(d)
	}

	rin, rout := f.opts.RadiusInner[ring], f.opts.RadiusOuter[ring]
	var q float64
	switch {
	case dist <= rin:
		q = 1
	case dist >= rout:
		return 0
	default:
		q = (rout - dist) / (rout - rin)
	}
	if f.treatAs2D {
		return q
	}
	return q * f.hat(point, s)
}

func (f *Front) hat(point int, s float64) float64 {
	const tol = 1e-12
	seg := f.forward[point]
	if s < 0 {
		seg, s = f.backward[point], -s
	}
	if s <= tol*math.Max(seg, 1) {
		return 1
	}
	if seg == 0 {
		return 0
	}
	return math.Max(0, 1-s/seg)
}

// TopologicalQWeight is 1 for nodes in layers below RingFirst, 0 from layer
// ring outwards, and decreases linearly in between. With ring ≤ RingFirst it
// is the indicator of the layers below ring. In 3D the layers also grow
// along the front, so the weight is multiplied by the same tangential hat
// as QWeight.
func (f *Front) TopologicalQWeight(point, ring, node int) float64 {
	f.mustBeSetUp()
	if f.layers == nil {
		return 0
	}
	layer := f.layers[point][node]
	first := f.opts.RingFirst
	var q float64
	switch {
	case layer < 0 || layer >= ring:
		return 0
	case layer < first || ring <= first:
		q = 1
	default:
		q = float64(ring-layer) / float64(ring-first+1)
	}
	if f.treatAs2D {
		return q
	}
	d := r3.Sub(f.opts.Mesh.Vertices[node], f.opts.Positions[point])
	return q * f.hat(point, r3.Dot(d, f.frames[point].Row(2)))
}

func (f *Front) mustBeSetUp() {
	if !f.setUp {
		panic(ErrNotSetUp)
	}
}
