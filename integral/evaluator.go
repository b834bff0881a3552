// Package integral evaluates the interaction integral around points of a
// crack front and converts it to stress intensity factors.
//
// An Evaluator owns a subset of the mesh elements. Execute accumulates the
// local contribution of those elements and GetValue combines the
// contributions of all processing units with one global sum.
package integral

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/notargets/FractureKernel/comm"
	"github.com/notargets/FractureKernel/crackfront"
	"github.com/notargets/FractureKernel/element"
	"github.com/notargets/FractureKernel/fields"
	"github.com/notargets/FractureKernel/logging"
	"github.com/notargets/FractureKernel/mesh"
	"github.com/notargets/FractureKernel/utils"
)

// Evaluator computes the interaction integral over the elements it owns
type Evaluator struct {
	settings
	front    crackfront.Definition
	mesh     *mesh.Mesh
	fields   fields.Provider
	elements []int
	metrics  *Metrics

	acc         Accumulator
	fes         map[utils.GeometryType]*element.FE
	qNodal      []float64
	initialized bool
	value       float64
}

// Option customizes an Evaluator
type Option func(*Evaluator)

// WithElements restricts the evaluator to the given elements. The default
// is every element of the mesh.
func WithElements(elems []int) Option {
	return func(e *Evaluator) {
		if elems == nil {
			elems = []int{}
		}
		e.elements = elems
	}
}

// WithMetrics records evaluation counts in m
func WithMetrics(m *Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// New resolves cfg against the crack front and the field provider
func New(cfg Config, front crackfront.Definition, msh *mesh.Mesh, provider fields.Provider,
	opts ...Option) (*Evaluator, error) {
	if front == nil {
		return nil, fmt.Errorf("interaction integral needs a crack front")
	}
	if msh == nil {
		return nil, fmt.Errorf("interaction integral needs a mesh")
	}
	if err := msh.Validate(); err != nil {
		return nil, fmt.Errorf("interaction integral mesh: %w", err)
	}
	s, err := cfg.resolve(front, provider)
	if err != nil {
		return nil, err
	}
	e := &Evaluator{
		settings: s,
		front:    front,
		mesh:     msh,
		fields:   provider,
		fes:      make(map[utils.GeometryType]*element.FE),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.elements == nil {
		e.elements = make([]int, msh.NumElements())
		for k := range e.elements {
			e.elements[k] = k
		}
	}
	e.acc = Accumulator{
		Front:         front,
		Point:         s.point,
		SymmetryPlane: s.symmetryPlane,
		Thermal:       s.thermal,
	}
	return e, nil
}

// InitialSetup classifies the crack front. The front itself must already be
// set up.
func (e *Evaluator) InitialSetup() {
	e.acc.TreatAs2D = e.front.IsTwoDimensional()
	e.initialized = true
}

// Point returns the crack-front point being evaluated
func (e *Evaluator) Point() int { return e.point }

// Local returns the contribution of the owned elements from the last Execute
func (e *Evaluator) Local() float64 { return e.value }

// Execute resets the accumulator and integrates over the owned elements
func (e *Evaluator) Execute(ctx context.Context) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	log := logr.FromContextOrDiscard(ctx)
	e.value = 0
	for _, k := range e.elements {
		v, err := e.ComputeIntegral(k)
		if err != nil {
			return err
		}
		if v != 0 {
			log.V(logging.TRACE).Info("element contribution", "element", k, "value", v)
		}
		e.value += v
	}
	log.V(logging.DEBUG).Info("local interaction integral", "point", e.point,
		"elements", len(e.elements), "value", e.value)
	return nil
}

// ComputeIntegral returns the contribution of element k. Elements on which
// the q-function vanishes at every node contribute exactly zero and are not
// integrated.
func (e *Evaluator) ComputeIntegral(k int) (float64, error) {
	nodes := e.mesh.EtoV[k]
	if cap(e.qNodal) < len(nodes) {
		e.qNodal = make([]float64, len(nodes))
	}
	q := e.qNodal[:len(nodes)]
	if !nodalWeights(e.qfunc, e.front, e.point, nodes, q) {
		e.metrics.element(true, 0)
		return 0, nil
	}

	fe, err := e.feFor(e.mesh.ElementTypes[k])
	if err != nil {
		return 0, err
	}
	if err = fe.Reinit(e.mesh.ElementCoords(k)); err != nil {
		return 0, fmt.Errorf("element %d: %w", k, err)
	}
	var sum float64
	for qp := 0; qp < fe.NumPoints(); qp++ {
		x := fe.Xq[qp]
		pt := e.fields.At(k, qp, x)
		sum += e.acc.Evaluate(fe, qp, q, pt) * fe.JxW[qp] * e.coord.Factor(x)
	}
	e.metrics.element(false, fe.NumPoints())
	return sum, nil
}

func (e *Evaluator) feFor(gt utils.GeometryType) (*element.FE, error) {
	if fe, ok := e.fes[gt]; ok {
		return fe, nil
	}
	fe, err := element.NewFE(gt, e.quadOrder)
	if err != nil {
		return nil, err
	}
	e.fes[gt] = fe
	return fe, nil
}

// GetValue sums the local contributions of every unit of c, adds the
// T-stress correction for 3D fronts and scales by the K factor. Every unit
// of c must call GetValue.
func (e *Evaluator) GetValue(c comm.Communicator) (float64, error) {
	if !e.initialized {
		return 0, ErrNotInitialized
	}
	total, err := c.AllReduceSum(e.value)
	if err != nil {
		return 0, err
	}
	e.metrics.reduction()
	if e.tStress && !e.acc.TreatAs2D {
		total += e.poissonsRatio * e.front.TangentialStrain(e.point)
	}
	return e.kFactor * total, nil
}
