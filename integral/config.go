package integral

import (
	"fmt"
	"strings"

	"github.com/notargets/FractureKernel/crackfront"
	"github.com/notargets/FractureKernel/element"
	"github.com/notargets/FractureKernel/fields"
)

// QFunctionType selects how the q-function of a ring is defined
type QFunctionType uint8

const (
	Geometry QFunctionType = iota // distance based rings
	Topology                      // connectivity based rings
)

func (t QFunctionType) String() string {
	switch t {
	case Geometry:
		return "Geometry"
	case Topology:
		return "Topology"
	}
	return fmt.Sprintf("QFunctionType(%d)", uint8(t))
}

// ParseQFunctionType converts a case insensitive name to a QFunctionType
func ParseQFunctionType(name string) (QFunctionType, error) {
	switch strings.ToLower(name) {
	case "geometry":
		return Geometry, nil
	case "topology":
		return Topology, nil
	}
	return 0, fmt.Errorf("unsupported q-function type: %q", name)
}

// Config holds the parameters of one interaction integral. Pointer fields
// are optional.
type Config struct {
	// PointIndex is the crack-front point; when nil the point is chosen by
	// the caller (see Sweep) and defaults to 0
	PointIndex *int
	// KFactor converts the interaction integral into a stress intensity factor
	KFactor float64
	// SymmetryPlane is the axis normal to a symmetry plane through the
	// crack plane; its presence doubles the integrand
	SymmetryPlane *int
	// TStress adds the T-stress correction, PoissonsRatio × tangential strain
	TStress       bool
	PoissonsRatio *float64

	RingIndex int
	RingFirst *int
	QFunction QFunctionType

	// Temperature couples the thermal strain term
	Temperature bool

	// QuadratureOrder of the element rules, default 2
	QuadratureOrder int
	CoordSystem     element.CoordSystem
}

// settings is the configuration after resolution, fixed for the lifetime
// of an evaluator
type settings struct {
	point         int
	kFactor       float64
	symmetryPlane bool
	tStress       bool
	poissonsRatio float64
	thermal       bool
	qfunc         qFunction
	quadOrder     int
	coord         element.CoordSystem
}

// resolve checks the parameter pairings and freezes the optional choices
func (c Config) resolve(front crackfront.Definition, provider fields.Provider) (settings, error) {
	s := settings{
		kFactor:       c.KFactor,
		symmetryPlane: c.SymmetryPlane != nil,
		tStress:       c.TStress,
		thermal:       c.Temperature,
		quadOrder:     c.QuadratureOrder,
		coord:         c.CoordSystem,
	}
	if c.KFactor == 0 {
		return s, ErrKFactorRequired
	}
	if c.PointIndex != nil {
		s.point = *c.PointIndex
	}
	if c.Temperature && !provider.HasThermalExpansion() {
		return s, ErrThermalExpansionMissing
	}
	if c.TStress {
		if c.PoissonsRatio == nil {
			return s, ErrPoissonsRatioRequired
		}
		s.poissonsRatio = *c.PoissonsRatio
	}
	if s.quadOrder < 1 {
		s.quadOrder = 2
	}

	qf, err := newQFunction(c.QFunction, c.RingIndex, c.RingFirst)
	if err != nil {
		return s, err
	}
	if t, ok := qf.(topologyQ); ok {
		if rf, ok := front.(interface{ RingFirst() int }); ok && rf.RingFirst() != t.ringFirst {
			return s, fmt.Errorf("%w: %d != %d", ErrRingFirstMismatch, t.ringFirst, rf.RingFirst())
		}
	}
	s.qfunc = qf
	return s, nil
}
