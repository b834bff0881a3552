package integral

import (
	"fmt"

	"github.com/notargets/FractureKernel/crackfront"
)

// qFunction produces the nodal weights of the active ring
type qFunction interface {
	// ordinal is the ring ordinal passed to the crack front
	ordinal() int
	weight(front crackfront.Definition, point, node int) float64
}

// geometryQ rings are numbered from 1 in the configuration and from 0 by
// the crack front
type geometryQ struct {
	ringIndex int
}

func (q geometryQ) ordinal() int { return q.ringIndex - 1 }

func (q geometryQ) weight(front crackfront.Definition, point, node int) float64 {
	return front.QWeight(point, q.ordinal(), node)
}

type topologyQ struct {
	ringIndex int
	ringFirst int
}

func (q topologyQ) ordinal() int { return q.ringIndex }

func (q topologyQ) weight(front crackfront.Definition, point, node int) float64 {
	return front.TopologicalQWeight(point, q.ordinal(), node)
}

func newQFunction(t QFunctionType, ringIndex int, ringFirst *int) (qFunction, error) {
	switch t {
	case Geometry:
		return geometryQ{ringIndex: ringIndex}, nil
	case Topology:
		if ringFirst == nil {
			return nil, ErrRingFirstRequired
		}
		return topologyQ{ringIndex: ringIndex, ringFirst: *ringFirst}, nil
	}
	return nil, fmt.Errorf("unsupported q-function type: %v", t)
}

// nodalWeights fills q with the weights of nodes and reports whether any is
// non-zero
func nodalWeights(qf qFunction, front crackfront.Definition, point int, nodes []int, q []float64) bool {
	nonzero := false
	for i, n := range nodes {
		q[i] = qf.weight(front, point, n)
		if q[i] != 0 {
			nonzero = true
		}
	}
	return nonzero
}
