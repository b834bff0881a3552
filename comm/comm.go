// Package comm provides the communication context shared by the processing
// units of a domain-decomposed evaluation. The only collective is a blocking
// global sum.
package comm

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// ErrAborted is returned by collectives of a group that was aborted
var ErrAborted = errors.New("communicator group aborted")

// Communicator is the view of a communication group held by one unit
type Communicator interface {
	// Rank returns the index of this unit in [0, Size)
	Rank() int
	// Size returns the number of units in the group
	Size() int
	// AllReduceSum blocks until every unit of the group has contributed its
	// local value and returns the global sum to all of them
	AllReduceSum(local float64) (float64, error)
}

// Serial is the communicator of a single unit
type Serial struct{}

func (Serial) Rank() int { return 0 }
func (Serial) Size() int { return 1 }

func (Serial) AllReduceSum(local float64) (float64, error) { return local, nil }

// Group is an in-process communication group of goroutines. Contributions
// are summed in rank order, so a reduction over a fixed decomposition is
// reproducible bit for bit.
type Group struct {
	size int

	mu         sync.Mutex
	cond       *sync.Cond
	contrib    []float64
	arrived    []bool
	count      int
	generation int
	result     float64
	err        error
}

// NewGroup creates a group of size units
func NewGroup(size int) (*Group, error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid communicator size %d", size)
	}
	g := &Group{
		size:    size,
		contrib: make([]float64, size),
		arrived: make([]bool, size),
	}
	g.cond = sync.NewCond(&g.mu)
	return g, nil
}

// Size returns the number of units in the group
func (g *Group) Size() int { return g.size }

// Comm returns the communicator of the unit with the given rank
func (g *Group) Comm(rank int) (Communicator, error) {
	if rank < 0 || rank >= g.size {
		return nil, fmt.Errorf("rank %d out of range [0, %d)", rank, g.size)
	}
	return &member{group: g, rank: rank}, nil
}

// Abort fails the pending and all later collectives of the group with err,
// releasing units blocked in AllReduceSum
func (g *Group) Abort(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err == nil {
		g.err = fmt.Errorf("%w: %v", ErrAborted, err)
	}
	g.cond.Broadcast()
}

func (g *Group) allReduceSum(rank int, local float64) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return 0, g.err
	}
	if g.arrived[rank] {
		return 0, fmt.Errorf("rank %d contributed twice to the same reduction", rank)
	}
	g.contrib[rank] = local
	g.arrived[rank] = true
	g.count++

	gen := g.generation
	if g.count == g.size {
		g.result = floats.Sum(g.contrib)
		for i := range g.arrived {
			g.arrived[i] = false
		}
		g.count = 0
		g.generation++
		g.cond.Broadcast()
		return g.result, nil
	}
	for gen == g.generation && g.err == nil {
		g.cond.Wait()
	}
	if gen == g.generation {
		return 0, g.err
	}
	return g.result, nil
}

type member struct {
	group *Group
	rank  int
}

func (m *member) Rank() int { return m.rank }
func (m *member) Size() int { return m.group.size }

func (m *member) AllReduceSum(local float64) (float64, error) {
	return m.group.allReduceSum(m.rank, local)
}
