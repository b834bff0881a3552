package partitions

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/FractureKernel/mesh"
	"github.com/notargets/FractureKernel/utils"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// PartitionBuilder constructs partitions from mesh connectivity
type PartitionBuilder struct {
	// Mesh connectivity
	Mesh *MeshConnectivity

	// Partitioning parameters
	NumPartitions       int // Number of partitions, derived from TargetPartitionSize when 0
	TargetPartitionSize int // Desired elements per partition
	Strategy            PartitionStrategy
}

// MeshConnectivity provides the mesh topology needed for partitioning
type MeshConnectivity struct {
	NumElements  int
	ElementTypes []utils.GeometryType
	NodesPerElem []int // Np for each element

	// Face adjacency, used to keep partitions compact
	Dual *simple.UndirectedGraph
}

// NewMeshConnectivity extracts the partitioning topology from a mesh
func NewMeshConnectivity(m *mesh.Mesh) *MeshConnectivity {
	mc := &MeshConnectivity{
		NumElements:  m.NumElements(),
		ElementTypes: m.ElementTypes,
		NodesPerElem: make([]int, m.NumElements()),
		Dual:         m.DualGraph(),
	}
	for k, verts := range m.EtoV {
		mc.NodesPerElem[k] = len(verts)
	}
	return mc
}

// PartitionStrategy defines how elements are grouped
type PartitionStrategy int

const (
	// Simple strategies
	BlockPartition PartitionStrategy = iota // Consecutive elements
	RoundRobin                              // Distribute cyclically

	// Graph-based strategy: recursive spectral bisection of the dual graph
	GraphPartition
)

func (s PartitionStrategy) String() string {
	switch s {
	case BlockPartition:
		return "block"
	case RoundRobin:
		return "roundrobin"
	case GraphPartition:
		return "graph"
	}
	return fmt.Sprintf("PartitionStrategy(%d)", int(s))
}

// ParseStrategy converts a strategy name to a PartitionStrategy
func ParseStrategy(name string) (PartitionStrategy, error) {
	for _, s := range []PartitionStrategy{BlockPartition, RoundRobin, GraphPartition} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unsupported partition strategy: %q", name)
}

// BuildPartitions creates a partition layout from mesh connectivity
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.Mesh == nil || pb.Mesh.NumElements == 0 {
		return nil, fmt.Errorf("cannot partition an empty mesh")
	}

	// Determine number of partitions needed
	numPartitions := pb.calculateNumPartitions()

	// Partition the elements
	eToP, err := pb.partitionElements(numPartitions)
	if err != nil {
		return nil, err
	}

	// Create partition structures
	partitions := pb.createPartitions(eToP, numPartitions)

	layout := &PartitionLayout{
		Partitions:    partitions,
		KpartMax:      pb.calculateKpartMax(partitions),
		TotalElements: pb.Mesh.NumElements,
		NumPartitions: numPartitions,
		EToP:          eToP,
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}

	return layout, nil
}

// calculateNumPartitions determines the partition count
func (pb *PartitionBuilder) calculateNumPartitions() int {
	numPartitions := pb.NumPartitions
	if numPartitions < 1 && pb.TargetPartitionSize > 0 {
		numPartitions = int(math.Ceil(float64(pb.Mesh.NumElements) / float64(pb.TargetPartitionSize)))
	}

	// Ensure at least one partition and no empty ones
	if numPartitions < 1 {
		numPartitions = 1
	}
	if numPartitions > pb.Mesh.NumElements {
		numPartitions = pb.Mesh.NumElements
	}

	return numPartitions
}

// partitionElements assigns elements to partitions
func (pb *PartitionBuilder) partitionElements(numPartitions int) ([]int, error) {
	eToP := make([]int, pb.Mesh.NumElements)

	switch pb.Strategy {
	case BlockPartition:
		elementsPerPartition := int(math.Ceil(float64(pb.Mesh.NumElements) / float64(numPartitions)))
		for i := 0; i < pb.Mesh.NumElements; i++ {
			eToP[i] = i / elementsPerPartition
			if eToP[i] >= numPartitions {
				eToP[i] = numPartitions - 1
			}
		}

	case RoundRobin:
		for i := 0; i < pb.Mesh.NumElements; i++ {
			eToP[i] = i % numPartitions
		}

	case GraphPartition:
		if pb.Mesh.Dual == nil {
			return nil, fmt.Errorf("graph partitioning needs the dual graph")
		}
		elems := make([]int, pb.Mesh.NumElements)
		for i := range elems {
			elems[i] = i
		}
		if err := bisect(pb.Mesh.Dual, elems, 0, numPartitions, eToP); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported partition strategy: %v", pb.Strategy)
	}

	return eToP, nil
}

// createPartitions builds partition structures from element assignments
func (pb *PartitionBuilder) createPartitions(eToP []int, numPartitions int) []Partition {
	partitions := make([]Partition, numPartitions)

	for i := range partitions {
		partitions[i] = Partition{
			ID:           i,
			Elements:     make([]int, 0),
			ElementTypes: make([]utils.GeometryType, 0),
		}
	}

	for elem, part := range eToP {
		partitions[part].Elements = append(partitions[part].Elements, elem)
		if pb.Mesh.ElementTypes != nil {
			partitions[part].ElementTypes = append(partitions[part].ElementTypes,
				pb.Mesh.ElementTypes[elem])
		}
		partitions[part].NumElements++
	}

	for i := range partitions {
		partitions[i].TypeGroups = pb.createElementGroups(&partitions[i])
	}

	return partitions
}

// createElementGroups organizes elements by type within a partition
func (pb *PartitionBuilder) createElementGroups(p *Partition) []ElementGroup {
	if len(p.ElementTypes) == 0 {
		return nil
	}

	typeIndices := make(map[utils.GeometryType][]int)
	for i, elemType := range p.ElementTypes {
		typeIndices[elemType] = append(typeIndices[elemType], i)
	}

	types := make([]utils.GeometryType, 0, len(typeIndices))
	for t := range typeIndices {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	groups := make([]ElementGroup, 0, len(types))
	for _, elemType := range types {
		indices := typeIndices[elemType]
		group := ElementGroup{
			ElementType: elemType,
			Count:       len(indices),
			LocalIDs:    indices,
		}
		if pb.Mesh.NodesPerElem != nil {
			group.Np = pb.Mesh.NodesPerElem[p.Elements[indices[0]]]
		}
		groups = append(groups, group)
	}

	return groups
}

// calculateKpartMax finds maximum elements across all partitions
func (pb *PartitionBuilder) calculateKpartMax(partitions []Partition) int {
	kpartMax := 0
	for _, p := range partitions {
		if p.NumElements > kpartMax {
			kpartMax = p.NumElements
		}
	}
	return kpartMax
}

// neighbors lists the dual graph neighbors of element k
func neighbors(g *simple.UndirectedGraph, k int) []int {
	var out []int
	for _, n := range graph.NodesOf(g.From(int64(k))) {
		out = append(out, int(n.ID()))
	}
	return out
}
