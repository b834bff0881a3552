// Package partitions decomposes the elements of a mesh over independent
// processing units. Each unit evaluates only the elements it owns.
package partitions

import (
	"fmt"

	"github.com/notargets/FractureKernel/utils"
)

// Partition is the set of elements owned by one processing unit
type Partition struct {
	// Unique identifier for this partition, also the rank of its unit
	ID int

	// Element membership
	Elements    []int // Global element indices in this partition
	NumElements int   // Number of elements

	// Mixed element support
	ElementTypes []utils.GeometryType // Type of each element
	TypeGroups   []ElementGroup       // Grouped by element type
}

// ElementGroup represents elements of the same type within a partition
type ElementGroup struct {
	ElementType utils.GeometryType
	Count       int   // Number of elements of this type
	Np          int   // Nodes per element for this type
	LocalIDs    []int // Indices within the partition
}

// PartitionLayout manages the complete mesh decomposition
type PartitionLayout struct {
	// All partitions in the mesh
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(NumElements) across all partitions
	TotalElements int // Sum of all elements across partitions
	NumPartitions int // Total number of partitions

	// Element to partition mapping
	EToP []int // Length TotalElements: element k belongs to partition EToP[k]
}

// GetPartition returns the partition containing element k
func (pl *PartitionLayout) GetPartition(elementID int) int {
	if elementID < 0 || elementID >= len(pl.EToP) {
		return -1
	}
	return pl.EToP[elementID]
}

// ValidateLayout checks partition consistency: every element is owned by
// exactly one partition and EToP agrees with the membership lists
func (pl *PartitionLayout) ValidateLayout() error {
	if len(pl.Partitions) != pl.NumPartitions {
		return fmt.Errorf("%d partitions, NumPartitions = %d", len(pl.Partitions), pl.NumPartitions)
	}
	actualMax := 0
	owned := make([]int, pl.TotalElements)
	for i, p := range pl.Partitions {
		if p.ID != i {
			return fmt.Errorf("partition at position %d has ID %d", i, p.ID)
		}
		if p.NumElements != len(p.Elements) {
			return fmt.Errorf("partition %d: NumElements %d != %d members",
				p.ID, p.NumElements, len(p.Elements))
		}
		if p.NumElements > actualMax {
			actualMax = p.NumElements
		}
		for _, k := range p.Elements {
			if k < 0 || k >= pl.TotalElements {
				return fmt.Errorf("partition %d: element %d out of range", p.ID, k)
			}
			if pl.EToP[k] != p.ID {
				return fmt.Errorf("element %d listed in partition %d but EToP says %d", k, p.ID, pl.EToP[k])
			}
			owned[k]++
		}
	}
	for k, n := range owned {
		if n != 1 {
			return fmt.Errorf("element %d owned by %d partitions", k, n)
		}
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("computed KpartMax %d != stored KpartMax %d",
			actualMax, pl.KpartMax)
	}
	return nil
}
