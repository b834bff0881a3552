package element

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CoordSystem selects the coordinate correction applied to volume integrals
type CoordSystem uint8

const (
	Cartesian    CoordSystem = iota
	Axisymmetric             // RZ: x is the radius, y the axis
)

// Factor returns the coordinate scale factor at x
func (c CoordSystem) Factor(x r3.Vec) float64 {
	if c == Axisymmetric {
		return 2 * math.Pi * x.X
	}
	return 1.0
}

func (c CoordSystem) String() string {
	switch c {
	case Cartesian:
		return "XYZ"
	case Axisymmetric:
		return "RZ"
	}
	return fmt.Sprintf("CoordSystem(%d)", uint8(c))
}
