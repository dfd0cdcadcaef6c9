package grid

import (
	"errors"
	"fmt"
)

// Axis selects one of the two grid axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// String returns the string representation of Axis
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "unknown"
	}
}

// ParseAxis converts an axis name to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	default:
		return AxisX, fmt.Errorf("unknown axis %q", s)
	}
}

var (
	ErrAxesUnset     = errors.New("axes not set")
	ErrAxesEqual     = errors.New("x and y axes must differ")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotNumeric    = errors.New("column is not numeric")
	ErrNoData        = errors.New("no data to display")
)

// Grid holds the three equal-shaped meshes for heatmap rendering, plus the
// sorted unique axis values they were built from. Z cells with no matching
// data point hold NaN.
type Grid struct {
	XValues []float64   `json:"xValues"`
	YValues []float64   `json:"yValues"`
	X       [][]float64 `json:"x"`
	Y       [][]float64 `json:"y"`
	Z       [][]float64 `json:"z"`
}

// Rows returns the grid height.
func (g *Grid) Rows() int {
	return len(g.YValues)
}

// Cols returns the grid width.
func (g *Grid) Cols() int {
	return len(g.XValues)
}

// Profile is a 1D cut through the grid: the value sequence along one axis
// with the other axis held at a fixed grid coordinate.
type Profile struct {
	Axis   Axis      `json:"axis"`  // the varying axis
	Fixed  float64   `json:"fixed"` // snapped coordinate on the other axis
	Coords []float64 `json:"coords"`
	Values []float64 `json:"values"`
}

// copyGrid deep-copies a grid so cached meshes are never aliased by
// consumers.
func copyGrid(g *Grid) *Grid {
	return &Grid{
		XValues: append([]float64(nil), g.XValues...),
		YValues: append([]float64(nil), g.YValues...),
		X:       copyMesh(g.X),
		Y:       copyMesh(g.Y),
		Z:       copyMesh(g.Z),
	}
}

func copyMesh(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
