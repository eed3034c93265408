package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

const (
	BoardWidth    = 500.0
	BoardHeight   = 400.0
	BoardPadding  = 10.0
	MinSeparation = 20.0
)

// Board describes where generators may be placed.
type Board struct {
	Width         float64
	Height        float64
	Padding       float64
	MinSeparation float64
}

func DefaultBoard() Board {
	return Board{
		Width:         BoardWidth,
		Height:        BoardHeight,
		Padding:       BoardPadding,
		MinSeparation: MinSeparation,
	}
}

// Placeable is the padded rectangle a new point has to land in. Edges count
// as inside.
func (b Board) Placeable() geom.Rect {
	return geom.Rect{
		Min: geom.Coord{X: b.Padding, Y: b.Padding},
		Max: geom.Coord{X: b.Width - b.Padding, Y: b.Height - b.Padding},
	}
}

// CanPlace reports whether (x, y) is inside the padded area and at least
// MinSeparation away from every point in existing.
func (b Board) CanPlace(x, y float64, existing []Point) bool {
	if !Finite(x, y) {
		return false
	}
	r := b.Placeable()
	if !(x >= r.Min.X && x <= r.Max.X && y >= r.Min.Y && y <= r.Max.Y) {
		return false
	}
	candidate := Point{X: x, Y: y}
	for _, p := range existing {
		if Distance(candidate, p) < b.MinSeparation {
			return false
		}
	}
	return true
}

// Finite reports whether every value is neither NaN nor an infinity.
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
