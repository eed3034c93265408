// Package analysis finds extremal triangles among the generators on the
// board and recommends which generator to remove next.
//
// Both searches are exhaustive. With at most seven generators there are 35
// triangles, so every call re-enumerates from scratch.
package analysis

import (
	"github.com/jbeda/geom"

	"github.com/tiggercwh/go-dejavu/geometry"
)

// MinRemaining is the smallest point count a removal may leave behind.
const MinRemaining = 3

// Triangle is three distinct points together with their perimeter.
type Triangle struct {
	Points    [3]geometry.Point
	Perimeter float64
}

func NewTriangle(a, b, c geometry.Point) Triangle {
	pts := [3]geometry.Point{a, b, c}
	return Triangle{Points: pts, Perimeter: geometry.Perimeter(pts)}
}

func (t Triangle) Area() float64 {
	return geometry.Area(t.Points)
}

func (t Triangle) Centroid() geom.Coord {
	return geometry.Centroid(t.Points)
}

func (t Triangle) IDs() [3]int {
	return [3]int{t.Points[0].ID, t.Points[1].ID, t.Points[2].ID}
}

func (t Triangle) Contains(id int) bool {
	for _, p := range t.Points {
		if p.ID == id {
			return true
		}
	}
	return false
}

// FindOptimalTriangle returns the triangle among points with the smallest
// (Tightest) or largest (Loosest) perimeter. On equal perimeters the first
// triangle in Combinations order wins. ok is false with fewer than 3 points.
func FindOptimalTriangle(points []geometry.Point, objective Objective) (best Triangle, ok bool) {
	if len(points) < 3 {
		return Triangle{}, false
	}
	for _, c := range geometry.Combinations(points, 3) {
		t := NewTriangle(c[0], c[1], c[2])
		if !ok || objective.better(t.Perimeter, best.Perimeter) {
			best, ok = t, true
		}
	}
	return best, ok
}
