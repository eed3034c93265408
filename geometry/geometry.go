// Package geometry holds the plane primitives the analyser works with:
// generators placed on the board, pairwise distance, triangle perimeter and
// area, and subset enumeration.
package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// Point is a generator placed on the board. Identity is ID, not coordinates.
type Point struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func (p Point) Coord() geom.Coord {
	return geom.Coord{X: p.X, Y: p.Y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return a.Coord().DistanceFrom(b.Coord())
}

// Perimeter sums the three sides in the cycle p0-p1, p1-p2, p2-p0.
func Perimeter(tri [3]Point) float64 {
	return Distance(tri[0], tri[1]) +
		Distance(tri[1], tri[2]) +
		Distance(tri[2], tri[0])
}

// Area is the unsigned shoelace area of the triangle.
func Area(tri [3]Point) float64 {
	ab := tri[1].Coord().Minus(tri[0].Coord())
	ac := tri[2].Coord().Minus(tri[0].Coord())
	return math.Abs(ab.X*ac.Y-ab.Y*ac.X) / 2
}

// Centroid is where the perimeter/area label is anchored.
func Centroid(tri [3]Point) geom.Coord {
	sum := tri[0].Coord().Plus(tri[1].Coord()).Plus(tri[2].Coord())
	return sum.Times(1.0 / 3.0)
}

// Bounds returns the smallest rectangle holding every point of tri.
func Bounds(tri [3]Point) geom.Rect {
	r := geom.Rect{Min: tri[0].Coord(), Max: tri[0].Coord()}
	r.ExpandToContainCoord(tri[1].Coord())
	r.ExpandToContainCoord(tri[2].Coord())
	return r
}

// Combinations returns every k-subset of set. Subsets keep the relative order
// of set and are produced in lexicographic order over input indexes:
// for [a b c d] and k=3 that is abc, abd, acd, bcd.
//
// k > len(set) or k < 0 yields nil. k == 0 yields the single empty subset.
func Combinations[T any](set []T, k int) [][]T {
	if k < 0 || k > len(set) {
		return nil
	}
	var out [][]T
	temp := make([]T, 0, k)
	var combo func(start int)
	combo = func(start int) {
		if len(temp) == k {
			subset := make([]T, k)
			copy(subset, temp)
			out = append(out, subset)
			return
		}
		for i := start; i < len(set); i++ {
			temp = append(temp, set[i])
			combo(i + 1)
			temp = temp[:len(temp)-1]
		}
	}
	combo(0)
	return out
}

// Clone returns an independent copy of points.
func Clone(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// Without returns a new slice holding every point except the one with id.
func Without(points []Point, id int) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// IndexOf returns the position of id in points, or -1.
func IndexOf(points []Point, id int) int {
	for i, p := range points {
		if p.ID == id {
			return i
		}
	}
	return -1
}
