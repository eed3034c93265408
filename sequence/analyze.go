package sequence

import (
	"math"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/geometry"
)

// Analyze is one analysis pass over the board. It is pure: the same points,
// mode and sequence always give the same result.
//
// With three points left the board itself is the display triangle and it is
// checked against the frozen ideal for the mode. With four to seven points the
// display triangle is the mode's primary extreme and the advisor picks the
// recommended removal.
func Analyze(points []geometry.Point, mode analysis.Mode, seq Sequence) Analysis {
	var out Analysis
	if !seq.Active || len(points) < MinRemaining || len(points) > MaxPoints {
		return out
	}

	if len(points) == MinRemaining {
		tri := analysis.NewTriangle(points[0], points[1], points[2])
		out.Triangle = &tri
		if ideal, ok := seq.IdealFor(mode); ok && math.Abs(tri.Perimeter-ideal) < IdealTolerance {
			out.IdealEndgame = true
		}
	} else {
		tri, ok := analysis.FindOptimalTriangle(points, mode.Primary())
		if ok {
			out.Triangle = &tri
			out.Removal, out.HasRemoval = analysis.FindIdealRemoval(tri, points, mode)
		}
	}

	out.ShowMetrics = out.Triangle != nil
	return out
}
