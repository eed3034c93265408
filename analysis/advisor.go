package analysis

import "github.com/tiggercwh/go-dejavu/geometry"

// FindIdealRemoval looks one removal ahead. For each vertex of primary it
// drops that vertex from all, finds the extremal triangle of what is left
// under mode.Secondary(), and keeps the vertex whose removal gives the largest
// (Survivor) or smallest (Killer) secondary perimeter. The first vertex to
// reach the best value wins ties.
//
// ok is false when all has fewer than MinRemaining+1 points or no removal
// leaves a triangle.
func FindIdealRemoval(primary Triangle, all []geometry.Point, mode Mode) (id int, ok bool) {
	if len(all) < MinRemaining+1 {
		return 0, false
	}
	objective := mode.Secondary()
	var best float64
	for _, candidate := range primary.Points {
		remaining := geometry.Without(all, candidate.ID)
		if len(remaining) < 3 {
			continue
		}
		next, found := FindOptimalTriangle(remaining, objective)
		if !found {
			continue
		}
		if !ok || objective.better(next.Perimeter, best) {
			best = next.Perimeter
			id, ok = candidate.ID, true
		}
	}
	return id, ok
}
