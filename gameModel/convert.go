package gameModel

import (
	"time"

	"github.com/tiggercwh/go-dejavu/geometry"
	"github.com/tiggercwh/go-dejavu/sequence"
)

// FromState maps a controller snapshot onto the wire type. Points is never
// nil so clients always see an array.
func FromState(id string, st sequence.State, createdAt, lastActivity time.Time) GameState {
	gs := GameState{
		ID:                   id,
		Version:              st.Version,
		Mode:                 st.Mode.String(),
		Points:               FromPoints(st.Points),
		NextPointID:          st.NextID,
		ShowAreaAndPerimeter: st.Analysis.ShowMetrics,
		IdealEndgame:         st.Analysis.IdealEndgame,
		AnalysisPending:      st.Pending,
		ExitingPointIDs:      st.Exiting,
		Cues: Cues{
			SequenceStarted: st.Cues.SequenceStarted,
			IdealEndgame:    st.Cues.IdealEndgame,
			ModeChanged:     st.Cues.ModeChanged,
		},
		Generators: st.Generators(),
		CanAdd:     st.CanAdd(),
		CanUndo:    st.HistoryLen > 0 && st.Exiting == nil,
		Status:     st.StatusMessage(),
		Sequence: SequenceState{
			Active:                 st.Sequence.Active,
			IdealLoosestPerimeter:  st.Sequence.IdealLoosest,
			IdealTightestPerimeter: st.Sequence.IdealTightest,
			InitialSnapshot:        FromPoints(st.Sequence.Initial),
			ModeLocked:             st.Sequence.ModeLocked,
		},
	}
	if !createdAt.IsZero() {
		gs.CreatedAt = createdAt.Format(time.RFC3339)
	}
	if !lastActivity.IsZero() {
		gs.LastActivity = lastActivity.Format(time.RFC3339)
	}
	if gs.Points == nil {
		gs.Points = []Point{}
	}
	for i := range gs.Points {
		gs.Points[i].Removable = st.IsRemovable(gs.Points[i].ID)
	}
	if tri := st.Analysis.Triangle; tri != nil {
		c := tri.Centroid()
		box := geometry.Bounds(tri.Points)
		gs.DisplayTriangle = &Triangle{
			PointIDs:  tri.IDs(),
			Points:    FromPoints(tri.Points[:]),
			Perimeter: tri.Perimeter,
			Area:      tri.Area(),
			Centroid:  Coord{X: c.X, Y: c.Y},
			Bounds: Rect{
				Min: Coord{X: box.Min.X, Y: box.Min.Y},
				Max: Coord{X: box.Max.X, Y: box.Max.Y},
			},
		}
	}
	if st.Analysis.HasRemoval {
		id := st.Analysis.Removal
		gs.RecommendedPointID = &id
	}
	return gs
}

func FromPoints(points []geometry.Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{ID: p.ID, X: p.X, Y: p.Y}
	}
	return out
}

// ToPoints is the inverse of FromPoints.
func ToPoints(points []Point) []geometry.Point {
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = geometry.Point{ID: p.ID, X: p.X, Y: p.Y}
	}
	return out
}
