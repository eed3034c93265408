package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/tiggercwh/go-dejavu/gameModel"
	"github.com/tiggercwh/go-dejavu/geometry"
)

const (
	gridCols = 50
	gridRows = 20

	// collision marks a map cell holding more than one generator.
	collision = '#'

	reset  = "\033[0m"
	red    = "\033[1;31m"
	blue   = "\033[1;34m"
	orange = "\033[1;38;5;208m"
	grey   = "\033[1;90m"
	bold   = "\033[1m"
)

type role int

const (
	plain role = iota
	vertex
	idealVertex
	recommended
	exiting
)

func (r role) colour() string {
	switch r {
	case vertex:
		return red
	case idealVertex:
		return blue
	case recommended:
		return orange
	case exiting:
		return grey
	}
	return bold
}

// roles works out how each point is drawn. The recommendation wins over the
// triangle it belongs to.
func roles(gs gameModel.GameState) map[int]role {
	out := make(map[int]role, len(gs.Points))
	for _, p := range gs.Points {
		out[p.ID] = plain
	}
	if t := gs.DisplayTriangle; t != nil {
		r := vertex
		if gs.IdealEndgame {
			r = idealVertex
		}
		for _, id := range t.PointIDs {
			out[id] = r
		}
	}
	if gs.RecommendedPointID != nil {
		out[*gs.RecommendedPointID] = recommended
	}
	for _, id := range gs.ExitingPointIDs {
		out[id] = exiting
	}
	return out
}

// idChar is the single glyph a point gets on the map.
func idChar(id int) byte {
	switch {
	case id >= 0 && id < 10:
		return byte('0' + id)
	case id < 36:
		return byte('a' + id - 10)
	}
	return '*'
}

func cell(p gameModel.Point) (col, row int) {
	col = int(p.X * gridCols / geometry.BoardWidth)
	row = int(p.Y * gridRows / geometry.BoardHeight)
	return min(max(col, 0), gridCols-1), min(max(row, 0), gridRows-1)
}

// Render draws gs: one-shot cue banners, the status line, a coarse map of
// the board and the analysis readout.
func Render(w io.Writer, gs gameModel.GameState) {
	if gs.Cues.SequenceStarted {
		fmt.Fprintf(w, "%s*** Sequence started ***%s\n", bold, reset)
	}
	if gs.Cues.ModeChanged {
		fmt.Fprintf(w, "%s*** Mode: %s ***%s\n", bold, gs.Mode, reset)
	}
	if gs.Cues.IdealEndgame {
		fmt.Fprintf(w, "%s*** Ideal endgame ***%s\n", blue, reset)
	}

	fmt.Fprintf(w, "\n%s%s%s\n", bold, gs.Status, reset)
	fmt.Fprintf(w, "Mode: %s", gs.Mode)
	if gs.Sequence.Active {
		fmt.Fprintf(w, "   Generators: %d", gs.Generators)
	}
	fmt.Fprintln(w)

	rs := roles(gs)
	type mark struct {
		ch byte
		r  role
	}
	grid := make([][]*mark, gridRows)
	for i := range grid {
		grid[i] = make([]*mark, gridCols)
	}
	for _, p := range gs.Points {
		col, row := cell(p)
		if m := grid[row][col]; m != nil {
			// Two generators share a cell; keep the stronger colour.
			m.ch = collision
			m.r = max(m.r, rs[p.ID])
			continue
		}
		grid[row][col] = &mark{ch: idChar(p.ID), r: rs[p.ID]}
	}

	border := "+" + strings.Repeat("-", gridCols) + "+"
	fmt.Fprintln(w, border)
	for _, line := range grid {
		var b strings.Builder
		b.WriteByte('|')
		for _, m := range line {
			if m == nil {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(m.r.colour())
			b.WriteByte(m.ch)
			b.WriteString(reset)
		}
		b.WriteByte('|')
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintln(w, border)

	if len(gs.Points) > 0 {
		fmt.Fprint(w, "Points:")
		removable := false
		for _, p := range gs.Points {
			flag := ""
			if p.Removable {
				flag = "*"
				removable = true
			}
			fmt.Fprintf(w, " %s%d%s%s(%.0f,%.0f)", rs[p.ID].colour(), p.ID, reset, flag, p.X, p.Y)
		}
		if removable {
			fmt.Fprint(w, "   (* removable)")
		}
		fmt.Fprintln(w)
	}

	if t := gs.DisplayTriangle; t != nil {
		c := red
		if gs.IdealEndgame {
			c = blue
		}
		fmt.Fprintf(w, "Triangle: %s%d-%d-%d%s", c, t.PointIDs[0], t.PointIDs[1], t.PointIDs[2], reset)
		if gs.ShowAreaAndPerimeter {
			fmt.Fprintf(w, "  perimeter %.2f  area %.2f  box (%.0f,%.0f)-(%.0f,%.0f)",
				t.Perimeter, t.Area, t.Bounds.Min.X, t.Bounds.Min.Y, t.Bounds.Max.X, t.Bounds.Max.Y)
		}
		fmt.Fprintln(w)
	}
	if gs.RecommendedPointID != nil {
		fmt.Fprintf(w, "Remove next: %s%d%s\n", orange, *gs.RecommendedPointID, reset)
	}
	if gs.IdealEndgame {
		fmt.Fprintf(w, "%sIdeal endgame reached. Type 'end' to clear the board.%s\n", blue, reset)
	}
	if gs.AnalysisPending {
		fmt.Fprintf(w, "%s(analysing...)%s\n", grey, reset)
	}
}
