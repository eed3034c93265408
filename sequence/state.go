package sequence

import (
	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/geometry"
)

const (
	// MaxPoints is both the placement limit and the count that starts a
	// sequence.
	MaxPoints = 7
	// MinRemaining is the smallest board a standard removal may leave.
	MinRemaining = analysis.MinRemaining
	// IdealTolerance is the absolute perimeter slack for the ideal endgame.
	IdealTolerance = 0.1
)

// Sequence is the bookkeeping of an active analysis run. The ideal
// perimeters are frozen from the 7-point board and never recomputed.
type Sequence struct {
	Active        bool
	IdealLoosest  *float64
	IdealTightest *float64
	Initial       []geometry.Point
	ModeLocked    bool
}

// IdealFor returns the frozen endgame perimeter a mode is judged against:
// the loosest 7-point triangle for the survivor, the tightest for the killer.
func (s Sequence) IdealFor(mode analysis.Mode) (float64, bool) {
	p := s.IdealLoosest
	if mode.Secondary() == analysis.Tightest {
		p = s.IdealTightest
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

func (s Sequence) clone() Sequence {
	out := s
	out.Initial = geometry.Clone(s.Initial)
	if s.IdealLoosest != nil {
		v := *s.IdealLoosest
		out.IdealLoosest = &v
	}
	if s.IdealTightest != nil {
		v := *s.IdealTightest
		out.IdealTightest = &v
	}
	return out
}

// Analysis is what one analysis pass derives from the board. It is rebuilt
// from scratch on every pass.
type Analysis struct {
	Triangle     *analysis.Triangle
	Removal      int
	HasRemoval   bool
	ShowMetrics  bool
	IdealEndgame bool
}

// Cues are one-shot animation triggers. They are set only on the State
// handed to the listener for the update that raised them.
type Cues struct {
	SequenceStarted bool
	IdealEndgame    bool
	ModeChanged     bool
}

// Event says why the listener is being called.
type Event int

const (
	EventAction       Event = iota // an action was accepted
	EventAnalysis                  // a debounced analysis pass completed
	EventExitComplete              // the exit animation finished and the board reset
)

func (e Event) String() string {
	switch e {
	case EventAction:
		return "action"
	case EventAnalysis:
		return "analysis"
	case EventExitComplete:
		return "exit_complete"
	}
	return "unknown"
}

// State is a copy of everything the presentation layer needs.
//
// Version grows by one with every State handed to the listener, in the order
// those states were built. Listeners run outside the controller lock and may
// be called concurrently, so a consumer that must not go backwards keeps the
// highest Version it has seen and drops anything at or below it.
type State struct {
	Version    uint64
	Points     []geometry.Point
	NextID     int
	Mode       analysis.Mode
	Sequence   Sequence
	Analysis   Analysis
	Pending    bool
	Exiting    []int
	Cues       Cues
	HistoryLen int
}

// snapshot is one undo entry, taken before the action it undoes.
type snapshot struct {
	points   []geometry.Point
	nextID   int
	sequence Sequence
}
