package sequence

import (
	"fmt"

	"github.com/tiggercwh/go-dejavu/analysis"
)

// StatusMessage is the one-line status shown under the controls.
func (s State) StatusMessage() string {
	if s.Exiting != nil {
		return "Sequence complete! Board resetting..."
	}
	if !s.Sequence.Active {
		missing := MaxPoints - len(s.Points)
		if missing <= 0 {
			return fmt.Sprintf("Place %d generators to begin analysis.", MaxPoints)
		}
		plural := "s"
		if missing == 1 {
			plural = ""
		}
		return fmt.Sprintf("Add %d more generator%s to start analysis.", missing, plural)
	}
	lock := ""
	if s.Sequence.ModeLocked {
		lock = " (Mode Locked)"
	}
	if s.Mode == analysis.Killer {
		return "Three-gen Analysis" + lock
	}
	return "Déjà-Vu Analysis" + lock
}

// Generators is the counter shown in the corner of the board while a
// sequence runs: the number of removals left before the final three, plus one.
func (s State) Generators() int {
	if !s.Sequence.Active || s.Exiting != nil || len(s.Points) < MinRemaining {
		return 0
	}
	return len(s.Points) - 2
}

// IsRemovable reports whether a standard removal of id would be accepted.
func (s State) IsRemovable(id int) bool {
	if s.Exiting != nil || !s.Sequence.Active || len(s.Points) <= MinRemaining {
		return false
	}
	for _, p := range s.Points {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CanAdd reports whether the board invites placement, which it only does
// before a sequence starts.
func (s State) CanAdd() bool {
	return s.Exiting == nil && !s.Sequence.Active && len(s.Points) < MaxPoints
}
