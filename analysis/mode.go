package analysis

import (
	"fmt"
	"strings"
)

// Objective selects which perimeter extreme a search is after.
type Objective int

const (
	Tightest Objective = iota // minimum perimeter
	Loosest                   // maximum perimeter
)

func (o Objective) String() string {
	switch o {
	case Tightest:
		return "tightest"
	case Loosest:
		return "loosest"
	}
	return fmt.Sprintf("Objective(%d)", int(o))
}

// better reports whether candidate beats best under o. Ties never win.
func (o Objective) better(candidate, best float64) bool {
	if o == Tightest {
		return candidate < best
	}
	return candidate > best
}

// Mode is the player's point of view.
type Mode int

const (
	Survivor Mode = iota
	Killer
)

func (m Mode) String() string {
	switch m {
	case Survivor:
		return "survivor"
	case Killer:
		return "killer"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Primary is the objective of the triangle displayed during play: the
// survivor watches the tightest cluster, the killer the loosest.
func (m Mode) Primary() Objective {
	if m == Killer {
		return Loosest
	}
	return Tightest
}

// Secondary is the objective the removal advisor optimises after one point
// is taken out. It is also the objective of the frozen endgame target.
func (m Mode) Secondary() Objective {
	if m == Killer {
		return Tightest
	}
	return Loosest
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Killer {
		return Survivor
	}
	return Killer
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "survivor":
		return Survivor, nil
	case "killer":
		return Killer, nil
	}
	return Survivor, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != Survivor && m != Killer {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
