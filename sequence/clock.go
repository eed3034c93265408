package sequence

import "time"

// Timer is a deferred task that can still be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred tasks. The controller uses it for the analysis
// debounce and the exit animation.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is backed by time.AfterFunc.
var RealClock Clock = realClock{}
