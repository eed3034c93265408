package sequence

import (
	"io"
	"log"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/geometry"
)

var sevenSpots = [][2]float64{
	{50, 50},
	{450, 60},
	{240, 350},
	{120, 200},
	{300, 150},
	{400, 300},
	{200, 100},
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	states []State
}

func (r *recorder) listen(ev Event, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.states = append(r.states, st)
}

func (r *recorder) count(ev Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == ev {
			n++
		}
	}
	return n
}

func (r *recorder) last() (Event, State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1], r.states[len(r.states)-1]
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *manualClock, *recorder) {
	t.Helper()
	clock := &manualClock{}
	rec := &recorder{}
	base := []Option{
		WithClock(clock),
		WithListener(rec.listen),
		WithLogger(log.New(io.Discard, "", 0)),
	}
	return New(append(base, opts...)...), clock, rec
}

func placeSeven(t *testing.T, c *Controller) []geometry.Point {
	t.Helper()
	pts := make([]geometry.Point, 0, len(sevenSpots))
	for _, s := range sevenSpots {
		p, ok := c.AddPoint(s[0], s[1])
		require.True(t, ok, "placing %v", s)
		pts = append(pts, p)
	}
	return pts
}

// keepOnly removes every point whose id is not in keep.
func keepOnly(t *testing.T, c *Controller, keep [3]int) {
	t.Helper()
	for _, p := range c.State().Points {
		if p.ID == keep[0] || p.ID == keep[1] || p.ID == keep[2] {
			continue
		}
		require.True(t, c.RemovePoint(p.ID), "removing %d", p.ID)
	}
}

func TestSequenceStartsOnSeventhPoint(t *testing.T) {
	c, clock, rec := newTestController(t)

	for _, s := range sevenSpots[:6] {
		_, ok := c.AddPoint(s[0], s[1])
		require.True(t, ok)
	}
	st := c.State()
	assert.False(t, st.Sequence.Active)
	assert.False(t, st.Pending)
	assert.Nil(t, st.Analysis.Triangle)
	assert.Equal(t, "Add 1 more generator to start analysis.", st.StatusMessage())

	p, ok := c.AddPoint(sevenSpots[6][0], sevenSpots[6][1])
	require.True(t, ok)
	assert.Equal(t, 7, p.ID)

	ev, fromListener := rec.last()
	assert.Equal(t, EventAction, ev)
	assert.True(t, fromListener.Cues.SequenceStarted)

	st = c.State()
	require.True(t, st.Sequence.Active)
	assert.False(t, st.Cues.SequenceStarted, "cues are only delivered to the listener")
	assert.True(t, st.Pending)
	assert.Len(t, st.Sequence.Initial, 7)
	assert.False(t, st.Sequence.ModeLocked)

	loose, _ := analysis.FindOptimalTriangle(st.Points, analysis.Loosest)
	tight, _ := analysis.FindOptimalTriangle(st.Points, analysis.Tightest)
	require.NotNil(t, st.Sequence.IdealLoosest)
	require.NotNil(t, st.Sequence.IdealTightest)
	assert.Equal(t, loose.Perimeter, *st.Sequence.IdealLoosest)
	assert.Equal(t, tight.Perimeter, *st.Sequence.IdealTightest)

	clock.Advance(DefaultDebounce - time.Millisecond)
	assert.Equal(t, 0, rec.count(EventAnalysis))

	clock.Advance(time.Millisecond)
	require.Equal(t, 1, rec.count(EventAnalysis))

	st = c.State()
	assert.False(t, st.Pending)
	require.NotNil(t, st.Analysis.Triangle)
	assert.Equal(t, tight.IDs(), st.Analysis.Triangle.IDs(), "survivor watches the tightest triangle")
	assert.True(t, st.Analysis.ShowMetrics)
	require.True(t, st.Analysis.HasRemoval)
	assert.True(t, st.Analysis.Triangle.Contains(st.Analysis.Removal))
	assert.Equal(t, "Déjà-Vu Analysis", st.StatusMessage())
	assert.Equal(t, 5, st.Generators())
}

func TestAddPointRejections(t *testing.T) {
	c, _, _ := newTestController(t)

	_, ok := c.AddPoint(5, 100)
	assert.False(t, ok, "inside the padding")
	_, ok = c.AddPoint(100, 395)
	assert.False(t, ok, "inside the padding")

	_, ok = c.AddPoint(100, 100)
	require.True(t, ok)
	_, ok = c.AddPoint(110, 110)
	assert.False(t, ok, "too close to point 1")
	assert.Len(t, c.State().Points, 1)
	assert.Equal(t, 1, c.State().HistoryLen, "rejections leave no history")

	c.Reset()
	placeSeven(t, c)
	_, ok = c.AddPoint(470, 380)
	assert.False(t, ok, "eighth point")
	assert.Len(t, c.State().Points, 7)
}

func TestIdsAreNeverReused(t *testing.T) {
	c, _, _ := newTestController(t, WithDebounce(0))
	placeSeven(t, c)
	require.True(t, c.RemovePoint(3))
	p, ok := c.AddPoint(470, 380)
	require.True(t, ok, "below seven points the board takes a point again")
	assert.Equal(t, 8, p.ID)
	assert.True(t, c.State().Sequence.Active)
}

func TestRemovePointLocksMode(t *testing.T) {
	c, _, _ := newTestController(t, WithDebounce(0))

	assert.False(t, c.RemovePoint(1), "no sequence yet")
	placeSeven(t, c)

	require.True(t, c.SetMode(analysis.Killer), "mode may change before the first removal")
	require.True(t, c.SetMode(analysis.Survivor))

	assert.False(t, c.RemovePoint(42), "unknown id")
	require.True(t, c.RemovePoint(2))
	st := c.State()
	assert.True(t, st.Sequence.ModeLocked)
	assert.Equal(t, "Déjà-Vu Analysis (Mode Locked)", st.StatusMessage())

	assert.False(t, c.SetMode(analysis.Killer))
	assert.Equal(t, analysis.Survivor, c.State().Mode)
}

func TestRemovePointStopsAtThree(t *testing.T) {
	c, _, _ := newTestController(t, WithDebounce(0))
	placeSeven(t, c)
	before := c.State().Sequence

	for _, id := range []int{1, 2, 3, 4} {
		require.True(t, c.RemovePoint(id))
		st := c.State()
		assert.Equal(t, *before.IdealLoosest, *st.Sequence.IdealLoosest, "ideal perimeters are frozen")
		assert.Equal(t, *before.IdealTightest, *st.Sequence.IdealTightest)
	}
	assert.False(t, c.RemovePoint(5))
	st := c.State()
	assert.Len(t, st.Points, 3)
	require.NotNil(t, st.Analysis.Triangle)
	assert.Equal(t, [3]int{5, 6, 7}, st.Analysis.Triangle.IDs())
	assert.False(t, st.Analysis.HasRemoval, "no recommendation with three points")
	assert.True(t, st.Analysis.ShowMetrics)
	assert.Equal(t, 1, st.Generators())
}

func TestDebounceCoalescesChanges(t *testing.T) {
	c, clock, rec := newTestController(t)
	placeSeven(t, c)
	clock.Advance(DefaultDebounce)
	require.Equal(t, 1, rec.count(EventAnalysis))

	require.True(t, c.RemovePoint(1))
	clock.Advance(DefaultDebounce / 2)
	require.True(t, c.RemovePoint(2))
	clock.Advance(DefaultDebounce / 2)
	assert.Equal(t, 1, rec.count(EventAnalysis), "second change restarted the timer")
	assert.Equal(t, 1, clock.live())

	clock.Advance(DefaultDebounce / 2)
	assert.Equal(t, 2, rec.count(EventAnalysis))
	assert.Equal(t, 0, clock.live())
	assert.Len(t, c.State().Points, 5)
}

func TestFlushRunsPendingAnalysis(t *testing.T) {
	c, clock, rec := newTestController(t)
	assert.False(t, c.Flush())

	placeSeven(t, c)
	require.True(t, c.Flush())
	assert.Equal(t, 1, rec.count(EventAnalysis))
	assert.NotNil(t, c.State().Analysis.Triangle)

	clock.Advance(DefaultDebounce)
	assert.Equal(t, 1, rec.count(EventAnalysis), "flushed pass does not fire again")
}

func TestSurvivorIdealEndgame(t *testing.T) {
	c, clock, rec := newTestController(t)
	pts := placeSeven(t, c)
	loose, _ := analysis.FindOptimalTriangle(pts, analysis.Loosest)

	keepOnly(t, c, loose.IDs())
	assert.False(t, c.RemoveTriangleIdeal(), "analysis still pending")

	clock.Advance(DefaultDebounce)
	ev, fromListener := rec.last()
	assert.Equal(t, EventAnalysis, ev)
	assert.True(t, fromListener.Cues.IdealEndgame)
	assert.True(t, fromListener.Analysis.IdealEndgame)

	require.True(t, c.RemoveTriangleIdeal())
	st := c.State()
	assert.ElementsMatch(t, loose.IDs(), st.Exiting)
	assert.Equal(t, "Sequence complete! Board resetting...", st.StatusMessage())
	assert.Equal(t, 0, st.Generators())

	_, ok := c.AddPoint(250, 250)
	assert.False(t, ok)
	assert.False(t, c.Undo())
	assert.False(t, c.Reset())
	assert.False(t, c.SetMode(analysis.Killer))
	assert.False(t, c.RemoveTriangleIdeal())

	clock.Advance(DefaultExitDelay)
	ev, _ = rec.last()
	assert.Equal(t, EventExitComplete, ev)

	st = c.State()
	assert.Empty(t, st.Points)
	assert.Nil(t, st.Exiting)
	assert.False(t, st.Sequence.Active)
	assert.False(t, st.Sequence.ModeLocked)
	assert.Nil(t, st.Sequence.IdealLoosest)
	assert.Nil(t, st.Sequence.Initial)
	assert.Equal(t, 1, st.NextID)
	assert.Equal(t, 0, st.HistoryLen)
	assert.Equal(t, analysis.Survivor, st.Mode)
}

func TestKillerIdealEndgame(t *testing.T) {
	c, _, _ := newTestController(t, WithDebounce(0), WithExitDelay(0))
	pts := placeSeven(t, c)
	require.True(t, c.SetMode(analysis.Killer))
	tight, _ := analysis.FindOptimalTriangle(pts, analysis.Tightest)

	keepOnly(t, c, tight.IDs())
	st := c.State()
	require.True(t, st.Analysis.IdealEndgame)
	assert.Equal(t, "Three-gen Analysis (Mode Locked)", st.StatusMessage())

	require.True(t, c.RemoveTriangleIdeal())
	st = c.State()
	assert.Empty(t, st.Points)
	assert.False(t, st.Sequence.Active)
	assert.Equal(t, analysis.Killer, st.Mode)
}

func TestRemoveTriangleIdealNeedsIdealTriangle(t *testing.T) {
	c, _, _ := newTestController(t, WithDebounce(0))
	pts := placeSeven(t, c)
	tight, _ := analysis.FindOptimalTriangle(pts, analysis.Tightest)

	// Survivor is judged against the loosest triangle, so ending on the
	// tightest one is not ideal.
	keepOnly(t, c, tight.IDs())
	st := c.State()
	require.Len(t, st.Points, 3)
	require.NotNil(t, st.Analysis.Triangle)
	assert.False(t, st.Analysis.IdealEndgame)
	assert.False(t, c.RemoveTriangleIdeal())
	assert.Len(t, c.State().Points, 3)
}

func TestUndoRestoresSnapshots(t *testing.T) {
	c, clock, _ := newTestController(t)
	placeSeven(t, c)
	require.True(t, c.RemovePoint(4))
	require.True(t, c.State().Sequence.ModeLocked)

	require.True(t, c.Undo())
	st := c.State()
	assert.Len(t, st.Points, 7)
	assert.True(t, st.Sequence.Active)
	assert.False(t, st.Sequence.ModeLocked, "lock is part of the snapshot")
	assert.True(t, st.Pending, "undo re-arms the analysis")
	assert.True(t, c.SetMode(analysis.Killer))

	require.True(t, c.Undo())
	st = c.State()
	assert.Len(t, st.Points, 6)
	assert.Equal(t, 7, st.NextID)
	assert.False(t, st.Sequence.Active)
	assert.Nil(t, st.Sequence.IdealLoosest)
	assert.False(t, st.Pending, "inactive sequence cancels pending analysis")
	assert.Nil(t, st.Analysis.Triangle)
	assert.Equal(t, 0, clock.live())

	for c.Undo() {
	}
	st = c.State()
	assert.Empty(t, st.Points)
	assert.Equal(t, 1, st.NextID)
	assert.Equal(t, 0, st.HistoryLen)
}

func TestHistorySnapshotsAreIndependent(t *testing.T) {
	c, _, _ := newTestController(t, WithDebounce(0))
	placeSeven(t, c)
	st := c.State()
	st.Points[0].X = -1
	*st.Sequence.IdealLoosest = -1

	require.True(t, c.RemovePoint(1))
	require.True(t, c.Undo())
	st = c.State()
	assert.Equal(t, 50.0, st.Points[0].X)
	assert.NotEqual(t, -1.0, *st.Sequence.IdealLoosest)
}

func TestResetKeepsMode(t *testing.T) {
	c, clock, _ := newTestController(t)
	require.True(t, c.SetMode(analysis.Killer))
	placeSeven(t, c)
	require.True(t, c.Reset())

	st := c.State()
	assert.Empty(t, st.Points)
	assert.Equal(t, 1, st.NextID)
	assert.Equal(t, 0, st.HistoryLen)
	assert.False(t, st.Sequence.Active)
	assert.Equal(t, analysis.Killer, st.Mode)
	assert.Equal(t, 0, clock.live())
}

func TestSetModeReanalyses(t *testing.T) {
	c, _, rec := newTestController(t, WithDebounce(0))
	pts := placeSeven(t, c)

	require.True(t, c.SetMode(analysis.Killer))
	_, fromListener := rec.last()
	assert.True(t, fromListener.Cues.ModeChanged)

	loose, _ := analysis.FindOptimalTriangle(pts, analysis.Loosest)
	st := c.State()
	require.NotNil(t, st.Analysis.Triangle)
	assert.Equal(t, loose.IDs(), st.Analysis.Triangle.IDs())
	assert.Equal(t, "Three-gen Analysis", st.StatusMessage())
}

func TestRealClockDebounce(t *testing.T) {
	done := make(chan State, 1)
	c := New(
		WithDebounce(5*time.Millisecond),
		WithLogger(log.New(io.Discard, "", 0)),
		WithListener(func(ev Event, st State) {
			if ev == EventAnalysis {
				done <- st
			}
		}),
	)
	placeSeven(t, c)

	select {
	case st := <-done:
		assert.NotNil(t, st.Analysis.Triangle)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for analysis")
	}
}

func TestOptionPanics(t *testing.T) {
	assert.Panics(t, func() { WithClock(nil) })
	assert.Panics(t, func() { WithLogger(nil) })
}

func TestModeOption(t *testing.T) {
	c, _, _ := newTestController(t, WithMode(analysis.Killer), WithDebounce(0))
	assert.Equal(t, analysis.Killer, c.State().Mode)

	pts := placeSeven(t, c)
	tight, _ := analysis.FindOptimalTriangle(pts, analysis.Tightest)
	assert.Equal(t, tight.IDs(), c.State().Analysis.Triangle.IDs())
}

func TestAddPointRejectsNonFinite(t *testing.T) {
	c, _, rec := newTestController(t, WithDebounce(0))

	for _, bad := range [][2]float64{
		{math.NaN(), 100}, {100, math.NaN()}, {math.Inf(1), 100}, {100, math.Inf(-1)},
	} {
		_, ok := c.AddPoint(bad[0], bad[1])
		assert.False(t, ok, "%v", bad)
	}
	assert.Empty(t, c.State().Points)
	assert.Zero(t, rec.count(EventAction))

	pts := placeSeven(t, c)
	seq := c.State().Sequence
	loose, _ := analysis.FindOptimalTriangle(pts, analysis.Loosest)
	require.NotNil(t, seq.IdealLoosest)
	assert.Equal(t, loose.Perimeter, *seq.IdealLoosest)
}

func TestVersionOrdersRacingNotifications(t *testing.T) {
	clock := &manualClock{}
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	var mu sync.Mutex
	blocking := false
	var delivered []State
	var newest State

	listen := func(ev Event, st State) {
		mu.Lock()
		hold := blocking && ev == EventAnalysis
		mu.Unlock()
		if hold {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, st)
		if st.Version > newest.Version {
			newest = st
		}
	}
	c := New(WithClock(clock), WithListener(listen), WithLogger(log.New(io.Discard, "", 0)))
	placeSeven(t, c)

	mu.Lock()
	blocking = true
	mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		clock.Advance(DefaultDebounce)
	}()
	<-entered

	// The analysis pass is stuck in the listener while a newer action lands.
	require.True(t, c.RemovePoint(1))
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	last := delivered[len(delivered)-1]
	assert.Len(t, last.Points, 7, "the late analysis state arrives last")
	assert.Len(t, newest.Points, 6)
	assert.True(t, newest.Pending)
	assert.Greater(t, newest.Version, last.Version)
	assert.Equal(t, newest.Version, c.State().Version)
	for i := 1; i < len(delivered)-1; i++ {
		assert.Greater(t, delivered[i].Version, delivered[i-1].Version)
	}
}
