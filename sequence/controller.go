// Package sequence drives the analysis of a board of generators: it accepts
// the player's actions, starts a sequence when the seventh generator lands,
// freezes the endgame targets, keeps an undo history and re-runs the analysis
// after every change.
//
// A Controller is safe for concurrent use. Actions are serialised on an
// internal mutex, and the debounced analysis pass takes the same mutex when
// it fires, so there is only ever one logical actor on the board.
package sequence

import (
	"log"
	"sync"
	"time"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/geometry"
)

const (
	DefaultDebounce  = 150 * time.Millisecond
	DefaultExitDelay = time.Second
)

// Option customises a Controller.
type Option func(*Controller)

// WithDebounce sets the delay between a change and its analysis pass. Zero
// analyses synchronously inside the action.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithExitDelay sets how long the endgame exit animation runs before the
// board resets. Zero resets inside RemoveTriangleIdeal.
func WithExitDelay(d time.Duration) Option {
	return func(c *Controller) { c.exitDelay = d }
}

func WithClock(clock Clock) Option {
	if clock == nil {
		panic("sequence: WithClock(nil)")
	}
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(l *log.Logger) Option {
	if l == nil {
		panic("sequence: WithLogger(nil)")
	}
	return func(c *Controller) { c.logger = l }
}

// WithListener registers fn to receive a State after every accepted action,
// every completed analysis pass and the end of the exit animation. fn runs
// without the controller lock held, possibly on a timer goroutine, so two
// calls can race; State.Version orders them.
func WithListener(fn func(Event, State)) Option {
	return func(c *Controller) { c.listener = fn }
}

func WithMode(m analysis.Mode) Option {
	return func(c *Controller) { c.mode = m }
}

type Controller struct {
	mu sync.Mutex

	clock     Clock
	debounce  time.Duration
	exitDelay time.Duration
	board     geometry.Board
	logger    *log.Logger
	listener  func(Event, State)

	points  []geometry.Point
	nextID  int
	mode    analysis.Mode
	seq     Sequence
	result  Analysis
	history []snapshot
	exiting []int
	cues    Cues
	version uint64

	pending    Timer
	pendingGen uint64
	exitTimer  Timer
	exitGen    uint64
}

func New(opts ...Option) *Controller {
	c := &Controller{
		clock:     RealClock,
		debounce:  DefaultDebounce,
		exitDelay: DefaultExitDelay,
		board:     geometry.DefaultBoard(),
		logger:    log.Default(),
		nextID:    1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddPoint places a generator at (x, y). It is rejected while exiting, when
// seven generators are already down, outside the padded board, or closer than
// the minimum separation to another generator.
func (c *Controller) AddPoint(x, y float64) (geometry.Point, bool) {
	c.mu.Lock()
	if c.exiting != nil || len(c.points) >= MaxPoints || !c.board.CanPlace(x, y, c.points) {
		c.mu.Unlock()
		return geometry.Point{}, false
	}
	c.pushHistory()
	p := geometry.Point{ID: c.nextID, X: x, Y: y}
	c.points = append(geometry.Clone(c.points), p)
	c.nextID++
	if len(c.points) == MaxPoints && !c.seq.Active {
		c.startSequence()
	}
	c.changed()
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventAction, st)
	return p, true
}

// RemovePoint takes a generator off the board during a sequence. The last
// three can only leave through RemoveTriangleIdeal.
func (c *Controller) RemovePoint(id int) bool {
	c.mu.Lock()
	if c.exiting != nil || !c.seq.Active || len(c.points) <= MinRemaining || geometry.IndexOf(c.points, id) < 0 {
		c.mu.Unlock()
		return false
	}
	c.pushHistory()
	c.points = geometry.Without(c.points, id)
	if !c.seq.ModeLocked && len(c.points) >= MinRemaining && len(c.points) < MaxPoints {
		c.seq.ModeLocked = true
		c.logger.Printf("sequence: mode locked on %s", c.mode)
	}
	c.changed()
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventAction, st)
	return true
}

// RemoveTriangleIdeal clears the final three generators. It only works when
// the latest analysis flagged them as the ideal endgame for the mode. The
// board resets after the exit delay and ends the sequence.
func (c *Controller) RemoveTriangleIdeal() bool {
	c.mu.Lock()
	if c.exiting != nil || !c.seq.Active || len(c.points) != MinRemaining ||
		c.pending != nil || c.result.Triangle == nil || !c.result.IdealEndgame {
		c.mu.Unlock()
		return false
	}
	c.pushHistory()
	ids := c.result.Triangle.IDs()
	c.exiting = ids[:]
	c.cancelPending()
	c.cues.IdealEndgame = false
	c.logger.Printf("sequence: ideal %s endgame reached, perimeter %.2f", c.mode, c.result.Triangle.Perimeter)

	ev := EventAction
	if c.exitDelay <= 0 {
		c.resetBoard()
		ev = EventExitComplete
	} else {
		c.exitGen++
		gen := c.exitGen
		c.exitTimer = c.clock.AfterFunc(c.exitDelay, func() { c.finishExit(gen) })
	}
	st := c.takeState()
	c.mu.Unlock()

	c.notify(ev, st)
	return true
}

// Undo restores the state captured before the last accepted action.
func (c *Controller) Undo() bool {
	c.mu.Lock()
	if c.exiting != nil || len(c.history) == 0 {
		c.mu.Unlock()
		return false
	}
	last := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	c.points = geometry.Clone(last.points)
	c.nextID = last.nextID
	c.seq = last.sequence.clone()
	c.cues = Cues{}
	c.result.ShowMetrics = false
	c.changed()
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventAction, st)
	return true
}

// Reset clears the board, the sequence and the history. The mode is kept.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	if c.exiting != nil {
		c.mu.Unlock()
		return false
	}
	c.resetBoard()
	c.logger.Printf("sequence: board reset")
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventAction, st)
	return true
}

// SetMode switches between survivor and killer. It is rejected once the
// mode is locked for the running sequence.
func (c *Controller) SetMode(m analysis.Mode) bool {
	c.mu.Lock()
	if c.exiting != nil || c.seq.ModeLocked {
		c.mu.Unlock()
		return false
	}
	c.mode = m
	c.cues.ModeChanged = true
	c.changed()
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventAction, st)
	return true
}

// Flush runs a pending analysis pass now instead of waiting for the
// debounce. It reports whether one was pending.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return false
	}
	c.cancelPending()
	c.runAnalysis()
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventAnalysis, st)
	return true
}

// State returns a copy of the current state. Cues are only delivered to the
// listener and are always zero here.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) startSequence() {
	loose, _ := analysis.FindOptimalTriangle(c.points, analysis.Loosest)
	tight, _ := analysis.FindOptimalTriangle(c.points, analysis.Tightest)
	lp, tp := loose.Perimeter, tight.Perimeter
	c.seq = Sequence{
		Active:        true,
		IdealLoosest:  &lp,
		IdealTightest: &tp,
		Initial:       geometry.Clone(c.points),
	}
	c.cues.SequenceStarted = true
	c.logger.Printf("sequence: started, ideal loosest %.2f, ideal tightest %.2f", lp, tp)
}

// changed re-arms the analysis after the board, mode or sequence changed.
func (c *Controller) changed() {
	if c.exiting != nil {
		return
	}
	c.cancelPending()
	if !c.seq.Active {
		c.result = Analysis{}
		return
	}
	if c.debounce <= 0 {
		c.runAnalysis()
		return
	}
	gen := c.pendingGen
	c.pending = c.clock.AfterFunc(c.debounce, func() { c.fire(gen) })
}

func (c *Controller) cancelPending() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.pendingGen++
}

// fire is the debounced pass. A pass that lost the race with a newer change
// or a cancellation sees a different generation and does nothing.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.pending == nil || gen != c.pendingGen || c.exiting != nil {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.runAnalysis()
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventAnalysis, st)
}

func (c *Controller) runAnalysis() {
	if c.seq.Active && len(c.points) < MinRemaining {
		c.seq.Active = false
		c.seq.ModeLocked = false
	}
	c.result = Analyze(c.points, c.mode, c.seq)
	if c.result.IdealEndgame {
		c.cues.IdealEndgame = true
	}
}

func (c *Controller) finishExit(gen uint64) {
	c.mu.Lock()
	if c.exiting == nil || gen != c.exitGen {
		c.mu.Unlock()
		return
	}
	c.resetBoard()
	c.logger.Printf("sequence: exit complete, board reset")
	st := c.takeState()
	c.mu.Unlock()

	c.notify(EventExitComplete, st)
}

func (c *Controller) resetBoard() {
	c.cancelPending()
	if c.exitTimer != nil {
		c.exitTimer.Stop()
		c.exitTimer = nil
	}
	c.exitGen++
	c.points = nil
	c.nextID = 1
	c.history = nil
	c.seq = Sequence{}
	c.result = Analysis{}
	c.exiting = nil
	c.cues = Cues{}
}

func (c *Controller) pushHistory() {
	c.history = append(c.history, snapshot{
		points:   geometry.Clone(c.points),
		nextID:   c.nextID,
		sequence: c.seq.clone(),
	})
}

func (c *Controller) stateLocked() State {
	st := State{
		Version:    c.version,
		Points:     geometry.Clone(c.points),
		NextID:     c.nextID,
		Mode:       c.mode,
		Sequence:   c.seq.clone(),
		Analysis:   c.result,
		Pending:    c.pending != nil,
		HistoryLen: len(c.history),
	}
	if c.result.Triangle != nil {
		tri := *c.result.Triangle
		st.Analysis.Triangle = &tri
	}
	if c.exiting != nil {
		st.Exiting = append([]int(nil), c.exiting...)
	}
	return st
}

// takeState is stateLocked plus the cues raised since the last notification,
// stamped with the next version.
func (c *Controller) takeState() State {
	c.version++
	st := c.stateLocked()
	st.Cues = c.cues
	c.cues = Cues{}
	return st
}

func (c *Controller) notify(ev Event, st State) {
	if c.listener != nil {
		c.listener(ev, st)
	}
}
