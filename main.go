package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/tiggercwh/go-dejavu/console"
	"github.com/tiggercwh/go-dejavu/gameModel"
	"github.com/tiggercwh/go-dejavu/sequence"
)

// game is the offline board. Analysis runs inside each command so the
// listener always holds the state to draw next.
type game struct {
	ctrl    *sequence.Controller
	started time.Time
	last    *sequence.State
}

func newGame() *game {
	g := &game{started: time.Now()}
	g.ctrl = sequence.New(
		sequence.WithDebounce(0),
		sequence.WithExitDelay(0),
		sequence.WithLogger(log.New(io.Discard, "", 0)),
		sequence.WithListener(func(_ sequence.Event, st sequence.State) {
			if g.last == nil || st.Version > g.last.Version {
				g.last = &st
			}
		}),
	)
	return g
}

// view returns the state from the last notification, falling back to a
// fresh snapshot when nothing changed.
func (g *game) view() gameModel.GameState {
	st := g.ctrl.State()
	if g.last != nil {
		st = *g.last
		g.last = nil
	}
	return gameModel.FromState("local", st, g.started, time.Now())
}

// apply runs one command and reports whether the board accepted it.
func (g *game) apply(cmd console.Command) (bool, string) {
	switch cmd.Kind {
	case console.Add:
		p, ok := g.ctrl.AddPoint(cmd.X, cmd.Y)
		if !ok {
			return false, "Point rejected: the board is full, the spot is off the grid or too close to another generator."
		}
		return true, fmt.Sprintf("Point %d added.", p.ID)
	case console.Remove:
		if !g.ctrl.RemovePoint(cmd.ID) {
			return false, fmt.Sprintf("Point %d cannot be removed.", cmd.ID)
		}
		return true, fmt.Sprintf("Point %d removed.", cmd.ID)
	case console.Endgame:
		if !g.ctrl.RemoveTriangleIdeal() {
			return false, "The remaining three generators are not the ideal endgame."
		}
		return true, "Sequence complete!"
	case console.Undo:
		if !g.ctrl.Undo() {
			return false, "Nothing to undo."
		}
		return true, "Last action undone."
	case console.Reset:
		return g.ctrl.Reset(), "Board reset."
	case console.ToggleMode:
		cmd.Mode = g.ctrl.State().Mode.Toggle()
		fallthrough
	case console.SetMode:
		if !g.ctrl.SetMode(cmd.Mode) {
			return false, "Mode is locked for this sequence."
		}
		return true, "Mode set to " + cmd.Mode.String() + "."
	}
	return true, ""
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Welcome to the Déjà-Vu trainer!")
	fmt.Println(console.Usage)

	g := newGame()
	console.Render(os.Stdout, g.view())

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		cmd, err := console.Parse(scanner.Text())
		if err != nil {
			fmt.Println(err)
			continue
		}

		switch cmd.Kind {
		case console.Quit:
			return
		case console.Help:
			fmt.Println(console.Usage)
			continue
		case console.Show:
			console.Render(os.Stdout, g.view())
			continue
		}

		ok, msg := g.apply(cmd)
		if msg != "" {
			fmt.Println(msg)
		}
		if ok {
			console.Render(os.Stdout, g.view())
		}
	}
}
