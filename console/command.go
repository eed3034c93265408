// Package console is the line-oriented front end shared by the offline game
// and the network client: it parses player commands and draws a board state
// with ANSI colours.
package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/geometry"
)

type Kind int

const (
	Add Kind = iota
	Remove
	Endgame
	Undo
	Reset
	SetMode
	ToggleMode
	Show
	Help
	Quit
)

type Command struct {
	Kind Kind
	X, Y float64
	ID   int
	Mode analysis.Mode
}

const Usage = `Commands:
  add X Y                place a generator
  rm ID                  remove a generator
  end                    remove the final three when they are the ideal endgame
  undo                   revert the last action
  reset                  clear the board
  mode [survivor|killer] switch mode before the first removal; bare mode toggles
  show                   redraw the board
  help                   print this text
  quit                   leave`

// Parse reads one command line. Verbs are case-insensitive.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "add", "a":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("usage: add X Y")
		}
		x, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Command{}, fmt.Errorf("bad x %q: %w", args[0], err)
		}
		y, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return Command{}, fmt.Errorf("bad y %q: %w", args[1], err)
		}
		if !geometry.Finite(x, y) {
			return Command{}, fmt.Errorf("coordinates must be finite numbers")
		}
		return Command{Kind: Add, X: x, Y: y}, nil
	case "rm", "remove":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: rm ID")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("bad id %q: %w", args[0], err)
		}
		return Command{Kind: Remove, ID: id}, nil
	case "mode":
		if len(args) == 0 {
			return Command{Kind: ToggleMode}, nil
		}
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: mode [survivor|killer]")
		}
		m, err := analysis.ParseMode(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: SetMode, Mode: m}, nil
	}

	if len(args) != 0 {
		return Command{}, fmt.Errorf("%s takes no arguments", verb)
	}
	switch verb {
	case "end", "endgame":
		return Command{Kind: Endgame}, nil
	case "undo", "u":
		return Command{Kind: Undo}, nil
	case "reset":
		return Command{Kind: Reset}, nil
	case "show", "s":
		return Command{Kind: Show}, nil
	case "help", "?":
		return Command{Kind: Help}, nil
	case "quit", "q", "exit":
		return Command{Kind: Quit}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", verb)
}
