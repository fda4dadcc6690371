// Package console provides a plain-text debug driver for the engine, independent of
// the UCI protocol: useful for manual exploration from a terminal.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/mcfarljm/dlchess-go/pkg/board/fen"
	"github.com/mcfarljm/dlchess-go/pkg/engine"
	"github.com/mcfarljm/dlchess-go/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

const ProtocolName = "console"

// Driver implements a console driver for debugging.
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard()

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Split(strings.TrimSpace(line), " ")
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "reset", "r":
				// reset [<fenstring>] moves ...

				d.ensureInactive(ctx)

				pos := fen.Initial
				if len(args) > 0 && args[0] != "moves" {
					pos = strings.Join(args[0:6], " ")
				}
				if err := d.e.Reset(ctx, pos); err != nil {
					logw.Errorf(ctx, "Invalid position: %v", line)
					return
				}
				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}

					if err := d.e.Move(ctx, arg); err != nil {
						logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
						return
					}
				}
				d.printBoard()

			case "undo", "u":
				d.ensureInactive(ctx)

				_ = d.e.TakeBack(ctx)
				d.printBoard()

			case "print", "p":
				d.printBoard()

			case "analyze", "a":
				d.ensureInactive(ctx)

				if len(args) > 0 {
					if rounds, err := strconv.Atoi(args[0]); err == nil {
						d.e.SetRounds(uint(rounds))
					}
				}

				out, err := d.e.Analyze(ctx)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					return
				}
				d.active.Store(true)

				go func() {
					for pv := range out {
						d.searchCompleted(pv)
					}
				}()

			case "rounds":
				if len(args) > 0 {
					rounds, _ := strconv.Atoi(args[0])
					d.e.SetRounds(uint(rounds))
				}

			case "hash": // evaluation cache capacity, in positions
				if len(args) > 0 {
					hash, _ := strconv.Atoi(args[0])
					d.e.SetHash(uint(hash))
				}

			case "halt", "stop":
				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(pv)
				}

			case "quit", "exit", "q":
				d.ensureInactive(ctx)
				return

			case "":
				// ignore empty command

			default:
				// Assume move if not a recognized command.

				d.ensureInactive(ctx)
				if err := d.e.Move(ctx, cmd); err != nil {
					d.out <- fmt.Sprintf("invalid move: '%v'", cmd)
				} else {
					d.printBoard()
				}
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(pv search.PV) {
	if d.active.CompareAndSwap(true, false) {
		d.out <- pv.String()
		d.out <- fmt.Sprintf("bestmove %v", pv.BestMove)
	} // else: stale or duplicate result
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard() {
	position := d.e.Position()
	ranks := strings.Split(strings.Fields(position)[0], "/")

	d.out <- ""
	d.out <- files
	d.out <- horizontal
	for i, rank := range ranks {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(8 - i))
		sb.WriteString(vertical)
		for _, c := range rank {
			if digit, err := strconv.Atoi(string(c)); err == nil {
				for j := 0; j < digit; j++ {
					sb.WriteString(" ")
					sb.WriteString(vertical)
				}
				continue
			}
			sb.WriteRune(c)
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal
	}
	d.out <- files
	d.out <- ""
	d.out <- fmt.Sprintf("fen: %v", position)
	d.out <- ""
}
