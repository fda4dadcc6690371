// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/board/fen"
	"github.com/mcfarljm/dlchess-go/pkg/engine"
	"github.com/mcfarljm/dlchess-go/pkg/search"
	"github.com/mcfarljm/dlchess-go/pkg/search/timectrl"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Option is a UCI driver option.
type Option func(*options)

type options struct {
	timeManager timectrl.TimeManager
}

// WithTimeManager overrides the default clock-to-budget policy used for "go" commands
// that report wtime/btime rather than an explicit movetime.
func WithTimeManager(tm timectrl.TimeManager) Option {
	return func(opt *options) {
		opt.timeManager = tm
	}
}

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e   *engine.Engine
	opt options

	out chan<- string

	active atomic.Bool    // user is waiting for engine to move
	ponder chan search.PV // chan for the one PV a completed search delivers

	lastPosition string // last position line (empty if no last position)

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, opts ...Option) (*Driver, <-chan string) {
	opt := options{timeManager: timectrl.NewSimple()}
	for _, fn := range opts {
		fn(&opt)
	}

	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		opt:    opt,
		out:    out,
		ponder: make(chan search.PV, 10),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CompareAndSwap(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	// * uci
	//
	//	tell engine to use the uci (universal chess interface),
	//	this will be send once as a first command after program boot
	//	to tell the engine to switch to uci mode.
	//	After receiving the uci command the engine must identify itself with the "id" command
	//	and sent the "option" commands to tell the GUI which engine settings the engine supports if any.
	//	After that the engine should sent "uciok" to acknowledge the uci mode.
	//	If no uciok is sent within a certain time period, the engine task will be killed by the GUI.

	logw.Infof(ctx, "UCI protocol initialized")

	// * id
	//	* name <x>
	//		this must be sent after receiving the "uci" command to identify the engine,
	//		e.g. "id name Shredder X.Y\n"
	//	* author <x>
	//		this must be sent after receiving the "uci" command to identify the engine,
	//		e.g. "id author Stefan MK\n"

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	// * option
	//	This command tells the GUI which parameters can be changed in the engine.
	//	This should be sent once at engine startup after the "uci" and the "id" commands
	//	if any parameter can be changed in the engine.
	//	* <id> = Hash, type is spin
	//		the value in MB for memory for hash tables can be changed. Here it is the
	//		evaluation cache capacity, in positions rather than MB.
	//	* <id> = playouts, type is spin
	//		the default playout budget for a search with no time control.
	//	* <id> = noise, type is check
	//		whether to mix Dirichlet noise into the root's priors (self-play exploration,
	//		not used in match play).

	d.out <- fmt.Sprintf("option name Hash type spin default %v min 0 max 10000000", d.e.Options().Hash)
	d.out <- fmt.Sprintf("option name playouts type spin default %v min 1 max 100000", d.e.Options().Rounds)
	d.out <- fmt.Sprintf("option name noise type check default false")

	// * uciok
	//
	//	Must be sent after the id and optional options to tell the GUI that the engine
	//	has sent all infos and is ready in uci mode.

	d.out <- fmt.Sprintf("uciok")

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
			case "isready":
				// * isready
				//
				//  this is used to synchronize the engine with the GUI. When the GUI has sent a command or
				//	multiple commands that can take some time to complete,
				//	this command can be used to wait for the engine to be ready again or
				//	to ping the engine to find out if it is still alive.

				// * readyok
				//
				//	This must be sent when the engine has received an "isready" command and has
				//	processed all input and is ready to accept new commands now.

				d.out <- "readyok"

			case "debug":
				// * debug [ on | off ]
				//
				//	switch the debug mode of the engine on and off. Not implemented: this engine
				//	logs via its own logging, not "info string".

			case "setoption":
				// * setoption name <id> [value <x>]
				//
				//	this is sent to the engine when the user wants to change the internal parameters
				//	of the engine. For the "button" type no value is needed.

				var name, value string
				if len(args) > 1 {
					name = args[1]
				}
				if len(args) > 3 {
					value = args[3]
				}

				switch name {
				case "Hash":
					if n, err := strconv.Atoi(value); err == nil && n >= 0 {
						d.e.SetHash(uint(n))
					}
				case "playouts":
					if n, err := strconv.Atoi(value); err == nil && n > 0 {
						d.e.SetRounds(uint(n))
					}
				case "noise":
					if add, err := strconv.ParseBool(value); err == nil {
						d.e.SetNoise(add)
					}
				}

			case "register":
				// * register
				//
				//	this is the command to try to register an engine or to tell the engine that registration
				//	will be done later. Not relevant: this engine requires no registration.

			case "ucinewgame":
				// * ucinewgame
				//
				//   this is sent to the engine when the next search (started with "position" and "go") will be from
				//   a different game.

				d.ensureInactive(ctx)
				d.lastPosition = ""

			case "position":
				// * position [fen <fenstring> | startpos ]  moves <move1> .... <movei>
				//
				//	set up the position described in fenstring on the internal board and
				//	play the moves on the internal chess board.

				d.ensureInactive(ctx)

				if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
					// Continuation of game.

					moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
					for _, arg := range strings.Split(moves, " ") {
						if arg == "" || arg == "moves" {
							continue
						}

						if err := d.e.Move(ctx, arg); err != nil {
							logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
							return
						}
					}

					d.lastPosition = line
					break
				}

				// New position.

				position := fen.Initial
				if len(args) >= 7 && args[0] == "fen" {
					position = strings.Join(args[1:7], " ")
				}

				if err := d.e.Reset(ctx, position); err != nil {
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
				d.lastPosition = line

			case "go":
				// * go
				//
				//	start calculating on the current position set up with the "position" command.
				//	* wtime <x> / btime <x>
				//		side has x msec left on the clock
				//	* winc <x> / binc <x>
				//		side's increment per move in msec, if x > 0
				//	* movestogo <x>
				//		moves remaining to the next time control (sudden death if absent)
				//	* depth <x>
				//		search x plies only; approximated here as a playout round cap
				//	* nodes <x>
				//		search x nodes only
				//	* movetime <x>
				//		search exactly x msec
				//	* infinite
				//		search until the "stop" command. Do not exit the search without being told so in this mode!

				d.ensureInactive(ctx)

				var wtime, btime, winc, binc time.Duration
				var movetime time.Duration
				var opts []search.Option
				infinite := false

				for i := 0; i < len(args); i++ {
					cmd := args[i]
					switch cmd {
					case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "movetime":
						i++
						if i == len(args) {
							logw.Errorf(ctx, "No argument for %v: %v", cmd, line)
							return
						}
						n, err := strconv.Atoi(args[i])
						if err != nil {
							logw.Errorf(ctx, "Invalid argument for %v: %v", line, err)
							return
						}

						switch cmd {
						case "wtime":
							wtime = time.Millisecond * time.Duration(n)
						case "btime":
							btime = time.Millisecond * time.Duration(n)
						case "winc":
							winc = time.Millisecond * time.Duration(n)
						case "binc":
							binc = time.Millisecond * time.Duration(n)
						case "movestogo":
							// Not modeled by either TimeManager policy: ignored.
						case "depth":
							opts = append(opts, search.WithNumRounds(n))
						case "nodes":
							opts = append(opts, search.WithNumVisits(n))
						case "movetime":
							movetime = time.Millisecond * time.Duration(n)
						}

					case "infinite":
						infinite = true

					default:
						// silently ignore anything not handled (ponder, searchmoves, mate).
					}
				}

				switch {
				case infinite:
					// No budget: runs until "stop".
				case movetime > 0:
					opts = append(opts, search.WithTimeLimit(movetime))
				case wtime > 0 || btime > 0:
					timeLeft, increment := wtime, winc
					if d.e.Side() == board.Black {
						timeLeft, increment = btime, binc
					}
					budget := d.opt.timeManager.Budget(timeLeft, increment, d.e.Ply())
					if budget > 0 {
						opts = append(opts, search.WithTimeLimit(budget))
					}
				}

				out, err := d.e.Analyze(ctx, opts...)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					return
				}
				d.active.Store(true)

				go func() {
					for pv := range out {
						if !infinite {
							d.searchCompleted(pv)
						} else {
							d.ponder <- pv
						}
					}
				}()

			case "stop":
				// * stop
				//
				//	stop calculating as soon as possible,
				//	don't forget the "bestmove" token when finishing the search

				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(pv)
				}

			case "ponderhit":
				// * ponderhit
				//
				//	the user has played the expected move. Pondering is not implemented, so this
				//	is a no-op.

			case "quit":
				// * quit
				//
				//	quit the program as soon as possible

				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case pv := <-d.ponder:
			// * info
			//	the engine wants to send infos to the GUI, e.g.
			//	"info depth 12 score cp 214 time 1242 nodes 2124 nps 34928 pv e2e4"

			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.quit:
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
		// * bestmove <move1> [ ponder <move2> ]
		//
		//	the engine has stopped searching and found the move <move> best in this position.
		//	this command must always be sent if the engine stops searching, also in pondering mode if there is a
		//	"stop" command, so for every "go" command a "bestmove" command is needed!
		//	Directly before that the engine should send a final "info" command with the final search information,
		//	so the GUI has the complete statistics about the last search.

		d.out <- printPV(pv)
		d.out <- fmt.Sprintf("bestmove %v", printMove(pv.BestMove))
	} // else: stale or duplicate result
}

func printPV(pv search.PV) string {
	// "info depth 2 score cp 214 nodes 2124 time 1242 nps 34928 pv e2e4"

	parts := []string{"info"}
	if pv.Depth > 0 {
		parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	}
	if pv.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %v", pv.SelDepth))
	}
	parts = append(parts, fmt.Sprintf("score cp %v", pv.ScoreCp))
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(pv.Nodes)*uint64(time.Second)/uint64(pv.Time)))
	}
	parts = append(parts, fmt.Sprintf("pv %v", printMove(pv.BestMove)))

	return strings.Join(parts, " ")
}

func printMove(m board.Move) string {
	return m.String()
}
