package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mcfarljm/dlchess-go/pkg/engine"
	"github.com/mcfarljm/dlchess-go/pkg/engine/console"
	"github.com/mcfarljm/dlchess-go/pkg/engine/uci"
	"github.com/mcfarljm/dlchess-go/pkg/nn"
	"github.com/mcfarljm/dlchess-go/pkg/search"
	"github.com/seekerror/logw"
)

var (
	hash   = flag.Uint("hash", 200_000, "Evaluation cache capacity, in positions")
	rounds = flag.Uint("rounds", 800, "Default playout budget per move, if no time control is given")
	noise  = flag.Bool("noise", false, "Add Dirichlet root noise (for self-play, not match play)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: dlchesszero [options]

DLCHESSZERO is an AlphaZero-style UCI chess engine driven by a PUCT search.
With no trained model wired in, it falls back to a uniform-prior evaluator.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	searchOpts := search.NewOptions().With(search.WithNoise(*noise))

	e := engine.New(ctx, "dlchesszero", "mcfarljm",
		engine.WithEvaluator(nn.Uniform{}),
		engine.WithOptions(engine.Options{Hash: *hash, Rounds: *rounds}),
		engine.WithSearchOptions(searchOpts),
		engine.WithZobrist(time.Now().UnixNano()),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
