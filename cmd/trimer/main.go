package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/bench"
	"github.com/onehalfatsquared/cpfold/bond"
	"github.com/onehalfatsquared/cpfold/mfpt"
)

var (
	config   = flag.String("config", "", "yaml configuration file")
	nsteps   = flag.Int("n", 100000, "number of sampler steps")
	thin     = flag.Int("thin", 100, "print the bond angle every thin steps")
	sigma    = flag.Float64("sigma", 0, "proposal standard deviation (0 keeps the configured value)")
	seed     = flag.Int64("seed", -1, "random seed (negative keeps the configured value)")
	estimate = flag.Bool("mfpt", false, "also estimate the mean time for the chain to close into a triangle")
	naive    = flag.Bool("naive", false, "use the naive first passage estimator")
	dbname   = flag.String("db", "", "sqlite file to record estimates in")
	verbose  = flag.Bool("v", false, "log progress")
)

func main() {
	flag.Parse()

	cfg := cpfold.Default(2)
	if *config != "" {
		var err error
		if cfg, err = cpfold.Load(*config); err != nil {
			fatal(err)
		}
	}
	if *sigma > 0 {
		cfg.Sigma = *sigma
	}
	if *seed >= 0 {
		cfg.Seed = *seed
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	log := cpfold.NewTextLogger(level)

	sys := bench.Trimer{}
	r, err := bench.Benchmark(sys, cfg, *nsteps, *thin, cpfold.NewRng(cfg.Seed))
	if err != nil {
		fatal(err)
	}

	sum := 0.0
	for _, x := range r.Samples {
		theta := bond.BondAngle(x, sys.Dim())
		sum += theta
		fmt.Printf("%.6f\n", theta)
	}
	fmt.Fprintf(os.Stderr, "%v steps, acceptance %.3f\n", r.Stats.Steps(), r.Stats.Rate())
	if n := len(r.Samples); n > 0 {
		fmt.Fprintf(os.Stderr, "mean bond angle %.4f (uniform equilibrium: %.4f)\n", sum/float64(n), sys.MaxAngle()/2)
	}

	if !*estimate {
		return
	}

	opts := []mfpt.Option{mfpt.Logger(log)}
	if *naive {
		opts = append(opts, mfpt.Use(mfpt.Naive))
	}
	if *dbname != "" {
		db, err := sql.Open("sqlite3", *dbname)
		if err != nil {
			fatal(err)
		}
		defer db.Close()
		opts = append(opts, mfpt.DB(db))
	}

	est, err := mfpt.New(bench.TrimerCatalog(), nil, cfg, opts...)
	if err != nil {
		fatal(err)
	}
	res, err := est.Estimate(0)
	if err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "run %v: mfpt %.5f +- %.5f (min variance %.5f +- %.5f) from %v passages\n",
		res.RunID, res.MFPT, res.Sigma, res.MinVar, res.MinVarSigma, res.Samples)
	for i := range res.Means {
		fmt.Fprintf(os.Stderr, "    worker %v: %.5f +- %.5f\n", i, res.Means[i], math.Sqrt(res.Vars[i]))
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
