// Command eltcheck runs the activation sweep against the CPU engine and
// verifies every result with the reference oracle.
//
// Usage:
//
//	eltcheck [flags]
//
// Exit status is 0 when every case passes, 1 when a case fails or faults
// and 2 on invalid flags or sweep files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/born-ml/eltcheck/internal/backend/cpu"
	"github.com/born-ml/eltcheck/internal/layout"
	"github.com/born-ml/eltcheck/internal/logger"
	"github.com/born-ml/eltcheck/internal/oracle"
	"github.com/born-ml/eltcheck/internal/sweep"
)

const version = "v0.1.0"

const (
	exitOK      = 0
	exitFailed  = 1
	exitInvalid = 2
)

type options struct {
	groups      string
	all         bool
	sweepFile   string
	dump        bool
	workers     int
	fill        string
	seed        int64
	tolerance   float64
	maxReported int
	logLevel    string
	logFormat   string
	metricsAddr string
	version     bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	def := sweep.DefaultConfig()
	fs := flag.NewFlagSet("eltcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.groups, "groups", "", "Comma-separated group names to run (default: all groups)")
	fs.BoolVar(&o.all, "all", false, "Include shapes above the default element bound")
	fs.StringVar(&o.sweepFile, "sweep", "", "YAML sweep file replacing the built-in tables")
	fs.BoolVar(&o.dump, "dump", false, "Print the selected sweep as YAML and exit")
	fs.IntVar(&o.workers, "workers", def.Workers, "Cases run concurrently")
	fs.StringVar(&o.fill, "fill", string(def.Fill), "Input fill: uniform or sinusoid")
	fs.Int64Var(&o.seed, "seed", def.Seed, "Base seed for uniform fills")
	fs.Float64Var(&o.tolerance, "tol", oracle.DefaultTolerance, "Absolute tolerance per element")
	fs.IntVar(&o.maxReported, "max-reported", 10, "Mismatches kept per phase (0 keeps all)")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "console", "Log format: console or json")
	fs.StringVar(&o.metricsAddr, "metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	switch sweep.Fill(o.fill) {
	case sweep.FillUniform, sweep.FillSinusoid:
	default:
		return o, fmt.Errorf("invalid -fill %q", o.fill)
	}
	if o.tolerance < 0 {
		return o, fmt.Errorf("invalid -tol %v", o.tolerance)
	}
	return o, nil
}

func loadGroups(o options, layouts *layout.Registry) ([]sweep.Group, error) {
	var groups []sweep.Group
	if o.sweepFile != "" {
		g, err := sweep.LoadFile(o.sweepFile)
		if err != nil {
			return nil, err
		}
		groups = g
	} else {
		groups = sweep.All()
		if !o.all {
			groups = sweep.Filter(groups, sweep.DefaultMaxElements)
		}
	}
	if err := sweep.CheckLayouts(groups, layouts); err != nil {
		return nil, err
	}
	if o.groups == "" {
		return groups, nil
	}
	var names []string
	for _, n := range strings.Split(o.groups, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return sweep.Select(groups, names...)
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("metrics server stopped", "err", err)
		}
	}()
	logger.Log.Info("serving metrics", "addr", addr)
	return srv
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitInvalid
	}
	if o.version {
		fmt.Fprintf(stdout, "eltcheck %s\n", version)
		return exitOK
	}
	logger.Setup(o.logLevel, o.logFormat)

	registry := layout.Default()
	groups, err := loadGroups(o, registry)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitInvalid
	}
	if o.dump {
		data, err := sweep.Marshal(groups)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitInvalid
		}
		_, _ = stdout.Write(data)
		return exitOK
	}
	cases, err := sweep.Expand(groups)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitInvalid
	}

	if o.metricsAddr != "" {
		srv := serveMetrics(o.metricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	verifier := oracle.NewVerifier(registry, oracle.Config{
		Tolerance:   o.tolerance,
		MaxReported: o.maxReported,
	})
	runner := sweep.NewRunner(cpu.New(registry), verifier, sweep.Config{
		Workers: o.workers,
		Fill:    sweep.Fill(o.fill),
		Seed:    o.seed,
	})

	logger.Log.Info("starting sweep", "groups", len(groups), "cases", len(cases), "workers", o.workers)
	start := time.Now()
	sum, err := runner.Run(ctx, cases)
	printSummary(stdout, sum, time.Since(start))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	if !sum.OK() {
		return exitFailed
	}
	return exitOK
}

func printSummary(w io.Writer, sum *sweep.Summary, elapsed time.Duration) {
	for _, res := range sum.Results {
		switch res.Verdict {
		case oracle.VerdictFailed:
			for _, rep := range []*oracle.Report{res.Forward, res.Backward} {
				if rep != nil && !rep.Passed() {
					fmt.Fprintf(w, "FAIL [%s] %v\n", res.Case.Group, rep.Err())
				}
			}
		case oracle.VerdictFaulted:
			fmt.Fprintf(w, "FAULT [%s] %s: %v\n", res.Case.Group, res.Case.TestCase, res.Fault)
		}
	}
	fmt.Fprintf(w, "%d cases: %d passed, %d failed, %d faulted (%s)\n",
		len(sum.Results), sum.Passed, sum.Failed, sum.Faulted, elapsed.Round(time.Millisecond))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
