package sweep

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/logger"
	"github.com/born-ml/eltcheck/internal/metrics"
	"github.com/born-ml/eltcheck/internal/oracle"
	"github.com/born-ml/eltcheck/internal/tensor"
)

// Engine is the system under test: it materializes tensors in requested
// layouts and runs the activation primitives.
type Engine interface {
	Allocate(desc tensor.Desc) (*tensor.RawTensor, error)
	FillUniform(t *tensor.RawTensor, rng *rand.Rand, lo, hi float32) error
	FillSinusoid(t *tensor.RawTensor, mean, dev float32) error
	EltwiseForward(kind activation.Kind, p activation.Params,
		src *tensor.RawTensor, dstLayout tensor.Layout) (*tensor.RawTensor, error)
	EltwiseBackward(kind activation.Kind, p activation.Params,
		src, diffDst *tensor.RawTensor, diffSrcLayout tensor.Layout) (*tensor.RawTensor, error)
}

// Fill selects how input and gradient tensors are populated.
type Fill string

// Fill modes.
const (
	FillUniform  Fill = "uniform"  // [0, 1) from a per-case seeded source
	FillSinusoid Fill = "sinusoid" // sin(i % 37), deterministic, in [-1, 1]
)

// Config controls a sweep run.
type Config struct {
	Workers int   // Cases run concurrently; <= 0 means runtime.NumCPU().
	Fill    Fill  // Tensor fill mode.
	Seed    int64 // Base seed; case i uses Seed+i.
}

// DefaultConfig runs one case per CPU with uniform fills.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
		Fill:    FillUniform,
		Seed:    1,
	}
}

// Result is the outcome of one case.
type Result struct {
	Case     Case
	Verdict  oracle.Verdict
	Forward  *oracle.Report
	Backward *oracle.Report
	Fault    error
	Duration time.Duration
}

// Summary aggregates a run. Results keep the input case order.
type Summary struct {
	Results []Result
	Passed  int
	Failed  int
	Faulted int
}

// OK reports whether every case passed.
func (s *Summary) OK() bool {
	return s.Failed == 0 && s.Faulted == 0 && s.Passed == len(s.Results)
}

// Runner drives cases through an engine and checks them with a verifier.
type Runner struct {
	engine   Engine
	verifier *oracle.Verifier
	cfg      Config
}

// NewRunner creates a runner.
func NewRunner(engine Engine, verifier *oracle.Verifier, cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Fill == "" {
		cfg.Fill = FillUniform
	}
	return &Runner{engine: engine, verifier: verifier, cfg: cfg}
}

// Run executes every case. Independent cases run in parallel, each owning
// its tensors. Cancelling ctx stops scheduling new cases; Run then returns
// the results gathered so far together with ctx's error.
func (r *Runner) Run(ctx context.Context, cases []Case) (*Summary, error) {
	results := make([]Result, len(cases))
	done := make([]bool, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.RunCase(cases[i], r.cfg.Seed+int64(i))
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	sum := &Summary{Results: make([]Result, 0, len(cases))}
	for i, res := range results {
		if !done[i] {
			continue
		}
		sum.Results = append(sum.Results, res)
		switch res.Verdict {
		case oracle.VerdictPassed:
			sum.Passed++
		case oracle.VerdictFailed:
			sum.Failed++
		default:
			sum.Faulted++
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return sum, err
}

// RunCase runs one forward+backward episode. Engine errors and oracle
// configuration faults abort the case and are reported as a fault.
func (r *Runner) RunCase(c Case, seed int64) Result {
	start := time.Now()
	log := logger.Log.With("group", c.Group, "case", c.TestCase.String())

	ep := oracle.NewEpisode(r.verifier, c.TestCase)
	defer ep.Close()

	res := Result{Case: c}
	res.Fault = r.drive(ep, rand.New(rand.NewSource(seed))) //nolint:gosec // G404: reproducible test data
	res.Forward, res.Backward = ep.Reports()
	res.Verdict = ep.Verdict()
	if res.Fault != nil {
		res.Verdict = oracle.VerdictFaulted
	}
	res.Duration = time.Since(start)

	kind := c.Kind().String()
	for _, rep := range []*oracle.Report{res.Forward, res.Backward} {
		if rep != nil {
			metrics.RecordPhase(rep.Phase.String(), kind, rep.Checked, rep.Failed)
		}
	}
	metrics.RecordCase(res.Verdict.String(), res.Duration)

	switch res.Verdict {
	case oracle.VerdictPassed:
		log.Debug("case passed", "duration", res.Duration)
	case oracle.VerdictFailed:
		for _, rep := range []*oracle.Report{res.Forward, res.Backward} {
			if rep != nil && !rep.Passed() {
				log.Warn("case failed", "err", rep.Err(), "phase", rep.Phase.String(), "mismatches", rep.Failed)
			}
		}
	default:
		log.Error("case faulted", "err", res.Fault)
	}
	return res
}

func (r *Runner) drive(ep *oracle.Episode, rng *rand.Rand) error {
	tc := ep.Case()

	src, err := r.engine.Allocate(tc.DataDesc())
	if err != nil {
		return fmt.Errorf("allocate src: %w", err)
	}
	if err := r.fill(src, rng); err != nil {
		return fmt.Errorf("fill src: %w", err)
	}
	if err := ep.Begin(src); err != nil {
		return err
	}

	dst, err := r.engine.EltwiseForward(tc.Kind(), tc.Params(), src, tc.DataLayout())
	if err != nil {
		return fmt.Errorf("forward: %w", err)
	}
	if _, err := ep.Forward(dst); err != nil {
		return err
	}

	diffDst, err := r.engine.Allocate(tc.DiffDesc())
	if err != nil {
		return fmt.Errorf("allocate diff_dst: %w", err)
	}
	if err := r.fill(diffDst, rng); err != nil {
		return fmt.Errorf("fill diff_dst: %w", err)
	}
	diffSrc, err := r.engine.EltwiseBackward(tc.Kind(), tc.Params(), ep.Source(), diffDst, tc.DiffLayout())
	if err != nil {
		return fmt.Errorf("backward: %w", err)
	}
	_, err = ep.Backward(diffDst, diffSrc)
	return err
}

func (r *Runner) fill(t *tensor.RawTensor, rng *rand.Rand) error {
	switch r.cfg.Fill {
	case FillUniform:
		return r.engine.FillUniform(t, rng, 0, 1)
	case FillSinusoid:
		return r.engine.FillSinusoid(t, 0, 1)
	default:
		return fmt.Errorf("unknown fill mode %q", r.cfg.Fill)
	}
}
