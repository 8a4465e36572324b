package oracle

import (
	"fmt"

	"github.com/born-ml/eltcheck/internal/tensor"
)

// Verdict is the overall outcome of an episode.
type Verdict int

// Episode verdicts.
const (
	VerdictIncomplete Verdict = iota
	VerdictPassed
	VerdictFailed
	VerdictFaulted
)

// String returns the lowercase verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictIncomplete:
		return "incomplete"
	case VerdictPassed:
		return "passed"
	case VerdictFailed:
		return "failed"
	case VerdictFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Episode carries one test case through its forward and backward checks.
//
// The forward input is pinned from Begin until Close so that an engine
// cannot reuse its buffer in place; backward needs the original values.
// An Episode is not safe for concurrent use and must not outlive its case.
//
// Example:
//
//	ep := oracle.NewEpisode(v, tc)
//	defer ep.Close()
//	ep.Begin(src)
//	dst, _ := engine.EltwiseForward(tc.Kind(), tc.Params(), src, tc.DataLayout())
//	fwd, err := ep.Forward(dst)
//	...
//	bwd, err := ep.Backward(diffDst, diffSrc)
type Episode struct {
	verifier *Verifier
	tc       TestCase

	src   *tensor.RawTensor
	unpin func()

	forward  *Report
	backward *Report
	fault    error
}

// NewEpisode starts an episode for tc.
func NewEpisode(v *Verifier, tc TestCase) *Episode {
	return &Episode{verifier: v, tc: tc}
}

// Case returns the episode's test case.
func (e *Episode) Case() TestCase {
	return e.tc
}

// Begin records and pins the forward input.
func (e *Episode) Begin(src *tensor.RawTensor) error {
	if e.src != nil || e.fault != nil {
		return e.fail(fmt.Errorf("%w: begin called twice", ErrPhaseOrder))
	}
	if _, err := e.verifier.operand(e.tc, "src", src); err != nil {
		return e.fail(err)
	}
	e.src = src
	e.unpin = src.ForceNonUnique()
	return nil
}

// Source returns the pinned forward input, or nil before Begin.
func (e *Episode) Source() *tensor.RawTensor {
	return e.src
}

// Forward checks the engine's forward output against the pinned input.
func (e *Episode) Forward(dst *tensor.RawTensor) (*Report, error) {
	if e.fault != nil {
		return nil, e.fault
	}
	if e.src == nil || e.forward != nil {
		return nil, e.fail(fmt.Errorf("%w: forward requires begin and runs once", ErrPhaseOrder))
	}
	rep, err := e.verifier.CheckForward(e.tc, e.src, dst)
	if err != nil {
		return nil, e.fail(err)
	}
	e.forward = rep
	return rep, nil
}

// Backward checks the engine's input gradient. It must follow Forward.
func (e *Episode) Backward(diffDst, diffSrc *tensor.RawTensor) (*Report, error) {
	if e.fault != nil {
		return nil, e.fault
	}
	if e.forward == nil || e.backward != nil {
		return nil, e.fail(fmt.Errorf("%w: backward requires forward and runs once", ErrPhaseOrder))
	}
	rep, err := e.verifier.CheckBackward(e.tc, e.src, diffDst, diffSrc)
	if err != nil {
		return nil, e.fail(err)
	}
	e.backward = rep
	return rep, nil
}

// Reports returns the forward and backward reports; either may be nil.
func (e *Episode) Reports() (forward, backward *Report) {
	return e.forward, e.backward
}

// Fault returns the configuration fault that aborted the episode, if any.
func (e *Episode) Fault() error {
	return e.fault
}

// Verdict combines both phases. Any mismatch fails the episode.
func (e *Episode) Verdict() Verdict {
	switch {
	case e.fault != nil:
		return VerdictFaulted
	case e.forward != nil && !e.forward.Passed():
		return VerdictFailed
	case e.backward != nil && !e.backward.Passed():
		return VerdictFailed
	case e.forward == nil || e.backward == nil:
		return VerdictIncomplete
	default:
		return VerdictPassed
	}
}

// Close releases the pin on the forward input. It is safe to call twice.
func (e *Episode) Close() {
	if e.unpin != nil {
		e.unpin()
		e.unpin = nil
	}
}

func (e *Episode) fail(err error) error {
	if e.fault == nil {
		e.fault = fmt.Errorf("%s: %w", e.tc, err)
	}
	return e.fault
}
