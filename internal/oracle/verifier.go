// Package oracle verifies an engine's elementwise activation results against
// the reference formulas in package activation.
//
// Every tensor is addressed through an injected layout.Mapper, one
// translation per tensor, so tensors in different layouts are always compared
// by logical index and never by raw buffer position.
package oracle

import (
	"fmt"
	"math"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/layout"
	"github.com/born-ml/eltcheck/internal/tensor"
)

// DefaultTolerance is the absolute difference allowed per element.
const DefaultTolerance = 1e-6

// Config controls comparison.
type Config struct {
	Tolerance   float64 // Maximum |actual - expected| per element.
	MaxReported int     // Mismatches kept per report; 0 keeps all.
}

// DefaultConfig returns a 1e-6 absolute tolerance keeping every mismatch.
func DefaultConfig() Config {
	return Config{Tolerance: DefaultTolerance}
}

// Verifier checks forward and backward results for test cases.
// It is stateless after construction and safe for concurrent use.
type Verifier struct {
	mapper layout.Mapper
	cfg    Config
}

// NewVerifier creates a verifier that addresses tensors through mapper.
func NewVerifier(mapper layout.Mapper, cfg Config) *Verifier {
	if mapper == nil {
		panic("oracle: nil layout mapper")
	}
	return &Verifier{mapper: mapper, cfg: cfg}
}

// Config returns the verifier's configuration.
func (v *Verifier) Config() Config {
	return v.cfg
}

// operand is one validated tensor taking part in a check.
type operand struct {
	name string
	desc tensor.Desc
	data []float32
}

func (v *Verifier) operand(tc TestCase, name string, t *tensor.RawTensor) (operand, error) {
	if t == nil {
		return operand{}, fmt.Errorf("%s: %w: tensor is nil", name, ErrInvalidShape)
	}
	d := t.Desc()
	if len(d.Shape) != Rank {
		return operand{}, fmt.Errorf("%s: %w: got %v", name, ErrRank, []int(d.Shape))
	}
	if d.DType != tensor.Float32 {
		return operand{}, fmt.Errorf("%s: %w: got %s", name, ErrDType, d.DType)
	}
	if !d.Shape.Equal(tc.shape) {
		return operand{}, fmt.Errorf("%s: %w: got %v, case has %v", name, ErrShapeMismatch,
			[]int(d.Shape), []int(tc.shape))
	}
	if !v.addressable(d) {
		return operand{}, fmt.Errorf("%s: %w: %q", name, ErrLayout, d.Layout)
	}
	return operand{name: name, desc: d, data: t.AsFloat32()}, nil
}

// addressable reports whether the mapper can translate d. A mapper that is
// not a layout.Supporter is tried on index 0 and a panic means no.
func (v *Verifier) addressable(d tensor.Desc) (ok bool) {
	if s, isSupporter := v.mapper.(layout.Supporter); isSupporter {
		return s.Supports(d.Layout)
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	v.mapper.PhysicalOffset(d, 0)
	return true
}

// at reads the element at logical index i.
func (o operand) at(m layout.Mapper, i int) (float32, error) {
	off := m.PhysicalOffset(o.desc, i)
	if off < 0 || off >= len(o.data) {
		return 0, fmt.Errorf("%s: %w: logical %d maps to %d, buffer holds %d",
			o.name, ErrOffsetRange, i, off, len(o.data))
	}
	return o.data[off], nil
}

// CheckForward compares dst against the forward formula applied to src,
// element by element in logical order.
func (v *Verifier) CheckForward(tc TestCase, src, dst *tensor.RawTensor) (*Report, error) {
	in, err := v.operand(tc, "src", src)
	if err != nil {
		return nil, err
	}
	out, err := v.operand(tc, "dst", dst)
	if err != nil {
		return nil, err
	}

	rep := v.newReport(tc, PhaseForward)
	for i := 0; i < rep.Checked; i++ {
		s, err := in.at(v.mapper, i)
		if err != nil {
			return nil, err
		}
		actual, err := out.at(v.mapper, i)
		if err != nil {
			return nil, err
		}
		v.compare(rep, tc.shape, i, activation.Forward(tc.kind, tc.params, s), actual)
	}
	return rep, nil
}

// CheckBackward compares diffSrc against the backward formula applied to the
// original forward input src and the output gradient diffDst.
func (v *Verifier) CheckBackward(tc TestCase, src, diffDst, diffSrc *tensor.RawTensor) (*Report, error) {
	in, err := v.operand(tc, "src", src)
	if err != nil {
		return nil, err
	}
	dd, err := v.operand(tc, "diff_dst", diffDst)
	if err != nil {
		return nil, err
	}
	ds, err := v.operand(tc, "diff_src", diffSrc)
	if err != nil {
		return nil, err
	}

	rep := v.newReport(tc, PhaseBackward)
	for i := 0; i < rep.Checked; i++ {
		s, err := in.at(v.mapper, i)
		if err != nil {
			return nil, err
		}
		grad, err := dd.at(v.mapper, i)
		if err != nil {
			return nil, err
		}
		actual, err := ds.at(v.mapper, i)
		if err != nil {
			return nil, err
		}
		v.compare(rep, tc.shape, i, activation.Backward(tc.kind, tc.params, grad, s), actual)
	}
	return rep, nil
}

func (v *Verifier) newReport(tc TestCase, phase Phase) *Report {
	return &Report{
		Case:    tc.String(),
		Phase:   phase,
		Checked: tc.shape.NumElements(),
	}
}

// compare records a mismatch unless |actual - expected| <= tolerance.
// NaN on either side always mismatches.
func (v *Verifier) compare(rep *Report, shape tensor.Shape, i int, expected, actual float32) {
	diff := math.Abs(float64(actual) - float64(expected))
	if diff <= v.cfg.Tolerance {
		return
	}
	rep.Failed++
	if v.cfg.MaxReported > 0 && len(rep.Mismatches) >= v.cfg.MaxReported {
		return
	}
	var coords [4]int
	copy(coords[:], shape.Unravel(i))
	rep.Mismatches = append(rep.Mismatches, Mismatch{
		Index:    i,
		Coords:   coords,
		Expected: expected,
		Actual:   actual,
		Diff:     diff,
	})
}
