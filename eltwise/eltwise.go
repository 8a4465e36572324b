// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package eltwise

import (
	"context"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/layout"
	"github.com/born-ml/eltcheck/internal/oracle"
	"github.com/born-ml/eltcheck/internal/sweep"
	"github.com/born-ml/eltcheck/tensor"
)

// Kind identifies an activation.
type Kind = activation.Kind

// Activation kinds.
const (
	ReLU Kind = activation.ReLU
	Tanh Kind = activation.Tanh
	ELU  Kind = activation.ELU
)

// Params holds the activation parameters. Alpha is the ReLU negative slope
// and the ELU scale; Beta is carried but unused.
type Params = activation.Params

// ParseKind parses "relu", "tanh" or "elu", with an optional "eltwise_" prefix.
func ParseKind(s string) (Kind, error) {
	return activation.ParseKind(s)
}

// Forward evaluates the reference forward formula for one element.
func Forward(kind Kind, p Params, s float32) float32 {
	return activation.Forward(kind, p, s)
}

// Backward evaluates the reference gradient for one element.
func Backward(kind Kind, p Params, dd, s float32) float32 {
	return activation.Backward(kind, p, dd, s)
}

// Oracle types.
type (
	TestCase      = oracle.TestCase
	Verifier      = oracle.Verifier
	Config        = oracle.Config
	Report        = oracle.Report
	Mismatch      = oracle.Mismatch
	MismatchError = oracle.MismatchError
	Phase         = oracle.Phase
	Episode       = oracle.Episode
	Verdict       = oracle.Verdict
)

// Phases.
const (
	PhaseForward  Phase = oracle.PhaseForward
	PhaseBackward Phase = oracle.PhaseBackward
)

// Verdicts.
const (
	VerdictIncomplete Verdict = oracle.VerdictIncomplete
	VerdictPassed     Verdict = oracle.VerdictPassed
	VerdictFailed     Verdict = oracle.VerdictFailed
	VerdictFaulted    Verdict = oracle.VerdictFaulted
)

// DefaultTolerance is the absolute per-element tolerance.
const DefaultTolerance = oracle.DefaultTolerance

// Errors returned by the oracle.
var (
	ErrUnsupportedKind = oracle.ErrUnsupportedKind
	ErrInvalidShape    = oracle.ErrInvalidShape
	ErrRank            = oracle.ErrRank
	ErrDType           = oracle.ErrDType
	ErrShapeMismatch   = oracle.ErrShapeMismatch
	ErrLayout          = oracle.ErrLayout
	ErrOffsetRange     = oracle.ErrOffsetRange
	ErrPhaseOrder      = oracle.ErrPhaseOrder
	ErrMismatch        = oracle.ErrMismatch
)

// NewTestCase validates and creates a test case.
func NewTestCase(kind Kind, p Params, shape tensor.Shape, data, diff tensor.Layout) (TestCase, error) {
	return oracle.NewTestCase(kind, p, shape, data, diff)
}

// DefaultConfig returns the default verifier configuration.
func DefaultConfig() Config {
	return oracle.DefaultConfig()
}

// NewVerifier creates a verifier that resolves offsets with the built-in layouts.
func NewVerifier(cfg Config) *Verifier {
	return oracle.NewVerifier(layout.Default(), cfg)
}

// NewEpisode starts a forward+backward episode for tc.
func NewEpisode(v *Verifier, tc TestCase) *Episode {
	return oracle.NewEpisode(v, tc)
}

// Sweep types.
type (
	Engine      = sweep.Engine
	Group       = sweep.Group
	Row         = sweep.Row
	Case        = sweep.Case
	Result      = sweep.Result
	Summary     = sweep.Summary
	SweepConfig = sweep.Config
)

// DefaultGroups returns the built-in tables without the large shapes.
func DefaultGroups() []Group {
	return sweep.Default()
}

// AllGroups returns every built-in table.
func AllGroups() []Group {
	return sweep.All()
}

// LoadGroups reads a YAML sweep file.
func LoadGroups(path string) ([]Group, error) {
	return sweep.LoadFile(path)
}

// Run expands groups and checks every case against engine with the
// default verifier and sweep configuration.
func Run(ctx context.Context, engine Engine, groups []Group) (*Summary, error) {
	cases, err := sweep.Expand(groups)
	if err != nil {
		return nil, err
	}
	runner := sweep.NewRunner(engine, NewVerifier(DefaultConfig()), sweep.DefaultConfig())
	return runner.Run(ctx, cases)
}
