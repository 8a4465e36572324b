// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/eltcheck/eltwise"
	internalcpu "github.com/born-ml/eltcheck/internal/backend/cpu"
)

// Backend represents the CPU engine implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend can be driven by a sweep.
var _ eltwise.Engine = (*Backend)(nil)

// Option configures a Backend.
type Option = internalcpu.Option

// Fault corrupts one logical element of a primitive's result.
type Fault = internalcpu.Fault

// Pass selects the primitive a Fault applies to.
type Pass = internalcpu.Pass

// Primitive passes.
const (
	ForwardPass  Pass = internalcpu.ForwardPass
	BackwardPass Pass = internalcpu.BackwardPass
)

// Backend options.
var (
	WithFault    = internalcpu.WithFault
	WithParallel = internalcpu.WithParallel
	WithInplace  = internalcpu.WithInplace
)

// New creates a CPU engine that knows the built-in layouts.
//
// Example:
//
//	import (
//	    "github.com/born-ml/eltcheck/backend/cpu"
//	    "github.com/born-ml/eltcheck/eltwise"
//	)
//
//	func main() {
//	    engine := cpu.New()
//	    sum, err := eltwise.Run(ctx, engine, eltwise.DefaultGroups())
//	}
func New(opts ...Option) *Backend {
	return internalcpu.New(nil, opts...)
}
