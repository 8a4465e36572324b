// Package cpu implements a pure Go execution engine for elementwise
// activations over the layouts known to a layout registry.
//
// It is one concrete system under test for the oracle: it allocates and
// fills tensors in any registered layout and runs forward and backward
// activation primitives whose input and output layouts may differ.
package cpu

import (
	"fmt"

	"github.com/born-ml/eltcheck/internal/layout"
	"github.com/born-ml/eltcheck/internal/parallel"
	"github.com/born-ml/eltcheck/internal/tensor"
)

// Pass selects the primitive a Fault applies to.
type Pass int

// Primitive passes.
const (
	ForwardPass Pass = iota
	BackwardPass
)

// Fault corrupts one logical element of a primitive's result by adding Delta.
// It exists to exercise failure reporting end to end.
type Fault struct {
	Pass  Pass
	Index int
	Delta float32
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithFault makes every run of f.Pass corrupt element f.Index.
func WithFault(f Fault) Option {
	return func(cpu *CPUBackend) {
		cpu.faults = append(cpu.faults, f)
	}
}

// WithParallel sets how kernels split work across goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.parallel = cfg
	}
}

// WithInplace toggles reuse of a unique source buffer for forward results
// when the source and destination layouts match. Enabled by default.
func WithInplace(enabled bool) Option {
	return func(cpu *CPUBackend) {
		cpu.inplace = enabled
	}
}

// CPUBackend runs activation primitives on the CPU.
// It is safe for concurrent use; all state is read-only after New.
type CPUBackend struct {
	layouts  *layout.Registry
	parallel parallel.Config
	inplace  bool
	faults   []Fault
}

// New creates a CPU backend over the given layout registry.
// A nil registry means layout.Default().
func New(layouts *layout.Registry, opts ...Option) *CPUBackend {
	if layouts == nil {
		layouts = layout.Default()
	}
	cpu := &CPUBackend{
		layouts:  layouts,
		parallel: parallel.DefaultConfig(),
		inplace:  true,
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Layouts returns the registry the backend addresses tensors through.
func (cpu *CPUBackend) Layouts() *layout.Registry {
	return cpu.layouts
}

// Allocate creates a zeroed tensor for desc, sized for its layout.
func (cpu *CPUBackend) Allocate(desc tensor.Desc) (*tensor.RawTensor, error) {
	size, err := cpu.layouts.PhysicalSize(desc)
	if err != nil {
		return nil, fmt.Errorf("allocate %s: %w", desc, err)
	}
	raw, err := tensor.NewRaw(desc, size)
	if err != nil {
		return nil, fmt.Errorf("allocate %s: %w", desc, err)
	}
	return raw, nil
}

// offsets returns the physical offset of every logical element of d.
func (cpu *CPUBackend) offsets(d tensor.Desc) []int {
	offs := make([]int, d.NumElements())
	cpu.run(len(offs), func(i int) {
		offs[i] = cpu.layouts.PhysicalOffset(d, i)
	})
	return offs
}

func (cpu *CPUBackend) run(n int, f func(i int)) {
	parallel.For(n, cpu.parallel, f)
}

func (cpu *CPUBackend) applyFaults(pass Pass, data []float32, offs []int) {
	for _, f := range cpu.faults {
		if f.Pass == pass && f.Index >= 0 && f.Index < len(offs) {
			data[offs[f.Index]] += f.Delta
		}
	}
}

func checkFloat32(op string, ts ...*tensor.RawTensor) error {
	for _, t := range ts {
		if t.DType() != tensor.Float32 {
			return fmt.Errorf("%s: unsupported dtype %s (only float32 supported)", op, t.DType())
		}
	}
	return nil
}
