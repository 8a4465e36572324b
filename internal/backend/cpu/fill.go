package cpu

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/eltcheck/internal/tensor"
)

// FillUniform writes values uniformly distributed in [lo, hi) to every
// logical element of t, in logical order. Padding stays untouched, so the
// logical content for a given rng state does not depend on t's layout.
//
// Note: Uses math/rand (not crypto/rand); test data must be reproducible.
func (cpu *CPUBackend) FillUniform(t *tensor.RawTensor, rng *rand.Rand, lo, hi float32) error {
	if err := checkFloat32("fill uniform", t); err != nil {
		return err
	}
	offs := cpu.offsets(t.Desc())
	data := t.AsFloat32()
	for _, off := range offs {
		data[off] = lo + (hi-lo)*rng.Float32()
	}
	return nil
}

// FillSinusoid writes mean + dev*sin(i % 37) to the element at logical index
// i. The values are deterministic and span [mean-dev, mean+dev].
func (cpu *CPUBackend) FillSinusoid(t *tensor.RawTensor, mean, dev float32) error {
	if err := checkFloat32("fill sinusoid", t); err != nil {
		return err
	}
	offs := cpu.offsets(t.Desc())
	data := t.AsFloat32()
	cpu.run(len(offs), func(i int) {
		data[offs[i]] = mean + dev*float32(math.Sin(float64(i%37)))
	})
	return nil
}

// ReadLogical copies t's elements into a slice in logical order.
func (cpu *CPUBackend) ReadLogical(t *tensor.RawTensor) ([]float32, error) {
	if err := checkFloat32("read", t); err != nil {
		return nil, err
	}
	offs := cpu.offsets(t.Desc())
	data := t.AsFloat32()
	out := make([]float32, len(offs))
	for i, off := range offs {
		out[i] = data[off]
	}
	return out, nil
}

// WriteLogical stores values, given in logical order, into t.
func (cpu *CPUBackend) WriteLogical(t *tensor.RawTensor, values []float32) error {
	if err := checkFloat32("write", t); err != nil {
		return err
	}
	offs := cpu.offsets(t.Desc())
	if len(values) != len(offs) {
		return fmt.Errorf("write: %d values for %d elements", len(values), len(offs))
	}
	data := t.AsFloat32()
	for i, off := range offs {
		data[off] = values[i]
	}
	return nil
}
