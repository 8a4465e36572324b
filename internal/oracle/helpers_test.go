package oracle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/layout"
	"github.com/born-ml/eltcheck/internal/tensor"
)

var registry = layout.Default()

func newVerifier() *Verifier {
	return NewVerifier(registry, DefaultConfig())
}

func mustCase(t *testing.T, kind activation.Kind, alpha float32, shape tensor.Shape,
	data, diff tensor.Layout,
) TestCase {
	t.Helper()
	tc, err := NewTestCase(kind, activation.Params{Alpha: alpha}, shape, data, diff)
	require.NoError(t, err)
	return tc
}

// makeTensor stores values, given in logical order, in a tensor laid out per desc.
func makeTensor(t *testing.T, desc tensor.Desc, values []float32) *tensor.RawTensor {
	t.Helper()
	size, err := registry.PhysicalSize(desc)
	require.NoError(t, err)
	raw, err := tensor.NewRaw(desc, size)
	require.NoError(t, err)
	require.Len(t, values, desc.NumElements())
	data := raw.AsFloat32()
	for i, v := range values {
		data[registry.PhysicalOffset(desc, i)] = v
	}
	return raw
}

func uniform(seed int64, n int, lo, hi float32) []float32 {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: deterministic test data
	out := make([]float32, n)
	for i := range out {
		out[i] = lo + (hi-lo)*rng.Float32()
	}
	return out
}

func applyForward(tc TestCase, src []float32) []float32 {
	out := make([]float32, len(src))
	for i, s := range src {
		out[i] = activation.Forward(tc.Kind(), tc.Params(), s)
	}
	return out
}

func applyBackward(tc TestCase, dd, src []float32) []float32 {
	out := make([]float32, len(src))
	for i := range src {
		out[i] = activation.Backward(tc.Kind(), tc.Params(), dd[i], src[i])
	}
	return out
}
