package oracle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/backend/cpu"
	"github.com/born-ml/eltcheck/internal/tensor"
)

func TestEpisodeFullRun(t *testing.T) {
	eng := cpu.New(registry)
	tc := mustCase(t, activation.ELU, 0.1, tensor.Shape{2, 16, 4, 4}, tensor.NChw8c, tensor.NCHW)
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // G404: deterministic test data

	ep := NewEpisode(newVerifier(), tc)
	defer ep.Close()
	assert.Equal(t, VerdictIncomplete, ep.Verdict())

	src, err := eng.Allocate(tc.DataDesc())
	require.NoError(t, err)
	require.NoError(t, eng.FillUniform(src, rng, -1, 1))
	before, err := eng.ReadLogical(src)
	require.NoError(t, err)

	require.NoError(t, ep.Begin(src))
	assert.Same(t, src, ep.Source())

	// Same layout in and out: the engine would write in place if the
	// input were not pinned.
	dst, err := eng.EltwiseForward(tc.Kind(), tc.Params(), src, tc.DataLayout())
	require.NoError(t, err)
	assert.NotSame(t, src, dst)

	fwd, err := ep.Forward(dst)
	require.NoError(t, err)
	assert.True(t, fwd.Passed(), fwd.String())

	after, err := eng.ReadLogical(src)
	require.NoError(t, err)
	assert.Equal(t, before, after, "forward input must survive until backward")

	diffDst, err := eng.Allocate(tc.DiffDesc())
	require.NoError(t, err)
	require.NoError(t, eng.FillUniform(diffDst, rng, 0, 1))
	diffSrc, err := eng.EltwiseBackward(tc.Kind(), tc.Params(), src, diffDst, tc.DiffLayout())
	require.NoError(t, err)

	bwd, err := ep.Backward(diffDst, diffSrc)
	require.NoError(t, err)
	assert.True(t, bwd.Passed(), bwd.String())
	assert.Equal(t, VerdictPassed, ep.Verdict())

	f, b := ep.Reports()
	assert.Same(t, fwd, f)
	assert.Same(t, bwd, b)
	assert.NoError(t, ep.Fault())

	ep.Close()
	assert.True(t, src.IsUnique())
	ep.Close()
	assert.True(t, src.IsUnique(), "second close must not release again")
}

func TestUnpinnedInputIsOverwrittenInPlace(t *testing.T) {
	eng := cpu.New(registry)
	tc := mustCase(t, activation.ReLU, 0.5, tensor.Shape{1, 1, 2, 2}, tensor.NCHW, tensor.NCHW)
	src := makeTensor(t, tc.DataDesc(), []float32{-2, 1, -4, 3})

	dst, err := eng.EltwiseForward(tc.Kind(), tc.Params(), src, tc.DataLayout())
	require.NoError(t, err)
	assert.Same(t, src, dst)
	assert.Equal(t, []float32{-1, 1, -2, 3}, src.AsFloat32())
}

func TestEpisodeMismatchFails(t *testing.T) {
	tc := mustCase(t, activation.Tanh, 0, tensor.Shape{1, 1, 2, 2}, tensor.NCHW, tensor.NHWC)
	s := []float32{0.1, 0.2, 0.3, 0.4}

	ep := NewEpisode(newVerifier(), tc)
	defer ep.Close()
	require.NoError(t, ep.Begin(makeTensor(t, tc.DataDesc(), s)))

	out := applyForward(tc, s)
	out[2] = 0
	fwd, err := ep.Forward(makeTensor(t, tc.DataDesc(), out))
	require.NoError(t, err)
	assert.Equal(t, 1, fwd.Failed)
	assert.Equal(t, VerdictFailed, ep.Verdict())

	dd := []float32{1, 1, 1, 1}
	bwd, err := ep.Backward(makeTensor(t, tc.DiffDesc(), dd), makeTensor(t, tc.DiffDesc(), applyBackward(tc, dd, s)))
	require.NoError(t, err)
	assert.True(t, bwd.Passed())
	assert.Equal(t, VerdictFailed, ep.Verdict(), "one failed phase fails the case")
}

func TestEpisodePhaseOrder(t *testing.T) {
	tc := mustCase(t, activation.ReLU, 0, tensor.Shape{1, 1, 1, 2}, tensor.NCHW, tensor.NCHW)
	x := makeTensor(t, tc.DataDesc(), []float32{1, 2})

	t.Run("forward before begin", func(t *testing.T) {
		ep := NewEpisode(newVerifier(), tc)
		_, err := ep.Forward(x)
		assert.ErrorIs(t, err, ErrPhaseOrder)
		assert.Equal(t, VerdictFaulted, ep.Verdict())
	})

	t.Run("backward before forward", func(t *testing.T) {
		ep := NewEpisode(newVerifier(), tc)
		defer ep.Close()
		require.NoError(t, ep.Begin(x))
		_, err := ep.Backward(x, x)
		assert.ErrorIs(t, err, ErrPhaseOrder)
	})

	t.Run("forward twice", func(t *testing.T) {
		ep := NewEpisode(newVerifier(), tc)
		defer ep.Close()
		require.NoError(t, ep.Begin(x))
		dst := makeTensor(t, tc.DataDesc(), []float32{1, 2})
		_, err := ep.Forward(dst)
		require.NoError(t, err)
		_, err = ep.Forward(dst)
		assert.ErrorIs(t, err, ErrPhaseOrder)
	})
}

func TestEpisodeFaultAbortsCase(t *testing.T) {
	tc := mustCase(t, activation.ReLU, 0, tensor.Shape{1, 1, 1, 2}, tensor.NCHW, tensor.NCHW)
	src := makeTensor(t, tc.DataDesc(), []float32{1, 2})
	wrong := makeTensor(t, tensor.NewDesc(tensor.Shape{1, 1, 2, 1}, tensor.Float32, tensor.NCHW), []float32{1, 2})

	ep := NewEpisode(newVerifier(), tc)
	defer ep.Close()
	require.NoError(t, ep.Begin(src))

	_, err := ep.Forward(wrong)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), tc.String())

	// No partial verification after a fault.
	_, err = ep.Backward(src, src)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, VerdictFaulted, ep.Verdict())
	assert.ErrorIs(t, ep.Fault(), ErrShapeMismatch)
}

func TestEpisodeBeginRejectsBadInput(t *testing.T) {
	tc := mustCase(t, activation.ReLU, 0, tensor.Shape{1, 1, 1, 2}, tensor.NCHW, tensor.NCHW)
	f64, err := tensor.NewRaw(tensor.NewDesc(tc.Shape(), tensor.Float64, tensor.NCHW), 2)
	require.NoError(t, err)

	ep := NewEpisode(newVerifier(), tc)
	assert.ErrorIs(t, ep.Begin(f64), ErrDType)
	assert.True(t, f64.IsUnique(), "rejected input must not be pinned")
	ep.Close()
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "passed", VerdictPassed.String())
	assert.Equal(t, "faulted", VerdictFaulted.String())
	assert.Equal(t, "verdict(9)", Verdict(9).String())
	assert.Equal(t, "backward", PhaseBackward.String())
}
