package oracle

import (
	"fmt"
	"strings"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/tensor"
)

// Rank is the only tensor rank the oracle checks: {N, C, H, W}.
const Rank = 4

// TestCase is one forward+backward verification episode's configuration.
// It is immutable once built; accessors return copies.
type TestCase struct {
	kind       activation.Kind
	params     activation.Params
	shape      tensor.Shape
	dataLayout tensor.Layout
	diffLayout tensor.Layout
}

// NewTestCase validates and builds a test case.
//
// dataLayout is requested for the forward input and output; diffLayout for
// the output gradient and the input gradient.
func NewTestCase(kind activation.Kind, params activation.Params, shape tensor.Shape,
	dataLayout, diffLayout tensor.Layout,
) (TestCase, error) {
	if !kind.Valid() {
		return TestCase{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if len(shape) != Rank {
		return TestCase{}, fmt.Errorf("%w: got %d dims %v", ErrRank, len(shape), []int(shape))
	}
	if err := shape.Validate(); err != nil {
		return TestCase{}, fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}
	if dataLayout == "" || diffLayout == "" {
		return TestCase{}, fmt.Errorf("%w: missing layout tag", ErrInvalidShape)
	}
	return TestCase{
		kind:       kind,
		params:     params,
		shape:      shape.Clone(),
		dataLayout: dataLayout,
		diffLayout: diffLayout,
	}, nil
}

// Kind returns the activation kind.
func (tc TestCase) Kind() activation.Kind { return tc.kind }

// Params returns the activation parameters.
func (tc TestCase) Params() activation.Params { return tc.params }

// Shape returns a copy of the logical shape.
func (tc TestCase) Shape() tensor.Shape { return tc.shape.Clone() }

// DataLayout returns the layout requested for src and dst.
func (tc TestCase) DataLayout() tensor.Layout { return tc.dataLayout }

// DiffLayout returns the layout requested for diff_dst and diff_src.
func (tc TestCase) DiffLayout() tensor.Layout { return tc.diffLayout }

// DataDesc returns the descriptor for the forward input and output.
func (tc TestCase) DataDesc() tensor.Desc {
	return tensor.NewDesc(tc.shape, tensor.Float32, tc.dataLayout)
}

// DiffDesc returns the descriptor for both gradient tensors.
func (tc TestCase) DiffDesc() tensor.Desc {
	return tensor.NewDesc(tc.shape, tensor.Float32, tc.diffLayout)
}

// String identifies the case, e.g. "relu a=0.1 b=0 2x8x4x4 nchw/nChw8c".
func (tc TestCase) String() string {
	dims := make([]string, len(tc.shape))
	for i, d := range tc.shape {
		dims[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s a=%g b=%g %s %s/%s", tc.kind, tc.params.Alpha, tc.params.Beta,
		strings.Join(dims, "x"), tc.dataLayout, tc.diffLayout)
}
