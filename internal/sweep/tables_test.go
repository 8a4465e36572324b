package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/layout"
	"github.com/born-ml/eltcheck/internal/tensor"
)

func TestAllGroups(t *testing.T) {
	groups := All()
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	assert.Equal(t, []string{
		"SimpleZeroNegativeSlope_NCHW",
		"Simple_NCHW",
		"Simple",
		"AlexNet_NCHW",
	}, names)

	assert.Zero(t, groups[0].Alpha)
	assert.InDelta(t, 0.1, groups[1].Alpha, 1e-6)
	assert.InDelta(t, 0.1, groups[2].Alpha, 1e-6)
	assert.Zero(t, groups[3].Alpha)
}

func TestExpandAll(t *testing.T) {
	cases, err := Expand(All())
	require.NoError(t, err)
	// (9 + 9 + 6 + 3) rows, three kinds each.
	assert.Len(t, cases, 81)

	first := cases[0]
	assert.Equal(t, "SimpleZeroNegativeSlope_NCHW", first.Group)
	assert.Equal(t, activation.ReLU, first.Kind())
	assert.Equal(t, activation.Tanh, cases[1].Kind())
	assert.Equal(t, activation.ELU, cases[2].Kind())
	assert.True(t, tensor.Shape{2, 8, 4, 4}.Equal(first.Shape()))
}

func TestExpandMixedLayouts(t *testing.T) {
	groups, err := Select(All(), "Simple")
	require.NoError(t, err)
	cases, err := Expand(groups)
	require.NoError(t, err)
	require.Len(t, cases, 18)

	c := cases[0]
	assert.Equal(t, tensor.NCHW, c.DataLayout())
	assert.Equal(t, tensor.NChw8c, c.DiffLayout())
	assert.InDelta(t, 0.1, c.Params().Alpha, 1e-6)

	c = cases[12]
	assert.Equal(t, tensor.NHWC, c.DataLayout())
	assert.Equal(t, tensor.NCHW, c.DiffLayout())
}

func TestExpandKindSubset(t *testing.T) {
	groups := []Group{{
		Name:  "elu-only",
		Kinds: []activation.Kind{activation.ELU},
		Alpha: 1,
		Rows:  uniformRows(tensor.NCHW, tensor.NCHW, []int{1, 2, 3, 4}, []int{2, 2, 2, 2}),
	}}
	cases, err := Expand(groups)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	for _, c := range cases {
		assert.Equal(t, activation.ELU, c.Kind())
	}
}

func TestExpandRejectsBadRow(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"rank", Row{Data: tensor.NCHW, Diff: tensor.NCHW, Shape: []int{2, 3}}},
		{"zero dim", Row{Data: tensor.NCHW, Diff: tensor.NCHW, Shape: []int{2, 0, 3, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand([]Group{{Name: "bad", Rows: []Row{tt.row}}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "group bad")
		})
	}
}

func TestFilter(t *testing.T) {
	groups := Default()
	for _, g := range groups {
		for _, r := range g.Rows {
			assert.LessOrEqual(t, tensor.Shape(r.Shape).NumElements(), DefaultMaxElements,
				"%s %v", g.Name, r.Shape)
		}
	}

	// AlexNet shapes are all larger than the default bound.
	for _, g := range groups {
		assert.NotEqual(t, "AlexNet_NCHW", g.Name)
	}

	assert.Equal(t, All(), Filter(All(), 0))

	tiny := Filter(All(), 1)
	require.Len(t, tiny, 2)
	for _, g := range tiny {
		assert.Equal(t, []Row{{Data: tensor.NCHW, Diff: tensor.NCHW, Shape: []int{1, 1, 1, 1}}}, g.Rows)
	}
}

func TestFilterKeepsSmallRows(t *testing.T) {
	out := Filter(All(), 1000)
	require.Len(t, out, 3)
	for _, g := range out {
		for _, r := range g.Rows {
			assert.LessOrEqual(t, tensor.Shape(r.Shape).NumElements(), 1000)
		}
	}
	assert.Len(t, out[0].Rows, 3)
	assert.Len(t, out[2].Rows, 2)
}

func TestSelect(t *testing.T) {
	groups, err := Select(All(), "AlexNet_NCHW", "Simple")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Simple", groups[0].Name, "table order is kept")
	assert.Equal(t, "AlexNet_NCHW", groups[1].Name)

	_, err = Select(All(), "Simple", "zeta", "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[alpha zeta]")
}

func TestCheckLayouts(t *testing.T) {
	require.NoError(t, CheckLayouts(All(), layout.Default()))

	groups := []Group{{
		Name: "typo",
		Rows: []Row{
			{Data: tensor.NCHW, Diff: tensor.NCHW, Shape: []int{1, 1, 1, 1}},
			{Data: "nchww", Diff: tensor.NHWC, Shape: []int{1, 1, 1, 1}},
			{Data: tensor.NCHW, Diff: "nChw4c", Shape: []int{1, 1, 1, 1}},
		},
	}}
	err := CheckLayouts(groups, layout.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `typo row 1: "nchww"`)
	assert.Contains(t, err.Error(), `typo row 2: "nChw4c"`)
	assert.NotContains(t, err.Error(), "row 0")
}
