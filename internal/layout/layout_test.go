package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/eltcheck/internal/tensor"
)

func desc(layout tensor.Layout, dims ...int) tensor.Desc {
	return tensor.NewDesc(tensor.Shape(dims), tensor.Float32, layout)
}

func TestDefaultLayouts(t *testing.T) {
	assert.Equal(t,
		[]tensor.Layout{tensor.CHWN, tensor.NChw16c, tensor.NChw8c, tensor.NCHW, tensor.NHWC},
		Default().Layouts())
}

func TestNCHWIsIdentity(t *testing.T) {
	r := Default()
	d := desc(tensor.NCHW, 3, 5, 7, 11)
	for i := 0; i < d.NumElements(); i++ {
		require.Equal(t, i, r.PhysicalOffset(d, i))
	}
}

func TestKnownOffsets(t *testing.T) {
	r := Default()
	tests := []struct {
		desc   tensor.Desc
		coords []int
		want   int
	}{
		{desc(tensor.NHWC, 2, 3, 4, 5), []int{0, 1, 2, 3}, 40},
		{desc(tensor.CHWN, 2, 3, 4, 5), []int{0, 1, 2, 3}, 66},
		{desc(tensor.NChw8c, 2, 16, 4, 4), []int{1, 9, 2, 3}, 473},
		{desc(tensor.NChw8c, 2, 16, 4, 4), []int{0, 7, 0, 0}, 7},
		{desc(tensor.NChw16c, 2, 16, 4, 4), []int{0, 0, 0, 1}, 16},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s%v", tt.desc, tt.coords), func(t *testing.T) {
			logical := tt.desc.Shape.Ravel(tt.coords)
			assert.Equal(t, tt.want, r.PhysicalOffset(tt.desc, logical))
		})
	}
}

func TestPermutedStorageStrides(t *testing.T) {
	nhwc := Permuted{Order: [4]int{dimN, dimH, dimW, dimC}}
	shape := tensor.Shape{2, 3, 4, 5}
	origin := nhwc.Offset(shape, []int{0, 0, 0, 0})
	require.Zero(t, origin)

	// Unit steps along n, c, h, w.
	assert.Equal(t, 60, nhwc.Offset(shape, []int{1, 0, 0, 0}))
	assert.Equal(t, 1, nhwc.Offset(shape, []int{0, 1, 0, 0}))
	assert.Equal(t, 15, nhwc.Offset(shape, []int{0, 0, 1, 0}))
	assert.Equal(t, 3, nhwc.Offset(shape, []int{0, 0, 0, 1}))
	assert.Equal(t, shape.NumElements()-1, nhwc.Offset(shape, []int{1, 2, 3, 4}))
}

// Every layout must place each logical element at a distinct in-bounds offset.
func TestOffsetsAreInjective(t *testing.T) {
	r := Default()
	shapes := [][]int{{1, 1, 1, 1}, {2, 8, 4, 4}, {2, 16, 10, 8}, {3, 5, 7, 11}, {1, 20, 3, 2}}
	for _, tag := range r.Layouts() {
		for _, dims := range shapes {
			d := desc(tag, dims...)
			t.Run(d.String(), func(t *testing.T) {
				size, err := r.PhysicalSize(d)
				require.NoError(t, err)
				require.GreaterOrEqual(t, size, d.NumElements())

				seen := make(map[int]int, d.NumElements())
				for i := 0; i < d.NumElements(); i++ {
					off := r.PhysicalOffset(d, i)
					require.GreaterOrEqual(t, off, 0)
					require.Less(t, off, size)
					prev, dup := seen[off]
					require.False(t, dup, "logical %d and %d share offset %d", prev, i, off)
					seen[off] = i
				}
			})
		}
	}
}

func TestBlockedPadding(t *testing.T) {
	r := Default()
	size, err := r.PhysicalSize(desc(tensor.NChw8c, 3, 5, 7, 11))
	require.NoError(t, err)
	assert.Equal(t, 3*8*7*11, size)

	size, err = r.PhysicalSize(desc(tensor.NChw16c, 2, 16, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, 2*16*4*4, size)
}

func TestPhysicalOffsetPanics(t *testing.T) {
	r := Default()
	assert.Panics(t, func() { r.PhysicalOffset(desc("oihw", 1, 1, 1, 1), 0) })
	assert.Panics(t, func() { r.PhysicalOffset(desc(tensor.NCHW, 2, 2, 2), 0) })
	assert.Panics(t, func() { r.PhysicalOffset(desc(tensor.NCHW, 1, 1, 2, 2), 4) })
	assert.Panics(t, func() { r.PhysicalOffset(desc(tensor.NCHW, 1, 1, 2, 2), -1) })
}

func TestPhysicalSizeErrors(t *testing.T) {
	r := Default()
	_, err := r.PhysicalSize(desc("oihw", 1, 1, 1, 1))
	assert.Error(t, err)
	_, err = r.PhysicalSize(desc(tensor.NCHW, 4, 4))
	assert.Error(t, err)
}

func TestRegisterCustomFormat(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup(tensor.NCHW)
	require.Error(t, err)

	r.Register("nwhc", Permuted{Order: [4]int{dimN, dimW, dimH, dimC}})
	d := desc("nwhc", 1, 2, 3, 4)
	// (0, 1, 2, 3) -> ((0*4+3)*3+2)*2+1
	assert.Equal(t, 23, r.PhysicalOffset(d, d.Shape.Ravel([]int{0, 1, 2, 3})))
}

func TestMapperFunc(t *testing.T) {
	var m Mapper = MapperFunc(func(_ tensor.Desc, logical int) int { return logical * 2 })
	assert.Equal(t, 10, m.PhysicalOffset(desc(tensor.NCHW, 1, 1, 1, 8), 5))
}

func TestSupports(t *testing.T) {
	r := Default()
	for _, tag := range r.Layouts() {
		assert.True(t, r.Supports(tag), tag)
	}
	assert.False(t, r.Supports("bogus"))
	assert.False(t, r.Supports(""))

	var m Mapper = r
	_, ok := m.(Supporter)
	assert.True(t, ok)
}
