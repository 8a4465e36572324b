package tensor

import "fmt"

// Shape represents the logical dimensions of a tensor.
// For activation tensors this is always {N, C, H, W}.
type Shape []int

// NumElements returns the total number of logical elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define logical order: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Unravel converts a row-major logical index into per-dimension coordinates.
//
// Example:
//
//	Shape{2, 8, 4, 4}.Unravel(130) // [1 0 0 2]
func (s Shape) Unravel(index int) []int {
	coords := make([]int, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		coords[i] = index % s[i]
		index /= s[i]
	}
	return coords
}

// Ravel is the inverse of Unravel.
func (s Shape) Ravel(coords []int) int {
	if len(coords) != len(s) {
		panic(fmt.Sprintf("ravel: expected %d coordinates, got %d", len(s), len(coords)))
	}
	index := 0
	for i, c := range coords {
		if c < 0 || c >= s[i] {
			panic(fmt.Sprintf("ravel: coordinate %d out of bounds for dimension %d (size %d)", c, i, s[i]))
		}
		index = index*s[i] + c
	}
	return index
}
