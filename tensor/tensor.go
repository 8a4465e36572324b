// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/eltcheck/internal/tensor"
)

// Shape is a logical tensor shape, outermost dimension first.
type Shape = tensor.Shape

// DataType is the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
)

// Layout names a physical memory arrangement.
type Layout = tensor.Layout

// Layout constants.
const (
	NCHW    Layout = tensor.NCHW
	NHWC    Layout = tensor.NHWC
	CHWN    Layout = tensor.CHWN
	NChw8c  Layout = tensor.NChw8c
	NChw16c Layout = tensor.NChw16c
)

// Desc describes a tensor: shape, element type and layout.
type Desc = tensor.Desc

// RawTensor is a reference-counted buffer with its descriptor.
type RawTensor = tensor.RawTensor

// NewDesc creates a descriptor. The shape is copied.
func NewDesc(shape Shape, dtype DataType, layout Layout) Desc {
	return tensor.NewDesc(shape, dtype, layout)
}

// NewRaw allocates a zeroed tensor whose buffer holds physical elements.
// physical must be at least the logical element count.
func NewRaw(desc Desc, physical int) (*RawTensor, error) {
	return tensor.NewRaw(desc, physical)
}
