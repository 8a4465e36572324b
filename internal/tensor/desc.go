package tensor

import (
	"errors"
	"fmt"
)

// Layout names a physical arrangement of a tensor's elements in memory.
// The tag is opaque to the tensor package; mapping a logical index to a
// storage offset is the job of a layout mapper.
type Layout string

// Well-known layout tags.
const (
	NCHW    Layout = "nchw"
	NHWC    Layout = "nhwc"
	CHWN    Layout = "chwn"
	NChw8c  Layout = "nChw8c"
	NChw16c Layout = "nChw16c"
)

// String returns the tag itself.
func (l Layout) String() string {
	return string(l)
}

// Desc describes a tensor: its logical shape, element type and layout.
type Desc struct {
	Shape  Shape
	DType  DataType
	Layout Layout
}

// NewDesc creates a descriptor with a private copy of shape.
func NewDesc(shape Shape, dtype DataType, layout Layout) Desc {
	return Desc{Shape: shape.Clone(), DType: dtype, Layout: layout}
}

// Validate checks the shape and that a layout tag is present.
func (d Desc) Validate() error {
	if err := d.Shape.Validate(); err != nil {
		return err
	}
	if d.Layout == "" {
		return errors.New("missing layout tag")
	}
	return nil
}

// NumElements returns the logical element count.
func (d Desc) NumElements() int {
	return d.Shape.NumElements()
}

// String returns a compact representation, e.g. "float32[2 8 4 4]@nChw8c".
func (d Desc) String() string {
	return fmt.Sprintf("%s%v@%s", d.DType, []int(d.Shape), d.Layout)
}
