package layout

import "github.com/born-ml/eltcheck/internal/tensor"

// Logical dimension positions.
const (
	dimN = iota
	dimC
	dimH
	dimW
)

// Permuted is a dense layout that stores the logical dimensions in Order,
// outermost first. {N, C, H, W} is plain row-major nchw.
type Permuted struct {
	Order [4]int
}

// Offset implements Format.
func (p Permuted) Offset(shape tensor.Shape, coords []int) int {
	off := 0
	for i, stride := range p.stored(shape).ComputeStrides() {
		off += coords[p.Order[i]] * stride
	}
	return off
}

// stored returns shape with its dimensions in storage order.
func (p Permuted) stored(shape tensor.Shape) tensor.Shape {
	s := make(tensor.Shape, len(p.Order))
	for i, dim := range p.Order {
		s[i] = shape[dim]
	}
	return s
}

// PhysicalSize implements Format.
func (p Permuted) PhysicalSize(shape tensor.Shape) int {
	return shape.NumElements()
}

// ChannelBlocked is the nChw{Block}c family: channels are split into blocks
// of Block and the in-block channel is the innermost dimension. C is padded
// up to a multiple of Block; padding elements are never addressed.
type ChannelBlocked struct {
	Block int
}

// Offset implements Format.
func (b ChannelBlocked) Offset(shape tensor.Shape, coords []int) int {
	blocks := b.blocks(shape[dimC])
	n, c, h, w := coords[dimN], coords[dimC], coords[dimH], coords[dimW]
	return (((n*blocks+c/b.Block)*shape[dimH]+h)*shape[dimW]+w)*b.Block + c%b.Block
}

// PhysicalSize implements Format.
func (b ChannelBlocked) PhysicalSize(shape tensor.Shape) int {
	return shape[dimN] * b.blocks(shape[dimC]) * b.Block * shape[dimH] * shape[dimW]
}

func (b ChannelBlocked) blocks(channels int) int {
	return (channels + b.Block - 1) / b.Block
}
