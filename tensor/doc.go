// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensor descriptors and buffers that engines
// and the activation oracle exchange.
//
// # Overview
//
// A tensor is described by a 4-D logical shape in NCHW order, an element
// type and a memory layout. The layout decides where each logical element
// lives in the physical buffer:
//   - nchw, nhwc, chwn: dense permutations of the four dimensions
//   - nChw8c, nChw16c: channels split into blocks of 8 or 16, with the
//     channel count padded up to a whole number of blocks
//
// Physical buffers may therefore be longer than the logical element count.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/eltcheck/backend/cpu"
//	    "github.com/born-ml/eltcheck/tensor"
//	)
//
//	func main() {
//	    engine := cpu.New()
//	    desc := tensor.NewDesc(tensor.Shape{2, 16, 4, 4}, tensor.Float32, tensor.NChw8c)
//	    src, err := engine.Allocate(desc)
//	    ...
//	}
//
// # Buffer Sharing
//
// RawTensor buffers are reference counted. Clone shares the buffer and
// ForceNonUnique pins it, which stops engines from writing results into a
// buffer somebody else still needs.
package tensor
