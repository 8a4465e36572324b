// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package eltwise verifies engine implementations of the ReLU, Tanh and ELU
// activations against a scalar reference.
//
// # Overview
//
// A TestCase names an activation, its parameters, a 4-D shape and the
// layouts of the data and gradient tensors. The Verifier recomputes every
// element in logical order and compares it with the engine's result within
// an absolute tolerance of 1e-6:
//
//	forward:  dst[i]      = f(src[i])
//	backward: diff_src[i] = f'(diff_dst[i], src[i])
//
// Each tensor is read through its own layout, so the engine may lay out
// inputs and outputs however it likes.
//
// # Basic Usage
//
//	engine := cpu.New()
//	sum, err := eltwise.Run(ctx, engine, eltwise.DefaultGroups())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !sum.OK() {
//	    for _, r := range sum.Results {
//	        ...
//	    }
//	}
//
// For step-by-step control use an Episode, which also pins the forward
// input so that an engine cannot overwrite it before backward runs.
package eltwise
