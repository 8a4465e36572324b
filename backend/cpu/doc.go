// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU engine for the activation primitives.
//
// # Overview
//
// The engine implements ReLU, Tanh and ELU forward and backward passes over
// 4-D float32 tensors in any built-in layout:
//   - Pure Go implementation (no CGO)
//   - Kernels split across goroutines for large tensors
//   - Forward results written in place when the input buffer is unshared
//     and the output layout matches
//
// # Fault Injection
//
// WithFault corrupts a single logical element of every forward or backward
// result. It is how failure reporting is exercised end to end:
//
//	engine := cpu.New(cpu.WithFault(cpu.Fault{Pass: cpu.ForwardPass, Index: 3, Delta: 0.5}))
//	sum, _ := eltwise.Run(ctx, engine, eltwise.DefaultGroups())
//	// every case fails with one forward mismatch at logical index 3
package cpu
