// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/born-ml/eltcheck/tensor"
)

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	desc := tensor.NewDesc(tensor.Shape{1, 3, 2, 2}, tensor.Float32, tensor.NChw8c)
	raw, err := tensor.NewRaw(desc, 32)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{1, 3, 2, 2}) {
		t.Errorf("Shape() = %v, want [1 3 2 2]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want float32", raw.DType())
	}
	if raw.Layout() != tensor.NChw8c {
		t.Errorf("Layout() = %v, want nChw8c", raw.Layout())
	}
	if raw.NumElements() != 12 {
		t.Errorf("NumElements() = %d, want 12", raw.NumElements())
	}
	if raw.Len() != 32 {
		t.Errorf("Len() = %d, want 32", raw.Len())
	}
}

// TestNewRawRejectsShortBuffer verifies the physical size lower bound.
func TestNewRawRejectsShortBuffer(t *testing.T) {
	desc := tensor.NewDesc(tensor.Shape{2, 2, 2, 2}, tensor.Float32, tensor.NCHW)
	if _, err := tensor.NewRaw(desc, 15); err == nil {
		t.Fatal("NewRaw accepted a buffer shorter than the shape")
	}
}

// TestDescString verifies the descriptor formatting.
func TestDescString(t *testing.T) {
	desc := tensor.NewDesc(tensor.Shape{2, 8, 4, 4}, tensor.Float32, tensor.NCHW)
	if got, want := desc.String(), "float32[2 8 4 4]@nchw"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
