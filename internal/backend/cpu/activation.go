package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/tensor"
)

// EltwiseForward computes dst = act(src) with dst in dstLayout.
//
// When src is the only reference to its buffer and dstLayout matches src's
// layout, the result is written over src and src itself is returned.
func (cpu *CPUBackend) EltwiseForward(kind activation.Kind, p activation.Params,
	src *tensor.RawTensor, dstLayout tensor.Layout,
) (*tensor.RawTensor, error) {
	fwd, err := forwardKernel(kind, p)
	if err != nil {
		return nil, err
	}
	if err := checkFloat32("eltwise forward", src); err != nil {
		return nil, err
	}

	srcOffs := cpu.offsets(src.Desc())

	var dst *tensor.RawTensor
	if cpu.inplace && dstLayout == src.Layout() && src.IsUnique() {
		dst = src
	} else {
		dst, err = cpu.Allocate(tensor.NewDesc(src.Shape(), tensor.Float32, dstLayout))
		if err != nil {
			return nil, fmt.Errorf("eltwise forward: %w", err)
		}
	}
	dstOffs := srcOffs
	if dst.Layout() != src.Layout() {
		dstOffs = cpu.offsets(dst.Desc())
	}

	in, out := src.AsFloat32(), dst.AsFloat32()
	cpu.run(len(srcOffs), func(i int) {
		out[dstOffs[i]] = float32(fwd(float64(in[srcOffs[i]])))
	})
	cpu.applyFaults(ForwardPass, out, dstOffs)

	return dst, nil
}

// EltwiseBackward computes the input gradient from the forward input src and
// the output gradient diffDst. The result is a new tensor in diffSrcLayout.
func (cpu *CPUBackend) EltwiseBackward(kind activation.Kind, p activation.Params,
	src, diffDst *tensor.RawTensor, diffSrcLayout tensor.Layout,
) (*tensor.RawTensor, error) {
	bwd, err := backwardKernel(kind, p)
	if err != nil {
		return nil, err
	}
	if err := checkFloat32("eltwise backward", src, diffDst); err != nil {
		return nil, err
	}
	if !src.Shape().Equal(diffDst.Shape()) {
		return nil, fmt.Errorf("eltwise backward: shape mismatch: src %v vs diff_dst %v",
			src.Shape(), diffDst.Shape())
	}

	diffSrc, err := cpu.Allocate(tensor.NewDesc(src.Shape(), tensor.Float32, diffSrcLayout))
	if err != nil {
		return nil, fmt.Errorf("eltwise backward: %w", err)
	}

	srcOffs := cpu.offsets(src.Desc())
	ddOffs := cpu.offsets(diffDst.Desc())
	dsOffs := cpu.offsets(diffSrc.Desc())

	x, dd, ds := src.AsFloat32(), diffDst.AsFloat32(), diffSrc.AsFloat32()
	cpu.run(len(srcOffs), func(i int) {
		ds[dsOffs[i]] = float32(bwd(float64(dd[ddOffs[i]]), float64(x[srcOffs[i]])))
	})
	cpu.applyFaults(BackwardPass, ds, dsOffs)

	return diffSrc, nil
}

// forwardKernel returns the double-precision forward function for kind.
func forwardKernel(kind activation.Kind, p activation.Params) (func(x float64) float64, error) {
	alpha := float64(p.Alpha)
	switch kind {
	case activation.ReLU:
		return func(x float64) float64 {
			if x > 0 {
				return x
			}
			return alpha * x
		}, nil
	case activation.Tanh:
		return math.Tanh, nil
	case activation.ELU:
		return func(x float64) float64 {
			if x > 0 {
				return x
			}
			return alpha * math.Expm1(x)
		}, nil
	default:
		return nil, fmt.Errorf("eltwise: unsupported activation %s", kind)
	}
}

// backwardKernel returns the double-precision gradient function for kind.
func backwardKernel(kind activation.Kind, p activation.Params) (func(dy, x float64) float64, error) {
	alpha := float64(p.Alpha)
	switch kind {
	case activation.ReLU:
		return func(dy, x float64) float64 {
			if x > 0 {
				return dy
			}
			return alpha * dy
		}, nil
	case activation.Tanh:
		return func(dy, x float64) float64 {
			y := math.Tanh(x)
			return dy * (1 - y*y)
		}, nil
	case activation.ELU:
		return func(dy, x float64) float64 {
			if x > 0 {
				return dy
			}
			return dy * alpha * math.Exp(x)
		}, nil
	default:
		return nil, fmt.Errorf("eltwise: unsupported activation %s", kind)
	}
}
