package activation

import (
	"fmt"
	"math"
)

// Forward computes the expected output for input s.
// Panics on an unsupported kind: that is a broken test configuration.
func Forward(kind Kind, p Params, s float32) float32 {
	switch kind {
	case ReLU:
		return ReLUForward(s, p.Alpha)
	case Tanh:
		return TanhForward(s)
	case ELU:
		return ELUForward(s, p.Alpha)
	default:
		panic(fmt.Sprintf("activation: unsupported kind %s", kind))
	}
}

// Backward computes the expected input gradient given the output gradient dd
// and the original forward input s.
// Panics on an unsupported kind.
func Backward(kind Kind, p Params, dd, s float32) float32 {
	switch kind {
	case ReLU:
		return ReLUBackward(dd, s, p.Alpha)
	case Tanh:
		return TanhBackward(dd, s)
	case ELU:
		return ELUBackward(dd, s, p.Alpha)
	default:
		panic(fmt.Sprintf("activation: unsupported kind %s", kind))
	}
}

// ReLUForward returns s for positive s, s*alpha otherwise.
func ReLUForward(s, alpha float32) float32 {
	if s > 0 {
		return s
	}
	return s * alpha
}

// ReLUBackward returns dd for positive s, dd*alpha otherwise.
func ReLUBackward(dd, s, alpha float32) float32 {
	if s > 0 {
		return dd
	}
	return dd * alpha
}

// TanhForward computes tanh(s) = (e^2s - 1) / (e^2s + 1).
func TanhForward(s float32) float32 {
	e := expf(2 * s)
	return (e - 1) / (e + 1)
}

// TanhBackward computes dd * (1 - tanh(s)^2).
func TanhBackward(dd, s float32) float32 {
	th := TanhForward(s)
	return dd * (1 - th*th)
}

// ELUForward returns s for positive s, alpha*(e^s - 1) otherwise.
func ELUForward(s, alpha float32) float32 {
	if s > 0 {
		return s
	}
	return alpha * (expf(s) - 1)
}

// ELUBackward returns dd for positive s, dd*alpha*e^s otherwise.
func ELUBackward(dd, s, alpha float32) float32 {
	if s > 0 {
		return dd
	}
	return dd * (alpha * expf(s))
}

// expf is single-precision exp.
func expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}
