// Package activation holds the reference formulas for the elementwise
// activations checked by the oracle.
//
// All functions are pure float32 computations with no memory-layout or engine
// knowledge, and are safe for concurrent use.
package activation

import (
	"fmt"
	"strings"
)

// Kind selects an activation formula.
type Kind int

// Supported activation kinds.
const (
	ReLU Kind = iota
	Tanh
	ELU
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{ReLU, Tanh, ELU}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	return k >= ReLU && k <= ELU
}

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case ReLU:
		return "relu"
	case Tanh:
		return "tanh"
	case ELU:
		return "elu"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a kind name. It accepts "relu", "tanh", "elu" and their
// "eltwise_" prefixed forms, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "eltwise_")
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown activation kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown activation kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Params are the scalar parameters of an activation.
//
// ReLU reads Alpha as the negative slope, ELU as the saturation scale.
// Tanh ignores both. Beta is carried for engines that accept it but no
// supported kind reads it.
type Params struct {
	Alpha float32 `yaml:"alpha"`
	Beta  float32 `yaml:"beta"`
}
