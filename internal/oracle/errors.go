package oracle

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration faults. Any of these aborts the case; no partial
// verification is attempted.
var (
	ErrUnsupportedKind = errors.New("unsupported activation kind")
	ErrInvalidShape    = errors.New("invalid tensor shape")
	ErrRank            = errors.New("tensor is not 4-dimensional")
	ErrDType           = errors.New("tensor element type is not float32")
	ErrShapeMismatch   = errors.New("tensor shape does not match test case")
	ErrLayout          = errors.New("tensor layout not addressable by mapper")
	ErrOffsetRange     = errors.New("physical offset outside tensor buffer")
	ErrPhaseOrder      = errors.New("episode phase out of order")
)

// ErrMismatch is matched by every *MismatchError via errors.Is.
var ErrMismatch = errors.New("values out of tolerance")

// maxErrorSamples bounds how many mismatches a MismatchError message lists.
const maxErrorSamples = 3

// MismatchError reports a phase whose check found out-of-tolerance elements.
type MismatchError struct {
	Case    string
	Phase   Phase
	Failed  int
	Checked int
	Samples []Mismatch
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d of %d elements out of tolerance", e.Phase, e.Case, e.Failed, e.Checked)
	for i, m := range e.Samples {
		if i == maxErrorSamples {
			b.WriteString("; ...")
			break
		}
		fmt.Fprintf(&b, "; %s", m)
	}
	return b.String()
}

// Is reports whether target is ErrMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}
