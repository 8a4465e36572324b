package oracle

import "fmt"

// Phase identifies which half of an episode a report covers.
type Phase int

// Episode phases.
const (
	PhaseForward Phase = iota
	PhaseBackward
)

// String returns "forward" or "backward".
func (p Phase) String() string {
	switch p {
	case PhaseForward:
		return "forward"
	case PhaseBackward:
		return "backward"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Mismatch is one element whose engine value is out of tolerance.
type Mismatch struct {
	Index    int    // logical row-major index
	Coords   [4]int // {n, c, h, w}
	Expected float32
	Actual   float32
	Diff     float64
}

// String formats the mismatch for failure messages.
func (m Mismatch) String() string {
	return fmt.Sprintf("index %d %v: expected %g, got %g (|diff| %.3g)",
		m.Index, m.Coords, m.Expected, m.Actual, m.Diff)
}

// Report is the outcome of checking one phase of a case.
//
// Failed counts every out-of-tolerance element. Mismatches holds them in
// logical index order, capped by Config.MaxReported.
type Report struct {
	Case       string
	Phase      Phase
	Checked    int
	Failed     int
	Mismatches []Mismatch
}

// Passed reports whether no element was out of tolerance.
func (r *Report) Passed() bool {
	return r.Failed == 0
}

// Truncated reports whether some mismatches were counted but not kept.
func (r *Report) Truncated() bool {
	return r.Failed > len(r.Mismatches)
}

// Err returns nil for a passing report, otherwise a *MismatchError.
func (r *Report) Err() error {
	if r.Passed() {
		return nil
	}
	return &MismatchError{
		Case:    r.Case,
		Phase:   r.Phase,
		Failed:  r.Failed,
		Checked: r.Checked,
		Samples: r.Mismatches,
	}
}

// String summarizes the report on one line.
func (r *Report) String() string {
	if r.Passed() {
		return fmt.Sprintf("%s %s: ok (%d elements)", r.Phase, r.Case, r.Checked)
	}
	return r.Err().Error()
}
