// Package layout maps logical tensor indices to physical storage offsets.
//
// Layout encoding belongs to the engine; the oracle only sees the Mapper
// interface and never branches on a layout tag itself.
package layout

import (
	"fmt"
	"sort"
	"sync"

	"github.com/born-ml/eltcheck/internal/tensor"
)

// Mapper translates a row-major logical index into a physical element offset
// for the tensor described by d.
//
// Implementations must be pure and total over [0, d.NumElements()).
type Mapper interface {
	PhysicalOffset(d tensor.Desc, logical int) int
}

// MapperFunc adapts an ordinary function to the Mapper interface.
type MapperFunc func(d tensor.Desc, logical int) int

// PhysicalOffset calls f(d, logical).
func (f MapperFunc) PhysicalOffset(d tensor.Desc, logical int) int {
	return f(d, logical)
}

// Supporter is implemented by mappers that can tell whether they address a
// layout without translating an index.
type Supporter interface {
	Supports(tag tensor.Layout) bool
}

// Format describes one physical arrangement of a 4-D {N, C, H, W} tensor.
type Format interface {
	// Offset returns the physical element offset of coords = {n, c, h, w}.
	Offset(shape tensor.Shape, coords []int) int

	// PhysicalSize returns the number of elements a buffer must hold,
	// including any padding.
	PhysicalSize(shape tensor.Shape) int
}

// Registry is a Mapper over a set of named formats.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	formats map[tensor.Layout]Format
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[tensor.Layout]Format)}
}

// Default returns a registry with every built-in format registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(tensor.NCHW, Permuted{Order: [4]int{dimN, dimC, dimH, dimW}})
	r.Register(tensor.NHWC, Permuted{Order: [4]int{dimN, dimH, dimW, dimC}})
	r.Register(tensor.CHWN, Permuted{Order: [4]int{dimC, dimH, dimW, dimN}})
	r.Register(tensor.NChw8c, ChannelBlocked{Block: 8})
	r.Register(tensor.NChw16c, ChannelBlocked{Block: 16})
	return r
}

// Register adds or replaces the format for tag.
func (r *Registry) Register(tag tensor.Layout, f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[tag] = f
}

// Lookup returns the format registered for tag.
func (r *Registry) Lookup(tag tensor.Layout) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[tag]
	if !ok {
		return nil, fmt.Errorf("layout: unknown layout %q", tag)
	}
	return f, nil
}

// Supports reports whether a format is registered for tag.
func (r *Registry) Supports(tag tensor.Layout) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.formats[tag]
	return ok
}

// Layouts returns the registered tags in sorted order.
func (r *Registry) Layouts() []tensor.Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]tensor.Layout, 0, len(r.formats))
	for tag := range r.formats {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// PhysicalSize returns the buffer size in elements needed for d.
func (r *Registry) PhysicalSize(d tensor.Desc) (int, error) {
	f, err := r.Lookup(d.Layout)
	if err != nil {
		return 0, err
	}
	if len(d.Shape) != 4 {
		return 0, fmt.Errorf("layout: %s requires a 4-D shape, got %v", d.Layout, d.Shape)
	}
	return f.PhysicalSize(d.Shape), nil
}

// PhysicalOffset implements Mapper.
// Panics on an unknown layout, a non 4-D shape or an out-of-range index.
func (r *Registry) PhysicalOffset(d tensor.Desc, logical int) int {
	f, err := r.Lookup(d.Layout)
	if err != nil {
		panic(err.Error())
	}
	if len(d.Shape) != 4 {
		panic(fmt.Sprintf("layout: %s requires a 4-D shape, got %v", d.Layout, d.Shape))
	}
	if logical < 0 || logical >= d.NumElements() {
		panic(fmt.Sprintf("layout: logical index %d out of range for %s", logical, d))
	}
	return f.Offset(d.Shape, d.Shape.Unravel(logical))
}
