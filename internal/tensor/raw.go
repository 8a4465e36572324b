package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// tensorBuffer is a reference-counted shared buffer for Copy-on-Write semantics.
// Engines may compute in place when refCount == 1.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is a descriptor plus an owned contiguous buffer.
//
// The buffer holds Len() physical elements. Len() may exceed the logical
// element count when the layout pads a dimension (e.g. channel blocking).
// RawTensor never interprets the layout itself.
type RawTensor struct {
	buffer *tensorBuffer
	desc   Desc
	length int // physical element count
}

// NewRaw allocates a zeroed tensor for desc with room for physical elements.
func NewRaw(desc Desc, physical int) (*RawTensor, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptor %s: %w", desc, err)
	}
	if physical < desc.NumElements() {
		return nil, fmt.Errorf("physical size %d smaller than logical size %d for %s",
			physical, desc.NumElements(), desc)
	}

	return &RawTensor{
		buffer: newTensorBuffer(physical * desc.DType.Size()),
		desc:   NewDesc(desc.Shape, desc.DType, desc.Layout),
		length: physical,
	}, nil
}

// Desc returns the tensor's descriptor.
func (r *RawTensor) Desc() Desc {
	return r.desc
}

// Shape returns the tensor's logical shape.
func (r *RawTensor) Shape() Shape {
	return r.desc.Shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.desc.DType
}

// Layout returns the tensor's layout tag.
func (r *RawTensor) Layout() Layout {
	return r.desc.Layout
}

// NumElements returns the logical element count.
func (r *RawTensor) NumElements() int {
	return r.desc.NumElements()
}

// Len returns the physical element count of the buffer.
func (r *RawTensor) Len() int {
	return r.length
}

// AsFloat32 interprets the whole physical buffer as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.desc.DType != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.desc.DType))
	}
	data := r.buffer.data
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by Len()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.length)
}

// Clone creates a shallow copy of the RawTensor (shares buffer with reference counting).
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		desc:   NewDesc(r.desc.Shape, r.desc.DType, r.desc.Layout),
		length: r.length,
	}
}

// Release decrements the reference count and deallocates if it reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
// When true, engines may reuse the buffer for their output.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// ForceNonUnique temporarily increases refCount to prevent inplace modifications.
// Returns a cleanup function that MUST be called to restore refCount (use defer).
//
// Example:
//
//	defer src.ForceNonUnique()()
//	dst := engine.EltwiseForward(kind, params, src, src.Layout()) // src stays intact
func (r *RawTensor) ForceNonUnique() func() {
	r.buffer.addRef()
	return func() {
		r.buffer.release()
	}
}
