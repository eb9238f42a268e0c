package block

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"

	qerrors "github.com/paveg/quiver/internal/errors"
)

// allocationLimitError is the value a LimitAllocator panics with when
// a request would exceed its budget. Column construction recovers it
// into a typed allocation failure, keeping the Arrow allocator
// interface (which cannot return errors) compatible with the
// recoverable failure model.
type allocationLimitError struct {
	requested int
	limit     int64
	allocated int64
}

func (e allocationLimitError) Error() string {
	return fmt.Sprintf("allocation of %d bytes exceeds the %d byte budget (%d already allocated)",
		e.requested, e.limit, e.allocated)
}

// RecoverAllocationFailure converts a budget refusal raised below the
// caller into a recoverable allocation error attributed to op; any
// other panic value is re-raised. Deferred around builder work that may
// allocate, at bind time and during evaluation alike.
func RecoverAllocationFailure(op string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	ae, ok := r.(allocationLimitError)
	if !ok {
		panic(r)
	}
	*err = qerrors.NewAllocationError(op, ae)
}

// LimitAllocator decorates a memory.Allocator with a byte budget.
// It is not safe for concurrent use; each bound tree owns its
// allocator exclusively.
type LimitAllocator struct {
	mem       memory.Allocator
	limit     int64
	allocated int64
}

// NewLimitAllocator wraps mem with a budget of limit bytes. A limit of
// zero or less means unbounded.
func NewLimitAllocator(mem memory.Allocator, limit int64) *LimitAllocator {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &LimitAllocator{mem: mem, limit: limit}
}

// AllocatedBytes returns the number of bytes currently handed out.
func (a *LimitAllocator) AllocatedBytes() int64 { return a.allocated }

// Allocate implements memory.Allocator.
func (a *LimitAllocator) Allocate(size int) []byte {
	a.reserve(size)
	return a.mem.Allocate(size)
}

// Reallocate implements memory.Allocator.
func (a *LimitAllocator) Reallocate(size int, b []byte) []byte {
	a.reserve(size - len(b))
	return a.mem.Reallocate(size, b)
}

// Free implements memory.Allocator.
func (a *LimitAllocator) Free(b []byte) {
	a.allocated -= int64(len(b))
	a.mem.Free(b)
}

func (a *LimitAllocator) reserve(size int) {
	if size <= 0 {
		return
	}
	if a.limit > 0 && a.allocated+int64(size) > a.limit {
		panic(allocationLimitError{requested: size, limit: a.limit, allocated: a.allocated})
	}
	a.allocated += int64(size)
}

var _ memory.Allocator = (*LimitAllocator)(nil)
