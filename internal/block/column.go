package block

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// Column is the pre-allocated output storage a bound expression owns.
// The builder is created once at bind time and reserved to the
// negotiated capacity; every Evaluate call rewrites it and
// materializes a fresh array, releasing the previous one. Output
// views alias the current array, so a result is only valid until the
// next Evaluate call on the same node.
type Column struct {
	attr     types.Attribute
	capacity int
	builder  array.Builder
	current  arrow.Array
}

// NewColumn allocates output storage for one column of the given
// attribute, sized to capacity rows. Allocator refusal surfaces as a
// recoverable allocation-failure error attributed to op.
func NewColumn(op string, attr types.Attribute, mem memory.Allocator, capacity int) (_ *Column, err error) {
	if capacity <= 0 {
		return nil, qerrors.NewInvalidArgumentError(op, fmt.Sprintf("non-positive row capacity %d", capacity))
	}
	defer RecoverAllocationFailure(op, &err)
	builder := array.NewBuilder(mem, types.Info(attr.Type).ArrowType())
	builder.Reserve(capacity)
	return &Column{attr: attr, capacity: capacity, builder: builder}, nil
}

// Attribute returns the output attribute this column materializes.
func (c *Column) Attribute() types.Attribute { return c.attr }

// Capacity returns the maximum row count negotiated at bind time.
func (c *Column) Capacity() int { return c.capacity }

// Builder exposes the underlying Arrow builder for the evaluation
// kernel. Begin must have been called for the current batch.
func (c *Column) Builder() array.Builder { return c.builder }

// Begin prepares the column for a batch of rows. Exceeding the
// negotiated capacity is a programming contract violation, not a
// recoverable failure.
func (c *Column) Begin(rows int) {
	if rows > c.capacity {
		panic(fmt.Sprintf("block: batch of %d rows exceeds the negotiated capacity %d for column %s",
			rows, c.capacity, c.attr.Name))
	}
	c.builder.Reserve(rows)
}

// Finish materializes the rows appended since Begin and returns the
// result view. The previous batch's array is released here; callers
// must not retain output views across Evaluate calls.
func (c *Column) Finish(rows int) *View {
	if c.current != nil {
		c.current.Release()
	}
	c.current = c.builder.NewArray()
	return NewValueView(c.attr, c.current, rows)
}

// Release frees the owned storage. The column is unusable afterwards.
func (c *Column) Release() {
	if c.current != nil {
		c.current.Release()
		c.current = nil
	}
	if c.builder != nil {
		c.builder.Release()
		c.builder = nil
	}
}
