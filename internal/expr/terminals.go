package expr

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/quiver/internal/block"
	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// NamedAttribute references an input column by name.
func NamedAttribute(name string) Expression {
	return &namedAttribute{name: name}
}

type namedAttribute struct {
	name string
}

func (e *namedAttribute) ToString(verbose bool) string { return e.name }

func (e *namedAttribute) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	pos, ok := schema.LookupAttribute(e.name)
	if !ok {
		return nil, qerrors.NewAttributeMissingError(e.ToString(true), e.name)
	}
	return &boundAttribute{pos: pos, attr: schema.Attribute(pos), capacity: capacity}, nil
}

// AttributeAt references an input column by position; it renders as
// $pos the way positional plan arguments do.
func AttributeAt(pos int) Expression {
	return &positionalAttribute{pos: pos}
}

type positionalAttribute struct {
	pos int
}

func (e *positionalAttribute) ToString(verbose bool) string { return fmt.Sprintf("$%d", e.pos) }

func (e *positionalAttribute) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	if e.pos < 0 || e.pos >= schema.AttributeCount() {
		return nil, qerrors.NewAttributeMissingError(e.ToString(true), e.ToString(true))
	}
	return &boundAttribute{pos: e.pos, attr: schema.Attribute(e.pos), capacity: capacity}, nil
}

// boundAttribute projects one input column through unchanged. Its
// output view aliases the input array; it owns no buffer of its own.
type boundAttribute struct {
	pos      int
	attr     types.Attribute
	capacity int
}

func (n *boundAttribute) ResultType() types.DataType { return n.attr.Type }
func (n *boundAttribute) Attribute() types.Attribute { return n.attr }

func (n *boundAttribute) ToString(verbose bool) string {
	if verbose {
		return fmt.Sprintf("%s [%s]", n.attr.Name, types.Name(n.attr.Type))
	}
	return n.attr.Name
}

func (n *boundAttribute) Evaluate(input *block.View) (*block.View, error) {
	rows := input.RowCount()
	if rows > n.capacity {
		panic(fmt.Sprintf("expr: batch of %d rows exceeds the negotiated capacity %d", rows, n.capacity))
	}
	return block.NewValueView(n.attr, input.Column(n.pos), rows), nil
}

func (n *boundAttribute) Release() {}

// Const lifts a Go value into a constant expression. The value's type
// resolves at bind time: int/int32/int64, float32/float64, bool,
// string, and time.Time (DATETIME) are accepted.
func Const(value any) Expression {
	return &constExpression{value: value}
}

type constExpression struct {
	value any
}

func (e *constExpression) ToString(verbose bool) string {
	if verbose {
		if dt, ok := constType(e.value); ok {
			return fmt.Sprintf("CONST_%s(%v)", types.Name(dt), e.value)
		}
	}
	if s, ok := e.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", e.value)
}

func constType(value any) (types.DataType, bool) {
	switch value.(type) {
	case int32:
		return types.Int32, true
	case int, int64:
		return types.Int64, true
	case float32:
		return types.Float32, true
	case float64:
		return types.Float64, true
	case bool:
		return types.Bool, true
	case string:
		return types.String, true
	case time.Time:
		return types.Timestamp, true
	default:
		return 0, false
	}
}

func (e *constExpression) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	dt, ok := constType(e.value)
	if !ok {
		return nil, qerrors.NewInvalidArgumentError(e.ToString(true),
			fmt.Sprintf("unsupported constant type %T", e.value))
	}
	out, err := newOutputColumn(e.ToString(false), dt, mem, capacity)
	if err != nil {
		return nil, err
	}
	switch v := e.value.(type) {
	case int32:
		return newBoundConst[int32](e, out, v), nil
	case int:
		return newBoundConst[int64](e, out, int64(v)), nil
	case int64:
		return newBoundConst[int64](e, out, v), nil
	case float32:
		return newBoundConst[float32](e, out, v), nil
	case float64:
		return newBoundConst[float64](e, out, v), nil
	case bool:
		return newBoundConst[bool](e, out, v), nil
	case string:
		return newBoundConst[string](e, out, v), nil
	case time.Time:
		return newBoundConst[arrow.Timestamp](e, out, arrow.Timestamp(v.UTC().UnixNano())), nil
	default:
		out.Release()
		return nil, qerrors.NewInvalidArgumentError(e.ToString(true),
			fmt.Sprintf("unsupported constant type %T", e.value))
	}
}

// boundConst fills its output column with the same value for every
// row of the batch.
type boundConst[T any] struct {
	source *constExpression
	out    *block.Column
	value  T
}

func newBoundConst[T any](source *constExpression, out *block.Column, value T) *boundConst[T] {
	return &boundConst[T]{source: source, out: out, value: value}
}

func (n *boundConst[T]) ResultType() types.DataType { return n.out.Attribute().Type }
func (n *boundConst[T]) Attribute() types.Attribute { return n.out.Attribute() }

func (n *boundConst[T]) ToString(verbose bool) string { return n.source.ToString(verbose) }

func (n *boundConst[T]) Evaluate(input *block.View) (_ *block.View, err error) {
	defer block.RecoverAllocationFailure(n.ToString(true), &err)
	rows := input.RowCount()
	n.out.Begin(rows)
	b := n.out.Builder().(typedBuilder[T])
	for i := 0; i < rows; i++ {
		b.Append(n.value)
	}
	return n.out.Finish(rows), nil
}

func (n *boundConst[T]) Release() { n.out.Release() }

// invalidExpression carries a construction-time failure (a malformed
// regexp pattern) until bind time, where it surfaces as the typed
// error. Construction-time factories cannot return errors without
// breaking tree-building composition, so the failure rides the tree.
type invalidExpression struct {
	text string
	err  error
}

func newInvalidExpression(text string, err error) *invalidExpression {
	return &invalidExpression{text: text, err: err}
}

func (e *invalidExpression) ToString(verbose bool) string {
	if verbose {
		return fmt.Sprintf("INVALID(%s: %v)", e.text, e.err)
	}
	return fmt.Sprintf("INVALID(%s)", e.text)
}

func (e *invalidExpression) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	return nil, e.err
}
