package expr

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/exp/constraints"

	"github.com/paveg/quiver/internal/block"
	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

type number interface {
	constraints.Integer | constraints.Float
}

// CastTo converts a numeric expression to another numeric type.
// Conversions to STRING go through ToStringExpr instead.
func CastTo(child Expression, target types.DataType) Expression {
	return &castExpression{child: child, target: target}
}

type castExpression struct {
	child  Expression
	target types.DataType
}

func (e *castExpression) ToString(verbose bool) string {
	return fmt.Sprintf("CAST_%s(%s)", types.Name(e.target), e.child.ToString(verbose))
}

func (e *castExpression) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	child, err := e.child.DoBind(schema, mem, capacity)
	if err != nil {
		return nil, err
	}
	bound, err := newNumericCast(child, e.target, mem, capacity, e.ToString(true))
	if err != nil {
		return failBind(err, child)
	}
	return bound, nil
}

// newNumericCast wraps child in a conversion node to the target
// numeric type, or returns child unchanged when the types already
// agree. The binder uses it to materialize numeric promotion at bind
// time, so evaluation kernels always see their exact operand type.
// On failure the child is NOT released; the caller still owns it.
func newNumericCast(child BoundExpression, target types.DataType, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	src := child.ResultType()
	if src == target {
		return child, nil
	}
	if err := checkNumericType(child, description, ""); err != nil {
		return nil, err
	}
	if !types.Info(target).IsNumeric() {
		return nil, qerrors.NewTypeMismatchError(description, types.Name(target), "a numeric type", "")
	}
	switch src {
	case types.Int32:
		return numericCastNode[int32](child, target, mem, capacity)
	case types.Int64:
		return numericCastNode[int64](child, target, mem, capacity)
	case types.Float32:
		return numericCastNode[float32](child, target, mem, capacity)
	case types.Float64:
		return numericCastNode[float64](child, target, mem, capacity)
	default:
		return nil, qerrors.NewTypeMismatchError(description, types.Name(src), "a numeric type", "")
	}
}

func numericCastNode[S number](child BoundExpression, target types.DataType, mem memory.Allocator, capacity int) (BoundExpression, error) {
	switch target {
	case types.Int32:
		return newNamedUnary[S, int32](target, child, mem, capacity)
	case types.Int64:
		return newNamedUnary[S, int64](target, child, mem, capacity)
	case types.Float32:
		return newNamedUnary[S, float32](target, child, mem, capacity)
	case types.Float64:
		return newNamedUnary[S, float64](target, child, mem, capacity)
	default:
		return nil, qerrors.NewInvalidArgumentError(child.ToString(true),
			fmt.Sprintf("unsupported cast target %s", types.Name(target)))
	}
}

func newNamedUnary[S number, T number](target types.DataType, child BoundExpression, mem memory.Allocator, capacity int) (BoundExpression, error) {
	node := &boundUnary[S, T]{
		op:    OperatorCast,
		name:  "CAST_" + types.Name(target),
		child: child,
		fn:    func(v S) (T, bool) { return T(v), true },
	}
	out, err := newOutputColumn(node.ToString(false), target, mem, capacity)
	if err != nil {
		return nil, err
	}
	node.out = out
	return node, nil
}

// ToStringExpr renders any supported type as its textual form; this
// is the one cast that accepts every DataType.
func ToStringExpr(child Expression) Expression {
	return newUnaryExpression(OperatorToString, child, BoundToString)
}

// BoundToString constructs the bound TO_STRING node for an
// already-bound child of any type.
func BoundToString(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	render, err := renderFuncFor(child.ResultType(), description)
	if err != nil {
		return failBind(err, child)
	}
	node := &boundToString{child: child, render: render}
	out, err := newOutputColumn(node.ToString(false), types.String, mem, capacity)
	if err != nil {
		return failBind(err, child)
	}
	node.out = out
	return node, nil
}

func renderFuncFor(dt types.DataType, description string) (func(arrow.Array, int) string, error) {
	switch dt {
	case types.Int32:
		return func(a arrow.Array, i int) string {
			return strconv.FormatInt(int64(a.(*array.Int32).Value(i)), 10)
		}, nil
	case types.Int64:
		return func(a arrow.Array, i int) string {
			return strconv.FormatInt(a.(*array.Int64).Value(i), 10)
		}, nil
	case types.Float32:
		return func(a arrow.Array, i int) string {
			return strconv.FormatFloat(float64(a.(*array.Float32).Value(i)), 'g', -1, 32)
		}, nil
	case types.Float64:
		return func(a arrow.Array, i int) string {
			return strconv.FormatFloat(a.(*array.Float64).Value(i), 'g', -1, 64)
		}, nil
	case types.Bool:
		return func(a arrow.Array, i int) string {
			return strconv.FormatBool(a.(*array.Boolean).Value(i))
		}, nil
	case types.String:
		return func(a arrow.Array, i int) string {
			return a.(*array.String).Value(i)
		}, nil
	case types.Date:
		return func(a arrow.Array, i int) string {
			return a.(*array.Date32).Value(i).ToTime().Format("2006-01-02")
		}, nil
	case types.Timestamp:
		return func(a arrow.Array, i int) string {
			ts := int64(a.(*array.Timestamp).Value(i))
			return time.Unix(0, ts).UTC().Format("2006-01-02 15:04:05")
		}, nil
	default:
		return nil, qerrors.NewTypeMismatchError(description, types.Name(dt), "a printable type", "")
	}
}

type boundToString struct {
	child  BoundExpression
	out    *block.Column
	render func(arrow.Array, int) string
}

func (n *boundToString) ResultType() types.DataType { return types.String }
func (n *boundToString) Attribute() types.Attribute { return n.out.Attribute() }

func (n *boundToString) ToString(verbose bool) string {
	return OperatorToString.FormatDescription(n.child.ToString(verbose))
}

func (n *boundToString) Evaluate(input *block.View) (_ *block.View, err error) {
	defer block.RecoverAllocationFailure(n.ToString(true), &err)
	cv, err := n.child.Evaluate(input)
	if err != nil {
		return nil, err
	}
	vals := cv.Values()
	rows := input.RowCount()
	n.out.Begin(rows)
	b := n.out.Builder().(*array.StringBuilder)
	for i := 0; i < rows; i++ {
		if vals.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.Append(n.render(vals, i))
	}
	return n.out.Finish(rows), nil
}

func (n *boundToString) Release() {
	n.out.Release()
	n.child.Release()
}
