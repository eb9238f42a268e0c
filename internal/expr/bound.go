package expr

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/quiver/internal/block"
	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// BoundExpression is a schema-resolved, capacity-bounded vectorized
// evaluator. Evaluate may be called many times with batches no larger
// than the capacity negotiated at bind time; the returned view aliases
// the node's owned output column and is overwritten by the next call.
// Release frees the owned output storage of the whole subtree.
type BoundExpression interface {
	ResultType() types.DataType
	Attribute() types.Attribute
	Evaluate(input *block.View) (*block.View, error)
	ToString(verbose bool) string
	Release()
}

// typedArray is the read side of a column, instantiated per element
// type; every concrete Arrow array satisfies it.
type typedArray[T any] interface {
	Value(i int) T
	IsNull(i int) bool
	Len() int
}

// typedBuilder is the write side, instantiated per element type.
type typedBuilder[T any] interface {
	Append(T)
	AppendNull()
}

func releaseAll(bound ...BoundExpression) {
	for _, b := range bound {
		if b != nil {
			b.Release()
		}
	}
}

// failBind releases the bound children a factory owns and propagates
// the failure.
func failBind(err error, children ...BoundExpression) (BoundExpression, error) {
	releaseAll(children...)
	return nil, err
}

// newOutputColumn allocates the owned output column for a bound node.
// The column is named after the node's compact rendering so plan
// output and downstream schemas stay readable.
func newOutputColumn(name string, dt types.DataType, mem memory.Allocator, capacity int) (*block.Column, error) {
	attr := types.Attribute{Name: name, Type: dt, Nullable: true}
	return block.NewColumn(name, attr, mem, capacity)
}

// checkExpressionType enforces an exact child type, reporting the
// actual and expected type names together with the offending node's
// textual form. position names the argument for multi-child
// operators ("first", "last") and is empty for unary ones.
func checkExpressionType(expected types.DataType, child BoundExpression, description, position string) error {
	if child.ResultType() != expected {
		return qerrors.NewTypeMismatchError(description,
			types.Name(child.ResultType()), types.Name(expected), position)
	}
	return nil
}

// checkNumericType enforces a numeric child type.
func checkNumericType(child BoundExpression, description, position string) error {
	if !types.Info(child.ResultType()).IsNumeric() {
		return qerrors.NewTypeMismatchError(description,
			types.Name(child.ResultType()), "a numeric type", position)
	}
	return nil
}

// checkIntegerType enforces an integral child type.
func checkIntegerType(child BoundExpression, description, position string) error {
	if !types.Info(child.ResultType()).IsInteger() {
		return qerrors.NewTypeMismatchError(description,
			types.Name(child.ResultType()), "an integer type", position)
	}
	return nil
}

// boundUnary is the generic single-input column computer: one typed
// kernel applied element-wise with null propagation. A kernel
// returning ok=false nulls the row without failing the batch.
type boundUnary[A, R any] struct {
	op    OperatorID
	name  string
	child BoundExpression
	out   *block.Column
	fn    func(A) (R, bool)
}

func newBoundUnary[A, R any](
	op OperatorID,
	child BoundExpression,
	resultType types.DataType,
	mem memory.Allocator,
	capacity int,
	fn func(A) (R, bool),
) (BoundExpression, error) {
	node := &boundUnary[A, R]{op: op, child: child, fn: fn}
	out, err := newOutputColumn(node.ToString(false), resultType, mem, capacity)
	if err != nil {
		return nil, err
	}
	node.out = out
	return node, nil
}

func (n *boundUnary[A, R]) ResultType() types.DataType { return n.out.Attribute().Type }
func (n *boundUnary[A, R]) Attribute() types.Attribute { return n.out.Attribute() }

func (n *boundUnary[A, R]) ToString(verbose bool) string {
	if n.name != "" {
		return n.name + "(" + n.child.ToString(verbose) + ")"
	}
	return n.op.FormatDescription(n.child.ToString(verbose))
}

func (n *boundUnary[A, R]) Evaluate(input *block.View) (_ *block.View, err error) {
	defer block.RecoverAllocationFailure(n.ToString(true), &err)
	cv, err := n.child.Evaluate(input)
	if err != nil {
		return nil, err
	}
	vals, ok := cv.Values().(typedArray[A])
	if !ok {
		return nil, qerrors.NewEvaluationError(n.ToString(true), "input column has an unexpected physical type", nil)
	}
	rows := input.RowCount()
	n.out.Begin(rows)
	b := n.out.Builder().(typedBuilder[R])
	for i := 0; i < rows; i++ {
		if vals.IsNull(i) {
			b.AppendNull()
			continue
		}
		if r, valid := n.fn(vals.Value(i)); valid {
			b.Append(r)
		} else {
			b.AppendNull()
		}
	}
	return n.out.Finish(rows), nil
}

func (n *boundUnary[A, R]) Release() {
	n.out.Release()
	n.child.Release()
}

// boundBinary is the generic two-input column computer.
type boundBinary[A, B, R any] struct {
	op          OperatorID
	left, right BoundExpression
	out         *block.Column
	fn          func(A, B) (R, bool)
}

func newBoundBinary[A, B, R any](
	op OperatorID,
	left, right BoundExpression,
	resultType types.DataType,
	mem memory.Allocator,
	capacity int,
	fn func(A, B) (R, bool),
) (BoundExpression, error) {
	node := &boundBinary[A, B, R]{op: op, left: left, right: right, fn: fn}
	out, err := newOutputColumn(node.ToString(false), resultType, mem, capacity)
	if err != nil {
		return nil, err
	}
	node.out = out
	return node, nil
}

func (n *boundBinary[A, B, R]) ResultType() types.DataType { return n.out.Attribute().Type }
func (n *boundBinary[A, B, R]) Attribute() types.Attribute { return n.out.Attribute() }

func (n *boundBinary[A, B, R]) ToString(verbose bool) string {
	return n.op.FormatDescription(n.left.ToString(verbose), n.right.ToString(verbose))
}

func (n *boundBinary[A, B, R]) Evaluate(input *block.View) (_ *block.View, err error) {
	defer block.RecoverAllocationFailure(n.ToString(true), &err)
	lv, err := n.left.Evaluate(input)
	if err != nil {
		return nil, err
	}
	rv, err := n.right.Evaluate(input)
	if err != nil {
		return nil, err
	}
	lvals, lok := lv.Values().(typedArray[A])
	rvals, rok := rv.Values().(typedArray[B])
	if !lok || !rok {
		return nil, qerrors.NewEvaluationError(n.ToString(true), "input column has an unexpected physical type", nil)
	}
	rows := input.RowCount()
	n.out.Begin(rows)
	b := n.out.Builder().(typedBuilder[R])
	for i := 0; i < rows; i++ {
		if lvals.IsNull(i) || rvals.IsNull(i) {
			b.AppendNull()
			continue
		}
		if r, valid := n.fn(lvals.Value(i), rvals.Value(i)); valid {
			b.Append(r)
		} else {
			b.AppendNull()
		}
	}
	return n.out.Finish(rows), nil
}

func (n *boundBinary[A, B, R]) Release() {
	n.out.Release()
	n.left.Release()
	n.right.Release()
}

// boundTernary is the generic three-input column computer.
type boundTernary[A, B, C, R any] struct {
	op                   OperatorID
	first, second, third BoundExpression
	out                  *block.Column
	fn                   func(A, B, C) (R, bool)
}

func newBoundTernary[A, B, C, R any](
	op OperatorID,
	first, second, third BoundExpression,
	resultType types.DataType,
	mem memory.Allocator,
	capacity int,
	fn func(A, B, C) (R, bool),
) (BoundExpression, error) {
	node := &boundTernary[A, B, C, R]{op: op, first: first, second: second, third: third, fn: fn}
	out, err := newOutputColumn(node.ToString(false), resultType, mem, capacity)
	if err != nil {
		return nil, err
	}
	node.out = out
	return node, nil
}

func (n *boundTernary[A, B, C, R]) ResultType() types.DataType { return n.out.Attribute().Type }
func (n *boundTernary[A, B, C, R]) Attribute() types.Attribute { return n.out.Attribute() }

func (n *boundTernary[A, B, C, R]) ToString(verbose bool) string {
	return n.op.FormatDescription(
		n.first.ToString(verbose), n.second.ToString(verbose), n.third.ToString(verbose))
}

func (n *boundTernary[A, B, C, R]) Evaluate(input *block.View) (_ *block.View, err error) {
	defer block.RecoverAllocationFailure(n.ToString(true), &err)
	fv, err := n.first.Evaluate(input)
	if err != nil {
		return nil, err
	}
	sv, err := n.second.Evaluate(input)
	if err != nil {
		return nil, err
	}
	tv, err := n.third.Evaluate(input)
	if err != nil {
		return nil, err
	}
	fvals, fok := fv.Values().(typedArray[A])
	svals, sok := sv.Values().(typedArray[B])
	tvals, tok := tv.Values().(typedArray[C])
	if !fok || !sok || !tok {
		return nil, qerrors.NewEvaluationError(n.ToString(true), "input column has an unexpected physical type", nil)
	}
	rows := input.RowCount()
	n.out.Begin(rows)
	b := n.out.Builder().(typedBuilder[R])
	for i := 0; i < rows; i++ {
		if fvals.IsNull(i) || svals.IsNull(i) || tvals.IsNull(i) {
			b.AppendNull()
			continue
		}
		if r, valid := n.fn(fvals.Value(i), svals.Value(i), tvals.Value(i)); valid {
			b.Append(r)
		} else {
			b.AppendNull()
		}
	}
	return n.out.Finish(rows), nil
}

func (n *boundTernary[A, B, C, R]) Release() {
	n.out.Release()
	n.first.Release()
	n.second.Release()
	n.third.Release()
}
