// Package expr implements the expression subsystem: logical expression
// trees, the binder that resolves them against a row schema, and the
// vectorized bound trees that evaluate over column batches.
//
// A logical tree is schema independent and immutable. Binding walks it
// recursively against a TupleSchema, type-checks every node, allocates
// each node's output column at the negotiated row capacity, and yields
// a bound tree that is evaluated once per input batch. Binding is
// deterministic and never memoized; the same logical tree may be bound
// against several schemas, producing independent bound trees.
package expr

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/quiver/internal/types"
)

// Expression is a logical, schema-independent description of a
// computation. DoBind resolves the node against a schema and produces
// a vectorized evaluator; ToString renders the node for plans and
// error messages, with verbose mode including full subtree detail.
type Expression interface {
	DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error)
	ToString(verbose bool) string
}

// Bound node factories. Each receives the already-bound children, the
// allocator and capacity negotiated for the tree, and the verbose
// textual form of the logical node for error attribution. A factory
// takes ownership of its children: on failure it releases them (or
// whatever wraps them by then) before returning, so no partially
// constructed buffers leak on the failure path.
type (
	boundUnaryFactory   func(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error)
	boundBinaryFactory  func(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error)
	boundTernaryFactory func(first, second, third BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error)
)

// unaryExpression is the shared logical node for single-child
// operators; the bound factory carries the operator's semantics.
type unaryExpression struct {
	op      OperatorID
	child   Expression
	factory boundUnaryFactory
}

func newUnaryExpression(op OperatorID, child Expression, factory boundUnaryFactory) *unaryExpression {
	return &unaryExpression{op: op, child: child, factory: factory}
}

func (e *unaryExpression) ToString(verbose bool) string {
	return e.op.FormatDescription(e.child.ToString(verbose))
}

func (e *unaryExpression) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	child, err := e.child.DoBind(schema, mem, capacity)
	if err != nil {
		return nil, err
	}
	return e.factory(child, mem, capacity, e.ToString(true))
}

// binaryExpression is the shared logical node for two-child operators.
type binaryExpression struct {
	op          OperatorID
	left, right Expression
	factory     boundBinaryFactory
}

func newBinaryExpression(op OperatorID, left, right Expression, factory boundBinaryFactory) *binaryExpression {
	return &binaryExpression{op: op, left: left, right: right, factory: factory}
}

func (e *binaryExpression) ToString(verbose bool) string {
	return e.op.FormatDescription(e.left.ToString(verbose), e.right.ToString(verbose))
}

func (e *binaryExpression) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	left, err := e.left.DoBind(schema, mem, capacity)
	if err != nil {
		return nil, err
	}
	right, err := e.right.DoBind(schema, mem, capacity)
	if err != nil {
		left.Release()
		return nil, err
	}
	return e.factory(left, right, mem, capacity, e.ToString(true))
}

// ternaryExpression is the shared logical node for three-child
// operators.
type ternaryExpression struct {
	op                   OperatorID
	first, second, third Expression
	factory              boundTernaryFactory
}

func newTernaryExpression(op OperatorID, first, second, third Expression, factory boundTernaryFactory) *ternaryExpression {
	return &ternaryExpression{op: op, first: first, second: second, third: third, factory: factory}
}

func (e *ternaryExpression) ToString(verbose bool) string {
	return e.op.FormatDescription(
		e.first.ToString(verbose), e.second.ToString(verbose), e.third.ToString(verbose))
}

func (e *ternaryExpression) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	first, err := e.first.DoBind(schema, mem, capacity)
	if err != nil {
		return nil, err
	}
	second, err := e.second.DoBind(schema, mem, capacity)
	if err != nil {
		first.Release()
		return nil, err
	}
	third, err := e.third.DoBind(schema, mem, capacity)
	if err != nil {
		first.Release()
		second.Release()
		return nil, err
	}
	return e.factory(first, second, third, mem, capacity, e.ToString(true))
}

// ExpressionList is an ordered sequence of child expressions with
// variable arity, owned exclusively by its parent (the variadic
// concatenation node).
type ExpressionList struct {
	items []Expression
}

// NewExpressionList builds a list from the given children.
func NewExpressionList(items ...Expression) *ExpressionList {
	copied := make([]Expression, len(items))
	copy(copied, items)
	return &ExpressionList{items: copied}
}

// Size returns the number of children.
func (l *ExpressionList) Size() int { return len(l.items) }

// ToString renders the comma-joined child list.
func (l *ExpressionList) ToString(verbose bool) string {
	parts := make([]string, len(l.items))
	for i, item := range l.items {
		parts[i] = item.ToString(verbose)
	}
	return strings.Join(parts, ", ")
}

// DoBind binds every child in order, releasing the already-bound
// prefix and propagating immediately on the first failure.
func (l *ExpressionList) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) ([]BoundExpression, error) {
	bound := make([]BoundExpression, 0, len(l.items))
	for _, item := range l.items {
		b, err := item.DoBind(schema, mem, capacity)
		if err != nil {
			releaseAll(bound...)
			return nil, err
		}
		bound = append(bound, b)
	}
	return bound, nil
}
