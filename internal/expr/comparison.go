package expr

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/exp/constraints"

	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// Equal compares two expressions for equality.
func Equal(left, right Expression) Expression {
	return newBinaryExpression(OperatorEqual, left, right, comparisonFactory(OperatorEqual))
}

// NotEqual compares two expressions for inequality.
func NotEqual(left, right Expression) Expression {
	return newBinaryExpression(OperatorNotEqual, left, right, comparisonFactory(OperatorNotEqual))
}

// Less orders two comparable expressions.
func Less(left, right Expression) Expression {
	return newBinaryExpression(OperatorLess, left, right, comparisonFactory(OperatorLess))
}

// LessOrEqual orders two comparable expressions.
func LessOrEqual(left, right Expression) Expression {
	return newBinaryExpression(OperatorLessOrEqual, left, right, comparisonFactory(OperatorLessOrEqual))
}

// Greater orders two comparable expressions.
func Greater(left, right Expression) Expression {
	return newBinaryExpression(OperatorGreater, left, right, comparisonFactory(OperatorGreater))
}

// GreaterOrEqual orders two comparable expressions.
func GreaterOrEqual(left, right Expression) Expression {
	return newBinaryExpression(OperatorGreaterOrEqual, left, right, comparisonFactory(OperatorGreaterOrEqual))
}

// And combines two boolean expressions; null propagates.
func And(left, right Expression) Expression {
	return newBinaryExpression(OperatorAnd, left, right, logicalFactory(OperatorAnd))
}

// Or combines two boolean expressions; null propagates.
func Or(left, right Expression) Expression {
	return newBinaryExpression(OperatorOr, left, right, logicalFactory(OperatorOr))
}

// Not inverts a boolean expression.
func Not(child Expression) Expression {
	return newUnaryExpression(OperatorNot, child, boundNot)
}

func comparisonFactory(op OperatorID) boundBinaryFactory {
	return func(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
		lt, rt := left.ResultType(), right.ResultType()
		switch {
		case types.Info(lt).IsNumeric() && types.Info(rt).IsNumeric():
			promoted := types.Promote(lt, rt)
			l, err := newNumericCast(left, promoted, mem, capacity, description)
			if err != nil {
				return failBind(err, left, right)
			}
			r, err := newNumericCast(right, promoted, mem, capacity, description)
			if err != nil {
				return failBind(err, l, right)
			}
			node, err := newComparisonNode(op, l, r, promoted, mem, capacity)
			if err != nil {
				return failBind(err, l, r)
			}
			return node, nil
		case lt == rt && types.Info(lt).IsOrdered():
			node, err := newComparisonNode(op, left, right, lt, mem, capacity)
			if err != nil {
				return failBind(err, left, right)
			}
			return node, nil
		case lt == types.Bool && rt == types.Bool &&
			(op == OperatorEqual || op == OperatorNotEqual):
			eq := op == OperatorEqual
			node, err := newBoundBinary[bool, bool, bool](op, left, right, types.Bool, mem, capacity,
				func(a, b bool) (bool, bool) { return (a == b) == eq, true })
			if err != nil {
				return failBind(err, left, right)
			}
			return node, nil
		default:
			return failBind(qerrors.NewTypeMismatchError(description,
				types.Name(rt), types.Name(lt), "last"), left, right)
		}
	}
}

func newComparisonNode(op OperatorID, left, right BoundExpression, operandType types.DataType, mem memory.Allocator, capacity int) (BoundExpression, error) {
	switch operandType {
	case types.Int32:
		return newBoundBinary[int32, int32, bool](op, left, right, types.Bool, mem, capacity, comparisonFn[int32](op))
	case types.Int64:
		return newBoundBinary[int64, int64, bool](op, left, right, types.Bool, mem, capacity, comparisonFn[int64](op))
	case types.Float32:
		return newBoundBinary[float32, float32, bool](op, left, right, types.Bool, mem, capacity, comparisonFn[float32](op))
	case types.Float64:
		return newBoundBinary[float64, float64, bool](op, left, right, types.Bool, mem, capacity, comparisonFn[float64](op))
	case types.String:
		return newBoundBinary[string, string, bool](op, left, right, types.Bool, mem, capacity, comparisonFn[string](op))
	case types.Date:
		return newBoundBinary[arrow.Date32, arrow.Date32, bool](op, left, right, types.Bool, mem, capacity, comparisonFn[arrow.Date32](op))
	case types.Timestamp:
		return newBoundBinary[arrow.Timestamp, arrow.Timestamp, bool](op, left, right, types.Bool, mem, capacity, comparisonFn[arrow.Timestamp](op))
	default:
		return nil, qerrors.NewInvalidArgumentError(op.Name(),
			"unsupported comparison operand type "+types.Name(operandType))
	}
}

func comparisonFn[T constraints.Ordered](op OperatorID) func(T, T) (bool, bool) {
	switch op {
	case OperatorEqual:
		return func(a, b T) (bool, bool) { return a == b, true }
	case OperatorNotEqual:
		return func(a, b T) (bool, bool) { return a != b, true }
	case OperatorLess:
		return func(a, b T) (bool, bool) { return a < b, true }
	case OperatorLessOrEqual:
		return func(a, b T) (bool, bool) { return a <= b, true }
	case OperatorGreater:
		return func(a, b T) (bool, bool) { return a > b, true }
	case OperatorGreaterOrEqual:
		return func(a, b T) (bool, bool) { return a >= b, true }
	default:
		panic("expr: not a comparison operator: " + op.Name())
	}
}

func logicalFactory(op OperatorID) boundBinaryFactory {
	return func(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
		if err := checkExpressionType(types.Bool, left, description, "first"); err != nil {
			return failBind(err, left, right)
		}
		if err := checkExpressionType(types.Bool, right, description, "last"); err != nil {
			return failBind(err, left, right)
		}
		and := op == OperatorAnd
		node, err := newBoundBinary[bool, bool, bool](op, left, right, types.Bool, mem, capacity,
			func(a, b bool) (bool, bool) {
				if and {
					return a && b, true
				}
				return a || b, true
			})
		if err != nil {
			return failBind(err, left, right)
		}
		return node, nil
	}
}

func boundNot(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	if err := checkExpressionType(types.Bool, child, description, ""); err != nil {
		return failBind(err, child)
	}
	node, err := newBoundUnary[bool, bool](OperatorNot, child, types.Bool, mem, capacity,
		func(v bool) (bool, bool) { return !v, true })
	if err != nil {
		return failBind(err, child)
	}
	return node, nil
}
