package expr

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/exp/constraints"

	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// Plus adds two numeric expressions under the promoted common type.
func Plus(left, right Expression) Expression {
	return newBinaryExpression(OperatorAdd, left, right, arithmeticFactory(OperatorAdd))
}

// Minus subtracts right from left.
func Minus(left, right Expression) Expression {
	return newBinaryExpression(OperatorSubtract, left, right, arithmeticFactory(OperatorSubtract))
}

// Multiply multiplies two numeric expressions.
func Multiply(left, right Expression) Expression {
	return newBinaryExpression(OperatorMultiply, left, right, arithmeticFactory(OperatorMultiply))
}

// Divide divides left by right. Integer division by zero yields null;
// floating division follows IEEE semantics.
func Divide(left, right Expression) Expression {
	return newBinaryExpression(OperatorDivide, left, right, arithmeticFactory(OperatorDivide))
}

// Modulo computes the integer remainder; both sides must be integral.
// A zero divisor yields null.
func Modulo(left, right Expression) Expression {
	return newBinaryExpression(OperatorModulo, left, right, arithmeticFactory(OperatorModulo))
}

// Negate flips the sign of a numeric expression.
func Negate(child Expression) Expression {
	return newUnaryExpression(OperatorNegate, child, boundNegate)
}

func arithmeticFactory(op OperatorID) boundBinaryFactory {
	return func(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
		if err := checkNumericType(left, description, "first"); err != nil {
			return failBind(err, left, right)
		}
		if err := checkNumericType(right, description, "last"); err != nil {
			return failBind(err, left, right)
		}
		if op == OperatorModulo {
			if err := checkIntegerType(left, description, "first"); err != nil {
				return failBind(err, left, right)
			}
			if err := checkIntegerType(right, description, "last"); err != nil {
				return failBind(err, left, right)
			}
		}
		promoted := types.Promote(left.ResultType(), right.ResultType())
		l, err := newNumericCast(left, promoted, mem, capacity, description)
		if err != nil {
			return failBind(err, left, right)
		}
		r, err := newNumericCast(right, promoted, mem, capacity, description)
		if err != nil {
			return failBind(err, l, right)
		}
		node, err := newArithmeticNode(op, l, r, promoted, mem, capacity)
		if err != nil {
			return failBind(err, l, r)
		}
		return node, nil
	}
}

func newArithmeticNode(op OperatorID, left, right BoundExpression, promoted types.DataType, mem memory.Allocator, capacity int) (BoundExpression, error) {
	switch promoted {
	case types.Int32:
		return newBoundBinary[int32, int32, int32](op, left, right, promoted, mem, capacity, integerArithmeticFn[int32](op))
	case types.Int64:
		return newBoundBinary[int64, int64, int64](op, left, right, promoted, mem, capacity, integerArithmeticFn[int64](op))
	case types.Float32:
		return newBoundBinary[float32, float32, float32](op, left, right, promoted, mem, capacity, floatArithmeticFn[float32](op))
	case types.Float64:
		return newBoundBinary[float64, float64, float64](op, left, right, promoted, mem, capacity, floatArithmeticFn[float64](op))
	default:
		return nil, qerrors.NewInvalidArgumentError(op.Name(),
			"unsupported promoted type "+types.Name(promoted))
	}
}

func integerArithmeticFn[T constraints.Integer](op OperatorID) func(T, T) (T, bool) {
	switch op {
	case OperatorAdd:
		return func(a, b T) (T, bool) { return a + b, true }
	case OperatorSubtract:
		return func(a, b T) (T, bool) { return a - b, true }
	case OperatorMultiply:
		return func(a, b T) (T, bool) { return a * b, true }
	case OperatorDivide:
		return func(a, b T) (T, bool) {
			if b == 0 {
				var zero T
				return zero, false
			}
			return a / b, true
		}
	case OperatorModulo:
		return func(a, b T) (T, bool) {
			if b == 0 {
				var zero T
				return zero, false
			}
			return a % b, true
		}
	default:
		panic("expr: not an arithmetic operator: " + op.Name())
	}
}

func floatArithmeticFn[T constraints.Float](op OperatorID) func(T, T) (T, bool) {
	switch op {
	case OperatorAdd:
		return func(a, b T) (T, bool) { return a + b, true }
	case OperatorSubtract:
		return func(a, b T) (T, bool) { return a - b, true }
	case OperatorMultiply:
		return func(a, b T) (T, bool) { return a * b, true }
	case OperatorDivide:
		// Division by zero produces +/-Inf, as the hardware does.
		return func(a, b T) (T, bool) { return a / b, true }
	default:
		panic("expr: not a float arithmetic operator: " + op.Name())
	}
}

func boundNegate(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	if err := checkNumericType(child, description, ""); err != nil {
		return failBind(err, child)
	}
	var node BoundExpression
	var err error
	switch child.ResultType() {
	case types.Int32:
		node, err = newBoundUnary[int32, int32](OperatorNegate, child, types.Int32, mem, capacity,
			func(v int32) (int32, bool) { return -v, true })
	case types.Int64:
		node, err = newBoundUnary[int64, int64](OperatorNegate, child, types.Int64, mem, capacity,
			func(v int64) (int64, bool) { return -v, true })
	case types.Float32:
		node, err = newBoundUnary[float32, float32](OperatorNegate, child, types.Float32, mem, capacity,
			func(v float32) (float32, bool) { return -v, true })
	case types.Float64:
		node, err = newBoundUnary[float64, float64](OperatorNegate, child, types.Float64, mem, capacity,
			func(v float64) (float64, bool) { return -v, true })
	default:
		err = qerrors.NewTypeMismatchError(description, types.Name(child.ResultType()), "a numeric type", "")
	}
	if err != nil {
		return failBind(err, child)
	}
	return node, nil
}
