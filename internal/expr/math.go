package expr

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"

	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// Abs computes the absolute value, preserving the input's numeric
// type.
func Abs(child Expression) Expression {
	return newUnaryExpression(OperatorAbs, child, boundAbs)
}

// Floor rounds down to the nearest integer; result is DOUBLE.
func Floor(child Expression) Expression {
	return newUnaryExpression(OperatorFloor, child, floatUnaryFactory(OperatorFloor,
		func(v float64) (float64, bool) { return math.Floor(v), true }))
}

// Ceil rounds up to the nearest integer; result is DOUBLE.
func Ceil(child Expression) Expression {
	return newUnaryExpression(OperatorCeil, child, floatUnaryFactory(OperatorCeil,
		func(v float64) (float64, bool) { return math.Ceil(v), true }))
}

// Round rounds half away from zero; result is DOUBLE.
func Round(child Expression) Expression {
	return newUnaryExpression(OperatorRound, child, floatUnaryFactory(OperatorRound,
		func(v float64) (float64, bool) { return math.Round(v), true }))
}

// Sqrt computes the square root; negative input yields null.
func Sqrt(child Expression) Expression {
	return newUnaryExpression(OperatorSqrt, child, floatUnaryFactory(OperatorSqrt,
		func(v float64) (float64, bool) {
			if v < 0 {
				return 0, false
			}
			return math.Sqrt(v), true
		}))
}

// Ln computes the natural logarithm; non-positive input yields null.
func Ln(child Expression) Expression {
	return newUnaryExpression(OperatorLn, child, floatUnaryFactory(OperatorLn,
		func(v float64) (float64, bool) {
			if v <= 0 {
				return 0, false
			}
			return math.Log(v), true
		}))
}

// Exp computes e**x; result is DOUBLE.
func Exp(child Expression) Expression {
	return newUnaryExpression(OperatorExp, child, floatUnaryFactory(OperatorExp,
		func(v float64) (float64, bool) { return math.Exp(v), true }))
}

// floatUnaryFactory builds the bound node for a math function that
// evaluates under DOUBLE: the numeric child is promoted at bind time.
func floatUnaryFactory(op OperatorID, fn func(float64) (float64, bool)) boundUnaryFactory {
	return func(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
		converted, err := newNumericCast(child, types.Float64, mem, capacity, description)
		if err != nil {
			return failBind(err, child)
		}
		node, err := newBoundUnary[float64, float64](op, converted, types.Float64, mem, capacity, fn)
		if err != nil {
			return failBind(err, converted)
		}
		return node, nil
	}
}

func boundAbs(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	var node BoundExpression
	var err error
	switch child.ResultType() {
	case types.Int32:
		node, err = newBoundUnary[int32, int32](OperatorAbs, child, types.Int32, mem, capacity,
			func(v int32) (int32, bool) {
				if v < 0 {
					return -v, true
				}
				return v, true
			})
	case types.Int64:
		node, err = newBoundUnary[int64, int64](OperatorAbs, child, types.Int64, mem, capacity,
			func(v int64) (int64, bool) {
				if v < 0 {
					return -v, true
				}
				return v, true
			})
	case types.Float32:
		node, err = newBoundUnary[float32, float32](OperatorAbs, child, types.Float32, mem, capacity,
			func(v float32) (float32, bool) { return float32(math.Abs(float64(v))), true })
	case types.Float64:
		node, err = newBoundUnary[float64, float64](OperatorAbs, child, types.Float64, mem, capacity,
			func(v float64) (float64, bool) { return math.Abs(v), true })
	default:
		err = qerrors.NewTypeMismatchError(description, types.Name(child.ResultType()), "a numeric type", "")
	}
	if err != nil {
		return failBind(err, child)
	}
	return node, nil
}
