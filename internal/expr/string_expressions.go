package expr

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/quiver/internal/config"
	"github.com/paveg/quiver/internal/types"
)

// Length returns the byte length of a string expression as INT64.
func Length(str Expression) Expression {
	return newUnaryExpression(OperatorLength, str, BoundLength)
}

// Ltrim strips leading spaces.
func Ltrim(str Expression) Expression {
	return newUnaryExpression(OperatorLtrim, str, BoundLtrim)
}

// Rtrim strips trailing spaces.
func Rtrim(str Expression) Expression {
	return newUnaryExpression(OperatorRtrim, str, BoundRtrim)
}

// Trim strips leading and trailing spaces.
func Trim(str Expression) Expression {
	return newUnaryExpression(OperatorTrim, str, BoundTrim)
}

// ToUpper upper-cases a string expression.
func ToUpper(str Expression) Expression {
	return newUnaryExpression(OperatorToUpper, str, BoundToUpper)
}

// ToLower lower-cases a string expression.
func ToLower(str Expression) Expression {
	return newUnaryExpression(OperatorToLower, str, BoundToLower)
}

// StringContains tests whether haystack contains needle.
func StringContains(haystack, needle Expression) Expression {
	return newBinaryExpression(OperatorContains, haystack, needle, BoundContains)
}

// StringContainsCI is StringContains with case folding.
func StringContainsCI(haystack, needle Expression) Expression {
	return newBinaryExpression(OperatorContainsCI, haystack, needle, BoundContainsCI)
}

// StringOffset returns the 1-based byte offset of needle within
// haystack as INT32, or 0 when needle does not occur.
func StringOffset(haystack, needle Expression) Expression {
	return newBinaryExpression(OperatorStringOffset, haystack, needle, BoundStringOffset)
}

// StringReplace replaces every occurrence of needle in haystack with
// substitute.
func StringReplace(haystack, needle, substitute Expression) Expression {
	return newTernaryExpression(OperatorStringReplace, haystack, needle, substitute, BoundStringReplace)
}

// Substring extracts length bytes of str starting at the 1-based
// position pos. A negative pos counts from the end; pos of zero or a
// non-positive length yields the empty string.
func Substring(str, pos, length Expression) Expression {
	return newTernaryExpression(OperatorSubstring, str, pos, length, BoundSubstring)
}

// TrailingSubstring extracts str from the 1-based position pos through
// the end, with the same position rules as Substring.
func TrailingSubstring(str, pos Expression) Expression {
	return newBinaryExpression(OperatorTrailingSubstring, str, pos, BoundTrailingSubstring)
}

// Concat concatenates an arbitrary list of string expressions
// row-wise. Null handling follows the engine configuration; see
// ConcatWithPolicy to choose explicitly. A zero-argument list yields
// empty strings.
//
// Concat does not fit the fixed-arity scheme the other nodes share:
// it owns an ExpressionList and binds it as a unit.
func Concat(args *ExpressionList) Expression {
	return &concatExpression{args: args, policy: config.GetGlobalConfig().ConcatNullPolicy}
}

// ConcatWithPolicy is Concat with an explicit null policy.
func ConcatWithPolicy(args *ExpressionList, policy config.ConcatNullPolicy) Expression {
	return &concatExpression{args: args, policy: policy}
}

type concatExpression struct {
	args   *ExpressionList
	policy config.ConcatNullPolicy
}

func (e *concatExpression) ToString(verbose bool) string {
	return OperatorConcat.FormatDescription(e.args.ToString(verbose))
}

func (e *concatExpression) DoBind(schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	args, err := e.args.DoBind(schema, mem, capacity)
	if err != nil {
		return nil, err
	}
	return BoundConcat(args, e.policy, mem, capacity, e.ToString(true))
}
