package expr

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/quiver/internal/block"
	"github.com/paveg/quiver/internal/config"
	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// Bound constructors for the string operator family. They are exported
// so the cursor layer can assemble bound trees directly from
// already-bound children, the same way the logical layer does.

// BoundLength constructs the bound LENGTH node.
func BoundLength(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringUnary(OperatorLength, child, types.Int64, mem, capacity, description,
		func(s string) (int64, bool) { return int64(len(s)), true })
}

// BoundLtrim constructs the bound LTRIM node.
func BoundLtrim(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringUnary(OperatorLtrim, child, types.String, mem, capacity, description,
		func(s string) (string, bool) { return strings.TrimLeft(s, " "), true })
}

// BoundRtrim constructs the bound RTRIM node.
func BoundRtrim(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringUnary(OperatorRtrim, child, types.String, mem, capacity, description,
		func(s string) (string, bool) { return strings.TrimRight(s, " "), true })
}

// BoundTrim constructs the bound TRIM node.
func BoundTrim(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringUnary(OperatorTrim, child, types.String, mem, capacity, description,
		func(s string) (string, bool) { return strings.Trim(s, " "), true })
}

// BoundToUpper constructs the bound TO_UPPER node.
func BoundToUpper(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringUnary(OperatorToUpper, child, types.String, mem, capacity, description,
		func(s string) (string, bool) { return strings.ToUpper(s), true })
}

// BoundToLower constructs the bound TO_LOWER node.
func BoundToLower(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringUnary(OperatorToLower, child, types.String, mem, capacity, description,
		func(s string) (string, bool) { return strings.ToLower(s), true })
}

// BoundContains constructs the bound CONTAINS node.
func BoundContains(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringBinary[bool](OperatorContains, left, right, types.Bool, mem, capacity, description,
		func(haystack, needle string) (bool, bool) { return strings.Contains(haystack, needle), true })
}

// BoundContainsCI constructs the bound CONTAINS_CI node.
func BoundContainsCI(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringBinary[bool](OperatorContainsCI, left, right, types.Bool, mem, capacity, description,
		func(haystack, needle string) (bool, bool) {
			return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle)), true
		})
}

// BoundStringOffset constructs the bound STRING_OFFSET node.
func BoundStringOffset(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringBinary[int32](OperatorStringOffset, left, right, types.Int32, mem, capacity, description,
		func(haystack, needle string) (int32, bool) {
			return int32(strings.Index(haystack, needle) + 1), true
		})
}

// BoundStringReplace constructs the bound STRING_REPLACE node.
func BoundStringReplace(first, second, third BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	for i, child := range []BoundExpression{first, second, third} {
		if err := checkExpressionType(types.String, child, description, ordinal(i, 3)); err != nil {
			return failBind(err, first, second, third)
		}
	}
	node, err := newBoundTernary[string, string, string, string](
		OperatorStringReplace, first, second, third, types.String, mem, capacity,
		func(haystack, needle, substitute string) (string, bool) {
			return strings.ReplaceAll(haystack, needle, substitute), true
		})
	if err != nil {
		return failBind(err, first, second, third)
	}
	return node, nil
}

// BoundSubstring constructs the bound three-argument SUBSTRING node.
// Position and length arguments must be integral; they evaluate under
// INT64.
func BoundSubstring(first, second, third BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	if err := checkExpressionType(types.String, first, description, "first"); err != nil {
		return failBind(err, first, second, third)
	}
	if err := checkIntegerType(second, description, "second"); err != nil {
		return failBind(err, first, second, third)
	}
	if err := checkIntegerType(third, description, "last"); err != nil {
		return failBind(err, first, second, third)
	}
	pos, err := newNumericCast(second, types.Int64, mem, capacity, description)
	if err != nil {
		return failBind(err, first, second, third)
	}
	length, err := newNumericCast(third, types.Int64, mem, capacity, description)
	if err != nil {
		return failBind(err, first, pos, third)
	}
	node, err := newBoundTernary[string, int64, int64, string](
		OperatorSubstring, first, pos, length, types.String, mem, capacity,
		func(s string, p, l int64) (string, bool) { return substring(s, p, l), true })
	if err != nil {
		return failBind(err, first, pos, length)
	}
	return node, nil
}

// BoundTrailingSubstring constructs the bound two-argument SUBSTRING
// node.
func BoundTrailingSubstring(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	if err := checkExpressionType(types.String, left, description, "first"); err != nil {
		return failBind(err, left, right)
	}
	if err := checkIntegerType(right, description, "last"); err != nil {
		return failBind(err, left, right)
	}
	pos, err := newNumericCast(right, types.Int64, mem, capacity, description)
	if err != nil {
		return failBind(err, left, right)
	}
	node, err := newBoundBinary[string, int64, string](
		OperatorTrailingSubstring, left, pos, types.String, mem, capacity,
		func(s string, p int64) (string, bool) { return trailingSubstring(s, p), true })
	if err != nil {
		return failBind(err, left, pos)
	}
	return node, nil
}

// BoundConcat constructs the bound variadic CONCAT node; every child
// must be STRING.
func BoundConcat(args []BoundExpression, policy config.ConcatNullPolicy, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	for i, child := range args {
		if err := checkExpressionType(types.String, child, description,
			fmt.Sprintf("%d.", i+1)); err != nil {
			return failBind(err, args...)
		}
	}
	node := &boundConcat{children: args, policy: policy}
	out, err := newOutputColumn(node.ToString(false), types.String, mem, capacity)
	if err != nil {
		return failBind(err, args...)
	}
	node.out = out
	return node, nil
}

// boundConcat is the variadic string computer. Unlike the fixed-arity
// nodes its null handling is a policy: propagate nulls the relational
// way, or treat them as empty strings.
type boundConcat struct {
	children []BoundExpression
	policy   config.ConcatNullPolicy
	out      *block.Column
}

func (n *boundConcat) ResultType() types.DataType { return types.String }
func (n *boundConcat) Attribute() types.Attribute { return n.out.Attribute() }

func (n *boundConcat) ToString(verbose bool) string {
	parts := make([]string, len(n.children))
	for i, child := range n.children {
		parts[i] = child.ToString(verbose)
	}
	return OperatorConcat.FormatDescription(strings.Join(parts, ", "))
}

func (n *boundConcat) Evaluate(input *block.View) (_ *block.View, err error) {
	defer block.RecoverAllocationFailure(n.ToString(true), &err)
	cols := make([]*array.String, len(n.children))
	for i, child := range n.children {
		cv, err := child.Evaluate(input)
		if err != nil {
			return nil, err
		}
		col, ok := cv.Values().(*array.String)
		if !ok {
			return nil, qerrors.NewEvaluationError(n.ToString(true), "input column has an unexpected physical type", nil)
		}
		cols[i] = col
	}
	rows := input.RowCount()
	n.out.Begin(rows)
	b := n.out.Builder().(*array.StringBuilder)
	var sb strings.Builder
	for i := 0; i < rows; i++ {
		sb.Reset()
		null := false
		for _, col := range cols {
			if col.IsNull(i) {
				if n.policy == config.ConcatPropagateNull {
					null = true
					break
				}
				continue
			}
			sb.WriteString(col.Value(i))
		}
		if null {
			b.AppendNull()
			continue
		}
		b.Append(sb.String())
	}
	return n.out.Finish(rows), nil
}

func (n *boundConcat) Release() {
	n.out.Release()
	releaseAll(n.children...)
}

// Shared plumbing for the unary and binary string constructors.

func stringUnary[R any](op OperatorID, child BoundExpression, resultType types.DataType, mem memory.Allocator, capacity int, description string, fn func(string) (R, bool)) (BoundExpression, error) {
	if err := checkExpressionType(types.String, child, description, ""); err != nil {
		return failBind(err, child)
	}
	node, err := newBoundUnary[string, R](op, child, resultType, mem, capacity, fn)
	if err != nil {
		return failBind(err, child)
	}
	return node, nil
}

func stringBinary[R any](op OperatorID, left, right BoundExpression, resultType types.DataType, mem memory.Allocator, capacity int, description string, fn func(string, string) (R, bool)) (BoundExpression, error) {
	if err := checkExpressionType(types.String, left, description, "first"); err != nil {
		return failBind(err, left, right)
	}
	if err := checkExpressionType(types.String, right, description, "last"); err != nil {
		return failBind(err, left, right)
	}
	node, err := newBoundBinary[string, string, R](op, left, right, resultType, mem, capacity, fn)
	if err != nil {
		return failBind(err, left, right)
	}
	return node, nil
}

func ordinal(i, n int) string {
	switch {
	case i == 0:
		return "first"
	case i == n-1:
		return "last"
	default:
		return fmt.Sprintf("%d.", i+1)
	}
}

// substring implements the SQL-style position rules shared by the
// SUBSTRING variants: positions are 1-based bytes, a negative position
// counts back from the end, position zero and non-positive lengths
// yield the empty string.
func substring(s string, pos, length int64) string {
	start, ok := substringStart(s, pos)
	if !ok || length <= 0 {
		return ""
	}
	remaining := int64(len(s) - start)
	if length > remaining {
		length = remaining
	}
	return s[start : start+int(length)]
}

func trailingSubstring(s string, pos int64) string {
	start, ok := substringStart(s, pos)
	if !ok {
		return ""
	}
	return s[start:]
}

func substringStart(s string, pos int64) (int, bool) {
	n := int64(len(s))
	switch {
	case pos > 0:
		if pos > n {
			return 0, false
		}
		return int(pos - 1), true
	case pos < 0:
		start := n + pos
		if start < 0 {
			start = 0
		}
		return int(start), true
	default:
		return 0, false
	}
}
