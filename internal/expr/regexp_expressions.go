package expr

import (
	"regexp"

	"github.com/apache/arrow-go/v18/arrow/memory"

	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// The regexp operators are stateful: the pattern is compiled once when
// the logical node is constructed and the compiled program is shared by
// every Evaluate call. A malformed pattern cannot fail here, so it is
// wrapped in an invalid node and surfaces as the typed error at bind
// time.

// RegexpPartialMatch tests whether the pattern matches anywhere inside
// the string.
func RegexpPartialMatch(str Expression, pattern string) Expression {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return regexpInvalid(OperatorRegexpPartialMatch, str, pattern, err)
	}
	return newUnaryExpression(OperatorRegexpPartialMatch, str, boundRegexpMatch(OperatorRegexpPartialMatch, re))
}

// RegexpFullMatch tests whether the pattern matches the entire string.
func RegexpFullMatch(str Expression, pattern string) Expression {
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return regexpInvalid(OperatorRegexpFullMatch, str, pattern, err)
	}
	return newUnaryExpression(OperatorRegexpFullMatch, str, boundRegexpMatch(OperatorRegexpFullMatch, re))
}

// RegexpExtract extracts the first match of the pattern from the
// string: the first capturing group when the pattern has one, the whole
// match otherwise. Rows without a match yield null.
func RegexpExtract(str Expression, pattern string) Expression {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return regexpInvalid(OperatorRegexpExtract, str, pattern, err)
	}
	return newUnaryExpression(OperatorRegexpExtract, str, func(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
		return BoundRegexpExtract(re, child, mem, capacity, description)
	})
}

// RegexpReplace replaces every match of the pattern in haystack with
// the substitute, which may reference capturing groups with $1 syntax.
func RegexpReplace(haystack Expression, pattern string, substitute Expression) Expression {
	re, err := regexp.Compile(pattern)
	if err != nil {
		text := OperatorRegexpReplace.FormatDescription(haystack.ToString(false), substitute.ToString(false))
		return newInvalidExpression(text, qerrors.NewPatternError(OperatorRegexpReplace.Name(), pattern, err))
	}
	return newBinaryExpression(OperatorRegexpReplace, haystack, substitute,
		func(left, right BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
			return BoundRegexpReplace(re, left, right, mem, capacity, description)
		})
}

// BoundRegexpPartialMatch constructs the bound REGEXP_PARTIAL_MATCH
// node over an already compiled pattern.
func BoundRegexpPartialMatch(re *regexp.Regexp, child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return boundRegexpMatch(OperatorRegexpPartialMatch, re)(child, mem, capacity, description)
}

// BoundRegexpFullMatch constructs the bound REGEXP_FULL_MATCH node; re
// must already be anchored to the whole string.
func BoundRegexpFullMatch(re *regexp.Regexp, child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return boundRegexpMatch(OperatorRegexpFullMatch, re)(child, mem, capacity, description)
}

// BoundRegexpExtract constructs the bound REGEXP_EXTRACT node over an
// already compiled pattern.
func BoundRegexpExtract(re *regexp.Regexp, child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	group := 0
	if re.NumSubexp() > 0 {
		group = 1
	}
	return stringUnary(OperatorRegexpExtract, child, types.String, mem, capacity, description,
		func(s string) (string, bool) {
			m := re.FindStringSubmatch(s)
			if m == nil {
				return "", false
			}
			return m[group], true
		})
}

// BoundRegexpReplace constructs the bound REGEXP_REPLACE node over an
// already compiled pattern.
func BoundRegexpReplace(re *regexp.Regexp, haystack, substitute BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
	return stringBinary[string](OperatorRegexpReplace, haystack, substitute, types.String, mem, capacity, description,
		func(h, sub string) (string, bool) {
			return re.ReplaceAllString(h, sub), true
		})
}

func boundRegexpMatch(op OperatorID, re *regexp.Regexp) boundUnaryFactory {
	return func(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
		return stringUnary(op, child, types.Bool, mem, capacity, description,
			func(s string) (bool, bool) { return re.MatchString(s), true })
	}
}

func regexpInvalid(op OperatorID, str Expression, pattern string, err error) Expression {
	return newInvalidExpression(op.FormatDescription(str.ToString(false)),
		qerrors.NewPatternError(op.Name(), pattern, err))
}
